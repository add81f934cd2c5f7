package normalize

import (
	"encoding/json"
	"strings"

	"github.com/ctu-chatbot/harvester/pkg/qa"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Strategy identifies which extraction strategy produced a parse result.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyJSONFence Strategy = "json_fence"
	StrategyAnyFence  Strategy = "any_fence"
	StrategyBracePair Strategy = "brace_pair"
	StrategyNone      Strategy = "none"
)

// Defaults are filled into records that omit optional fields.
type Defaults struct {
	Category string
	Priority int
}

// Result is the outcome of normalizing one model response. Strategy set
// to StrategyNone with empty Records is the terminal failure state; the
// normalizer never returns an error for malformed model output.
type Result struct {
	Records  []qa.Record `json:"qa_pairs"`
	Strategy Strategy    `json:"strategy"`
	Dropped  int         `json:"dropped"` // records filtered for missing question or answer
	Failure  string      `json:"failure,omitempty"`
}

// Normalizer repairs and validates raw LLM responses into QA records.
// Model output usually contains a JSON document but may wrap it in prose
// or code fences; the strategy chain recovers it where possible and
// degrades to an empty result where not.
type Normalizer struct {
	defaults Defaults
}

// NewNormalizer creates a normalizer with the documented defaults
// (category "general", priority 2).
func NewNormalizer() *Normalizer {
	return &Normalizer{defaults: Defaults{Category: "general", Priority: 2}}
}

// NewNormalizerWithDefaults creates a normalizer with custom defaults.
func NewNormalizerWithDefaults(d Defaults) *Normalizer {
	if d.Category == "" {
		d.Category = "general"
	}
	if d.Priority < 1 || d.Priority > 3 {
		d.Priority = 2
	}
	return &Normalizer{defaults: d}
}

// envelope is the expected response shape. questions_answers is an
// alternate key name some prompts elicit; it is normalized to qa_pairs.
type envelope struct {
	QAPairs          []rawRecord `json:"qa_pairs"`
	QuestionsAnswers []rawRecord `json:"questions_answers"`
}

type rawRecord struct {
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Category string            `json:"category"`
	Priority int               `json:"priority"`
	Source   string            `json:"source"`
	Entities map[string]string `json:"entities"`
}

// Normalize extracts QA records from a raw model response. The source
// argument is filled into records that carry no source of their own.
func (n *Normalizer) Normalize(raw, source string) Result {
	strategies := []struct {
		name    Strategy
		extract func(string) (string, bool)
	}{
		{StrategyDirect, func(s string) (string, bool) { return s, true }},
		{StrategyJSONFence, extractJSONFence},
		{StrategyAnyFence, extractAnyFence},
		{StrategyBracePair, extractBracePair},
	}

	for _, strategy := range strategies {
		candidate, ok := strategy.extract(raw)
		if !ok {
			continue
		}

		var env envelope
		if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &env); err != nil {
			continue
		}

		records, dropped := n.convert(env, source)
		log.Debug().
			Str("strategy", string(strategy.name)).
			Int("records", len(records)).
			Int("dropped", dropped).
			Msg("Normalized model response")

		return Result{
			Records:  records,
			Strategy: strategy.name,
			Dropped:  dropped,
		}
	}

	log.Warn().
		Str("source", source).
		Int("response_length", len(raw)).
		Msg("Model response contained no parseable JSON")

	return Result{
		Records:  []qa.Record{},
		Strategy: StrategyNone,
		Failure:  "no parseable JSON object in response",
	}
}

func (n *Normalizer) convert(env envelope, source string) ([]qa.Record, int) {
	raws := env.QAPairs
	if raws == nil {
		raws = env.QuestionsAnswers
	}

	records := make([]qa.Record, 0, len(raws))
	dropped := 0

	for _, r := range raws {
		question := strings.TrimSpace(r.Question)
		answer := strings.TrimSpace(r.Answer)
		if question == "" || answer == "" {
			dropped++
			continue
		}

		category := r.Category
		if category == "" {
			category = n.defaults.Category
		}
		priority := r.Priority
		if priority < 1 || priority > 3 {
			priority = n.defaults.Priority
		}
		recordSource := r.Source
		if recordSource == "" {
			recordSource = source
		}

		records = append(records, qa.Record{
			ID:       uuid.NewString(),
			Question: question,
			Answer:   answer,
			Category: category,
			Priority: priority,
			Source:   recordSource,
			Entities: r.Entities,
		})
	}

	return records, dropped
}

// extractJSONFence pulls the content between the first ```json marker and
// the following closing fence.
func extractJSONFence(s string) (string, bool) {
	idx := strings.Index(s, "```json")
	if idx < 0 {
		return "", false
	}
	rest := s[idx+len("```json"):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// extractAnyFence pulls the content between the first and last fence.
func extractAnyFence(s string) (string, bool) {
	first := strings.Index(s, "```")
	last := strings.LastIndex(s, "```")
	if first < 0 || last <= first {
		return "", false
	}
	return s[first+3 : last], true
}

// extractBracePair pulls everything from the first { to the last }.
func extractBracePair(s string) (string, bool) {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first < 0 || last <= first {
		return "", false
	}
	return s[first : last+1], true
}
