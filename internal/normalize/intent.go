package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// longKeywordRunes is the length above which a keyword counts double;
// longer keywords are more specific, so their occurrences weigh more.
const longKeywordRunes = 5

// distinctMatchBonus kicks in when an intent has this many distinct
// keywords present in the text.
const distinctMatchBonus = 3

// IntentClassifier routes text to one of a fixed set of admission
// intents by weighted keyword scoring. It is a pure function of its
// input: the intent table is a slice, so iteration order and therefore
// tie-breaking is deterministic.
type IntentClassifier struct {
	cfg *config.IntentConfig
}

// NewIntentClassifier creates a classifier. A nil config uses the
// default CTU admission intent set.
func NewIntentClassifier(cfg *config.IntentConfig) *IntentClassifier {
	if cfg == nil {
		cfg = config.DefaultIntentConfig()
	}
	return &IntentClassifier{cfg: cfg}
}

// Classify returns the intent id with the highest keyword score, or the
// default intent when nothing scores above zero. Ties go to the intent
// declared first in the table.
func (ic *IntentClassifier) Classify(text string) string {
	lower := strings.ToLower(text)

	best := ic.cfg.DefaultIntent
	bestScore := 0

	for _, intent := range ic.cfg.Intents {
		score := 0
		matches := 0
		for _, keyword := range intent.Keywords {
			kw := strings.ToLower(keyword)
			count := strings.Count(lower, kw)
			if count == 0 {
				continue
			}
			matches++
			weight := 1
			if utf8.RuneCountInString(kw) > longKeywordRunes {
				weight = 2
			}
			score += count * weight
		}
		if matches >= distinctMatchBonus {
			score += matches * 5
		}
		if score > bestScore {
			bestScore = score
			best = intent.ID
		}
	}

	return best
}

// ClassifyRecord classifies a QA record by the combined text of its
// question and answer.
func (ic *IntentClassifier) ClassifyRecord(r qa.Record) string {
	return ic.Classify(r.Question + " " + r.Answer)
}

// DefaultIntent returns the catch-all intent id.
func (ic *IntentClassifier) DefaultIntent() string {
	return ic.cfg.DefaultIntent
}

// Intents returns the intent ids in declaration order.
func (ic *IntentClassifier) Intents() []string {
	ids := make([]string, 0, len(ic.cfg.Intents))
	for _, intent := range ic.cfg.Intents {
		ids = append(ids, intent.ID)
	}
	return ids
}
