package qa

import (
	"fmt"
	"strings"
)

// DiscoveryType describes how a link candidate was found in page text.
type DiscoveryType string

const (
	DiscoveryMarkdownLink DiscoveryType = "markdown_link"
	DiscoveryBareURL      DiscoveryType = "bare_url"
)

// LinkCandidate is a discovered URL waiting in the crawl frontier.
// Candidates are value objects: once created they are never mutated, and
// re-discovery of the same URL does not overwrite the first-seen candidate.
type LinkCandidate struct {
	URL        string        `json:"url"`
	AnchorText string        `json:"text"`
	Discovery  DiscoveryType `json:"type"`
	Category   string        `json:"category"`
	Priority   int           `json:"priority"`
}

// Record is a single question/answer pair with routing metadata.
type Record struct {
	ID       string            `json:"id,omitempty"`
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Category string            `json:"category"`
	Priority int               `json:"priority"`
	Source   string            `json:"source"`
	Entities map[string]string `json:"entities,omitempty"`
}

// Validate checks if the record has the required fields.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("record question cannot be empty")
	}
	if strings.TrimSpace(r.Answer) == "" {
		return fmt.Errorf("record answer cannot be empty")
	}
	if r.Priority < 1 || r.Priority > 3 {
		return fmt.Errorf("record priority must be in 1..3, got %d", r.Priority)
	}
	return nil
}

// NormalizeQuestion returns the deduplication key for a record: question
// text lower-cased with runs of whitespace collapsed to a single space.
func NormalizeQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// Key returns the record's deduplication key.
func (r *Record) Key() string {
	return NormalizeQuestion(r.Question)
}
