package frontier

import (
	"strings"

	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Classifier assigns a category and crawl priority to link candidates
// using an immutable keyword taxonomy. First-match-by-table-order wins;
// do not replace this with best-match scoring, downstream datasets depend
// on the historical category assignments.
type Classifier struct {
	cfg *config.ClassifierConfig
}

// NewClassifier creates a classifier from a taxonomy. A nil config uses
// the default CTU admission taxonomy.
func NewClassifier(cfg *config.ClassifierConfig) *Classifier {
	if cfg == nil {
		cfg = config.DefaultClassifierConfig()
	}
	return &Classifier{cfg: cfg}
}

// Classify returns (category, priority) for a candidate. It is total:
// every input resolves to a non-empty category and a priority in 1..3.
func (c *Classifier) Classify(anchorText, url string) (string, int) {
	urlLower := strings.ToLower(url)
	search := strings.ToLower(anchorText) + " " + urlLower

	// Domain check precedes keyword matching.
	if !c.isHomeDomain(urlLower) {
		return "external", 3
	}

	for _, rule := range c.cfg.Categories {
		for _, keyword := range rule.Keywords {
			if strings.Contains(search, keyword) {
				return rule.Name, rule.Priority
			}
		}
	}

	for _, fb := range c.cfg.Fallbacks {
		if strings.Contains(urlLower, fb.Substring) {
			return fb.Category, fb.Priority
		}
	}

	return c.cfg.DefaultCategory, c.cfg.DefaultPriority
}

func (c *Classifier) isHomeDomain(urlLower string) bool {
	for _, domain := range c.cfg.HomeDomains {
		if strings.Contains(urlLower, domain) {
			return true
		}
	}
	return false
}

// DiscoverLinks extracts every link from page text and classifies each
// one, producing fully populated candidates ready for the frontier.
func (c *Classifier) DiscoverLinks(text string) []qa.LinkCandidate {
	candidates := ExtractLinks(text)
	for i := range candidates {
		category, priority := c.Classify(candidates[i].AnchorText, candidates[i].URL)
		candidates[i].Category = category
		candidates[i].Priority = priority
	}
	return candidates
}
