// Package processing cleans extracted page text before it is handed to the
// language model. Cleaning is rule based so individual rules can be toggled.
package processing

import (
	"fmt"

	"github.com/ctu-chatbot/harvester/pkg/logging"
)

// Rule is a single text cleaning step.
type Rule interface {
	Name() string
	Apply(text string) (string, error)
}

// CleanResult reports what cleaning did to a piece of text.
type CleanResult struct {
	OriginalLength int      `json:"original_length"`
	CleanedLength  int      `json:"cleaned_length"`
	BytesRemoved   int      `json:"bytes_removed"`
	RulesApplied   []string `json:"rules_applied"`
}

// Cleaner applies an ordered list of rules to extracted text.
type Cleaner struct {
	rules   []Rule
	enabled map[string]bool
}

// NewCleaner returns a cleaner with the default rule set. Link markup is
// left intact so downstream link discovery keeps working.
func NewCleaner() *Cleaner {
	c := &Cleaner{enabled: make(map[string]bool)}
	c.AddRule(&ControlCharRule{})
	c.AddRule(&BoilerplateRule{})
	c.AddRule(&DuplicateLineRule{})
	c.AddRule(&WhitespaceRule{})
	return c
}

func (c *Cleaner) AddRule(rule Rule) {
	c.rules = append(c.rules, rule)
	c.enabled[rule.Name()] = true
}

func (c *Cleaner) DisableRule(name string) {
	c.enabled[name] = false
}

// Clean runs all enabled rules in order and returns the cleaned text.
func (c *Cleaner) Clean(text string) (string, *CleanResult, error) {
	result := &CleanResult{OriginalLength: len(text)}

	cleaned := text
	for _, rule := range c.rules {
		if !c.enabled[rule.Name()] {
			continue
		}
		out, err := rule.Apply(cleaned)
		if err != nil {
			return "", nil, fmt.Errorf("cleaning rule %s failed: %w", rule.Name(), err)
		}
		cleaned = out
		result.RulesApplied = append(result.RulesApplied, rule.Name())
	}

	result.CleanedLength = len(cleaned)
	result.BytesRemoved = result.OriginalLength - result.CleanedLength

	logger := logging.GetLogger("cleaner")
	logger.Debug().
		Int("original", result.OriginalLength).
		Int("cleaned", result.CleanedLength).
		Msg("Text cleaned")
	return cleaned, result, nil
}
