package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Metadata describes how and when a combined dataset was produced.
type Metadata struct {
	Description  string         `json:"description"`
	CreatedAt    string         `json:"created_at"`
	TotalRecords int            `json:"total_records"`
	Intents      map[string]int `json:"intents"`
}

// Combined is the terminal dataset artifact: all intents' records merged
// into one globally deduplicated collection with aggregate counts.
type Combined struct {
	Metadata   Metadata       `json:"metadata"`
	Records    []qa.Record    `json:"qa_pairs"`
	Categories map[string]int `json:"categories"`
	Priorities map[int]int    `json:"priorities"`
}

// TrainingExample is the flattened record shape exported for model training.
type TrainingExample struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// BuildCombined reads every stored bucket and produces the combined
// dataset. Buckets are visited in the classifier's intent declaration order
// so the output is stable across runs; global dedup is first-seen-wins by
// normalized question.
func (m *Merger) BuildCombined(ctx context.Context) (*Combined, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}
	storedSet := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		storedSet[id] = struct{}{}
	}

	// Declared intents first, then any bucket the repository holds under an
	// identifier outside the current taxonomy.
	var order []string
	for _, id := range m.intents.Intents() {
		if _, ok := storedSet[id]; ok {
			order = append(order, id)
			delete(storedSet, id)
		}
	}
	for _, id := range stored {
		if _, ok := storedSet[id]; ok {
			order = append(order, id)
		}
	}

	combined := &Combined{
		Categories: make(map[string]int),
		Priorities: make(map[int]int),
		Metadata: Metadata{
			Description: "CTU admission QA dataset, merged across all intents",
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
			Intents:     make(map[string]int),
		},
	}

	seen := make(map[string]struct{})
	for _, id := range order {
		bucket, err := m.repo.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading bucket %s: %w", id, err)
		}
		for _, record := range bucket.Records {
			key := record.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			combined.Records = append(combined.Records, record)
			combined.Categories[record.Category]++
			combined.Priorities[record.Priority]++
			combined.Metadata.Intents[id]++
		}
	}
	combined.Metadata.TotalRecords = len(combined.Records)
	return combined, nil
}

// TrainingExamples flattens the combined dataset into the export shape.
func (c *Combined) TrainingExamples() []TrainingExample {
	out := make([]TrainingExample, 0, len(c.Records))
	for _, record := range c.Records {
		out = append(out, TrainingExample{
			Question: record.Question,
			Answer:   record.Answer,
			Category: record.Category,
			Priority: record.Priority,
		})
	}
	return out
}
