package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/logging"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// MergeResult reports what a single batch merge did.
type MergeResult struct {
	Added      int            `json:"added"`
	Duplicates int            `json:"duplicates"`
	Buckets    map[string]int `json:"buckets"`
}

// Merger routes QA records into per-intent buckets and keeps each bucket
// deduplicated by normalized question text. The mutex serializes
// read-merge-write cycles so concurrent callers cannot lose updates.
type Merger struct {
	mu      sync.Mutex
	repo    Repository
	intents *normalize.IntentClassifier
	cfg     config.DatasetConfig
}

func NewMerger(repo Repository, intents *normalize.IntentClassifier, cfg config.DatasetConfig) *Merger {
	if intents == nil {
		intents = normalize.NewIntentClassifier(nil)
	}
	return &Merger{repo: repo, intents: intents, cfg: cfg}
}

// MergeBatch classifies each record into an intent, then merges the batch
// into the stored buckets. Records whose normalized question already exists
// in the target bucket are discarded, so merging the same batch twice is a
// no-op on the second pass.
func (m *Merger) MergeBatch(ctx context.Context, records []qa.Record) (*MergeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := logging.GetDatasetLogger("merge", "")

	// Group by intent, preserving first-seen intent order so bucket writes
	// happen in a deterministic sequence.
	grouped := make(map[string][]qa.Record)
	var order []string
	for _, record := range records {
		if err := record.Validate(); err != nil {
			log.Warn().Err(err).Str("source", record.Source).Msg("Skipping invalid record")
			continue
		}
		intent := m.intents.ClassifyRecord(record)
		if _, ok := grouped[intent]; !ok {
			order = append(order, intent)
		}
		grouped[intent] = append(grouped[intent], record)
	}

	result := &MergeResult{Buckets: make(map[string]int)}
	for _, intent := range order {
		added, dupes, err := m.mergeIntent(ctx, intent, grouped[intent])
		if err != nil {
			return nil, fmt.Errorf("merging intent %s: %w", intent, err)
		}
		result.Added += added
		result.Duplicates += dupes
		if added > 0 {
			result.Buckets[intent] = added
		}
	}

	log.Info().
		Int("added", result.Added).
		Int("duplicates", result.Duplicates).
		Int("intents", len(result.Buckets)).
		Msg("Batch merged")
	return result, nil
}

func (m *Merger) mergeIntent(ctx context.Context, intent string, records []qa.Record) (int, int, error) {
	bucket, err := m.repo.Load(ctx, intent)
	if err != nil {
		return 0, 0, fmt.Errorf("loading bucket: %w", err)
	}

	seen := bucket.Keys()
	added, dupes := 0, 0
	for _, record := range records {
		key := record.Key()
		if _, ok := seen[key]; ok {
			dupes++
			continue
		}
		if m.cfg.EnableFuzzyDedup && m.nearDuplicate(bucket, key) {
			dupes++
			continue
		}
		bucket.Records = append(bucket.Records, record)
		seen[key] = struct{}{}
		added++
	}

	if added == 0 {
		return 0, dupes, nil
	}
	bucket.Count = len(bucket.Records)
	if err := m.repo.Save(ctx, bucket); err != nil {
		return 0, 0, fmt.Errorf("saving bucket: %w", err)
	}
	return added, dupes, nil
}

// nearDuplicate applies the optional fuzzy filter: a record is discarded
// when its normalized question is similar enough to one already stored.
func (m *Merger) nearDuplicate(bucket *Bucket, key string) bool {
	threshold := m.cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.85
	}
	for i := range bucket.Records {
		if Similarity(key, bucket.Records[i].Key()) >= threshold {
			return true
		}
	}
	return false
}
