package dataset

import (
	"context"
	"sort"
	"sync"

	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Bucket holds the accumulated records for a single intent. Count mirrors
// len(Records) and is kept in the serialized form for human inspection of
// the bucket files.
type Bucket struct {
	Intent  string      `json:"intent"`
	Count   int         `json:"count"`
	Records []qa.Record `json:"qa_pairs"`
}

// Keys returns the set of normalized question keys already present in the
// bucket.
func (b *Bucket) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(b.Records))
	for i := range b.Records {
		keys[b.Records[i].Key()] = struct{}{}
	}
	return keys
}

// Repository persists intent buckets. Load returns an empty bucket (never
// nil) when no data exists for the intent yet, so callers can always
// merge-and-save without an existence check.
type Repository interface {
	Load(ctx context.Context, intentID string) (*Bucket, error)
	Save(ctx context.Context, bucket *Bucket) error
	List(ctx context.Context) ([]string, error)
}

// MemoryRepository is an in-process Repository used in tests and as the
// backing store for dry runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{buckets: make(map[string]*Bucket)}
}

func (r *MemoryRepository) Load(ctx context.Context, intentID string) (*Bucket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.buckets[intentID]
	if !ok {
		return &Bucket{Intent: intentID}, nil
	}
	out := &Bucket{Intent: stored.Intent, Count: stored.Count}
	out.Records = append(out.Records, stored.Records...)
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, bucket *Bucket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := &Bucket{Intent: bucket.Intent, Count: bucket.Count}
	stored.Records = append(stored.Records, bucket.Records...)
	r.buckets[bucket.Intent] = stored
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.buckets))
	for id := range r.buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
