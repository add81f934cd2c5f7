package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctu-chatbot/harvester/internal/dataset"
)

// FileRepository stores one JSON file per intent bucket in a flat
// directory. Writes go through a temp file and rename so a bucket on disk
// is always either the old version or the new one, never a partial write.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory %s: %w", dir, err)
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Load(ctx context.Context, intentID string) (*dataset.Bucket, error) {
	path, err := r.bucketPath(intentID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &dataset.Bucket{Intent: intentID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bucket file: %w", err)
	}

	var bucket dataset.Bucket
	if err := json.Unmarshal(data, &bucket); err != nil {
		return nil, fmt.Errorf("failed to parse bucket file %s: %w", path, err)
	}
	if bucket.Intent == "" {
		bucket.Intent = intentID
	}
	return &bucket, nil
}

func (r *FileRepository) Save(ctx context.Context, bucket *dataset.Bucket) error {
	path, err := r.bucketPath(bucket.Intent)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bucket: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write bucket file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace bucket file: %w", err)
	}
	return nil
}

func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *FileRepository) bucketPath(intentID string) (string, error) {
	if intentID == "" || intentID != filepath.Base(intentID) {
		return "", fmt.Errorf("invalid intent id: %q", intentID)
	}
	return filepath.Join(r.dir, intentID+".json"), nil
}
