package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/pkg/logging"
)

// GitRepository versions the bucket files in a local git repository. Every
// save produces a commit, so dataset history survives re-runs and bad
// merges can be inspected or reverted.
type GitRepository struct {
	files    *FileRepository
	repo     *git.Repository
	repoPath string
}

// NewGitRepository opens the repository at repoPath, initializing it when
// it does not exist yet. Bucket files live at the repository root.
func NewGitRepository(repoPath string) (*GitRepository, error) {
	files, err := NewFileRepository(repoPath)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(repoPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(repoPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &GitRepository{files: files, repo: repo, repoPath: repoPath}, nil
}

func (r *GitRepository) Load(ctx context.Context, intentID string) (*dataset.Bucket, error) {
	return r.files.Load(ctx, intentID)
}

func (r *GitRepository) List(ctx context.Context) ([]string, error) {
	return r.files.List(ctx)
}

func (r *GitRepository) Save(ctx context.Context, bucket *dataset.Bucket) error {
	if err := r.files.Save(ctx, bucket); err != nil {
		return err
	}

	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := w.Add(bucket.Intent + ".json"); err != nil {
		return fmt.Errorf("failed to stage bucket file: %w", err)
	}

	commit, err := w.Commit(fmt.Sprintf("Update %s (%d records)", bucket.Intent, bucket.Count), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "CTU Harvester",
			Email: "harvester@ctu-chatbot.local",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit bucket: %w", err)
	}

	logger := logging.GetDatasetLogger("commit", bucket.Intent)
	logger.Debug().
		Str("commit", commit.String()).
		Int("count", bucket.Count).
		Msg("Bucket committed")
	return nil
}

// Health reports whether the underlying repository is usable.
func (r *GitRepository) Health(ctx context.Context) error {
	_, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Freshly initialized repository with no commits yet.
		return nil
	}
	return err
}
