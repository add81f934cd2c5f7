package harvest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/frontier"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/processing"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/fetch"
	"github.com/ctu-chatbot/harvester/pkg/llm"
	"github.com/ctu-chatbot/harvester/pkg/logging"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Fetcher downloads a page. Satisfied by fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// TextExtractor turns fetched bytes into plain text. Satisfied by
// extractor.Engine.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, contentType string) (string, map[string]string, error)
}

// PageResult is the self-contained extraction output for one page. It is
// written to disk before merging, so a cancelled run leaves only complete
// page files behind.
type PageResult struct {
	URL       string             `json:"url"`
	FetchedAt time.Time          `json:"fetched_at"`
	QAPairs   []qa.Record        `json:"qa_pairs"`
	URLs      []qa.LinkCandidate `json:"urls"`
}

// RunSummary reports what a harvest run did. Failed pages contribute zero
// records but never abort the run.
type RunSummary struct {
	RunID             string        `json:"run_id"`
	SeedURL           string        `json:"seed_url"`
	Levels            int           `json:"levels"`
	PagesVisited      int           `json:"pages_visited"`
	Successful        int           `json:"successful"`
	Failed            int           `json:"failed"`
	RecordsAdded      int           `json:"records_added"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
}

// Service runs the recursive harvest: fetch a level of pages, extract QA
// pairs through the LLM, merge them, and build the next level from the
// links the pages exposed.
type Service struct {
	cfg        *config.HarvestConfig
	fetcher    Fetcher
	extractor  TextExtractor
	completer  llm.Completer
	cleaner    *processing.Cleaner
	normalizer *normalize.Normalizer
	classifier *frontier.Classifier
	merger     *dataset.Merger
	pagesDir   string
}

func NewService(
	cfg *config.HarvestConfig,
	fetcher Fetcher,
	extractor TextExtractor,
	completer llm.Completer,
	merger *dataset.Merger,
	pagesDir string,
) *Service {
	if cfg == nil {
		cfg = config.DefaultPipelineConfig().Harvest
	}
	return &Service{
		cfg:        cfg,
		fetcher:    fetcher,
		extractor:  extractor,
		completer:  completer,
		cleaner:    processing.NewCleaner(),
		normalizer: normalize.NewNormalizer(),
		classifier: frontier.NewClassifier(nil),
		merger:     merger,
		pagesDir:   pagesDir,
	}
}

// Run crawls from the configured seed URL, level by level, until MaxDepth
// levels are done or the frontier is empty. Cancellation stops before the
// next page; everything already merged stays valid.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		SeedURL:   s.cfg.SeedURL,
		StartedAt: time.Now().UTC(),
	}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	visited := map[string]bool{}
	current := []string{s.cfg.SeedURL}

	for depth := 0; depth < s.cfg.MaxDepth && len(current) > 0; depth++ {
		log := logging.GetHarvestLogger(summary.RunID, depth)
		log.Info().Int("pages", len(current)).Msg("Harvesting level")
		summary.Levels = depth + 1

		next := frontier.NewFrontier()
		for _, pageURL := range current {
			if err := ctx.Err(); err != nil {
				log.Warn().Msg("Harvest cancelled")
				return summary, err
			}
			visited[pageURL] = true
			summary.PagesVisited++

			result, err := s.harvestPage(ctx, pageURL)
			if err != nil {
				summary.Failed++
				log.Warn().Err(err).Str("url", pageURL).Msg("Page failed")
				continue
			}
			summary.Successful++

			merged, err := s.merger.MergeBatch(ctx, result.QAPairs)
			if err != nil {
				return summary, fmt.Errorf("merging page %s: %w", pageURL, err)
			}
			summary.RecordsAdded += merged.Added
			summary.DuplicatesSkipped += merged.Duplicates

			next.Add(result.URLs...)
		}

		current = s.nextLevel(next, visited)
	}

	logger := logging.GetHarvestLogger(summary.RunID, summary.Levels)
	logger.Info().
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("records", summary.RecordsAdded).
		Msg("Harvest run finished")
	return summary, nil
}

// HarvestPage fetches and extracts a single page without merging, for
// callers that handle merge separately.
func (s *Service) HarvestPage(ctx context.Context, pageURL string) (*PageResult, error) {
	return s.harvestPage(ctx, pageURL)
}

func (s *Service) harvestPage(ctx context.Context, pageURL string) (*PageResult, error) {
	fetched, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	extracted, _, err := s.extractor.Extract(ctx, fetched.Body, fetched.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	text, _, err := s.cleaner.Clean(extracted)
	if err != nil {
		return nil, fmt.Errorf("cleaning text: %w", err)
	}
	if len(text) < s.cfg.MinContentSize {
		return nil, fmt.Errorf("content too small (%d bytes)", len(text))
	}

	prompt := llm.BuildExtractionPrompt(text, pageURL, s.cfg.MaxPromptChars)
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("extracting QA pairs: %w", err)
	}

	normalized := s.normalizer.Normalize(raw, pageURL)
	links := s.classifier.DiscoverLinks(text)

	result := &PageResult{
		URL:       pageURL,
		FetchedAt: fetched.FetchedAt,
		QAPairs:   normalized.Records,
		URLs:      links,
	}
	if err := s.writePageResult(result); err != nil {
		// The records still merge; only the per-page artifact is lost.
		logger := logging.GetLogger("harvest")
		logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to write page result")
	}
	return result, nil
}

// nextLevel selects the URLs to crawl next: ranked frontier order, home
// domain only, skipping visited pages and binary document types, capped
// at MaxURLsPerLevel.
func (s *Service) nextLevel(f *frontier.Frontier, visited map[string]bool) []string {
	var next []string
	for _, candidate := range f.Ranked() {
		if len(next) >= s.cfg.MaxURLsPerLevel {
			break
		}
		if candidate.Category == "external" || visited[candidate.URL] {
			continue
		}
		if s.skippedExtension(candidate.URL) {
			continue
		}
		next = append(next, candidate.URL)
	}
	return next
}

func (s *Service) skippedExtension(url string) bool {
	lower := strings.ToLower(url)
	for _, ext := range s.cfg.SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *Service) writePageResult(result *PageResult) error {
	if s.pagesDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.pagesDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.pagesDir, pageFilename(result.URL))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// pageFilename derives a stable, filesystem-safe name from the page URL.
func pageFilename(pageURL string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, pageURL)
	slug = strings.Trim(slug, "_")
	if len(slug) > 80 {
		slug = slug[:80]
	}
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("%s_%x.json", slug, sum[:6])
}
