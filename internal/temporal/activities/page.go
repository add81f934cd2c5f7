package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/frontier"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/processing"
	"github.com/ctu-chatbot/harvester/internal/temporal/workflows"
	"github.com/ctu-chatbot/harvester/pkg/fetch"
	"github.com/ctu-chatbot/harvester/pkg/llm"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Fetcher is the page download dependency. Satisfied by fetch.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// TextExtractor is the content extraction dependency. Satisfied by
// extractor.Engine.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, contentType string) (string, map[string]string, error)
}

// Deps holds the shared dependencies the activities run against. The
// worker wires them once at startup.
type Deps struct {
	Fetcher        Fetcher
	Extractor      TextExtractor
	Completer      llm.Completer
	Merger         *dataset.Merger
	MaxPromptChars int
}

var globalDeps *Deps

// SetGlobalDeps installs the activity dependencies for this process.
func SetGlobalDeps(deps *Deps) {
	globalDeps = deps
}

func deps() (*Deps, error) {
	if globalDeps == nil {
		return nil, fmt.Errorf("activity dependencies not configured, call SetGlobalDeps first")
	}
	return globalDeps, nil
}

func FetchPageActivity(ctx context.Context, url string) (workflows.FetchResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Fetching page", "url", url)

	d, err := deps()
	if err != nil {
		return workflows.FetchResult{}, err
	}

	result, err := d.Fetcher.Fetch(ctx, url)
	if err != nil {
		return workflows.FetchResult{}, err
	}

	logger.Info("Page fetched", "url", url, "size", len(result.Body), "contentType", result.ContentType)
	return workflows.FetchResult{
		URL:         url,
		Content:     result.Body,
		ContentType: result.ContentType,
	}, nil
}

func ExtractTextActivity(ctx context.Context, input workflows.ExtractInput) (workflows.ExtractResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Extracting text", "contentType", input.ContentType, "contentSize", len(input.Content))

	d, err := deps()
	if err != nil {
		return workflows.ExtractResult{}, err
	}

	extracted, metadata, err := d.Extractor.Extract(ctx, input.Content, input.ContentType)
	if err != nil {
		return workflows.ExtractResult{}, err
	}

	text, _, err := processing.NewCleaner().Clean(extracted)
	if err != nil {
		return workflows.ExtractResult{}, err
	}

	logger.Info("Text extracted", "textLength", len(text))
	return workflows.ExtractResult{Text: text, Metadata: metadata}, nil
}

func GenerateQAActivity(ctx context.Context, input workflows.GenerateInput) (workflows.GenerateResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Generating QA pairs", "source", input.Source, "textLength", len(input.Text))

	d, err := deps()
	if err != nil {
		return workflows.GenerateResult{}, err
	}

	prompt := llm.BuildExtractionPrompt(input.Text, input.Source, d.MaxPromptChars)
	raw, err := d.Completer.Complete(ctx, prompt)
	if err != nil {
		return workflows.GenerateResult{}, fmt.Errorf("completion failed: %w", err)
	}

	normalized := normalize.NewNormalizer().Normalize(raw, input.Source)
	links := frontier.NewClassifier(nil).DiscoverLinks(input.Text)

	logger.Info("QA pairs generated",
		"records", len(normalized.Records),
		"dropped", normalized.Dropped,
		"links", len(links))
	return workflows.GenerateResult{Records: normalized.Records, Links: links}, nil
}

func MergeRecordsActivity(ctx context.Context, records []qa.Record) (workflows.MergeOutcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Merging records", "count", len(records))

	d, err := deps()
	if err != nil {
		return workflows.MergeOutcome{}, err
	}

	result, err := d.Merger.MergeBatch(ctx, records)
	if err != nil {
		return workflows.MergeOutcome{}, err
	}

	logger.Info("Records merged", "added", result.Added, "duplicates", result.Duplicates)
	return workflows.MergeOutcome{Added: result.Added, Duplicates: result.Duplicates}, nil
}
