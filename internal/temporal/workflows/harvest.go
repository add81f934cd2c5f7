package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Activity names, registered by the worker under these identifiers.
const (
	FetchPageActivityName    = "FetchPageActivity"
	ExtractTextActivityName  = "ExtractTextActivity"
	GenerateQAActivityName   = "GenerateQAActivity"
	MergeRecordsActivityName = "MergeRecordsActivity"
)

// HarvestTaskQueue is the task queue shared by the worker and clients.
const HarvestTaskQueue = "ctu-harvester"

// PageHarvestInput identifies one page to process.
type PageHarvestInput struct {
	URL string `json:"url"`
}

// PageHarvestResult summarizes what the workflow produced for the page.
type PageHarvestResult struct {
	URL        string `json:"url"`
	Records    int    `json:"records"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
	Links      int    `json:"links"`
}

// FetchResult carries a fetched page between activities.
type FetchResult struct {
	URL         string `json:"url"`
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
}

// ExtractInput asks for plain text from fetched bytes.
type ExtractInput struct {
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
}

// ExtractResult is the extracted page text.
type ExtractResult struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// GenerateInput asks the LLM activity for QA pairs from page text.
type GenerateInput struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// GenerateResult holds the normalized records plus link candidates found
// in the page text.
type GenerateResult struct {
	Records []qa.Record        `json:"records"`
	Links   []qa.LinkCandidate `json:"links"`
}

// MergeOutcome reports how the records landed in the dataset.
type MergeOutcome struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// PageHarvestWorkflow runs fetch, text extraction, QA generation, and
// dataset merge for a single page. Transient failures retry per activity;
// unparseable documents do not.
func PageHarvestWorkflow(ctx workflow.Context, input PageHarvestInput) (PageHarvestResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting page harvest", "url", input.URL)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			InitialInterval:        1 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			NonRetryableErrorTypes: []string{"ProcessingError", "*extractor.ProcessingError"},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := PageHarvestResult{URL: input.URL}

	var fetched FetchResult
	if err := workflow.ExecuteActivity(ctx, FetchPageActivityName, input.URL).Get(ctx, &fetched); err != nil {
		return result, err
	}

	var extracted ExtractResult
	extractInput := ExtractInput{Content: fetched.Content, ContentType: fetched.ContentType}
	if err := workflow.ExecuteActivity(ctx, ExtractTextActivityName, extractInput).Get(ctx, &extracted); err != nil {
		return result, err
	}

	var generated GenerateResult
	generateInput := GenerateInput{Text: extracted.Text, Source: input.URL}
	if err := workflow.ExecuteActivity(ctx, GenerateQAActivityName, generateInput).Get(ctx, &generated); err != nil {
		return result, err
	}
	result.Records = len(generated.Records)
	result.Links = len(generated.Links)

	var merged MergeOutcome
	if err := workflow.ExecuteActivity(ctx, MergeRecordsActivityName, generated.Records).Get(ctx, &merged); err != nil {
		return result, err
	}
	result.Added = merged.Added
	result.Duplicates = merged.Duplicates

	logger.Info("Page harvest completed", "url", input.URL, "added", merged.Added, "duplicates", merged.Duplicates)
	return result, nil
}
