// Package main provides the recursive harvest CLI. It crawls the CTU
// admission site level by level, extracts Vietnamese QA pairs through an
// LLM, and merges them into the intent-partitioned dataset.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/harvest"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/storage"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/extractor"
	"github.com/ctu-chatbot/harvester/pkg/fetch"
	"github.com/ctu-chatbot/harvester/pkg/llm"
	"github.com/ctu-chatbot/harvester/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	seedURL := flag.String("seed", "", "override the configured seed URL")
	maxDepth := flag.Int("depth", 0, "override the configured crawl depth")
	flag.Parse()

	cfg, err := config.LoadPipelineConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seedURL != "" {
		cfg.Harvest.SeedURL = *seedURL
	}
	if *maxDepth > 0 {
		cfg.Harvest.MaxDepth = *maxDepth
	}
	if err := logging.SetupLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if err := cfg.DataPaths.EnsureDataDirs(); err != nil {
		log.Fatalf("Failed to create data directories: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	var repo dataset.Repository
	if cfg.DataPaths.GitRepo != "" {
		repo, err = storage.NewGitRepository(cfg.DataPaths.GitRepo)
	} else {
		repo, err = storage.NewFileRepository(cfg.DataPaths.IntentsDir)
	}
	if err != nil {
		log.Fatalf("Failed to open dataset storage: %v", err)
	}

	merger := dataset.NewMerger(repo, normalize.NewIntentClassifier(nil), *cfg.Dataset)
	completer := llm.NewRetryCompleter(
		llm.NewOpenAIProvider(cfg.LLM),
		cfg.LLM.RetryAttempts,
		cfg.LLM.RetryBaseDelay,
	)
	service := harvest.NewService(
		cfg.Harvest,
		fetch.NewFetcher(cfg.Fetch),
		extractor.NewEngine(),
		completer,
		merger,
		cfg.DataPaths.PagesDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := service.Run(ctx)
	if err != nil {
		logger := logging.GetLogger("harvester")
		logger.Warn().Err(err).Msg("Harvest ended early")
	}
	if summary != nil {
		printSummary(summary)
		if err := writeCombined(ctx, merger, cfg.DataPaths.DatasetDir); err != nil {
			log.Fatalf("Failed to write combined dataset: %v", err)
		}
	}
}

func printSummary(summary *harvest.RunSummary) {
	fmt.Printf("Run %s finished in %s\n", summary.RunID, summary.Duration.Round(1e9))
	fmt.Printf("  levels:     %d\n", summary.Levels)
	fmt.Printf("  pages:      %d (%d ok, %d failed)\n", summary.PagesVisited, summary.Successful, summary.Failed)
	fmt.Printf("  records:    %d added, %d duplicates skipped\n", summary.RecordsAdded, summary.DuplicatesSkipped)
}

// writeCombined builds the combined dataset plus the flattened training
// export next to it.
func writeCombined(ctx context.Context, merger *dataset.Merger, dir string) error {
	combined, err := merger.BuildCombined(ctx)
	if err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, "ctu_chatbot_dataset.json"), combined); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "ctu_training_data.json"), combined.TrainingExamples()); err != nil {
		return err
	}
	fmt.Printf("  dataset:    %d records in %s\n", combined.Metadata.TotalRecords, dir)
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
