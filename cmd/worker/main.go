// Package main provides the Temporal worker for page harvest workflows.
package main

import (
	"flag"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/storage"
	"github.com/ctu-chatbot/harvester/internal/temporal/activities"
	"github.com/ctu-chatbot/harvester/internal/temporal/workflows"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/extractor"
	"github.com/ctu-chatbot/harvester/pkg/fetch"
	"github.com/ctu-chatbot/harvester/pkg/llm"
	"github.com/ctu-chatbot/harvester/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := config.LoadPipelineConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.SetupLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	if err := cfg.DataPaths.EnsureDataDirs(); err != nil {
		log.Fatalf("Failed to create data directories: %v", err)
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

	completer := llm.NewRetryCompleter(
		llm.NewOpenAIProvider(cfg.LLM),
		cfg.LLM.RetryAttempts,
		cfg.LLM.RetryBaseDelay,
	)
	activities.SetGlobalDeps(&activities.Deps{
		Fetcher:        fetch.NewFetcher(cfg.Fetch),
		Extractor:      extractor.NewEngine(),
		Completer:      completer,
		Merger:         dataset.NewMerger(repo, normalize.NewIntentClassifier(nil), *cfg.Dataset),
		MaxPromptChars: cfg.Harvest.MaxPromptChars,
	})

	temporalClient, err := client.Dial(client.Options{
		HostPort: getEnv("TEMPORAL_HOST", "localhost:7233"),
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, workflows.HarvestTaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.LLM.MaxConcurrent,
	})
	w.RegisterWorkflow(workflows.PageHarvestWorkflow)
	w.RegisterActivity(activities.FetchPageActivity)
	w.RegisterActivity(activities.ExtractTextActivity)
	w.RegisterActivity(activities.GenerateQAActivity)
	w.RegisterActivity(activities.MergeRecordsActivity)

	logger := logging.GetLogger("worker")
	logger.Info().Str("task_queue", workflows.HarvestTaskQueue).Msg("Worker starting")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("Worker stopped: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
