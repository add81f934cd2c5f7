// Package main merges per-page extraction files into the intent-partitioned
// dataset and writes the combined chatbot dataset plus the training export.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/storage"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/logging"
	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// extractionFile matches the per-page result shape. Older extraction files
// are a list of such chunks instead of a single object; both are accepted.
type extractionFile struct {
	QAPairs []qa.Record `json:"qa_pairs"`
}

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	inputDir := flag.String("input", "", "directory of extraction JSON files (default: configured pages dir)")
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

	dir := *inputDir
	if dir == "" {
		dir = cfg.DataPaths.PagesDir
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

	files, err := listExtractionFiles(dir)
	if err != nil {
		log.Fatalf("Failed to list input files: %v", err)
	}
	fmt.Printf("Merging %d extraction files from %s\n", len(files), dir)

	ctx := context.Background()
	totalAdded, totalDupes, failed := 0, 0, 0
	for _, path := range files {
		records, err := loadRecords(path)
		if err != nil {
			// One bad file must not abort the rest of the run.
			logger := logging.GetLogger("merge")
			logger.Warn().Err(err).Str("file", path).Msg("Skipping unreadable file")
			failed++
			continue
		}
		result, err := merger.MergeBatch(ctx, records)
		if err != nil {
			log.Fatalf("Failed to merge %s: %v", path, err)
		}
		totalAdded += result.Added
		totalDupes += result.Duplicates
		fmt.Printf("  %-60s %3d added, %3d duplicates\n", filepath.Base(path), result.Added, result.Duplicates)
	}

	combined, err := merger.BuildCombined(ctx)
	if err != nil {
		log.Fatalf("Failed to build combined dataset: %v", err)
	}
	if err := writeJSON(filepath.Join(cfg.DataPaths.DatasetDir, "ctu_chatbot_dataset.json"), combined); err != nil {
		log.Fatalf("Failed to write combined dataset: %v", err)
	}
	if err := writeJSON(filepath.Join(cfg.DataPaths.DatasetDir, "ctu_training_data.json"), combined.TrainingExamples()); err != nil {
		log.Fatalf("Failed to write training export: %v", err)
	}

	fmt.Printf("Done: %d added, %d duplicates, %d files skipped\n", totalAdded, totalDupes, failed)
	fmt.Printf("Combined dataset: %d records across %d intents\n",
		combined.Metadata.TotalRecords, len(combined.Metadata.Intents))
}

func listExtractionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// loadRecords reads one extraction file, accepting either a single
// {qa_pairs: [...]} object or a list of such chunks.
func loadRecords(path string) ([]qa.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var single extractionFile
	if err := json.Unmarshal(data, &single); err == nil {
		return single.QAPairs, nil
	}

	var chunks []extractionFile
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("unrecognized extraction file shape: %w", err)
	}
	var records []qa.Record
	for _, chunk := range chunks {
		records = append(records, chunk.QAPairs...)
	}
	return records, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
