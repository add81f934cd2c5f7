package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ctu-chatbot/harvester/pkg/logging"
)

// PipelineConfig holds complete harvester configuration
type PipelineConfig struct {
	// Logging configuration
	Logging *logging.LogConfig `json:"logging"`

	// Harvest configuration
	Harvest *HarvestConfig `json:"harvest"`

	// Fetch configuration
	Fetch *FetchConfig `json:"fetch"`

	// LLM configuration
	LLM *LLMConfig `json:"llm"`

	// Dataset configuration
	Dataset *DatasetConfig `json:"dataset"`

	// Server configuration
	Server *ServerConfig `json:"server"`

	// Data paths
	DataPaths *DataPathsConfig `json:"data_paths"`
}

// HarvestConfig holds recursive harvest settings
type HarvestConfig struct {
	SeedURL         string        `json:"seed_url"`
	MaxDepth        int           `json:"max_depth"`
	MaxURLsPerLevel int           `json:"max_urls_per_level"`
	MinContentSize  int           `json:"min_content_size"`  // skip pages shorter than this
	MaxPromptChars  int           `json:"max_prompt_chars"`  // page text passed to the LLM is truncated to this
	SkipExtensions  []string      `json:"skip_extensions"`   // file types excluded from the frontier
	PageTimeout     time.Duration `json:"page_timeout"`
}

// FetchConfig holds page fetching settings
type FetchConfig struct {
	UserAgent        string        `json:"user_agent"`
	Timeout          time.Duration `json:"timeout"`
	MaxContentSize   int64         `json:"max_content_size"`
	PolitenessDelay  time.Duration `json:"politeness_delay"` // minimum delay between requests to the same host
	RespectRobotsTxt bool          `json:"respect_robots_txt"`
}

// LLMConfig holds LLM provider settings
type LLMConfig struct {
	Provider       string        `json:"provider"` // openai
	Model          string        `json:"model"`
	BaseURL        string        `json:"base_url"`
	APIKey         string        `json:"-"` // from environment, never serialized
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	Timeout        time.Duration `json:"timeout"`
	MaxConcurrent  int           `json:"max_concurrent"`
	RetryAttempts  int           `json:"retry_attempts"`
	RetryBaseDelay time.Duration `json:"retry_base_delay"`
}

// DatasetConfig holds dataset merge settings
type DatasetConfig struct {
	EnableFuzzyDedup bool    `json:"enable_fuzzy_dedup"` // secondary similarity filter, exact match is always on
	FuzzyThreshold   float64 `json:"fuzzy_threshold"`
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DataPathsConfig holds all data directory paths
type DataPathsConfig struct {
	// Root data directory
	DataRoot string `json:"data_root"`

	// Per-page extraction results
	PagesDir string `json:"pages_dir"`

	// Per-intent bucket files
	IntentsDir string `json:"intents_dir"`

	// Combined dataset and training export
	DatasetDir string `json:"dataset_dir"`

	// Versioned dataset git repository (empty disables git storage)
	GitRepo string `json:"git_repo"`

	// Log paths
	LogDir string `json:"log_dir"`
}

// DefaultPipelineConfig returns a complete default configuration
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Logging: logging.DefaultLogConfig(),
		Harvest: &HarvestConfig{
			SeedURL:         "https://tuyensinh.ctu.edu.vn/",
			MaxDepth:        5,
			MaxURLsPerLevel: 10,
			MinContentSize:  100,
			MaxPromptChars:  4000,
			SkipExtensions:  []string{".doc", ".docx", ".xls", ".xlsx", ".zip", ".rar"},
			PageTimeout:     2 * time.Minute,
		},
		Fetch: &FetchConfig{
			UserAgent:        "CTU-Harvester/1.0 (+https://github.com/ctu-chatbot/harvester)",
			Timeout:          30 * time.Second,
			MaxContentSize:   10 * 1024 * 1024, // 10MB
			PolitenessDelay:  2 * time.Second,
			RespectRobotsTxt: true,
		},
		LLM: &LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			BaseURL:        "https://api.openai.com/v1",
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			MaxTokens:      2000,
			Temperature:    0.0,
			Timeout:        60 * time.Second,
			MaxConcurrent:  3,
			RetryAttempts:  3,
			RetryBaseDelay: 1 * time.Second,
		},
		Dataset: &DatasetConfig{
			EnableFuzzyDedup: false,
			FuzzyThreshold:   0.85,
		},
		Server: &ServerConfig{
			Host:         "0.0.0.0",
			Port:         8100,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		DataPaths: &DataPathsConfig{
			DataRoot:   "./data",
			PagesDir:   "./data/pages",
			IntentsDir: "./data/by_intent",
			DatasetDir: "./data/dataset",
			GitRepo:    "",
			LogDir:     "./logs",
		},
	}
}

// LoadPipelineConfig reads configuration from a JSON file, applying defaults
// for any section the file omits.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// API key always comes from the environment
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	return cfg, nil
}

// EnsureDataDirs creates all configured data directories.
func (p *DataPathsConfig) EnsureDataDirs() error {
	for _, dir := range []string{p.DataRoot, p.PagesDir, p.IntentsDir, p.DatasetDir, p.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
