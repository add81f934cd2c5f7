// Package main provides the entry point for the harvester API server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/ctu-chatbot/harvester/internal/api"
	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/internal/storage"
	"github.com/ctu-chatbot/harvester/pkg/config"
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

	repo, err := newRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to open dataset storage: %v", err)
	}
	merger := dataset.NewMerger(repo, normalize.NewIntentClassifier(nil), *cfg.Dataset)

	// The API degrades to dataset-only endpoints when Temporal is down.
	var temporalClient client.Client
	if c, err := client.Dial(client.Options{
		HostPort: getEnv("TEMPORAL_HOST", "localhost:7233"),
	}); err != nil {
		logger := logging.GetLogger("server")
		logger.Warn().Err(err).Msg("Temporal unavailable, harvest endpoint disabled")
	} else {
		temporalClient = c
		defer temporalClient.Close()
	}

	app := fiber.New(fiber.Config{
		AppName:      "CTU Harvester API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	api.NewHandlers(temporalClient, merger, repo).RegisterRoutes(app)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger := logging.GetLogger("server")
		logger.Info().Msg("Shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("Shutdown error")
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger := logging.GetLogger("server")
	logger.Info().Str("addr", addr).Msg("Starting API server")
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newRepository(cfg *config.PipelineConfig) (dataset.Repository, error) {
	if cfg.DataPaths.GitRepo != "" {
		return storage.NewGitRepository(cfg.DataPaths.GitRepo)
	}
	return storage.NewFileRepository(cfg.DataPaths.IntentsDir)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
