package api

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/temporal/workflows"
	"github.com/ctu-chatbot/harvester/pkg/logging"
)

// Handlers contains the HTTP handlers for the harvester API.
type Handlers struct {
	temporal client.Client
	merger   *dataset.Merger
	repo     dataset.Repository
}

func NewHandlers(temporal client.Client, merger *dataset.Merger, repo dataset.Repository) *Handlers {
	return &Handlers{temporal: temporal, merger: merger, repo: repo}
}

// RegisterRoutes attaches all API routes to the app.
func (h *Handlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1")
	v1.Post("/harvest", h.HarvestPage)
	v1.Get("/dataset/stats", h.DatasetStats)
	v1.Get("/intents", h.ListIntents)
	v1.Get("/intents/:id", h.GetIntent)
}

func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   "ctu-harvester",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC(),
	})
}

// HarvestPageRequest asks for a single page to be harvested.
type HarvestPageRequest struct {
	URL string `json:"url"`
}

// HarvestPageResponse identifies the started workflow.
type HarvestPageResponse struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// HarvestPage starts a PageHarvestWorkflow for the given URL.
func (h *Handlers) HarvestPage(c *fiber.Ctx) error {
	var req HarvestPageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if err := validatePageURL(req.URL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}
	if h.temporal == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Workflow engine not configured",
		})
	}

	workflowID := fmt.Sprintf("harvest-%s", uuid.NewString())
	we, err := h.temporal.ExecuteWorkflow(c.Context(), client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: workflows.HarvestTaskQueue,
	}, workflows.PageHarvestWorkflow, workflows.PageHarvestInput{URL: req.URL})
	logger := logging.GetLogger("api")
	if err != nil {
		logger.Error().Err(err).Str("url", req.URL).Msg("Failed to start harvest workflow")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to start page harvest",
			"details": err.Error(),
		})
	}

	logger.Info().
		Str("workflow_id", workflowID).
		Str("url", req.URL).
		Msg("Harvest workflow started")
	return c.Status(fiber.StatusAccepted).JSON(HarvestPageResponse{
		WorkflowID: we.GetID(),
		RunID:      we.GetRunID(),
	})
}

// DatasetStats returns the combined dataset aggregates.
func (h *Handlers) DatasetStats(c *fiber.Ctx) error {
	combined, err := h.merger.BuildCombined(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to build dataset stats",
			"details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"total_records": combined.Metadata.TotalRecords,
		"intents":       combined.Metadata.Intents,
		"categories":    combined.Categories,
		"priorities":    combined.Priorities,
	})
}

// ListIntents returns the stored intent buckets and their record counts.
func (h *Handlers) ListIntents(c *fiber.Ctx) error {
	ids, err := h.repo.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to list intents",
			"details": err.Error(),
		})
	}

	intents := make([]fiber.Map, 0, len(ids))
	for _, id := range ids {
		bucket, err := h.repo.Load(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to load intent",
				"details": err.Error(),
			})
		}
		intents = append(intents, fiber.Map{
			"intent": id,
			"count":  len(bucket.Records),
		})
	}
	return c.JSON(fiber.Map{"intents": intents})
}

// GetIntent returns one intent bucket with its records.
func (h *Handlers) GetIntent(c *fiber.Ctx) error {
	bucket, err := h.repo.Load(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Failed to load intent",
			"details": err.Error(),
		})
	}
	if len(bucket.Records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Intent has no records",
		})
	}
	return c.JSON(bucket)
}

func validatePageURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("url host is required")
	}
	return nil
}
