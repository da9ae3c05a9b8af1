package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsdigest/internal/config"
	"github.com/bilgisen/newsdigest/internal/logger"
	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/pipeline"
	"github.com/bilgisen/newsdigest/internal/sources"
	"github.com/bilgisen/newsdigest/internal/storage"
)

const (
	version    = "1.0.0"
	runTimeout = 30 * time.Minute
)

// Runner starts digest runs
type Runner interface {
	Run(ctx context.Context, cfg models.RunConfig) (*pipeline.Report, error)
	Start(cfg models.RunConfig, timeout time.Duration, done func(*pipeline.Report, error)) error
	Running() bool
	LastReport() *pipeline.Report
}

// DigestStore reads and deletes saved digests
type DigestStore interface {
	ListDigests(ctx context.Context, page, pageSize int) ([]*models.Digest, error)
	GetDigestByID(ctx context.Context, id string) (*models.Digest, error)
	DeleteDigest(ctx context.Context, id string) error
}

// SourceQuery filters GET /sources
type SourceQuery struct {
	Category string `query:"category" validate:"omitempty,max=32"`
	Language string `query:"language" validate:"omitempty,min=2,max=8"`
	Active   string `query:"active" validate:"omitempty,oneof=true false"`
}

// SourceUpdate is the body of PATCH /admin/sources/:id
type SourceUpdate struct {
	Active *bool `json:"active" validate:"required"`
}

// DigestSummary is the list view of a digest
type DigestSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	TotalItemCount int       `json:"total_item_count"`
	Categories     []string  `json:"categories"`
	CreatedAt      time.Time `json:"created_at"`
}

type Handlers struct {
	config   *config.Config
	runner   Runner
	registry *sources.Registry
	storage  DigestStore
}

func NewHandlers(cfg *config.Config, runner Runner, registry *sources.Registry, store DigestStore) *Handlers {
	return &Handlers{
		config:   cfg,
		runner:   runner,
		registry: registry,
		storage:  store,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"version":         version,
		"time":            time.Now().Format(time.RFC3339),
		"active_sources":  len(h.registry.ListActive()),
		"run_in_progress": h.runner.Running(),
	})
}

// ListSources handles GET /sources
func (h *Handlers) ListSources(c *fiber.Ctx) error {
	q, _ := middleware.Validated[SourceQuery](c)

	var list []models.Source
	switch {
	case q.Category != "":
		list = h.registry.ListByCategory(strings.ToLower(q.Category))
	case q.Language != "":
		list = h.registry.ListByLanguage(q.Language)
	default:
		list = h.registry.All()
	}

	filtered := make([]models.Source, 0, len(list))
	for _, s := range list {
		if q.Language != "" && !strings.EqualFold(s.Language, q.Language) {
			continue
		}
		if q.Active != "" && strconv.FormatBool(s.IsActive) != q.Active {
			continue
		}
		filtered = append(filtered, s)
	}

	return c.JSON(fiber.Map{
		"total": len(filtered),
		"items": filtered,
	})
}

// SetSourceActive handles PATCH /admin/sources/:id
func (h *Handlers) SetSourceActive(c *fiber.Ctx) error {
	id := c.Params("id")
	update, _ := middleware.Validated[SourceUpdate](c)
	if !h.registry.SetActive(id, *update.Active) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Source not found",
		})
	}
	logger.Get().Info().Str("source", id).Bool("active", *update.Active).Msg("Source updated")

	source, _ := h.registry.Get(id)
	return c.JSON(source)
}

// ListCategories handles GET /categories
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"total": len(models.Categories),
		"items": models.Categories,
	})
}

// ListDigests handles GET /digests
func (h *Handlers) ListDigests(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}

	digests, err := h.storage.ListDigests(c.UserContext(), page, pageSize)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error listing digests")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list digests",
		})
	}

	items := make([]DigestSummary, 0, len(digests))
	for _, d := range digests {
		items = append(items, summarize(d))
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     len(items),
		"items":     items,
	})
}

func summarize(d *models.Digest) DigestSummary {
	categories := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		categories = append(categories, s.Category.ID)
	}
	return DigestSummary{
		ID:             d.ID,
		Title:          d.Title,
		Date:           d.Date,
		TotalItemCount: d.TotalItemCount,
		Categories:     categories,
		CreatedAt:      d.CreatedAt,
	}
}

// GetDigest handles GET /digests/:id
func (h *Handlers) GetDigest(c *fiber.Ctx) error {
	id := c.Params("id")
	d, err := h.storage.GetDigestByID(c.UserContext(), id)
	if err != nil {
		return h.storageError(c, err, id)
	}
	return c.JSON(d)
}

// DeleteDigest handles DELETE /admin/digests/:id
func (h *Handlers) DeleteDigest(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.storage.DeleteDigest(c.UserContext(), id); err != nil {
		return h.storageError(c, err, id)
	}
	logger.Get().Info().Str("digest_id", id).Msg("Digest deleted")
	return c.JSON(fiber.Map{
		"status":  "deleted",
		"message": "Digest deleted successfully",
	})
}

func (h *Handlers) storageError(c *fiber.Ctx, err error, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Digest not found",
		})
	}
	logger.Get().Error().Err(err).Str("digest_id", id).Msg("Digest storage error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to access digest",
	})
}

// RunDigest handles POST /admin/digests/run. The run slot is claimed before the
// response, so a second request while a run is active gets 409. The run happens in
// the background unless ?wait=true is given, in which case the report is returned.
func (h *Handlers) RunDigest(c *fiber.Ctx) error {
	log := logger.Get()
	cfg, _ := middleware.Validated[models.RunConfig](c)
	if cfg.Recipient == "" && h.config != nil {
		cfg.Recipient = h.config.DefaultRecipient
	}

	log.Info().
		Str("ip", c.IP()).
		Strs("categories", cfg.CategoriesFilter).
		Float64("min_score", cfg.MinImportanceScore).
		Int("max_items", cfg.MaxItemsPerCategory).
		Msg("Received digest run request")

	if c.QueryBool("wait") {
		ctx, cancel := context.WithTimeout(c.UserContext(), runTimeout)
		defer cancel()

		report, err := h.runner.Run(ctx, cfg)
		switch {
		case errors.Is(err, pipeline.ErrRunInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case err != nil && report != nil:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":  err.Error(),
				"report": report,
			})
		case err != nil:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(report)
	}

	err := h.runner.Start(cfg, runTimeout, func(report *pipeline.Report, err error) {
		if err != nil {
			log.Error().Err(err).Msg("Background digest run failed")
			return
		}
		log.Info().
			Str("digest_id", report.Digest.ID).
			Int("items", report.Digest.TotalItemCount).
			Dur("duration", report.Duration).
			Msg("Background digest run finished")
	})
	if errors.Is(err, pipeline.ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "started",
		"message": "Digest run started in the background",
	})
}

// LastRun handles GET /admin/digests/last-run
func (h *Handlers) LastRun(c *fiber.Ctx) error {
	report := h.runner.LastReport()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No run has finished yet",
		})
	}
	return c.JSON(fiber.Map{
		"running": h.runner.Running(),
		"report":  report,
	})
}
