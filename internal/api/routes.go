package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/newsdigest/internal/middleware"
	"github.com/bilgisen/newsdigest/internal/models"
)

// NewApp creates the fiber app with the shared error handler
func NewApp(cfg fiber.Config) *fiber.App {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = middleware.ErrorHandler
	}
	return fiber.New(cfg)
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, adminKey string) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)
	api.Get("/sources", middleware.ValidateQuery[SourceQuery](), handlers.ListSources)
	api.Get("/categories", handlers.ListCategories)

	digests := api.Group("/digests")
	{
		digests.Get("", handlers.ListDigests)
		digests.Get("/:id", handlers.GetDigest)
	}

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	{
		admin.Post("/digests/run", middleware.ValidateBody[models.RunConfig](), handlers.RunDigest)
		admin.Get("/digests/last-run", handlers.LastRun)
		admin.Delete("/digests/:id", handlers.DeleteDigest)
		admin.Patch("/sources/:id", middleware.ValidateBody[SourceUpdate](), handlers.SetSourceActive)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
