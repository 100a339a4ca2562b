package routers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"catalog-ingest/internal/delivery/http/handlers"
)

// SetupRoutes registers the Upload Engine and Import Engine HTTP surfaces
// under /api/v1, plus the generated swagger UI at /swagger.
func SetupRoutes(app *fiber.App, uploadHandler *handlers.UploadHandler, importHandler *handlers.ImportHandler) {
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	uploads := api.Group("/uploads")
	uploads.Post("/initialize", uploadHandler.Initialize)
	uploads.Post("/chunk", uploadHandler.Chunk)
	uploads.Post("/:id/complete", uploadHandler.Complete)
	uploads.Post("/:id/retry-merge", uploadHandler.RetryMerge)
	uploads.Get("/:id/status", uploadHandler.Status)
	uploads.Get("/:id/resume", uploadHandler.Resume)
	uploads.Get("/:id/verify", uploadHandler.Verify)
	uploads.Delete("/:id/cancel", uploadHandler.Cancel)

	imports := api.Group("/imports")
	imports.Post("/products", importHandler.Import)
	imports.Post("/products/validate", importHandler.Validate)
	imports.Get("/products/columns", importHandler.Columns)
	imports.Get("/history", importHandler.History)
	imports.Get("/statistics", importHandler.Statistics)
	imports.Get("/:id", importHandler.Get)
}
