package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes mounts the review API under router.
func RegisterRoutes(router fiber.Router, reviews *ReviewHandler, reports *ReportHandler, caches *CacheHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"models":      len(reviews.Service.Models()),
			"historyMode": reviews.Service.HistoryMode(),
		})
	})
	router.Get("/swagger/*", swagger.HandlerDefault)

	router.Get("/models", reviews.ListModels)
	router.Post("/models/load", reviews.LoadModel)
	router.Post("/models/import", reviews.ImportModel)
	router.Delete("/models/:id", reviews.RemoveModel)
	router.Put("/models/:id/visibility", reviews.SetVisibility)
	router.Post("/models/:id/select", reviews.SelectModel)
	router.Get("/models/:id/history", reviews.History)
	router.Post("/models/:id/revisions/:revision", reviews.LoadRevision)
	router.Post("/history/exit", reviews.ExitHistory)
	router.Post("/save", reviews.Save)

	router.Get("/elements/:guid", reviews.GetElement)
	router.Post("/selection", reviews.SelectElement)
	router.Delete("/selection", reviews.ClearSelection)

	router.Get("/scene", reviews.GetScene)
	router.Get("/layers", reviews.GetLayers)
	router.Get("/filter", reviews.GetFilter)
	router.Put("/filter", reviews.ReplaceFilter)
	router.Post("/filter/disciplines/:tag", reviews.ToggleDiscipline)
	router.Post("/filter/categories/:category", reviews.ToggleCategory)
	router.Post("/filter/hidden/:guid", reviews.HideElement)
	router.Delete("/filter/hidden", reviews.ShowAllElements)
	router.Post("/filter/show-all", reviews.ShowAllLayers)
	router.Post("/filter/isolate", reviews.ToggleIsolate)
	router.Put("/filter/search", reviews.SetSearch)

	router.Post("/isolate", reviews.IsolateCommented)
	router.Get("/comments", reviews.ListThreads)
	router.Get("/comments/:guid", reviews.GetThread)
	router.Post("/comments/:guid", reviews.AddComment)
	router.Delete("/comments/:guid/:id", reviews.DeleteComment)
	router.Get("/export", reviews.Export)

	router.Post("/reports", reports.Publish)
	router.Get("/reports", reports.List)
	router.Get("/reports/:id/download", reports.Download)

	router.Get("/repository", reviews.Browse)
	router.Get("/repository/file", reviews.ReadFile)

	router.Get("/cache/stats", caches.GetStatistics)
	router.Delete("/cache", caches.Clear)
}
