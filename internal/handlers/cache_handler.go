package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"bim-review-service/internal/storage"
)

// CacheHandler reports on the revision cache. Cache is nil when revision
// caching is disabled.
type CacheHandler struct {
	Cache *storage.CachedStore
	log   *zap.Logger
}

func NewCacheHandler(cache *storage.CachedStore, log *zap.Logger) *CacheHandler {
	return &CacheHandler{Cache: cache, log: log}
}

// GetStatistics handles GET /cache/stats.
// @Summary Revision cache statistics
// @Tags cache
// @Produce json
// @Success 200 {array} cache.LayerStats "Per-layer statistics"
// @Router /cache/stats [get]
func (h *CacheHandler) GetStatistics(c *fiber.Ctx) error {
	if h.Cache == nil {
		return c.JSON([]any{})
	}
	return c.JSON(h.Cache.GetStatistics())
}

// Clear handles DELETE /cache.
// @Summary Drop all cached revisions
// @Tags cache
// @Success 204 "Cleared"
// @Failure 500 {object} map[string]interface{} "Clear failed"
// @Router /cache [delete]
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	if h.Cache == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.Cache.ClearAll(); err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info("revision cache cleared", zap.String("ip", c.IP()))
	return c.SendStatus(fiber.StatusNoContent)
}
