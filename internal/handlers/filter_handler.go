package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bim-review-service/internal/federation"
	"bim-review-service/internal/models"
)

// SearchRequest sets the ghosting search query. An empty query clears it.
type SearchRequest struct {
	Query string `json:"query"`
}

// GetScene handles GET /scene.
// @Summary Evaluate the scene
// @Description Returns visibility and opacity of every element under the current filter
// @Tags scene
// @Produce json
// @Success 200 {object} services.SceneView "Scene"
// @Router /scene [get]
func (h *ReviewHandler) GetScene(c *fiber.Ctx) error {
	return c.JSON(h.Service.Scene())
}

// GetLayers handles GET /layers.
// @Summary List discipline and category layers
// @Tags scene
// @Produce json
// @Success 200 {object} services.Layers "Layers"
// @Router /layers [get]
func (h *ReviewHandler) GetLayers(c *fiber.Ctx) error {
	return c.JSON(h.Service.Layers())
}

// GetFilter handles GET /filter.
// @Summary Current filter state
// @Tags filter
// @Produce json
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter [get]
func (h *ReviewHandler) GetFilter(c *fiber.Ctx) error {
	return c.JSON(h.Service.Filter())
}

// ReplaceFilter handles PUT /filter.
// @Summary Replace the filter state
// @Tags filter
// @Accept json
// @Produce json
// @Param request body models.FilterState true "Filter"
// @Success 200 {object} models.FilterState "Filter"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /filter [put]
func (h *ReviewHandler) ReplaceFilter(c *fiber.Ctx) error {
	var f models.FilterState
	if err := c.BodyParser(&f); err != nil {
		return badRequest(c, InvalidRequestError)
	}
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ReplaceFilter(f)
	}))
}

// ToggleDiscipline handles POST /filter/disciplines/:tag.
// @Summary Toggle a discipline layer
// @Tags filter
// @Produce json
// @Param tag path string true "Discipline tag"
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/disciplines/{tag} [post]
func (h *ReviewHandler) ToggleDiscipline(c *fiber.Ctx) error {
	tag := c.Params("tag")
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ToggleDiscipline(tag)
	}))
}

// ToggleCategory handles POST /filter/categories/:category.
// @Summary Toggle a category layer
// @Tags filter
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/categories/{category} [post]
func (h *ReviewHandler) ToggleCategory(c *fiber.Ctx) error {
	category := c.Params("category")
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ToggleCategory(category)
	}))
}

// HideElement handles POST /filter/hidden/:guid.
// @Summary Hide one element
// @Tags filter
// @Produce json
// @Param guid path string true "Element GUID"
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/hidden/{guid} [post]
func (h *ReviewHandler) HideElement(c *fiber.Ctx) error {
	guid := c.Params("guid")
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.HideElement(guid)
	}))
}

// ShowAllElements handles DELETE /filter/hidden.
// @Summary Unhide all elements
// @Tags filter
// @Produce json
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/hidden [delete]
func (h *ReviewHandler) ShowAllElements(c *fiber.Ctx) error {
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ShowAllElements()
	}))
}

// ShowAllLayers handles POST /filter/show-all.
// @Summary Clear hidden categories and elements
// @Tags filter
// @Produce json
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/show-all [post]
func (h *ReviewHandler) ShowAllLayers(c *fiber.Ctx) error {
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ShowAllLayers()
	}))
}

// ToggleIsolate handles POST /filter/isolate.
// @Summary Toggle comment isolation mode
// @Tags filter
// @Produce json
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/isolate [post]
func (h *ReviewHandler) ToggleIsolate(c *fiber.Ctx) error {
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.ToggleIsolateMode()
	}))
}

// SetSearch handles PUT /filter/search.
// @Summary Set the search query
// @Tags filter
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Query"
// @Success 200 {object} models.FilterState "Filter"
// @Router /filter/search [put]
func (h *ReviewHandler) SetSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, InvalidRequestError)
	}
	return c.JSON(h.Service.UpdateFilter(func(s *federation.Session) {
		s.SetSearch(req.Query)
	}))
}
