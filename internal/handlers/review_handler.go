package handlers

import (
	"io"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bim-review-service/internal/metrics"
	"bim-review-service/internal/services"
)

// ReviewHandler exposes the federated review session over HTTP.
type ReviewHandler struct {
	Service *services.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service *services.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Service: service, log: log}
}

// LoadModelRequest names a repository file to federate.
type LoadModelRequest struct {
	Path string `json:"path" example:"models/arch.bim"`
}

// VisibilityRequest toggles model-level visibility.
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// SelectElementRequest selects one element of one model.
type SelectElementRequest struct {
	ModelID string `json:"modelId"`
	GUID    string `json:"guid"`
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func setLatencyHeaders(c *fiber.Ctx, lm *metrics.LatencyMetrics) {
	lm.Finalize()
	for k, v := range lm.GetHeaders() {
		c.Set(k, v)
	}
}

// ListModels handles GET /models.
// @Summary List federated models
// @Description Lists the models of the review session in load order
// @Tags models
// @Produce json
// @Success 200 {array} models.ModelSummary "Loaded models"
// @Router /models [get]
func (h *ReviewHandler) ListModels(c *fiber.Ctx) error {
	return c.JSON(h.Service.Models())
}

// LoadModel handles POST /models/load.
// @Summary Load a model from the repository
// @Description Fetches the latest revision of a repository file, normalizes it and adds it to the session
// @Tags models
// @Accept json
// @Produce json
// @Param request body LoadModelRequest true "Repository path"
// @Success 201 {object} services.LoadResult "Model federated"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Failure 422 {object} map[string]interface{} "File rejected"
// @Failure 423 {object} map[string]interface{} "History mode active"
// @Failure 502 {object} map[string]interface{} "Content store failure"
// @Router /models/load [post]
func (h *ReviewHandler) LoadModel(c *fiber.Ctx) error {
	var req LoadModelRequest
	if err := c.BodyParser(&req); err != nil || req.Path == "" {
		return badRequest(c, "path is required")
	}
	h.log.Info("loading model",
		zap.String("path", req.Path),
		zap.String("method", c.Method()),
		zap.String("ip", c.IP()))

	lm := metrics.NewLatencyMetrics(req.Path)
	res, err := h.Service.LoadModel(metrics.WithLatency(c.UserContext(), lm), req.Path)
	setLatencyHeaders(c, lm)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ImportModel handles POST /models/import.
// @Summary Upload a model file
// @Description Upload a canonical model, an IFC file or a zip holding one of them
// @Tags models
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Model file (.bim, .json, .ifc or .zip)"
// @Param path formData string false "Repository path the model is saved to"
// @Success 201 {object} services.LoadResult "Model federated"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 422 {object} map[string]interface{} "File rejected"
// @Failure 423 {object} map[string]interface{} "History mode active"
// @Router /models/import [post]
func (h *ReviewHandler) ImportModel(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "failed to read file: "+err.Error())
	}
	src, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "failed to open file: "+err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return badRequest(c, "failed to read file: "+err.Error())
	}
	h.log.Info("importing model",
		zap.String("file", fileHeader.Filename),
		zap.Int64("bytes", fileHeader.Size),
		zap.String("ip", c.IP()))

	lm := metrics.NewLatencyMetrics(fileHeader.Filename)
	res, err := h.Service.Import(metrics.WithLatency(c.UserContext(), lm), fileHeader.Filename, data, c.FormValue("path"))
	setLatencyHeaders(c, lm)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// RemoveModel handles DELETE /models/:id.
// @Summary Remove a model from the session
// @Tags models
// @Param id path string true "Model ID"
// @Success 204 "Removed"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id} [delete]
func (h *ReviewHandler) RemoveModel(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	if err := h.Service.RemoveModel(id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetVisibility handles PUT /models/:id/visibility.
// @Summary Show or hide a whole model
// @Tags models
// @Accept json
// @Param id path string true "Model ID"
// @Param request body VisibilityRequest true "Visibility"
// @Success 204 "Updated"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id}/visibility [put]
func (h *ReviewHandler) SetVisibility(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, InvalidRequestError)
	}
	if err := h.Service.SetVisible(id, req.Visible); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectModel handles POST /models/:id/select.
// @Summary Select the active model
// @Tags models
// @Param id path string true "Model ID"
// @Success 204 "Selected"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id}/select [post]
func (h *ReviewHandler) SelectModel(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	if err := h.Service.SelectModel(id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History handles GET /models/:id/history.
// @Summary List stored revisions of a model file
// @Tags history
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {array} storage.Revision "Revisions, newest first"
// @Failure 404 {object} map[string]interface{} "Model or file not found"
// @Router /models/{id}/history [get]
func (h *ReviewHandler) History(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	revs, err := h.Service.History(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(revs)
}

// LoadRevision handles POST /models/:id/revisions/:revision.
// @Summary View an older revision
// @Description Replaces the model in place with a stored revision and enters history mode
// @Tags history
// @Produce json
// @Param id path string true "Model ID"
// @Param revision path string true "Revision ID"
// @Success 200 {object} models.ModelSummary "Revision applied"
// @Failure 404 {object} map[string]interface{} "Model or revision not found"
// @Failure 422 {object} map[string]interface{} "Revision is not a canonical model"
// @Router /models/{id}/revisions/{revision} [post]
func (h *ReviewHandler) LoadRevision(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	summary, err := h.Service.LoadRevision(c.UserContext(), id, c.Params("revision"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}

// ExitHistory handles POST /history/exit.
// @Summary Leave history mode
// @Tags history
// @Success 204 "History mode cleared"
// @Router /history/exit [post]
func (h *ReviewHandler) ExitHistory(c *fiber.Ctx) error {
	h.Service.ExitHistoryMode()
	return c.SendStatus(fiber.StatusNoContent)
}

// Save handles POST /save.
// @Summary Save the selected model
// @Description Writes the selected model and its comments back to the repository
// @Tags models
// @Produce json
// @Success 200 {object} services.SaveResult "Saved"
// @Failure 409 {object} map[string]interface{} "File changed since it was loaded"
// @Failure 422 {object} map[string]interface{} "No model selected or no path"
// @Failure 423 {object} map[string]interface{} "History mode active"
// @Router /save [post]
func (h *ReviewHandler) Save(c *fiber.Ctx) error {
	res, err := h.Service.Save(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(res)
}

// GetElement handles GET /elements/:guid.
// @Summary Inspect an element
// @Tags elements
// @Produce json
// @Param guid path string true "Element GUID"
// @Success 200 {object} services.ElementDetail "Element"
// @Failure 404 {object} map[string]interface{} "Element not found"
// @Router /elements/{guid} [get]
func (h *ReviewHandler) GetElement(c *fiber.Ctx) error {
	detail, err := h.Service.Element(c.Params("guid"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(detail)
}

// SelectElement handles POST /selection.
// @Summary Select an element
// @Tags elements
// @Accept json
// @Param request body SelectElementRequest true "Element reference"
// @Success 204 "Selected"
// @Failure 404 {object} map[string]interface{} "Model or element not found"
// @Router /selection [post]
func (h *ReviewHandler) SelectElement(c *fiber.Ctx) error {
	var req SelectElementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, InvalidRequestError)
	}
	id, err := uuid.Parse(req.ModelID)
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	if err := h.Service.SelectElement(id, req.GUID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearSelection handles DELETE /selection.
// @Summary Clear the element selection
// @Tags elements
// @Success 204 "Cleared"
// @Router /selection [delete]
func (h *ReviewHandler) ClearSelection(c *fiber.Ctx) error {
	h.Service.ClearElementSelection()
	return c.SendStatus(fiber.StatusNoContent)
}

// Browse handles GET /repository.
// @Summary Browse the model repository
// @Tags repository
// @Produce json
// @Param prefix query string false "Folder to list"
// @Success 200 {array} storage.Entry "Folder entries, directories first"
// @Failure 502 {object} map[string]interface{} "Content store failure"
// @Router /repository [get]
func (h *ReviewHandler) Browse(c *fiber.Ctx) error {
	entries, err := h.Service.Browse(c.UserContext(), c.Query("prefix"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entries)
}

// ReadFile handles GET /repository/file.
// @Summary Read a repository file
// @Tags repository
// @Produce octet-stream
// @Param path query string true "File path"
// @Success 200 {file} binary "File content"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /repository/file [get]
func (h *ReviewHandler) ReadFile(c *fiber.Ctx) error {
	p := c.Query("path")
	if p == "" {
		return badRequest(c, "path is required")
	}
	content, err := h.Service.ReadFile(c.UserContext(), p)
	if err != nil {
		return respondError(c, h.log, err)
	}
	ext := path.Ext(p)
	if ext == "" {
		ext = "bin"
	}
	c.Type(ext)
	c.Set("ETag", content.Hash)
	c.Set("X-Revision", content.Revision)
	return c.Send(content.Data)
}
