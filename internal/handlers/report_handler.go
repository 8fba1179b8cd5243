package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bim-review-service/internal/services"
)

// ReportHandler serves published reports. Service is nil when no database
// is configured.
type ReportHandler struct {
	Service *services.ReportService
	log     *zap.Logger
}

func NewReportHandler(service *services.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{Service: service, log: log}
}

// PublishRequest names the reviewer publishing the report.
type PublishRequest struct {
	Author string `json:"author"`
}

func (h *ReportHandler) unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   true,
		"message": "report publishing is not configured",
	})
}

// Publish handles POST /reports.
// @Summary Publish the review report
// @Description Exports the session and stores the archive in the repository
// @Tags reports
// @Accept json
// @Produce json
// @Param request body PublishRequest false "Author"
// @Success 201 {object} models.Report "Published"
// @Failure 422 {object} map[string]interface{} "No comments to export"
// @Failure 503 {object} map[string]interface{} "Reports disabled"
// @Router /reports [post]
func (h *ReportHandler) Publish(c *fiber.Ctx) error {
	if h.Service == nil {
		return h.unavailable(c)
	}
	var req PublishRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, InvalidRequestError)
		}
	}
	rep, err := h.Service.Publish(c.UserContext(), req.Author)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rep)
}

// List handles GET /reports.
// @Summary List published reports
// @Tags reports
// @Produce json
// @Success 200 {array} models.Report "Reports, newest first"
// @Failure 503 {object} map[string]interface{} "Reports disabled"
// @Router /reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	if h.Service == nil {
		return h.unavailable(c)
	}
	reports, err := h.Service.List()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(reports)
}

// Download handles GET /reports/:id/download.
// @Summary Download a published report
// @Tags reports
// @Produce application/zip
// @Param id path string true "Report ID"
// @Success 200 {file} binary "Report archive"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Report not found"
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(c *fiber.Ctx) error {
	if h.Service == nil {
		return h.unavailable(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, InvalidUuidError)
	}
	rep, data, err := h.Service.Download(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+rep.FileName+`"`)
	return c.Send(data)
}
