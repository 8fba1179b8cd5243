package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CommentRequest adds a comment to an element's thread.
type CommentRequest struct {
	Text     string `json:"text"`
	Author   string `json:"author,omitempty"`
	Snapshot string `json:"snapshot,omitempty" example:"data:image/png;base64,iVBORw0KGgo="`
}

// ListThreads handles GET /comments.
// @Summary List comment threads
// @Tags comments
// @Produce json
// @Success 200 {array} federation.Thread "Threads"
// @Router /comments [get]
func (h *ReviewHandler) ListThreads(c *fiber.Ctx) error {
	return c.JSON(h.Service.Threads())
}

// GetThread handles GET /comments/:guid.
// @Summary Comments on one element
// @Tags comments
// @Produce json
// @Param guid path string true "Element GUID"
// @Success 200 {array} models.Comment "Thread"
// @Failure 404 {object} map[string]interface{} "No thread"
// @Router /comments/{guid} [get]
func (h *ReviewHandler) GetThread(c *fiber.Ctx) error {
	thread, err := h.Service.Thread(c.Params("guid"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(thread)
}

// AddComment handles POST /comments/:guid.
// @Summary Comment on an element
// @Tags comments
// @Accept json
// @Produce json
// @Param guid path string true "Element GUID"
// @Param request body CommentRequest true "Comment"
// @Success 201 {object} models.Comment "Created"
// @Failure 400 {object} map[string]interface{} "Empty comment"
// @Failure 404 {object} map[string]interface{} "Element not found"
// @Router /comments/{guid} [post]
func (h *ReviewHandler) AddComment(c *fiber.Ctx) error {
	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, InvalidRequestError)
	}
	comment, err := h.Service.AddComment(c.Params("guid"), req.Text, req.Author, req.Snapshot)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info("comment added",
		zap.String("guid", comment.UUID),
		zap.String("id", comment.ID),
		zap.String("author", comment.Author))
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /comments/:guid/:id.
// @Summary Delete a comment
// @Tags comments
// @Param guid path string true "Element GUID"
// @Param id path string true "Comment ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]interface{} "Comment not found"
// @Router /comments/{guid}/{id} [delete]
func (h *ReviewHandler) DeleteComment(c *fiber.Ctx) error {
	if err := h.Service.RemoveComment(c.Params("guid"), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IsolateCommented handles POST /isolate.
// @Summary Hide every element without comments
// @Tags comments
// @Produce json
// @Success 200 {object} map[string]interface{} "Number of hidden elements"
// @Failure 422 {object} map[string]interface{} "No comments to isolate"
// @Router /isolate [post]
func (h *ReviewHandler) IsolateCommented(c *fiber.Ctx) error {
	hidden, err := h.Service.IsolateCommented()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"hidden": hidden})
}

// Export handles GET /export.
// @Summary Download the review report
// @Description Builds a zip with report.xml and the comment snapshots
// @Tags reports
// @Produce application/zip
// @Success 200 {file} binary "Report archive"
// @Failure 422 {object} map[string]interface{} "No comments to export"
// @Failure 500 {object} map[string]interface{} "Export failed"
// @Router /export [get]
func (h *ReviewHandler) Export(c *fiber.Ctx) error {
	archive, err := h.Service.Export(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+archive.Name+`"`)
	c.Set("X-Report-Topics", strconv.Itoa(archive.Topics))
	c.Set("X-Report-Images", strconv.Itoa(archive.Images))
	return c.Send(archive.Data)
}
