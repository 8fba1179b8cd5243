package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/federation"
	"bim-review-service/internal/normalize"
	"bim-review-service/internal/report"
	"bim-review-service/internal/repository"
	"bim-review-service/internal/services"
	"bim-review-service/internal/storage"
)

const (
	InvalidUuidError    = "invalid UUID"
	InvalidRequestError = "invalid request body"
)

// statusFor maps a service error to its HTTP status. Warnings are expected
// outcomes the client should show, not failures.
func statusFor(err error) (status int, warning bool) {
	var (
		importErr   *normalize.ImportError
		conflictErr *storage.ConflictError
		storeErr    *storage.StoreError
		exportErr   *report.ExportError
	)
	switch {
	case errors.As(err, &importErr):
		return fiber.StatusUnprocessableEntity, false
	case errors.As(err, &conflictErr):
		return fiber.StatusConflict, false
	case errors.Is(err, federation.ErrHistoryMode):
		return fiber.StatusLocked, false
	case errors.Is(err, federation.ErrNothingToIsolate), errors.Is(err, report.ErrNothingToExport):
		return fiber.StatusUnprocessableEntity, true
	case errors.As(err, &exportErr):
		return fiber.StatusInternalServerError, false
	case errors.Is(err, federation.ErrModelNotFound),
		errors.Is(err, federation.ErrElementNotFound),
		errors.Is(err, federation.ErrCommentNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, repository.ErrReportNotFound):
		return fiber.StatusNotFound, false
	case errors.Is(err, federation.ErrEmptyComment):
		return fiber.StatusBadRequest, false
	case errors.Is(err, federation.ErrNoModelSelected), errors.Is(err, services.ErrNoRepositoryPath):
		return fiber.StatusUnprocessableEntity, false
	case errors.As(err, &storeErr):
		return fiber.StatusBadGateway, false
	}
	return fiber.StatusInternalServerError, false
}

// respondError writes the standard error body and logs server-side failures.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, warning := statusFor(err)
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("ip", c.IP()),
		zap.Int("status", status),
		zap.Error(err),
	}
	switch {
	case status >= fiber.StatusInternalServerError:
		log.Error("request failed", fields...)
	case warning:
		log.Info("request completed with warning", fields...)
	default:
		log.Warn("request rejected", fields...)
	}

	body := fiber.Map{"error": true, "message": err.Error()}
	if warning {
		body["warning"] = true
	}
	var importErr *normalize.ImportError
	if errors.As(err, &importErr) {
		body["file"] = importErr.FileName
		body["reason"] = importErr.Reason
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": true, "message": message,
	})
}
