package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// HealthCheck reports readiness by pinging the metadata database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns all document records in insertion order.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(items)
	}
}

// UploadDocument accepts a multipart upload (field name: file) and stores it.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), f, fh.Filename, ct)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// DownloadDocument streams a document's content as an attachment named after
// the original filename.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, rc, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		// fasthttp closes the stream after the response is sent. The service
		// has verified the blob length against the record, so doc.Size is a
		// truthful Content-Length.
		c.Set(fiber.HeaderContentType, service.MediaTypePDF)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", strconv.Quote(doc.Filename)))
		return c.SendStream(rc, int(doc.Size))
	}
}

// DeleteDocument removes a document's blob and metadata record.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; all orchestration lives in the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", UploadDocument(docSvc))
	app.Get("/documents/:id", DownloadDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// serviceError translates service-layer failures into the error envelope.
// Caller errors and detected inconsistencies get specific codes; infra
// failures are reported without leaking internals.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidMediaType):
		return writeError(c, fiber.StatusBadRequest, "INVALID_MEDIA_TYPE", "only PDF files are allowed")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrBlobMissing):
		return writeError(c, fiber.StatusNotFound, "FILE_MISSING", "file missing on disk")
	case errors.Is(err, service.ErrStorageWrite),
		errors.Is(err, service.ErrStorageRead),
		errors.Is(err, service.ErrStorageDelete):
		return writeError(c, fiber.StatusInternalServerError, "STORAGE_ERROR", "storage error")
	case errors.Is(err, service.ErrMetadataWrite),
		errors.Is(err, service.ErrMetadata):
		return writeError(c, fiber.StatusInternalServerError, "DATABASE_ERROR", "database error")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
