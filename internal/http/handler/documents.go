package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"healthdash/internal/service"
)

const defaultLinkExpiry = 15 * time.Minute

// ListDocuments returns every stored document, most recent first.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {array} model.MedicalDocument
// @Router /api/documents [get]
func ListDocuments(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListDocuments(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(docs)
	}
}

// GetDocument returns document metadata.
//
// @Summary Get document metadata
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.MedicalDocument
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id} [get]
func GetDocument(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.GetDocument(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the document, its payload and every link to it.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Router /api/documents/{id} [delete]
func DeleteDocument(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteDocument(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentContent streams the stored payload.
//
// @Summary Download a document
// @Tags documents
// @Produce octet-stream
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/documents/{id}/content [get]
func DocumentContent(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, doc, err := svc.OpenDocument(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, doc.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.Name))
		// fasthttp closes rc once the body has been written
		return c.SendStream(rc, int(doc.Size))
	}
}

// DocumentLink returns a presigned download URL. The expiry query parameter accepts a
// Go duration and defaults to the configured link lifetime.
//
// @Summary Presigned download link
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Param expiry query string false "link lifetime, e.g. 10m"
// @Success 200 {object} map[string]string
// @Failure 501 {object} errorPayload
// @Router /api/documents/{id}/link [get]
func DocumentLink(svc service.RecordService, def time.Duration) fiber.Handler {
	if def <= 0 {
		def = defaultLinkExpiry
	}
	return func(c *fiber.Ctx) error {
		expiry := def
		if raw := c.Query("expiry"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 || d > 7*24*time.Hour {
				return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", "invalid expiry")
			}
			expiry = d
		}
		url, err := svc.DocumentLink(c.UserContext(), c.Params("id"), expiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "expires_at": time.Now().Add(expiry).UTC()})
	}
}

// SummarizeDocument asks the AI service for a summary of an image document.
//
// @Summary Summarize a document
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} map[string]string
// @Failure 409 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/documents/{id}/summary [post]
func SummarizeDocument(svc service.SummaryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		text, err := svc.Summarize(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document_id": id, "summary": text})
	}
}
