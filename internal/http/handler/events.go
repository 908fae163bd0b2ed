package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"healthdash/internal/model"
	"healthdash/internal/service"
)

// ListEvents filters the timeline by free text (q) and category (type).
//
// @Summary Filter timeline events
// @Tags events
// @Produce json
// @Param q query string false "search term"
// @Param type query string false "Appointment, Exam, Prescription, Note or all"
// @Success 200 {array} model.TimelineEvent
// @Failure 400 {object} errorPayload
// @Router /api/events [get]
func ListEvents(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		typ, err := model.ParseRecordFilter(c.Query("type"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TYPE", "invalid record type")
		}
		events, err := svc.ListEvents(c.UserContext(), c.Query("q"), typ)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(events)
	}
}

// CreateEvent adds an event. JSON bodies carry the draft; multipart bodies carry the
// draft as form fields plus an optional file.
//
// @Summary Add a timeline event
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Param event body model.EventDraft false "event draft"
// @Param file formData file false "attached document"
// @Success 201 {object} model.TimelineEvent
// @Failure 400 {object} errorPayload
// @Router /api/events [post]
func CreateEvent(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			var draft model.EventDraft
			if err := c.BodyParser(&draft); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
			evt, err := svc.AddEvent(c.UserContext(), draft, nil)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(evt)
		}

		draft := model.EventDraft{
			Type:        model.RecordType(c.FormValue("type")),
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
		}

		var upload *service.Upload
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get(fiber.HeaderContentType)
			if ct == "" {
				ct = "application/octet-stream"
			}
			upload = &service.Upload{Name: fh.Filename, ContentType: ct, Size: fh.Size, Reader: f}
		}

		evt, err := svc.AddEvent(c.UserContext(), draft, upload)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(evt)
	}
}

// UpdateEvent applies a partial update.
//
// @Summary Update a timeline event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "event id"
// @Param patch body service.EventPatch true "fields to change"
// @Success 200 {object} model.TimelineEvent
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/events/{id} [put]
func UpdateEvent(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch service.EventPatch
		if err := c.BodyParser(&patch); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		evt, err := svc.UpdateEvent(c.UserContext(), c.Params("id"), patch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(evt)
	}
}

// DeleteEvent removes an event; unknown ids are ignored.
//
// @Summary Delete a timeline event
// @Tags events
// @Param id path string true "event id"
// @Success 204
// @Router /api/events/{id} [delete]
func DeleteEvent(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
