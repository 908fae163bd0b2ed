package handler

import (
	"github.com/gofiber/fiber/v2"

	"healthdash/internal/model"
	"healthdash/internal/service"
)

// ListAppointments lists appointments, only future ones when upcoming=true.
//
// @Summary List appointments
// @Tags appointments
// @Produce json
// @Param upcoming query bool false "only future appointments"
// @Success 200 {array} model.Appointment
// @Router /api/appointments [get]
func ListAppointments(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apts, err := svc.ListAppointments(c.UserContext(), c.QueryBool("upcoming", false))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(apts)
	}
}

// CreateAppointment schedules an appointment.
//
// @Summary Add an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointment body model.AppointmentDraft true "appointment"
// @Success 201 {object} model.Appointment
// @Failure 400 {object} errorPayload
// @Router /api/appointments [post]
func CreateAppointment(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var draft model.AppointmentDraft
		if err := c.BodyParser(&draft); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		apt, err := svc.AddAppointment(c.UserContext(), draft)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(apt)
	}
}

// UpdateAppointment replaces every field of an appointment.
//
// @Summary Update an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Param id path string true "appointment id"
// @Param appointment body model.AppointmentDraft true "appointment"
// @Success 200 {object} model.Appointment
// @Failure 404 {object} errorPayload
// @Router /api/appointments/{id} [put]
func UpdateAppointment(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var draft model.AppointmentDraft
		if err := c.BodyParser(&draft); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		apt, err := svc.UpdateAppointment(c.UserContext(), c.Params("id"), draft)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(apt)
	}
}

// DeleteAppointment cancels an appointment and its reminder.
//
// @Summary Delete an appointment
// @Tags appointments
// @Param id path string true "appointment id"
// @Success 204
// @Router /api/appointments/{id} [delete]
func DeleteAppointment(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteAppointment(c.UserContext(), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UpcomingAppointments lists future appointments with days_until.
//
// @Summary Upcoming appointments
// @Tags appointments
// @Produce json
// @Success 200 {array} model.UpcomingAppointment
// @Router /api/appointments/upcoming [get]
func UpcomingAppointments(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apts, err := svc.Upcoming(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(apts)
	}
}

// Stats returns the dashboard counters.
//
// @Summary Dashboard counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} service.Stats
// @Router /api/stats [get]
func Stats(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(stats)
	}
}
