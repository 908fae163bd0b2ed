// Package reminder arms one local alert per upcoming appointment, Lead before it starts.
package reminder

import (
	"fmt"
	"slices"
	"time"

	"healthdash/internal/model"
)

// Lead is how long before an appointment its reminder fires.
const Lead = 24 * time.Hour

// Timer is a planned reminder for one appointment.
type Timer struct {
	AppointmentID string        `json:"appointment_id"`
	FireAt        time.Time     `json:"fire_at"`
	Delay         time.Duration `json:"delay"`
}

// Inputs is everything the timer set is derived from.
type Inputs struct {
	Appointments []model.Appointment
	Enabled      bool
	Permission   model.Permission
}

// Plan computes the timers that should be armed at now. Appointments whose reminder
// point is not strictly in the future get no timer, and nothing is planned unless
// notifications are enabled and permission is granted.
func Plan(appointments []model.Appointment, now time.Time, enabled bool, permission model.Permission) []Timer {
	if !enabled || permission != model.PermissionGranted {
		return nil
	}

	timers := make([]Timer, 0, len(appointments))
	for _, a := range appointments {
		fireAt := a.Date.Add(-Lead)
		if !now.Before(fireAt) {
			continue
		}
		timers = append(timers, Timer{
			AppointmentID: a.ID,
			FireAt:        fireAt,
			Delay:         fireAt.Sub(now),
		})
	}
	slices.SortStableFunc(timers, func(a, b Timer) int { return a.FireAt.Compare(b.FireAt) })
	return timers
}

// Reminder is the alert dispatched when a timer fires.
type Reminder struct {
	AppointmentID string    `json:"appointment_id"`
	Date          time.Time `json:"date"`
	Doctor        string    `json:"doctor"`
	Specialty     string    `json:"specialty"`
	Location      string    `json:"location"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
}

// NewReminder builds the alert for an appointment.
func NewReminder(a model.Appointment) Reminder {
	return Reminder{
		AppointmentID: a.ID,
		Date:          a.Date,
		Doctor:        a.Doctor,
		Specialty:     a.Specialty,
		Location:      a.Location,
		Title:         "Appointment reminder",
		Body:          fmt.Sprintf("Your %s appointment with %s is tomorrow.", a.Specialty, a.Doctor),
	}
}
