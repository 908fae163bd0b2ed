package model

import (
	"fmt"
	"time"
)

// Appointment is a scheduled visit.
type Appointment struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Doctor    string    `json:"doctor"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
}

// AppointmentDraft carries the fields of a new appointment.
type AppointmentDraft struct {
	Date      time.Time `json:"date"`
	Doctor    string    `json:"doctor"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
}

// UpcomingAppointment annotates an appointment with the number of calendar days until it.
type UpcomingAppointment struct {
	Appointment
	DaysUntil int    `json:"days_until"`
	Label     string `json:"label"`
}

// DaysUntilLabel renders a day distance the way the dashboard shows it.
func DaysUntilLabel(days int) string {
	switch {
	case days < 0:
		return "Completed"
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", days)
	}
}
