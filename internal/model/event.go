package model

import (
	"fmt"
	"strings"
	"time"
)

// RecordType is the category of a timeline event.
type RecordType string

const (
	RecordAppointment  RecordType = "Appointment"
	RecordExam         RecordType = "Exam"
	RecordPrescription RecordType = "Prescription"
	RecordNote         RecordType = "Note"

	// RecordTypeAll disables category filtering.
	RecordTypeAll RecordType = "all"
)

// RecordTypes lists the valid categories in display order.
var RecordTypes = []RecordType{RecordAppointment, RecordExam, RecordPrescription, RecordNote}

// ParseRecordType resolves a category name case-insensitively.
func ParseRecordType(s string) (RecordType, error) {
	s = strings.TrimSpace(s)
	for _, t := range RecordTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// ParseRecordFilter is like ParseRecordType but also accepts "all" and the empty string.
func ParseRecordFilter(s string) (RecordType, error) {
	if s = strings.TrimSpace(s); s == "" || strings.EqualFold(s, string(RecordTypeAll)) {
		return RecordTypeAll, nil
	}
	return ParseRecordType(s)
}

// TimelineEvent is one entry of the medical timeline.
type TimelineEvent struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Type        RecordType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DocumentID  string     `json:"document_id,omitempty"`
}

// EventDraft carries the user-supplied fields of a new event.
type EventDraft struct {
	Type        RecordType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}
