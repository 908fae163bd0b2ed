package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"healthdash/internal/model"
)

func TestFilterEvents(t *testing.T) {
	base := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	events := []model.TimelineEvent{
		{ID: "evt1", Date: base, Type: model.RecordAppointment, Title: "Routine visit", Description: "Annual check-up with Dr. House."},
		{ID: "evt2", Date: base.AddDate(0, -1, 0), Type: model.RecordExam, Title: "Blood test", Description: "Full blood count. Results attached."},
		{ID: "evt3", Date: base.AddDate(0, -1, 0), Type: model.RecordPrescription, Title: "Vitamin D", Description: "Supplement for 3 months."},
	}

	tests := []struct {
		name    string
		term    string
		typ     model.RecordType
		wantIDs []string
	}{
		{name: "no predicates", typ: model.RecordTypeAll, wantIDs: []string{"evt1", "evt2", "evt3"}},
		{name: "empty type behaves like all", term: "", typ: "", wantIDs: []string{"evt1", "evt2", "evt3"}},
		{name: "title match is case-insensitive", term: "BLOOD", typ: model.RecordTypeAll, wantIDs: []string{"evt2"}},
		{name: "description match", term: "house", typ: model.RecordTypeAll, wantIDs: []string{"evt1"}},
		{name: "type only", typ: model.RecordPrescription, wantIDs: []string{"evt3"}},
		{name: "term and type combine with AND", term: "blood", typ: model.RecordNote, wantIDs: []string{}},
		{name: "whitespace is part of the term", term: "  vitamin ", typ: model.RecordTypeAll, wantIDs: []string{}},
		{name: "blank term matches text with a space", term: " ", typ: model.RecordTypeAll, wantIDs: []string{"evt1", "evt2", "evt3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEvents(events, tt.term, tt.typ)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterEvents_BlankTermIsLiteral(t *testing.T) {
	events := []model.TimelineEvent{
		{ID: "a", Type: model.RecordNote, Title: "Headache", Description: "mild"},
		{ID: "b", Type: model.RecordNote, Title: "Follow up", Description: "call"},
	}

	got := FilterEvents(events, " ", model.RecordTypeAll)

	if assert.Len(t, got, 1) {
		assert.Equal(t, "b", got[0].ID)
	}
}

func TestFilterEvents_Idempotent(t *testing.T) {
	events := []model.TimelineEvent{
		{ID: "a", Type: model.RecordExam, Title: "X-ray", Description: "chest"},
		{ID: "b", Type: model.RecordExam, Title: "MRI", Description: "knee x-ray follow-up"},
		{ID: "c", Type: model.RecordNote, Title: "x-ray note", Description: ""},
	}
	orig := append([]model.TimelineEvent(nil), events...)

	once := FilterEvents(events, "x-ray", model.RecordExam)
	twice := FilterEvents(once, "x-ray", model.RecordExam)

	assert.Equal(t, once, twice)
	assert.Equal(t, orig, events, "input must not be mutated")
}
