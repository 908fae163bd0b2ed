package records

import (
	"strings"

	"healthdash/internal/model"
)

// FilterEvents selects the events whose title or description contains term
// (case-insensitive, taken literally) and, unless typ is RecordTypeAll or empty, whose type equals typ.
// The input slice is not modified and the relative order is preserved.
func FilterEvents(events []model.TimelineEvent, term string, typ model.RecordType) []model.TimelineEvent {
	needle := strings.ToLower(term)
	anyType := typ == "" || typ == model.RecordTypeAll

	out := make([]model.TimelineEvent, 0, len(events))
	for _, e := range events {
		if !anyType && e.Type != typ {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}
