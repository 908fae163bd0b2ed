package records

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthdash/internal/model"
)

// AppointmentsListener receives a snapshot of the appointment collection after every change.
type AppointmentsListener func([]model.Appointment)

// Store holds the timeline events, documents and appointments of the single user.
// It is safe for concurrent use. Every read returns copies; nothing escapes by reference.
type Store struct {
	// notifyMu is taken before mu by appointment writes and held until their listeners
	// return, so listeners see snapshots in the order the writes happened.
	notifyMu sync.Mutex

	mu           sync.RWMutex
	events       []model.TimelineEvent // newest first
	documents    []model.MedicalDocument
	appointments []model.Appointment // soonest first

	listeners []AppointmentsListener

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for event dates and upload dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// OnAppointmentsChanged registers a listener. Listeners run on the mutating goroutine,
// after the data lock is released, one write at a time. A listener must not write
// appointments itself.
func (s *Store) OnAppointmentsChanged(fn AppointmentsListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// AddEvent inserts a new event dated now. When att is not nil a document is created
// for it and linked through DocumentID.
func (s *Store) AddEvent(draft model.EventDraft, att *model.Attachment) model.TimelineEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	evt := model.TimelineEvent{
		ID:          s.newID(),
		Date:        now,
		Type:        draft.Type,
		Title:       draft.Title,
		Description: draft.Description,
	}

	if att != nil {
		doc := model.MedicalDocument{
			ID:          s.newID(),
			Name:        att.Name,
			ContentType: att.ContentType,
			StorageKey:  att.StorageKey,
			Size:        max(att.Size, 0),
			UploadDate:  now,
		}
		s.documents = append(s.documents, doc)
		evt.DocumentID = doc.ID
	}

	s.events = append([]model.TimelineEvent{evt}, s.events...)
	sortEvents(s.events)
	return evt
}

// UpdateEvent replaces the event with the same id. A DocumentID that does not reference
// a stored document is cleared. It reports false when the id is unknown.
func (s *Store) UpdateEvent(evt model.TimelineEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(evt.ID)
	if i < 0 {
		return false
	}
	if evt.DocumentID != "" && s.documentIndex(evt.DocumentID) < 0 {
		evt.DocumentID = ""
	}
	s.events[i] = evt
	sortEvents(s.events)
	return true
}

// DeleteEvent removes an event. Its document, if any, is kept.
func (s *Store) DeleteEvent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndex(id)
	if i < 0 {
		return false
	}
	s.events = slices.Delete(s.events, i, i+1)
	return true
}

// DeleteDocument removes a document and clears every event reference to it.
func (s *Store) DeleteDocument(id string) (model.MedicalDocument, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.documentIndex(id)
	if i < 0 {
		return model.MedicalDocument{}, false
	}
	doc := s.documents[i]
	s.documents = slices.Delete(s.documents, i, i+1)

	for j := range s.events {
		if s.events[j].DocumentID == id {
			s.events[j].DocumentID = ""
		}
	}
	return doc, true
}

// AddAppointment inserts a new appointment.
func (s *Store) AddAppointment(draft model.AppointmentDraft) model.Appointment {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	apt := model.Appointment{
		ID:        s.newID(),
		Date:      draft.Date,
		Doctor:    draft.Doctor,
		Specialty: draft.Specialty,
		Location:  draft.Location,
	}
	s.appointments = append(s.appointments, apt)
	sortAppointments(s.appointments)
	snapshot, listeners := s.appointmentsChangedLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return apt
}

// UpdateAppointment replaces the appointment with the same id.
func (s *Store) UpdateAppointment(apt model.Appointment) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	i := s.appointmentIndex(apt.ID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.appointments[i] = apt
	sortAppointments(s.appointments)
	snapshot, listeners := s.appointmentsChangedLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// DeleteAppointment removes an appointment.
func (s *Store) DeleteAppointment(id string) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	i := s.appointmentIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.appointments = slices.Delete(s.appointments, i, i+1)
	snapshot, listeners := s.appointmentsChangedLocked()
	s.mu.Unlock()

	notify(listeners, snapshot)
	return true
}

// FilterEvents returns the events matching term and type, newest first.
func (s *Store) FilterEvents(term string, typ model.RecordType) []model.TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterEvents(s.events, term, typ)
}

// Events returns all events, newest first.
func (s *Store) Events() []model.TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Event returns a single event.
func (s *Store) Event(id string) (model.TimelineEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.eventIndex(id); i >= 0 {
		return s.events[i], true
	}
	return model.TimelineEvent{}, false
}

// Documents returns all documents in upload order.
func (s *Store) Documents() []model.MedicalDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.documents)
}

// Document returns a single document.
func (s *Store) Document(id string) (model.MedicalDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.documentIndex(id); i >= 0 {
		return s.documents[i], true
	}
	return model.MedicalDocument{}, false
}

// Appointments returns all appointments, soonest first.
func (s *Store) Appointments() []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.appointments)
}

// Appointment returns a single appointment.
func (s *Store) Appointment(id string) (model.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.appointmentIndex(id); i >= 0 {
		return s.appointments[i], true
	}
	return model.Appointment{}, false
}

// UpcomingAppointments returns the appointments dated at or after now, soonest first.
func (s *Store) UpcomingAppointments(now time.Time) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if !a.Date.Before(now) {
			out = append(out, a)
		}
	}
	return out
}

// Counts holds collection sizes.
type Counts struct {
	Events       int
	Documents    int
	Appointments int
}

// Counts returns the size of each collection.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Events:       len(s.events),
		Documents:    len(s.documents),
		Appointments: len(s.appointments),
	}
}

func (s *Store) eventIndex(id string) int {
	return slices.IndexFunc(s.events, func(e model.TimelineEvent) bool { return e.ID == id })
}

func (s *Store) documentIndex(id string) int {
	return slices.IndexFunc(s.documents, func(d model.MedicalDocument) bool { return d.ID == id })
}

func (s *Store) appointmentIndex(id string) int {
	return slices.IndexFunc(s.appointments, func(a model.Appointment) bool { return a.ID == id })
}

func (s *Store) appointmentsChangedLocked() ([]model.Appointment, []AppointmentsListener) {
	if len(s.listeners) == 0 {
		return nil, nil
	}
	return slices.Clone(s.appointments), slices.Clone(s.listeners)
}

func notify(listeners []AppointmentsListener, snapshot []model.Appointment) {
	for _, fn := range listeners {
		fn(slices.Clone(snapshot))
	}
}

// sortEvents orders events by date, most recent first. Ties keep their current order.
func sortEvents(events []model.TimelineEvent) {
	slices.SortStableFunc(events, func(a, b model.TimelineEvent) int {
		return b.Date.Compare(a.Date)
	})
}

// sortAppointments orders appointments by date, soonest first. Ties keep their current order.
func sortAppointments(apts []model.Appointment) {
	slices.SortStableFunc(apts, func(a, b model.Appointment) int {
		return a.Date.Compare(b.Date)
	})
}
