package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthdash/internal/model"
	"healthdash/internal/records"
	"healthdash/internal/storage"
)

// Upload is a file attached to a new timeline event.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// EventPatch carries the fields to change on an event. Nil fields are kept.
type EventPatch struct {
	Type        *model.RecordType `json:"type,omitempty"`
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
	DocumentID  *string           `json:"document_id,omitempty"`
}

// Stats are the dashboard counters.
type Stats struct {
	TotalRecords         int `json:"total_records"`
	TotalDocuments       int `json:"total_documents"`
	UpcomingAppointments int `json:"upcoming_appointments"`
}

// RecordService defines the use cases on the medical history.
type RecordService interface {
	// AddEvent validates the draft, stores the optional upload as a document payload and inserts the event.
	AddEvent(ctx context.Context, draft model.EventDraft, up *Upload) (model.TimelineEvent, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (model.TimelineEvent, error)
	// DeleteEvent removes an event. Unknown ids are ignored.
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, term string, typ model.RecordType) ([]model.TimelineEvent, error)

	ListDocuments(ctx context.Context) ([]model.MedicalDocument, error)
	GetDocument(ctx context.Context, id string) (model.MedicalDocument, error)
	// OpenDocument streams the payload of a document. The caller closes the reader.
	OpenDocument(ctx context.Context, id string) (io.ReadCloser, model.MedicalDocument, error)
	DocumentLink(ctx context.Context, id string, expiry time.Duration) (string, error)
	// DeleteDocument removes the payload, then the document and every event link to it.
	// When the payload cannot be removed the document is kept.
	DeleteDocument(ctx context.Context, id string) error

	AddAppointment(ctx context.Context, draft model.AppointmentDraft) (model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, draft model.AppointmentDraft) (model.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	ListAppointments(ctx context.Context, upcomingOnly bool) ([]model.Appointment, error)
	Upcoming(ctx context.Context) ([]model.UpcomingAppointment, error)

	Stats(ctx context.Context) (Stats, error)
}

type recordService struct {
	store   *records.Store
	objects storage.Storage
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

// RecordOption configures the record service.
type RecordOption func(*recordService)

// WithLocation sets the timezone used for calendar-day arithmetic.
func WithLocation(loc *time.Location) RecordOption {
	return func(s *recordService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithNow overrides the time source.
func WithNow(now func() time.Time) RecordOption {
	return func(s *recordService) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) RecordOption {
	return func(s *recordService) { s.log = log }
}

// NewRecordService constructs a RecordService.
func NewRecordService(store *records.Store, objects storage.Storage, opts ...RecordOption) RecordService {
	s := &recordService{store: store, objects: objects, loc: time.UTC, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *recordService) AddEvent(ctx context.Context, draft model.EventDraft, up *Upload) (model.TimelineEvent, error) {
	draft, err := validateEventDraft(draft)
	if err != nil {
		return model.TimelineEvent{}, err
	}
	if up == nil {
		return s.store.AddEvent(draft, nil), nil
	}
	if up.Reader == nil {
		return model.TimelineEvent{}, ErrReaderNil
	}

	name := path.Base(filepath.ToSlash(strings.TrimSpace(up.Name)))
	if name == "" || name == "." || name == "/" {
		return model.TimelineEvent{}, invalid("file", "file name is required")
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := path.Join("documents", uuid.NewString()+filepath.Ext(name))
	info, err := s.objects.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": name},
	})
	if err != nil {
		return model.TimelineEvent{}, fmt.Errorf("upload to storage: %w", err)
	}

	evt := s.store.AddEvent(draft, &model.Attachment{
		Name:        name,
		ContentType: contentType,
		StorageKey:  info.Key,
		Size:        info.Size,
	})
	s.log.Info("document stored",
		zap.String("event_id", evt.ID),
		zap.String("document_id", evt.DocumentID),
		zap.String("storage_key", info.Key),
		zap.Int64("size", info.Size),
	)
	return evt, nil
}

func (s *recordService) UpdateEvent(ctx context.Context, id string, patch EventPatch) (model.TimelineEvent, error) {
	if id == "" {
		return model.TimelineEvent{}, ErrIDRequired
	}
	evt, ok := s.store.Event(id)
	if !ok {
		return model.TimelineEvent{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}

	draft := model.EventDraft{Type: evt.Type, Title: evt.Title, Description: evt.Description}
	if patch.Type != nil {
		draft.Type = *patch.Type
	}
	if patch.Title != nil {
		draft.Title = *patch.Title
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	draft, err := validateEventDraft(draft)
	if err != nil {
		return model.TimelineEvent{}, err
	}

	evt.Type, evt.Title, evt.Description = draft.Type, draft.Title, draft.Description
	if patch.Date != nil {
		if patch.Date.IsZero() {
			return model.TimelineEvent{}, invalid("date", "date is required")
		}
		evt.Date = *patch.Date
	}
	if patch.DocumentID != nil {
		evt.DocumentID = *patch.DocumentID
	}

	if !s.store.UpdateEvent(evt) {
		return model.TimelineEvent{}, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	updated, _ := s.store.Event(id)
	return updated, nil
}

func (s *recordService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	s.store.DeleteEvent(id)
	return nil
}

func (s *recordService) ListEvents(ctx context.Context, term string, typ model.RecordType) ([]model.TimelineEvent, error) {
	return s.store.FilterEvents(term, typ), nil
}

func (s *recordService) ListDocuments(ctx context.Context) ([]model.MedicalDocument, error) {
	return s.store.Documents(), nil
}

func (s *recordService) GetDocument(ctx context.Context, id string) (model.MedicalDocument, error) {
	if id == "" {
		return model.MedicalDocument{}, ErrIDRequired
	}
	doc, ok := s.store.Document(id)
	if !ok {
		return model.MedicalDocument{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

func (s *recordService) OpenDocument(ctx context.Context, id string) (io.ReadCloser, model.MedicalDocument, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, model.MedicalDocument{}, err
	}
	rc, _, err := s.objects.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, model.MedicalDocument{}, fmt.Errorf("open payload: %w", err)
	}
	return rc, doc, nil
}

func (s *recordService) DocumentLink(ctx context.Context, id string, expiry time.Duration) (string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return s.objects.PresignGet(ctx, doc.StorageKey, expiry)
}

func (s *recordService) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, ok := s.store.Document(id)
	if !ok {
		return nil
	}
	if err := s.objects.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	s.store.DeleteDocument(id)
	s.log.Info("document deleted", zap.String("document_id", id), zap.String("storage_key", doc.StorageKey))
	return nil
}

func (s *recordService) AddAppointment(ctx context.Context, draft model.AppointmentDraft) (model.Appointment, error) {
	draft, err := validateAppointmentDraft(draft)
	if err != nil {
		return model.Appointment{}, err
	}
	return s.store.AddAppointment(draft), nil
}

func (s *recordService) UpdateAppointment(ctx context.Context, id string, draft model.AppointmentDraft) (model.Appointment, error) {
	if id == "" {
		return model.Appointment{}, ErrIDRequired
	}
	draft, err := validateAppointmentDraft(draft)
	if err != nil {
		return model.Appointment{}, err
	}
	apt := model.Appointment{
		ID:        id,
		Date:      draft.Date,
		Doctor:    draft.Doctor,
		Specialty: draft.Specialty,
		Location:  draft.Location,
	}
	if !s.store.UpdateAppointment(apt) {
		return model.Appointment{}, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return apt, nil
}

func (s *recordService) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	s.store.DeleteAppointment(id)
	return nil
}

func (s *recordService) ListAppointments(ctx context.Context, upcomingOnly bool) ([]model.Appointment, error) {
	if upcomingOnly {
		return s.store.UpcomingAppointments(s.now()), nil
	}
	return s.store.Appointments(), nil
}

func (s *recordService) Upcoming(ctx context.Context) ([]model.UpcomingAppointment, error) {
	now := s.now()
	apts := s.store.UpcomingAppointments(now)
	out := make([]model.UpcomingAppointment, 0, len(apts))
	for _, a := range apts {
		days := CalendarDaysBetween(now, a.Date, s.loc)
		out = append(out, model.UpcomingAppointment{Appointment: a, DaysUntil: days, Label: model.DaysUntilLabel(days)})
	}
	return out, nil
}

func (s *recordService) Stats(ctx context.Context) (Stats, error) {
	c := s.store.Counts()
	return Stats{
		TotalRecords:         c.Events,
		TotalDocuments:       c.Documents,
		UpcomingAppointments: len(s.store.UpcomingAppointments(s.now())),
	}, nil
}

// CalendarDaysBetween counts midnights between from and to as seen in loc.
func CalendarDaysBetween(from, to time.Time, loc *time.Location) int {
	f, t := from.In(loc), to.In(loc)
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}

func validateEventDraft(d model.EventDraft) (model.EventDraft, error) {
	typ, err := model.ParseRecordType(string(d.Type))
	if err != nil {
		return d, invalid("type", err.Error())
	}
	d.Type = typ
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return d, invalid("title", "title is required")
	}
	if d.Description == "" {
		return d, invalid("description", "description is required")
	}
	return d, nil
}

func validateAppointmentDraft(d model.AppointmentDraft) (model.AppointmentDraft, error) {
	d.Doctor = strings.TrimSpace(d.Doctor)
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.Location = strings.TrimSpace(d.Location)
	switch {
	case d.Date.IsZero():
		return d, invalid("date", "date is required")
	case d.Doctor == "":
		return d, invalid("doctor", "doctor is required")
	case d.Specialty == "":
		return d, invalid("specialty", "specialty is required")
	case d.Location == "":
		return d, invalid("location", "location is required")
	}
	return d, nil
}
