package records

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/model"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(clock *stepClock) *Store {
	return NewStore(WithClock(clock.Now), WithIDGenerator(sequentialIDs()))
}

func TestStore_AddEvent(t *testing.T) {
	base := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	clock := &stepClock{now: base}
	s := newTestStore(clock)

	t.Run("without file", func(t *testing.T) {
		evt := s.AddEvent(model.EventDraft{Title: "Check-up", Type: model.RecordNote, Description: "ok"}, nil)

		assert.Equal(t, "id-1", evt.ID)
		assert.Equal(t, base, evt.Date)
		assert.Empty(t, evt.DocumentID)

		events := s.Events()
		require.Len(t, events, 1)
		assert.Equal(t, evt, events[0])
		assert.Empty(t, s.Documents())
	})

	t.Run("with file links a new document", func(t *testing.T) {
		clock.Set(base.Add(time.Hour))
		evt := s.AddEvent(model.EventDraft{Title: "Blood test", Type: model.RecordExam, Description: "CBC"}, &model.Attachment{
			Name:        "cbc.png",
			ContentType: "image/png",
			StorageKey:  "documents/x.png",
			Size:        42,
		})

		require.NotEmpty(t, evt.DocumentID)
		doc, ok := s.Document(evt.DocumentID)
		require.True(t, ok)
		assert.Equal(t, "cbc.png", doc.Name)
		assert.Equal(t, "image/png", doc.ContentType)
		assert.Equal(t, int64(42), doc.Size)
		assert.Equal(t, base.Add(time.Hour), doc.UploadDate)

		events := s.Events()
		require.Len(t, events, 2)
		assert.Equal(t, evt.ID, events[0].ID, "newest event goes first")
	})
}

func TestStore_EventsStayNewestFirst(t *testing.T) {
	clock := &stepClock{}
	s := newTestStore(clock)

	offsets := []time.Duration{5, -3, 0, 12, -7, 12, 1}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, off := range offsets {
		clock.Set(base.Add(off * time.Hour))
		s.AddEvent(model.EventDraft{Title: "t", Type: model.RecordNote, Description: "d"}, nil)
	}

	events := s.Events()
	require.Len(t, events, len(offsets))
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.After(events[i-1].Date), "events must be non-increasing by date")
	}
}

func TestStore_UpdateEvent(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &stepClock{now: base}
	s := newTestStore(clock)

	first := s.AddEvent(model.EventDraft{Title: "old", Type: model.RecordNote, Description: "d"}, nil)
	clock.Set(base.Add(time.Hour))
	s.AddEvent(model.EventDraft{Title: "new", Type: model.RecordNote, Description: "d"}, nil)

	t.Run("replaces and re-sorts", func(t *testing.T) {
		first.Title = "moved"
		first.Date = base.Add(2 * time.Hour)
		assert.True(t, s.UpdateEvent(first))

		events := s.Events()
		assert.Equal(t, "moved", events[0].Title)
	})

	t.Run("clears dangling document reference", func(t *testing.T) {
		first.DocumentID = "missing-doc"
		assert.True(t, s.UpdateEvent(first))

		got, ok := s.Event(first.ID)
		require.True(t, ok)
		assert.Empty(t, got.DocumentID)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := s.Events()
		assert.False(t, s.UpdateEvent(model.TimelineEvent{ID: "nope", Title: "x"}))
		assert.Equal(t, before, s.Events())
	})
}

func TestStore_DeleteEventKeepsDocument(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})
	evt := s.AddEvent(model.EventDraft{Title: "t", Type: model.RecordExam, Description: "d"}, &model.Attachment{Name: "a.pdf"})

	assert.True(t, s.DeleteEvent(evt.ID))
	assert.False(t, s.DeleteEvent(evt.ID))
	assert.Empty(t, s.Events())

	_, ok := s.Document(evt.DocumentID)
	assert.True(t, ok)
}

func TestStore_DeleteDocumentClearsReferences(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})
	evt := s.AddEvent(model.EventDraft{Title: "scan", Type: model.RecordExam, Description: "d"}, &model.Attachment{Name: "scan.jpg"})
	other := s.AddEvent(model.EventDraft{Title: "other", Type: model.RecordNote, Description: "d"}, nil)

	// a second event citing the same document
	other.DocumentID = evt.DocumentID
	require.True(t, s.UpdateEvent(other))

	doc, ok := s.DeleteDocument(evt.DocumentID)
	require.True(t, ok)
	assert.Equal(t, "scan.jpg", doc.Name)

	_, ok = s.Document(evt.DocumentID)
	assert.False(t, ok)

	events := s.Events()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Empty(t, e.DocumentID)
	}

	_, ok = s.DeleteDocument(evt.DocumentID)
	assert.False(t, ok)
}

func TestStore_AppointmentsStaySoonestFirst(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	days := []int{10, 2, 7, 2, 30, 1}
	var created []model.Appointment
	for _, d := range days {
		created = append(created, s.AddAppointment(model.AppointmentDraft{
			Date: base.AddDate(0, 0, d), Doctor: "Dr. X", Specialty: "Cardio", Location: "Clinic",
		}))
	}

	moved := created[0]
	moved.Date = base.AddDate(0, 0, -1)
	require.True(t, s.UpdateAppointment(moved))
	assert.False(t, s.UpdateAppointment(model.Appointment{ID: "missing"}))

	apts := s.Appointments()
	require.Len(t, apts, len(days))
	assert.Equal(t, moved.ID, apts[0].ID)
	for i := 1; i < len(apts); i++ {
		assert.False(t, apts[i].Date.Before(apts[i-1].Date), "appointments must be non-decreasing by date")
	}
}

func TestStore_AddAppointmentPosition(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.AddAppointment(model.AppointmentDraft{Date: base, Doctor: "A", Specialty: "S", Location: "L"})
	s.AddAppointment(model.AppointmentDraft{Date: base.AddDate(0, 0, 10), Doctor: "B", Specialty: "S", Location: "L"})

	d := base.AddDate(0, 0, 5)
	apt := s.AddAppointment(model.AppointmentDraft{Date: d, Doctor: "Dr. X", Specialty: "Cardio", Location: "Clinic"})

	apts := s.Appointments()
	require.Len(t, apts, 3)
	assert.Equal(t, apt.ID, apts[1].ID)
	assert.Equal(t, d, apts[1].Date)
}

func TestStore_AppointmentListener(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})

	var snapshots [][]model.Appointment
	s.OnAppointmentsChanged(func(apts []model.Appointment) {
		// listeners run outside the lock, so reading the store must not deadlock
		_ = s.Appointments()
		snapshots = append(snapshots, apts)
	})

	apt := s.AddAppointment(model.AppointmentDraft{Date: time.Now(), Doctor: "D", Specialty: "S", Location: "L"})
	apt.Doctor = "E"
	s.UpdateAppointment(apt)
	s.DeleteAppointment(apt.ID)
	s.DeleteAppointment(apt.ID)

	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0], 1)
	assert.Equal(t, "E", snapshots[1][0].Doctor)
	assert.Empty(t, snapshots[2])
}

func TestStore_ConcurrentWritesNotifyInOrder(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu     sync.Mutex
		calls  int
		latest []model.Appointment
	)
	s.OnAppointmentsChanged(func(apts []model.Appointment) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
		mu.Lock()
		latest = apts
		mu.Unlock()
	})

	draft := model.AppointmentDraft{Date: time.Now().Add(48 * time.Hour), Doctor: "D", Specialty: "S", Location: "L"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.AddAppointment(draft)
	}()
	<-entered

	go func() {
		defer wg.Done()
		s.AddAppointment(draft)
	}()
	// give the second write time to overtake the first one if it could
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Len(t, s.Appointments(), 2)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
	assert.Len(t, latest, 2, "the last delivered snapshot must be the newest one")
}

func TestStore_UpcomingAndCounts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(&stepClock{now: now})
	s.AddAppointment(model.AppointmentDraft{Date: now.Add(-time.Hour), Doctor: "past", Specialty: "S", Location: "L"})
	s.AddAppointment(model.AppointmentDraft{Date: now, Doctor: "now", Specialty: "S", Location: "L"})
	s.AddAppointment(model.AppointmentDraft{Date: now.Add(time.Hour), Doctor: "later", Specialty: "S", Location: "L"})
	s.AddEvent(model.EventDraft{Title: "t", Type: model.RecordNote, Description: "d"}, &model.Attachment{Name: "f"})

	up := s.UpcomingAppointments(now)
	require.Len(t, up, 2)
	assert.Equal(t, "now", up[0].Doctor)
	assert.Equal(t, "later", up[1].Doctor)

	assert.Equal(t, Counts{Events: 1, Documents: 1, Appointments: 3}, s.Counts())
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := newTestStore(&stepClock{now: time.Now()})
	s.AddEvent(model.EventDraft{Title: "t", Type: model.RecordNote, Description: "d"}, nil)

	events := s.Events()
	events[0].Title = "mutated"

	assert.Equal(t, "t", s.Events()[0].Title)
}
