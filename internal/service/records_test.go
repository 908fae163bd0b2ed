package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"healthdash/internal/model"
	"healthdash/internal/records"
	"healthdash/internal/storage"
	storeMocks "healthdash/internal/storage/mocks"
)

var fixedNow = time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

func newRecordService(objects storage.Storage, opts ...RecordOption) (RecordService, *records.Store) {
	store := records.NewStore(records.WithClock(func() time.Time { return fixedNow }))
	opts = append([]RecordOption{WithNow(func() time.Time { return fixedNow })}, opts...)
	return NewRecordService(store, objects, opts...), store
}

func TestRecordService_AddEvent(t *testing.T) {
	ctx := context.Background()
	draft := model.EventDraft{Type: model.RecordExam, Title: " Blood test ", Description: "Full panel"}

	tests := []struct {
		name       string
		draft      model.EventDraft
		upload     func() *Upload
		setupMocks func(mStore *storeMocks.MockStorage)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, evt model.TimelineEvent, store *records.Store)
	}{
		{
			name:  "without attachment",
			draft: draft,
			check: func(t *testing.T, evt model.TimelineEvent, store *records.Store) {
				assert.Equal(t, "Blood test", evt.Title)
				assert.Empty(t, evt.DocumentID)
				assert.Equal(t, fixedNow, evt.Date)
			},
		},
		{
			name:  "with attachment",
			draft: draft,
			upload: func() *Upload {
				return &Upload{Name: "scan.png", ContentType: "image/png", Size: 6, Reader: strings.NewReader("pixels")}
			},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/") && strings.HasSuffix(key, ".png")
				}), mock.Anything, storage.PutObjectOptions{
					Size:        6,
					ContentType: "image/png",
					Metadata:    map[string]string{"original-filename": "scan.png"},
				}).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: 6, ContentType: "image/png"}
				}, nil)
			},
			check: func(t *testing.T, evt model.TimelineEvent, store *records.Store) {
				require.NotEmpty(t, evt.DocumentID)
				doc, ok := store.Document(evt.DocumentID)
				require.True(t, ok)
				assert.Equal(t, "scan.png", doc.Name)
				assert.Equal(t, int64(6), doc.Size)
				assert.True(t, strings.HasPrefix(doc.StorageKey, "documents/"))
			},
		},
		{
			name:    "validation error - unknown type",
			draft:   model.EventDraft{Type: "Surgery", Title: "x", Description: "y"},
			wantErr: &ValidationError{},
		},
		{
			name:    "validation error - blank title",
			draft:   model.EventDraft{Type: model.RecordNote, Title: "   ", Description: "y"},
			wantErr: &ValidationError{},
		},
		{
			name:    "validation error - nil reader",
			draft:   draft,
			upload:  func() *Upload { return &Upload{Name: "a.png"} },
			wantErr: ErrReaderNil,
		},
		{
			name:  "storage error",
			draft: draft,
			upload: func() *Upload {
				return &Upload{Name: "a.pdf", ContentType: "application/pdf", Size: 1, Reader: strings.NewReader("x")}
			},
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			if tt.setupMocks != nil {
				tt.setupMocks(mStore)
			}
			svc, store := newRecordService(mStore)

			var up *Upload
			if tt.upload != nil {
				up = tt.upload()
			}
			evt, err := svc.AddEvent(ctx, tt.draft, up)

			switch {
			case tt.wantErr != nil:
				var ve *ValidationError
				if errors.As(tt.wantErr, &ve) {
					assert.ErrorAs(t, err, &ve)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Zero(t, store.Counts().Events)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.Zero(t, store.Counts().Events)
			default:
				require.NoError(t, err)
				tt.check(t, evt, store)
			}
			mStore.AssertExpectations(t)
		})
	}
}

func TestRecordService_UpdateEvent(t *testing.T) {
	ctx := context.Background()
	svc, store := newRecordService(storage.NewMemory())

	evt, err := svc.AddEvent(ctx, model.EventDraft{Type: model.RecordNote, Title: "Old", Description: "desc"}, nil)
	require.NoError(t, err)

	title := "New"
	typ := model.RecordExam
	updated, err := svc.UpdateEvent(ctx, evt.ID, EventPatch{Title: &title, Type: &typ})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, model.RecordExam, updated.Type)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, evt.Date, updated.Date)

	dangling := "missing-doc"
	updated, err = svc.UpdateEvent(ctx, evt.ID, EventPatch{DocumentID: &dangling})
	require.NoError(t, err)
	assert.Empty(t, updated.DocumentID)

	blank := " "
	_, err = svc.UpdateEvent(ctx, evt.ID, EventPatch{Description: &blank})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "description", ve.Field)

	_, err = svc.UpdateEvent(ctx, "nope", EventPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, store.Counts().Events)
}

func TestRecordService_DeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to events", func(t *testing.T) {
		objects := storage.NewMemory()
		svc, store := newRecordService(objects)
		evt, err := svc.AddEvent(ctx, model.EventDraft{Type: model.RecordExam, Title: "X-ray", Description: "chest"},
			&Upload{Name: "xray.jpg", ContentType: "image/jpeg", Size: -1, Reader: strings.NewReader("jpg")})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteDocument(ctx, evt.DocumentID))

		got, ok := store.Event(evt.ID)
		require.True(t, ok)
		assert.Empty(t, got.DocumentID)
		assert.Zero(t, store.Counts().Documents)
		assert.Zero(t, objects.Len())
	})

	t.Run("payload delete failure keeps document", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
				return storage.ObjectInfo{Key: key, Size: 3}
			}, nil)
		mStore.On("Delete", ctx, mock.Anything).Return(errors.New("object store down"))

		svc, store := newRecordService(mStore)
		evt, err := svc.AddEvent(ctx, model.EventDraft{Type: model.RecordExam, Title: "X-ray", Description: "chest"},
			&Upload{Name: "xray.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("jpg")})
		require.NoError(t, err)

		err = svc.DeleteDocument(ctx, evt.DocumentID)
		assert.EqualError(t, err, "delete storage: object store down")

		got, _ := store.Event(evt.ID)
		assert.Equal(t, evt.DocumentID, got.DocumentID)
		assert.Equal(t, 1, store.Counts().Documents)
		mStore.AssertExpectations(t)
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc, _ := newRecordService(mStore)
		assert.NoError(t, svc.DeleteDocument(ctx, "ghost"))
		assert.ErrorIs(t, svc.DeleteDocument(ctx, ""), ErrIDRequired)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestRecordService_OpenAndLink(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRecordService(storage.NewMemory())
	evt, err := svc.AddEvent(ctx, model.EventDraft{Type: model.RecordPrescription, Title: "Rx", Description: "meds"},
		&Upload{Name: "rx.png", ContentType: "image/png", Size: -1, Reader: strings.NewReader("png-bytes")})
	require.NoError(t, err)

	rc, doc, err := svc.OpenDocument(ctx, evt.DocumentID)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "rx.png", doc.Name)

	_, err = svc.DocumentLink(ctx, evt.DocumentID, time.Minute)
	assert.ErrorIs(t, err, storage.ErrPresignUnsupported)

	_, _, err = svc.OpenDocument(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordService_Appointments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRecordService(storage.NewMemory())

	_, err := svc.AddAppointment(ctx, model.AppointmentDraft{Doctor: "Dr. Who", Specialty: "Cardio", Location: "Room 1"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date", ve.Field)

	past, err := svc.AddAppointment(ctx, model.AppointmentDraft{Date: fixedNow.Add(-time.Hour), Doctor: "Dr. A", Specialty: "Derm", Location: "R2"})
	require.NoError(t, err)
	later, err := svc.AddAppointment(ctx, model.AppointmentDraft{Date: fixedNow.Add(50 * time.Hour), Doctor: "Dr. B", Specialty: "Ortho", Location: "R3"})
	require.NoError(t, err)
	tonight, err := svc.AddAppointment(ctx, model.AppointmentDraft{Date: fixedNow.Add(time.Hour), Doctor: "Dr. C", Specialty: "ENT", Location: "R4"})
	require.NoError(t, err)

	all, err := svc.ListAppointments(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	upcoming, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, tonight.ID, upcoming[0].ID)
	assert.Equal(t, 0, upcoming[0].DaysUntil)
	assert.Equal(t, "Today", upcoming[0].Label)
	assert.Equal(t, later.ID, upcoming[1].ID)
	assert.Equal(t, 3, upcoming[1].DaysUntil)

	_, err = svc.UpdateAppointment(ctx, "ghost", model.AppointmentDraft{Date: fixedNow, Doctor: "a", Specialty: "b", Location: "c"})
	assert.ErrorIs(t, err, ErrNotFound)

	moved, err := svc.UpdateAppointment(ctx, past.ID, model.AppointmentDraft{Date: fixedNow.Add(30 * time.Hour), Doctor: "Dr. A", Specialty: "Derm", Location: "R2"})
	require.NoError(t, err)
	assert.Equal(t, past.ID, moved.ID)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UpcomingAppointments)

	require.NoError(t, svc.DeleteAppointment(ctx, later.ID))
	require.NoError(t, svc.DeleteAppointment(ctx, later.ID))
	all, _ = svc.ListAppointments(ctx, false)
	assert.Len(t, all, 2)
}

func TestRecordService_UpcomingUsesLocation(t *testing.T) {
	ctx := context.Background()
	jakarta := time.FixedZone("WIB", 7*3600)
	svc, _ := newRecordService(storage.NewMemory(), WithLocation(jakarta))

	// 01:30 UTC on June 2 is tomorrow in UTC but the same local day as now in UTC+7.
	_, err := svc.AddAppointment(ctx, model.AppointmentDraft{Date: fixedNow.Add(3*time.Hour + 30*time.Minute), Doctor: "a", Specialty: "b", Location: "c"})
	require.NoError(t, err)

	upcoming, err := svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, 0, upcoming[0].DaysUntil)
	assert.Equal(t, "Today", upcoming[0].Label)
}

func TestRecordService_ListEventsAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRecordService(storage.NewMemory())
	for _, d := range []model.EventDraft{
		{Type: model.RecordExam, Title: "Blood test", Description: "panel"},
		{Type: model.RecordNote, Title: "Diet", Description: "less salt"},
	} {
		_, err := svc.AddEvent(ctx, d, nil)
		require.NoError(t, err)
	}

	got, err := svc.ListEvents(ctx, "BLOOD", model.RecordTypeAll)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blood test", got[0].Title)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalRecords: 2}, stats)
}

func TestCalendarDaysBetween(t *testing.T) {
	from := time.Date(2024, 3, 30, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 0, CalendarDaysBetween(from, from.Add(10*time.Minute), time.UTC))
	assert.Equal(t, 1, CalendarDaysBetween(from, from.Add(time.Hour), time.UTC))
	assert.Equal(t, -1, CalendarDaysBetween(from, from.Add(-24*time.Hour), time.UTC))
	assert.Equal(t, 32, CalendarDaysBetween(from, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), time.UTC))
}
