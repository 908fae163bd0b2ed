package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"healthdash/internal/model"
	"healthdash/internal/service"
)

type MockRecordService struct {
	mock.Mock
}

var _ service.RecordService = (*MockRecordService)(nil)

func (m *MockRecordService) AddEvent(ctx context.Context, draft model.EventDraft, up *service.Upload) (model.TimelineEvent, error) {
	args := m.Called(ctx, draft, up)
	return args.Get(0).(model.TimelineEvent), args.Error(1)
}

func (m *MockRecordService) UpdateEvent(ctx context.Context, id string, patch service.EventPatch) (model.TimelineEvent, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.TimelineEvent), args.Error(1)
}

func (m *MockRecordService) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecordService) ListEvents(ctx context.Context, term string, typ model.RecordType) ([]model.TimelineEvent, error) {
	args := m.Called(ctx, term, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimelineEvent), args.Error(1)
}

func (m *MockRecordService) ListDocuments(ctx context.Context) ([]model.MedicalDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalDocument), args.Error(1)
}

func (m *MockRecordService) GetDocument(ctx context.Context, id string) (model.MedicalDocument, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.MedicalDocument), args.Error(1)
}

func (m *MockRecordService) OpenDocument(ctx context.Context, id string) (io.ReadCloser, model.MedicalDocument, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Get(1).(model.MedicalDocument), args.Error(2)
}

func (m *MockRecordService) DocumentLink(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockRecordService) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecordService) AddAppointment(ctx context.Context, draft model.AppointmentDraft) (model.Appointment, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(model.Appointment), args.Error(1)
}

func (m *MockRecordService) UpdateAppointment(ctx context.Context, id string, draft model.AppointmentDraft) (model.Appointment, error) {
	args := m.Called(ctx, id, draft)
	return args.Get(0).(model.Appointment), args.Error(1)
}

func (m *MockRecordService) DeleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecordService) ListAppointments(ctx context.Context, upcomingOnly bool) ([]model.Appointment, error) {
	args := m.Called(ctx, upcomingOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockRecordService) Upcoming(ctx context.Context) ([]model.UpcomingAppointment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UpcomingAppointment), args.Error(1)
}

func (m *MockRecordService) Stats(ctx context.Context) (service.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Stats), args.Error(1)
}
