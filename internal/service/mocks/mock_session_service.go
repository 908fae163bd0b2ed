package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"healthdash/internal/auth"
	"healthdash/internal/model"
	"healthdash/internal/service"
)

type MockSessionService struct {
	mock.Mock
}

var _ service.SessionService = (*MockSessionService)(nil)

func (m *MockSessionService) Login(ctx context.Context, creds auth.Credentials, register bool) (service.Session, error) {
	args := m.Called(ctx, creds, register)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockSessionService) Current(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockSessionService) Verify(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}
