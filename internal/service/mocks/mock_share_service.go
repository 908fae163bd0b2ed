package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"healthdash/internal/service"
)

type MockShareService struct {
	mock.Mock
}

var _ service.ShareService = (*MockShareService)(nil)

func (m *MockShareService) Create(ctx context.Context, owner string) (service.ShareLink, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(service.ShareLink), args.Error(1)
}

func (m *MockShareService) Resolve(ctx context.Context, token string) (service.Snapshot, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(service.Snapshot), args.Error(1)
}
