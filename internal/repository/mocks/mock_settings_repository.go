package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"healthdash/internal/repository"
)

type MockSettingsRepository struct {
	mock.Mock
}

var _ repository.SettingsRepository = (*MockSettingsRepository)(nil)

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockSettingsRepository) Put(ctx context.Context, key string, value json.RawMessage) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettingsRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
