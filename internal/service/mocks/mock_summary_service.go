package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"healthdash/internal/service"
)

type MockSummaryService struct {
	mock.Mock
}

var _ service.SummaryService = (*MockSummaryService)(nil)

func (m *MockSummaryService) Summarize(ctx context.Context, documentID string) (string, error) {
	args := m.Called(ctx, documentID)
	return args.String(0), args.Error(1)
}
