package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/brainyflash/internal/completion"
)

// MockCompletionService is a mock implementation of completion.Service
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, req completion.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
