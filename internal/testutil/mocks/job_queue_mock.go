package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueBlobDelete(url string) error {
	args := m.Called(url)
	return args.Error(0)
}
