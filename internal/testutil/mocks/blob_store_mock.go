package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockBlobStore is a mock implementation of blob.Store
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockBlobStore) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}
