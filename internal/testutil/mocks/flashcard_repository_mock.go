package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/brainyflash/internal/models"
)

// MockFlashcardRepository is a mock implementation of repository.FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) ListBySet(ctx context.Context, setID string) ([]models.Flashcard, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardRepository) Insert(ctx context.Context, card models.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardRepository) InsertBatch(ctx context.Context, cards []models.Flashcard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Update(ctx context.Context, card models.Flashcard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockFlashcardRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlashcardRepository) OtherDescriptions(ctx context.Context, setID, excludeID string, limit int) ([]string, error) {
	args := m.Called(ctx, setID, excludeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlashcardRepository) CountByImageURL(ctx context.Context, url string) (int, error) {
	args := m.Called(ctx, url)
	return args.Int(0), args.Error(1)
}
