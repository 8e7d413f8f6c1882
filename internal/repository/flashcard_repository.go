package repository

import (
	"context"

	"github.com/vytor/brainyflash/internal/models"
)

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Get(ctx context.Context, id string) (*models.Flashcard, error)
	ListBySet(ctx context.Context, setID string) ([]models.Flashcard, error)
	Insert(ctx context.Context, card models.Flashcard) error
	InsertBatch(ctx context.Context, cards []models.Flashcard) error
	Update(ctx context.Context, card models.Flashcard) error
	Delete(ctx context.Context, id string) error
	// OtherDescriptions returns up to limit descriptions from the set, excluding one card.
	OtherDescriptions(ctx context.Context, setID, excludeID string, limit int) ([]string, error)
	// CountByImageURL counts flashcards in any set whose image is url.
	CountByImageURL(ctx context.Context, url string) (int, error)
}
