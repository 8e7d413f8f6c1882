package repository

import (
	"context"
	"time"

	"github.com/vytor/brainyflash/internal/models"
)

// SetRepository handles set data access
type SetRepository interface {
	Get(ctx context.Context, id string) (*models.Set, error)
	List(ctx context.Context, filter models.SetFilter) ([]models.Set, error)
	Insert(ctx context.Context, set models.Set) error
	Update(ctx context.Context, id string, patch models.SetPatch, now time.Time) error
	Delete(ctx context.Context, id string) error
	// ImageURLs lists the image URLs of every flashcard in the set.
	ImageURLs(ctx context.Context, id string) ([]string, error)
}

// FavoriteRepository handles favorite markers
type FavoriteRepository interface {
	Add(ctx context.Context, userID, setID string, now time.Time) error
	Remove(ctx context.Context, userID, setID string) (bool, error)
	Exists(ctx context.Context, userID, setID string) (bool, error)
	List(ctx context.Context, userID string) ([]models.Set, error)
}
