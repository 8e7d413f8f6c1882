package repository

import (
	"context"
	"time"

	"github.com/vytor/brainyflash/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	// Ensure creates the profile on first sight and refreshes its email afterwards.
	Ensure(ctx context.Context, id, email string, now time.Time) (*models.Profile, error)
	Update(ctx context.Context, id string, patch models.ProfilePatch, now time.Time) (*models.Profile, error)
	Stats(ctx context.Context, id string) (*models.UserStats, error)
	Delete(ctx context.Context, id string) error
}
