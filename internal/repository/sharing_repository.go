package repository

import (
	"context"

	"github.com/vytor/brainyflash/internal/models"
)

// CollaboratorRepository handles collaborator grants
type CollaboratorRepository interface {
	// Grant returns the stored permission for (set, user), or "" when there is none.
	Grant(ctx context.Context, setID, userID string) (models.Permission, error)
	Get(ctx context.Context, id string) (*models.Collaborator, error)
	List(ctx context.Context, setID string) ([]models.Collaborator, error)
	// Upsert inserts the grant or updates the permission of the existing (set, user) row.
	Upsert(ctx context.Context, c models.Collaborator) (*models.Collaborator, error)
	UpdatePermission(ctx context.Context, id string, permission models.Permission) error
	Delete(ctx context.Context, id string) error
}

// ShareLinkRepository handles share tokens
type ShareLinkRepository interface {
	Insert(ctx context.Context, link models.ShareLink) error
	GetByToken(ctx context.Context, token string) (*models.ShareLink, error)
	ListBySet(ctx context.Context, setID string) ([]models.ShareLink, error)
	Deactivate(ctx context.Context, token string) error
}
