package services

import (
	"context"

	"github.com/vytor/brainyflash/internal/access"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

// setGuard loads a set together with the caller's effective access on it.
type setGuard struct {
	setRepo          repository.SetRepository
	collaboratorRepo repository.CollaboratorRepository
}

// load returns NOT_FOUND both for missing sets and for sets the caller cannot see.
func (g setGuard) load(ctx context.Context, userID, setID string) (*models.Set, models.AccessLevel, error) {
	log := logger.FromContext(ctx)

	set, err := g.setRepo.Get(ctx, setID)
	if err != nil {
		log.Error("failed to load set: %v", err)
		return nil, models.AccessNone, errors.NewInternalError(err)
	}
	if set == nil {
		return nil, models.AccessNone, errors.NewNotFoundError("set", setID)
	}

	var grant models.Permission
	if userID != "" && userID != set.OwnerID {
		grant, err = g.collaboratorRepo.Grant(ctx, setID, userID)
		if err != nil {
			log.Error("failed to load collaborator grant: %v", err)
			return nil, models.AccessNone, errors.NewInternalError(err)
		}
	}

	level := access.Resolve(userID, *set, grant)
	if level == models.AccessNone {
		log.Debug("set hidden from caller: set_id=%s", setID)
		return nil, models.AccessNone, errors.NewNotFoundError("set", setID)
	}
	return set, level, nil
}

// require loads the set and checks the caller holds at least need.
func (g setGuard) require(ctx context.Context, userID, setID string, need models.AccessLevel) (*models.Set, models.AccessLevel, error) {
	set, level, err := g.load(ctx, userID, setID)
	if err != nil {
		return nil, models.AccessNone, err
	}
	if err := access.Require(level, need, setID); err != nil {
		return nil, level, err
	}
	return set, level, nil
}

// requireOwner loads the set and checks the caller is its true owner.
func (g setGuard) requireOwner(ctx context.Context, userID, setID string) (*models.Set, error) {
	set, level, err := g.load(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireTrueOwner(userID, *set, level); err != nil {
		return nil, err
	}
	return set, nil
}

func requireUser(userID string) error {
	if userID == "" {
		return errors.NewUnauthenticatedError("authentication required")
	}
	return nil
}
