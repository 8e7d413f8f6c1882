package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

// CollaboratorService manages per-user grants on a set
type CollaboratorService interface {
	ListCollaborators(ctx context.Context, userID, setID string) ([]models.Collaborator, error)
	// AddCollaborator grants permission to the user with the given email, updating an
	// existing grant in place. An empty permission means viewer.
	AddCollaborator(ctx context.Context, userID, setID, email, permission string) (*models.Collaborator, error)
	UpdateCollaborator(ctx context.Context, userID, setID, collaboratorID, permission string) (*models.Collaborator, error)
	RemoveCollaborator(ctx context.Context, userID, setID, collaboratorID string) error
}

type collaboratorService struct {
	guard       setGuard
	collabRepo  repository.CollaboratorRepository
	profileRepo repository.ProfileRepository
}

// NewCollaboratorService creates a new CollaboratorService
func NewCollaboratorService(
	setRepo repository.SetRepository,
	collabRepo repository.CollaboratorRepository,
	profileRepo repository.ProfileRepository,
) CollaboratorService {
	return &collaboratorService{
		guard:       setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		collabRepo:  collabRepo,
		profileRepo: profileRepo,
	}
}

func (s *collaboratorService) ListCollaborators(ctx context.Context, userID, setID string) ([]models.Collaborator, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing collaborators: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	set, _, err := s.guard.load(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	list, err := s.collabRepo.List(ctx, setID)
	if err != nil {
		log.Error("failed to list collaborators: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if userID != set.OwnerID && !containsUser(list, userID) {
		return nil, errors.NewForbiddenError("only the owner and collaborators can see collaborators")
	}
	return list, nil
}

func (s *collaboratorService) AddCollaborator(ctx context.Context, userID, setID, email, permission string) (*models.Collaborator, error) {
	log := logger.FromContext(ctx)
	log.Debug("adding collaborator: set_id=%s, permission=%s", setID, permission)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.NewValidationError("email", "cannot be empty")
	}
	perm, err := parsePermission(permission)
	if err != nil {
		return nil, err
	}

	set, err := s.guard.requireOwner(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	target, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Error("failed to look up collaborator: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("user", email)
	}
	if target.ID == set.OwnerID {
		return nil, errors.NewValidationError("email", "the set owner cannot be added as a collaborator")
	}

	collab, err := s.collabRepo.Upsert(ctx, models.Collaborator{
		ID:         uuid.NewString(),
		SetID:      setID,
		UserID:     target.ID,
		Permission: perm,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to add collaborator: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("granted %s on set %s to user %s", perm, setID, target.ID)
	return collab, nil
}

func (s *collaboratorService) UpdateCollaborator(ctx context.Context, userID, setID, collaboratorID, permission string) (*models.Collaborator, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating collaborator: id=%s", collaboratorID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(permission) == "" {
		return nil, errors.NewValidationError("permission", "cannot be empty")
	}
	perm, err := parsePermission(permission)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.requireOwner(ctx, userID, setID); err != nil {
		return nil, err
	}
	if _, err := s.loadCollaborator(ctx, setID, collaboratorID); err != nil {
		return nil, err
	}

	if err := s.collabRepo.UpdatePermission(ctx, collaboratorID, perm); err != nil {
		log.Error("failed to update collaborator: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.loadCollaborator(ctx, setID, collaboratorID)
}

func (s *collaboratorService) RemoveCollaborator(ctx context.Context, userID, setID, collaboratorID string) error {
	log := logger.FromContext(ctx)
	log.Debug("removing collaborator: id=%s", collaboratorID)

	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.guard.requireOwner(ctx, userID, setID); err != nil {
		return err
	}
	if _, err := s.loadCollaborator(ctx, setID, collaboratorID); err != nil {
		return err
	}
	if err := s.collabRepo.Delete(ctx, collaboratorID); err != nil {
		log.Error("failed to remove collaborator: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// loadCollaborator returns the grant only when it belongs to setID.
func (s *collaboratorService) loadCollaborator(ctx context.Context, setID, collaboratorID string) (*models.Collaborator, error) {
	c, err := s.collabRepo.Get(ctx, collaboratorID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get collaborator: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if c == nil || c.SetID != setID {
		return nil, errors.NewNotFoundError("collaborator", collaboratorID)
	}
	return c, nil
}

func parsePermission(s string) (models.Permission, error) {
	if strings.TrimSpace(s) == "" {
		return models.PermissionViewer, nil
	}
	p, ok := models.ParsePermission(s)
	if !ok {
		return "", errors.NewValidationError("permission", "must be one of viewer, editor, owner")
	}
	return p, nil
}
