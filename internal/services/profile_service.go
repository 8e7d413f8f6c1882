package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/vytor/brainyflash/internal/db"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// ProfileService handles profile-related business logic
type ProfileService interface {
	EnsureProfile(ctx context.Context, id identity.Identity) (*models.Profile, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	UserStats(ctx context.Context, userID string) (*models.UserStats, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) EnsureProfile(ctx context.Context, id identity.Identity) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("ensuring profile: user_id=%s", id.UserID)

	if err := requireUser(id.UserID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Ensure(ctx, id.UserID, id.Email, time.Now())
	if err != nil {
		log.Error("failed to ensure profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: user_id=%s", userID)

	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", userID)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating profile: user_id=%s", userID)

	if patch.Empty() {
		return nil, errors.NewValidationError("profile", "no fields to update")
	}
	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if !usernamePattern.MatchString(name) {
			return nil, errors.NewValidationError("username", "must be 3-30 letters, digits or underscores")
		}
		patch.Username = &name
	}
	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		if len(name) > 100 {
			return nil, errors.NewValidationError("display_name", "must be at most 100 characters")
		}
		patch.DisplayName = &name
	}

	profile, err := s.profileRepo.Update(ctx, userID, patch, time.Now())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.NewConflictError("username is already taken")
		}
		log.Error("failed to update profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if profile == nil {
		return nil, errors.NewNotFoundError("profile", userID)
	}
	return profile, nil
}

func (s *profileService) UserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user stats: user_id=%s", userID)

	stats, err := s.profileRepo.Stats(ctx, userID)
	if err != nil {
		log.Error("failed to get user stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)
	log.Info("deleting account: user_id=%s", userID)

	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		log.Error("failed to delete account: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
