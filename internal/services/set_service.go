package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/db"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/jobs"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

const (
	maxTitleLength = 200
	maxTags        = 20
	maxTagLength   = 50
)

// SetInput carries the fields of a new set.
type SetInput struct {
	Title           string
	Description     string
	Tags            []string
	IsPublic        bool
	IsCollaborative bool
}

// SetService handles set and favorite business logic
type SetService interface {
	CreateSet(ctx context.Context, userID string, in SetInput) (*models.Set, error)
	GetSet(ctx context.Context, userID, setID string) (*models.SetDetail, error)
	ListSets(ctx context.Context, userID string, filter models.SetFilter) ([]models.Set, error)
	UpdateSet(ctx context.Context, userID, setID string, patch models.SetPatch) (*models.Set, error)
	DeleteSet(ctx context.Context, userID, setID string) error

	AddFavorite(ctx context.Context, userID, setID string) error
	RemoveFavorite(ctx context.Context, userID, setID string) error
	ListFavorites(ctx context.Context, userID string) ([]models.Set, error)
}

type setService struct {
	guard         setGuard
	setRepo       repository.SetRepository
	flashcardRepo repository.FlashcardRepository
	favoriteRepo  repository.FavoriteRepository
	collabRepo    repository.CollaboratorRepository
	images        imageReleaser
}

// NewSetService creates a new SetService
func NewSetService(
	setRepo repository.SetRepository,
	flashcardRepo repository.FlashcardRepository,
	favoriteRepo repository.FavoriteRepository,
	collabRepo repository.CollaboratorRepository,
	jobQueue jobs.JobQueue,
	store blob.Store,
) SetService {
	return &setService{
		guard:         setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		setRepo:       setRepo,
		flashcardRepo: flashcardRepo,
		favoriteRepo:  favoriteRepo,
		collabRepo:    collabRepo,
		images:        imageReleaser{store: store, flashcardRepo: flashcardRepo, jobQueue: jobQueue},
	}
}

func (s *setService) CreateSet(ctx context.Context, userID string, in SetInput) (*models.Set, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating set: owner=%s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := models.Set{
		ID:              uuid.NewString(),
		OwnerID:         userID,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Tags:            tags,
		IsPublic:        in.IsPublic,
		IsCollaborative: in.IsCollaborative,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.setRepo.Insert(ctx, set); err != nil {
		log.Error("failed to create set: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("created set: id=%s", set.ID)
	return s.reload(ctx, set.ID)
}

func (s *setService) GetSet(ctx context.Context, userID, setID string) (*models.SetDetail, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting set: id=%s", setID)

	set, level, err := s.guard.load(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	detail := &models.SetDetail{Set: *set, Access: level}
	var collaborators []models.Collaborator

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cards, err := s.flashcardRepo.ListBySet(gctx, setID)
		detail.Flashcards = cards
		return err
	})
	if userID != "" {
		g.Go(func() error {
			ok, err := s.favoriteRepo.Exists(gctx, userID, setID)
			detail.IsFavorited = ok
			return err
		})
		g.Go(func() error {
			list, err := s.collabRepo.List(gctx, setID)
			collaborators = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("failed to load set detail: %v", err)
		return nil, errors.NewInternalError(err)
	}

	// Collaborator lists are only shown to people working on the set.
	if userID == set.OwnerID || containsUser(collaborators, userID) {
		detail.Collaborators = collaborators
	}
	return detail, nil
}

func (s *setService) ListSets(ctx context.Context, userID string, filter models.SetFilter) ([]models.Set, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing sets: viewer=%s", userID)

	filter.ViewerID = userID
	sets, err := s.setRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list sets: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if sets == nil {
		sets = []models.Set{}
	}
	return sets, nil
}

func (s *setService) UpdateSet(ctx context.Context, userID, setID string, patch models.SetPatch) (*models.Set, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating set: id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errors.NewValidationError("set", "no fields to update")
	}
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}
	if patch.Tags != nil {
		tags, err := normalizeTags(*patch.Tags)
		if err != nil {
			return nil, err
		}
		patch.Tags = &tags
	}

	if _, _, err := s.guard.require(ctx, userID, setID, models.AccessEditor); err != nil {
		return nil, err
	}
	if err := s.setRepo.Update(ctx, setID, patch, time.Now()); err != nil {
		log.Error("failed to update set: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.reload(ctx, setID)
}

func (s *setService) DeleteSet(ctx context.Context, userID, setID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting set: id=%s", setID)

	if err := requireUser(userID); err != nil {
		return err
	}
	set, err := s.guard.requireOwner(ctx, userID, setID)
	if err != nil {
		return err
	}

	urls, err := s.setRepo.ImageURLs(ctx, setID)
	if err != nil {
		log.Warn("failed to collect image urls before delete: %v", err)
	}
	if err := s.setRepo.Delete(ctx, setID); err != nil {
		log.Error("failed to delete set: %v", err)
		return errors.NewInternalError(err)
	}

	for _, url := range urls {
		s.images.release(ctx, url, set.OwnerID)
	}
	log.Info("deleted set: id=%s, images=%d", setID, len(urls))
	return nil
}

func (s *setService) AddFavorite(ctx context.Context, userID, setID string) error {
	log := logger.FromContext(ctx)
	log.Debug("adding favorite: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return err
	}
	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return err
	}
	if err := s.favoriteRepo.Add(ctx, userID, setID, time.Now()); err != nil {
		if db.IsUniqueViolation(err) {
			return errors.NewConflictError("set is already a favorite")
		}
		log.Error("failed to add favorite: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *setService) RemoveFavorite(ctx context.Context, userID, setID string) error {
	log := logger.FromContext(ctx)
	log.Debug("removing favorite: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return err
	}
	removed, err := s.favoriteRepo.Remove(ctx, userID, setID)
	if err != nil {
		log.Error("failed to remove favorite: %v", err)
		return errors.NewInternalError(err)
	}
	if !removed {
		return errors.NewNotFoundError("favorite", setID)
	}
	return nil
}

func (s *setService) ListFavorites(ctx context.Context, userID string) ([]models.Set, error) {
	log := logger.FromContext(ctx)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sets, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		log.Error("failed to list favorites: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if sets == nil {
		sets = []models.Set{}
	}
	return sets, nil
}

func (s *setService) reload(ctx context.Context, setID string) (*models.Set, error) {
	set, err := s.setRepo.Get(ctx, setID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to reload set: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if set == nil {
		return nil, errors.NewNotFoundError("set", setID)
	}
	return set, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.NewValidationError("title", "cannot be empty")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", errors.NewValidationError("title", "must be at most 200 characters")
	}
	return title, nil
}

// normalizeTags trims, drops empties and de-duplicates, keeping first-seen order.
func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if len([]rune(t)) > maxTagLength {
			return nil, errors.NewValidationError("tags", "each tag must be at most 50 characters")
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, errors.NewValidationError("tags", "at most 20 tags are allowed")
	}
	return out, nil
}

func containsUser(collaborators []models.Collaborator, userID string) bool {
	if userID == "" {
		return false
	}
	for _, c := range collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}
