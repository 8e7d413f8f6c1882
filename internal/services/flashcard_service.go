package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/jobs"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

// MaxBulkFlashcards caps how many cards one bulk request may create.
const MaxBulkFlashcards = 200

// CardInput carries the fields of a new flashcard.
type CardInput struct {
	Term          string
	Description   string
	ImageURL      *string
	AIReviewNotes *string
}

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	ListFlashcards(ctx context.Context, userID, setID string) ([]models.Flashcard, error)
	CreateFlashcard(ctx context.Context, userID, setID string, in CardInput) (*models.Flashcard, error)
	BulkCreateFlashcards(ctx context.Context, userID, setID string, in []CardInput) ([]models.Flashcard, error)
	UpdateFlashcard(ctx context.Context, userID, cardID string, patch models.FlashcardPatch) (*models.Flashcard, error)
	DeleteFlashcard(ctx context.Context, userID, cardID string) error
}

type flashcardService struct {
	guard         setGuard
	flashcardRepo repository.FlashcardRepository
	images        imageReleaser
}

// NewFlashcardService creates a new FlashcardService. Images dropped from cards
// are deleted from store through jobQueue.
func NewFlashcardService(
	setRepo repository.SetRepository,
	collabRepo repository.CollaboratorRepository,
	flashcardRepo repository.FlashcardRepository,
	jobQueue jobs.JobQueue,
	store blob.Store,
) FlashcardService {
	return &flashcardService{
		guard:         setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		flashcardRepo: flashcardRepo,
		images:        imageReleaser{store: store, flashcardRepo: flashcardRepo, jobQueue: jobQueue},
	}
}

func (s *flashcardService) ListFlashcards(ctx context.Context, userID, setID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing flashcards: set_id=%s", setID)

	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return nil, err
	}
	cards, err := s.flashcardRepo.ListBySet(ctx, setID)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *flashcardService) CreateFlashcard(ctx context.Context, userID, setID string, in CardInput) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	card, err := newFlashcard(setID, in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, _, err := s.guard.require(ctx, userID, setID, models.AccessEditor); err != nil {
		return nil, err
	}

	if err := s.flashcardRepo.Insert(ctx, card); err != nil {
		log.Error("failed to create flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &card, nil
}

func (s *flashcardService) BulkCreateFlashcards(ctx context.Context, userID, setID string, in []CardInput) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("bulk creating flashcards: set_id=%s, count=%d", setID, len(in))

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if len(in) == 0 {
		return nil, errors.NewValidationError("flashcards", "at least one flashcard is required")
	}
	if len(in) > MaxBulkFlashcards {
		return nil, errors.NewValidationError("flashcards", fmt.Sprintf("at most %d flashcards per request", MaxBulkFlashcards))
	}

	// Consecutive timestamps keep the submitted order stable when listing.
	base := time.Now().UTC()
	cards := make([]models.Flashcard, 0, len(in))
	for i, c := range in {
		card, err := newFlashcard(setID, c, base.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if _, _, err := s.guard.require(ctx, userID, setID, models.AccessEditor); err != nil {
		return nil, err
	}
	if err := s.flashcardRepo.InsertBatch(ctx, cards); err != nil {
		log.Error("failed to bulk create flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created %d flashcards in set %s", len(cards), setID)
	return cards, nil
}

func (s *flashcardService) UpdateFlashcard(ctx context.Context, userID, cardID string, patch models.FlashcardPatch) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating flashcard: id=%s", cardID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, errors.NewValidationError("flashcard", "no fields to update")
	}

	card, set, err := s.loadCard(ctx, userID, cardID, models.AccessEditor)
	if err != nil {
		return nil, err
	}

	oldImage := card.ImageURL
	if patch.Term != nil {
		term := strings.TrimSpace(*patch.Term)
		if term == "" {
			return nil, errors.NewValidationError("term", "cannot be empty")
		}
		card.Term = term
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return nil, errors.NewValidationError("description", "cannot be empty")
		}
		card.Description = desc
	}
	if patch.ImageURL != nil {
		card.ImageURL = optionalText(*patch.ImageURL)
	}
	if patch.AIReviewNotes != nil {
		card.AIReviewNotes = optionalText(*patch.AIReviewNotes)
	}
	card.UpdatedAt = time.Now().UTC()

	if err := s.flashcardRepo.Update(ctx, *card); err != nil {
		log.Error("failed to update flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if oldImage != nil && (card.ImageURL == nil || *card.ImageURL != *oldImage) {
		s.images.release(ctx, *oldImage, userID, set.OwnerID)
	}
	return card, nil
}

func (s *flashcardService) DeleteFlashcard(ctx context.Context, userID, cardID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting flashcard: id=%s", cardID)

	if err := requireUser(userID); err != nil {
		return err
	}
	card, set, err := s.loadCard(ctx, userID, cardID, models.AccessEditor)
	if err != nil {
		return err
	}
	if err := s.flashcardRepo.Delete(ctx, cardID); err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return errors.NewInternalError(err)
	}
	if card.ImageURL != nil {
		s.images.release(ctx, *card.ImageURL, userID, set.OwnerID)
	}
	return nil
}

// loadCard fetches a flashcard and checks the caller's level on its set. Cards in
// sets the caller cannot see are reported as missing cards.
func (s *flashcardService) loadCard(ctx context.Context, userID, cardID string, need models.AccessLevel) (*models.Flashcard, *models.Set, error) {
	card, err := s.flashcardRepo.Get(ctx, cardID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get flashcard: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, nil, errors.NewNotFoundError("flashcard", cardID)
	}
	set, _, err := s.guard.require(ctx, userID, card.SetID, need)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, nil, errors.NewNotFoundError("flashcard", cardID)
		}
		return nil, nil, err
	}
	return card, set, nil
}

func newFlashcard(setID string, in CardInput, at time.Time) (models.Flashcard, error) {
	term := strings.TrimSpace(in.Term)
	desc := strings.TrimSpace(in.Description)
	if term == "" {
		return models.Flashcard{}, errors.NewValidationError("term", "cannot be empty")
	}
	if desc == "" {
		return models.Flashcard{}, errors.NewValidationError("description", "cannot be empty")
	}
	card := models.Flashcard{
		ID:          uuid.NewString(),
		SetID:       setID,
		Term:        term,
		Description: desc,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if in.ImageURL != nil {
		card.ImageURL = optionalText(*in.ImageURL)
	}
	if in.AIReviewNotes != nil {
		card.AIReviewNotes = optionalText(*in.AIReviewNotes)
	}
	return card, nil
}

// optionalText maps blank input to a cleared (nil) value.
func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
