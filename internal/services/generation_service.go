package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/brainyflash/internal/cardtext"
	"github.com/vytor/brainyflash/internal/completion"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

const (
	DefaultGenerateCount = 10
	MaxGenerateCount     = 50
)

// GenerateInput describes one text-to-flashcards request. SetID is required when Save is set.
type GenerateInput struct {
	SetID     string
	Text      string
	Delimiter string
	Count     int
	Save      bool
}

// GenerationService turns pasted text into flashcards
type GenerationService interface {
	Generate(ctx context.Context, userID string, in GenerateInput) (*models.GenerationResult, error)
}

type generationService struct {
	guard         setGuard
	flashcardRepo repository.FlashcardRepository
	completion    completion.Service
	timeout       time.Duration
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	setRepo repository.SetRepository,
	collabRepo repository.CollaboratorRepository,
	flashcardRepo repository.FlashcardRepository,
	completionService completion.Service,
	timeout time.Duration,
) GenerationService {
	return &generationService{
		guard:         setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		flashcardRepo: flashcardRepo,
		completion:    completionService,
		timeout:       timeout,
	}
}

func (s *generationService) Generate(ctx context.Context, userID string, in GenerateInput) (*models.GenerationResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("generating flashcards: set_id=%s, count=%d, save=%t", in.SetID, in.Count, in.Save)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, errors.NewValidationError("text", "cannot be empty")
	}
	if in.Delimiter == "" {
		in.Delimiter = cardtext.DefaultDelimiter
	}
	switch {
	case in.Count == 0:
		in.Count = DefaultGenerateCount
	case in.Count < 0 || in.Count > MaxGenerateCount:
		return nil, errors.NewValidationError("count", fmt.Sprintf("must be between 1 and %d", MaxGenerateCount))
	}
	if in.Save && in.SetID == "" {
		return nil, errors.NewValidationError("set_id", "is required to save flashcards")
	}
	if in.SetID != "" {
		need := models.AccessViewer
		if in.Save {
			need = models.AccessEditor
		}
		if _, _, err := s.guard.require(ctx, userID, in.SetID, need); err != nil {
			return nil, err
		}
	}

	direct := cardtext.Parse(in.Text, in.Delimiter)
	result := &models.GenerationResult{ParsedCount: len(direct)}

	pairs := cardtext.Merge(direct, nil, in.Count)
	if missing := in.Count - len(pairs); missing > 0 {
		generated, err := s.generate(ctx, in.Text, missing, in.Delimiter)
		switch {
		case err != nil && len(pairs) == 0:
			log.Warn("completion failed with nothing parsed: %v", err)
			return nil, errors.NewUpstreamUnavailableError("flashcard generation is unavailable right now; use lines of the form \"term"+in.Delimiter+" description\"", err)
		case err != nil:
			log.Warn("completion failed, returning %d parsed pairs: %v", len(pairs), err)
			result.Partial = true
		default:
			pairs = cardtext.Merge(direct, generated, in.Count)
		}
	}
	result.GeneratedCount = len(pairs) - min(len(direct), len(pairs))

	if len(pairs) == 0 {
		return nil, errors.NewValidationError("text", "no flashcards found; use lines of the form \"term"+in.Delimiter+" description\"")
	}
	result.Pairs = pairs

	if in.Save {
		saved, err := s.save(ctx, in.SetID, pairs)
		if err != nil {
			return nil, err
		}
		result.Saved = saved
	}

	log.Info("generated %d flashcards (%d parsed, %d generated)", len(pairs), result.ParsedCount, result.GeneratedCount)
	return result, nil
}

func (s *generationService) generate(ctx context.Context, text string, count int, delimiter string) ([]models.CardPair, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := s.completion.Complete(ctx, completion.FlashcardRequest(cardtext.Excerpt(text), count, delimiter))
	if err != nil {
		return nil, err
	}
	return cardtext.Parse(strings.Join(cardtext.ListItems(out), "\n"), delimiter), nil
}

func (s *generationService) save(ctx context.Context, setID string, pairs []models.CardPair) ([]models.Flashcard, error) {
	base := time.Now().UTC()
	cards := make([]models.Flashcard, len(pairs))
	for i, p := range pairs {
		at := base.Add(time.Duration(i) * time.Microsecond)
		cards[i] = models.Flashcard{
			ID:          uuid.NewString(),
			SetID:       setID,
			Term:        p.Term,
			Description: p.Description,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
	}
	if err := s.flashcardRepo.InsertBatch(ctx, cards); err != nil {
		logger.FromContext(ctx).Error("failed to save generated flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}
