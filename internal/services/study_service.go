package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/brainyflash/internal/cardtext"
	"github.com/vytor/brainyflash/internal/completion"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/flashcard"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

const (
	recentSessionLimit      = 10
	defaultRecommendedLimit = 10
	maxRecommendedLimit     = 100
	maxDistractors          = 5
	distractorCandidates    = 10
	maxSuggestions          = 3
	suggestionCards         = 5
)

// StudyService handles study sessions, progress, and the study modes built on them
type StudyService interface {
	StartSession(ctx context.Context, userID, setID, mode string) (*models.StudySession, error)
	EndSession(ctx context.Context, userID, sessionID string, result models.SessionResult) (*models.StudySession, error)
	RecordProgress(ctx context.Context, userID, cardID string, isCorrect bool, difficulty string) (*models.StudyProgress, error)
	StudyStats(ctx context.Context, userID, setID string) (*models.StudyStats, error)
	Recommended(ctx context.Context, userID, setID string, limit int) ([]models.CardProgress, error)
	MultipleChoice(ctx context.Context, userID, cardID string, count int) (*models.MultipleChoiceQuestion, error)
	MatchingRound(ctx context.Context, userID, setID string, size int) (*models.MatchingRound, error)
	GradeMatching(ctx context.Context, userID, setID string, picks []models.MatchingPick) (*models.MatchingGrade, error)
	Suggestions(ctx context.Context, userID, setID string) (*models.StudySuggestions, error)
}

type studyService struct {
	guard         setGuard
	flashcardRepo repository.FlashcardRepository
	studyRepo     repository.StudyRepository
	completion    completion.Service
	timeout       time.Duration
}

// NewStudyService creates a new StudyService. Calls to the completion service are
// bounded by timeout.
func NewStudyService(
	setRepo repository.SetRepository,
	collabRepo repository.CollaboratorRepository,
	flashcardRepo repository.FlashcardRepository,
	studyRepo repository.StudyRepository,
	completionService completion.Service,
	timeout time.Duration,
) StudyService {
	return &studyService{
		guard:         setGuard{setRepo: setRepo, collaboratorRepo: collabRepo},
		flashcardRepo: flashcardRepo,
		studyRepo:     studyRepo,
		completion:    completionService,
		timeout:       timeout,
	}
}

func (s *studyService) StartSession(ctx context.Context, userID, setID, mode string) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting study session: set_id=%s, mode=%s", setID, mode)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	m := models.StudyMode(strings.TrimSpace(mode))
	if !m.Valid() {
		return nil, errors.NewValidationError("mode", "must be one of flashcard, multiple_choice, written, matching, test")
	}
	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return nil, err
	}

	session := models.StudySession{
		ID:        uuid.NewString(),
		UserID:    userID,
		SetID:     setID,
		Mode:      m,
		StartedAt: time.Now().UTC(),
	}
	if err := s.studyRepo.InsertSession(ctx, session); err != nil {
		log.Error("failed to start session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &session, nil
}

func (s *studyService) EndSession(ctx context.Context, userID, sessionID string, result models.SessionResult) (*models.StudySession, error) {
	log := logger.FromContext(ctx)
	log.Debug("ending study session: id=%s", sessionID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if result.CardsStudied < 0 || result.CorrectAnswers < 0 || result.TotalTimeSeconds < 0 {
		return nil, errors.NewValidationError("session", "counters cannot be negative")
	}
	if result.CorrectAnswers > result.CardsStudied {
		return nil, errors.NewValidationError("correct_answers", "cannot exceed cards_studied")
	}

	session, err := s.studyRepo.GetSession(ctx, sessionID)
	if err != nil {
		log.Error("failed to load session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	// Someone else's session is reported the same as a missing one.
	if session == nil || session.UserID != userID {
		return nil, errors.NewNotFoundError("study session", sessionID)
	}

	completedAt := time.Now().UTC()
	if err := s.studyRepo.CompleteSession(ctx, sessionID, result, completedAt); err != nil {
		log.Error("failed to complete session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	session.CardsStudied = result.CardsStudied
	session.CorrectAnswers = result.CorrectAnswers
	session.TotalTimeSeconds = result.TotalTimeSeconds
	session.CompletedAt = &completedAt
	return session, nil
}

func (s *studyService) RecordProgress(ctx context.Context, userID, cardID string, isCorrect bool, difficulty string) (*models.StudyProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording progress: flashcard_id=%s, correct=%t", cardID, isCorrect)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var rating *models.Difficulty
	if d := strings.TrimSpace(difficulty); d != "" {
		r := models.Difficulty(strings.ToLower(d))
		if !r.Valid() {
			return nil, errors.NewValidationError("difficulty", "must be one of easy, medium, hard")
		}
		rating = &r
	}

	card, err := s.loadCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	progress, err := s.studyRepo.RecordAttempt(ctx, models.Attempt{
		UserID:      userID,
		FlashcardID: card.ID,
		IsCorrect:   isCorrect,
		Difficulty:  rating,
		At:          time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to record progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return progress, nil
}

func (s *studyService) StudyStats(ctx context.Context, userID, setID string) (*models.StudyStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting study stats: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return nil, err
	}

	stats := &models.StudyStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.studyRepo.Summary(gctx, userID, setID)
		if summary != nil {
			stats.Summary = *summary
		}
		return err
	})
	g.Go(func() error {
		progress, err := s.studyRepo.ProgressForSet(gctx, userID, setID)
		stats.Progress = progress
		return err
	})
	g.Go(func() error {
		sessions, err := s.studyRepo.RecentSessions(gctx, userID, setID, recentSessionLimit)
		stats.RecentSessions = sessions
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load study stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *studyService) Recommended(ctx context.Context, userID, setID string, limit int) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting recommended cards: set_id=%s, limit=%d", setID, limit)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecommendedLimit
	}
	if limit > maxRecommendedLimit {
		limit = maxRecommendedLimit
	}
	cards, err := s.cardsWithProgress(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	return flashcard.RecommendForReview(cards, limit), nil
}

func (s *studyService) MultipleChoice(ctx context.Context, userID, cardID string, count int) (*models.MultipleChoiceQuestion, error) {
	log := logger.FromContext(ctx)
	log.Debug("building multiple choice question: flashcard_id=%s", cardID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = flashcard.DefaultDistractors
	}
	if count > maxDistractors {
		count = maxDistractors
	}

	card, err := s.loadCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.flashcardRepo.OtherDescriptions(ctx, card.SetID, card.ID, distractorCandidates)
	if err != nil {
		log.Error("failed to load distractor candidates: %v", err)
		return nil, errors.NewInternalError(err)
	}
	distractors := flashcard.Distractors(card.Description, candidates, count, nil)

	if missing := count - len(distractors); missing > 0 {
		text, err := s.complete(ctx, completion.DistractorRequest(card.Term, card.Description, missing))
		if err != nil {
			// Fewer options beat no question at all.
			log.Warn("distractor generation failed, using %d options: %v", len(distractors)+1, err)
		} else {
			distractors = flashcard.FillDistractors(card.Description, distractors, cardtext.ListItems(text), count)
		}
	}

	q := flashcard.BuildQuestion(*card, distractors, nil)
	return &q, nil
}

func (s *studyService) MatchingRound(ctx context.Context, userID, setID string, size int) (*models.MatchingRound, error) {
	log := logger.FromContext(ctx)
	log.Debug("building matching round: set_id=%s, size=%d", setID, size)

	cards, err := s.setCards(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if len(cards) < 2 {
		return nil, errors.NewValidationError("set", "matching needs at least 2 flashcards")
	}
	round := flashcard.NewMatchingRound(cards, size, nil)
	return &round, nil
}

func (s *studyService) GradeMatching(ctx context.Context, userID, setID string, picks []models.MatchingPick) (*models.MatchingGrade, error) {
	log := logger.FromContext(ctx)
	log.Debug("grading matching round: set_id=%s, picks=%d", setID, len(picks))

	if len(picks) == 0 {
		return nil, errors.NewValidationError("picks", "at least one pick is required")
	}
	cards, err := s.setCards(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	grade := flashcard.GradeMatching(cards, picks)
	return &grade, nil
}

func (s *studyService) Suggestions(ctx context.Context, userID, setID string) (*models.StudySuggestions, error) {
	log := logger.FromContext(ctx)
	log.Debug("building study suggestions: set_id=%s", setID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	set, _, err := s.guard.load(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	cards, err := s.studyRepo.CardsWithProgress(ctx, userID, setID)
	if err != nil {
		log.Error("failed to load cards with progress: %v", err)
		return nil, errors.NewInternalError(err)
	}

	review := flashcard.RecommendForReview(cards, 0)
	out := &models.StudySuggestions{
		NeedsPractice: len(review),
		Suggestions:   []string{},
		Recommended:   make([]models.Flashcard, 0, suggestionCards),
	}
	terms := make([]string, 0, suggestionCards)
	for i, c := range review {
		if i == suggestionCards {
			break
		}
		out.Recommended = append(out.Recommended, c.Flashcard)
		terms = append(terms, c.Flashcard.Term)
	}

	text, err := s.complete(ctx, completion.SuggestionsRequest(set.Title, out.NeedsPractice, terms))
	if err != nil {
		log.Warn("suggestion generation failed: %v", err)
		return nil, errors.NewUpstreamUnavailableError("study suggestions are unavailable right now", err)
	}
	items := cardtext.ListItems(text)
	if len(items) > maxSuggestions {
		items = items[:maxSuggestions]
	}
	out.Suggestions = append(out.Suggestions, items...)
	return out, nil
}

func (s *studyService) complete(ctx context.Context, req completion.Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.completion.Complete(ctx, req)
}

func (s *studyService) loadCard(ctx context.Context, userID, cardID string) (*models.Flashcard, error) {
	card, err := s.flashcardRepo.Get(ctx, cardID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", cardID)
	}
	if _, _, err := s.guard.load(ctx, userID, card.SetID); err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.NewNotFoundError("flashcard", cardID)
		}
		return nil, err
	}
	return card, nil
}

func (s *studyService) setCards(ctx context.Context, userID, setID string) ([]models.Flashcard, error) {
	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return nil, err
	}
	cards, err := s.flashcardRepo.ListBySet(ctx, setID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list flashcards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *studyService) cardsWithProgress(ctx context.Context, userID, setID string) ([]models.CardProgress, error) {
	if _, _, err := s.guard.load(ctx, userID, setID); err != nil {
		return nil, err
	}
	cards, err := s.studyRepo.CardsWithProgress(ctx, userID, setID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load cards with progress: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}
