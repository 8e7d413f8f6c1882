package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/completion"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
)

func newStudyService(e *env) services.StudyService {
	return services.NewStudyService(e.sets, e.collaborators, e.flashcards, e.study, e.completion, time.Second)
}

func TestSessionLifecycle(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	other := e.user(t, "other@example.com")
	setID := e.set(t, user, false)

	_, err := svc.StartSession(ctx, user, setID, "speedrun")
	requireCode(t, err, errors.ErrCodeValidation)

	session, err := svc.StartSession(ctx, user, setID, "multiple_choice")
	require.NoError(t, err)
	assert.Equal(t, models.ModeMultipleChoice, session.Mode)
	assert.Nil(t, session.CompletedAt)

	_, err = svc.EndSession(ctx, other, session.ID, models.SessionResult{CardsStudied: 1})
	requireCode(t, err, errors.ErrCodeNotFound)

	_, err = svc.EndSession(ctx, user, session.ID, models.SessionResult{CardsStudied: 2, CorrectAnswers: 3})
	requireCode(t, err, errors.ErrCodeValidation)

	_, err = svc.EndSession(ctx, user, session.ID, models.SessionResult{CardsStudied: -1})
	requireCode(t, err, errors.ErrCodeValidation)

	ended, err := svc.EndSession(ctx, user, session.ID, models.SessionResult{CardsStudied: 10, CorrectAnswers: 6, TotalTimeSeconds: 120})
	require.NoError(t, err)
	assert.NotNil(t, ended.CompletedAt)
	assert.Equal(t, 6, ended.CorrectAnswers)

	stats, err := svc.StudyStats(ctx, user, setID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Summary.TotalSessions)
	assert.InDelta(t, 0.6, stats.Summary.Accuracy, 1e-9)
	assert.Len(t, stats.RecentSessions, 1)
}

func TestStartSession_HiddenSet(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	setID := e.set(t, owner, false)

	_, err := svc.StartSession(ctx, stranger, setID, "flashcard")
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestRecordProgress_AndRecommended(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	fresh := e.card(t, setID, "DNA", "genetic code")
	mastered := e.card(t, setID, "RNA", "messenger")
	struggling := e.card(t, setID, "ATP", "energy")

	for i := 0; i < 3; i++ {
		_, err := svc.RecordProgress(ctx, user, mastered, true, "")
		require.NoError(t, err)
	}
	_, err := svc.RecordProgress(ctx, user, struggling, true, "")
	require.NoError(t, err)
	_, err = svc.RecordProgress(ctx, user, struggling, false, "")
	require.NoError(t, err)
	p, err := svc.RecordProgress(ctx, user, struggling, false, "Hard")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, 2, p.IncorrectCount)
	assert.Equal(t, models.DifficultyHard, p.DifficultyRating)

	_, err = svc.RecordProgress(ctx, user, fresh, true, "impossible")
	requireCode(t, err, errors.ErrCodeValidation)

	recommended, err := svc.Recommended(ctx, user, setID, 0)
	require.NoError(t, err)
	require.Len(t, recommended, 2)
	assert.Equal(t, fresh, recommended[0].Flashcard.ID)
	assert.Nil(t, recommended[0].Progress)
	assert.Equal(t, struggling, recommended[1].Flashcard.ID)

	limited, err := svc.Recommended(ctx, user, setID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordProgress_HiddenCard(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	setID := e.set(t, owner, false)
	cardID := e.card(t, setID, "DNA", "genetic code")

	_, err := svc.RecordProgress(ctx, stranger, cardID, true, "")
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestMultipleChoice_FillsFromCompletion(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	cardID := e.card(t, setID, "DNA", "genetic code")
	e.card(t, setID, "RNA", "messenger")

	e.completion.On("Complete", mock.Anything, mock.AnythingOfType("completion.Request")).
		Return("1. cell wall\n2. Genetic Code\n3. ribosome", nil).Once()

	q, err := svc.MultipleChoice(ctx, user, cardID, 0)
	require.NoError(t, err)
	assert.Equal(t, "genetic code", q.CorrectAnswer)
	assert.ElementsMatch(t, []string{"genetic code", "messenger", "cell wall", "ribosome"}, q.Options)
	assert.Equal(t, q.CorrectAnswer, q.Options[q.CorrectIndex])
	e.completion.AssertExpectations(t)
}

func TestMultipleChoice_DegradesWhenCompletionFails(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	cardID := e.card(t, setID, "DNA", "genetic code")
	e.card(t, setID, "RNA", "messenger")

	e.completion.On("Complete", mock.Anything, mock.Anything).Return("", completion.ErrDisabled)

	q, err := svc.MultipleChoice(ctx, user, cardID, 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"genetic code", "messenger"}, q.Options)
}

func TestMultipleChoice_NoCompletionWhenSetHasEnough(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	cardID := e.card(t, setID, "DNA", "genetic code")
	for _, d := range []string{"messenger", "energy", "membrane"} {
		e.card(t, setID, d, d)
	}

	q, err := svc.MultipleChoice(ctx, user, cardID, 3)
	require.NoError(t, err)
	assert.Len(t, q.Options, 4)
	e.completion.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestMatching(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	dna := e.card(t, setID, "DNA", "genetic code")

	_, err := svc.MatchingRound(ctx, user, setID, 6)
	requireCode(t, err, errors.ErrCodeValidation)

	rna := e.card(t, setID, "RNA", "messenger")
	round, err := svc.MatchingRound(ctx, user, setID, 6)
	require.NoError(t, err)
	assert.Len(t, round.Terms, 2)
	assert.Len(t, round.Definitions, 2)

	grade, err := svc.GradeMatching(ctx, user, setID, []models.MatchingPick{
		{TermID: dna, DefinitionID: dna},
		{TermID: rna, DefinitionID: dna},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, grade.Correct)
	assert.Equal(t, 2, grade.Total)

	_, err = svc.GradeMatching(ctx, user, setID, nil)
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestSuggestions(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	e.card(t, setID, "DNA", "genetic code")
	e.card(t, setID, "RNA", "messenger")

	e.completion.On("Complete", mock.Anything, mock.Anything).
		Return("- Review DNA daily\n- Pair RNA with DNA\n- Use matching mode\n- Take a break", nil).Once()

	out, err := svc.Suggestions(ctx, user, setID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NeedsPractice)
	assert.Len(t, out.Recommended, 2)
	assert.Equal(t, []string{"Review DNA daily", "Pair RNA with DNA", "Use matching mode"}, out.Suggestions)
}

func TestSuggestions_UpstreamFailure(t *testing.T) {
	e := newEnv(t)
	svc := newStudyService(e)
	user := e.user(t, "student@example.com")
	setID := e.set(t, user, false)
	e.card(t, setID, "DNA", "genetic code")

	e.completion.On("Complete", mock.Anything, mock.Anything).Return("", completion.ErrDisabled)

	_, err := svc.Suggestions(ctx, user, setID)
	requireCode(t, err, errors.ErrCodeUpstreamUnavailable)
}
