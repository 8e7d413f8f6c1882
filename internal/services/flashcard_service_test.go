package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
	"github.com/vytor/brainyflash/internal/testutil/mocks"
)

func newFlashcardService(e *env) services.FlashcardService {
	return services.NewFlashcardService(e.sets, e.collaborators, e.flashcards, e.jobs, e.images)
}

func strPtr(s string) *string { return &s }

func TestCreateFlashcard(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	viewer := e.user(t, "viewer@example.com")
	setID := e.set(t, owner, false)
	e.grant(t, setID, viewer, "viewer")

	card, err := svc.CreateFlashcard(ctx, owner, setID, services.CardInput{
		Term: " DNA ", Description: "genetic code", ImageURL: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "DNA", card.Term)
	assert.Nil(t, card.ImageURL)

	_, err = svc.CreateFlashcard(ctx, viewer, setID, services.CardInput{Term: "RNA", Description: "messenger"})
	requireCode(t, err, errors.ErrCodeForbidden)

	_, err = svc.CreateFlashcard(ctx, owner, setID, services.CardInput{Term: "RNA"})
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestBulkCreateFlashcards_KeepsOrder(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	setID := e.set(t, owner, false)

	in := []services.CardInput{
		{Term: "DNA", Description: "genetic code"},
		{Term: "RNA", Description: "messenger"},
		{Term: "ATP", Description: "energy"},
	}
	_, err := svc.BulkCreateFlashcards(ctx, owner, setID, in)
	require.NoError(t, err)

	cards, err := svc.ListFlashcards(ctx, owner, setID)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, []string{"DNA", "RNA", "ATP"}, []string{cards[0].Term, cards[1].Term, cards[2].Term})

	_, err = svc.BulkCreateFlashcards(ctx, owner, setID, nil)
	requireCode(t, err, errors.ErrCodeValidation)

	_, err = svc.BulkCreateFlashcards(ctx, owner, setID, append(in, services.CardInput{Term: "bad"}))
	requireCode(t, err, errors.ErrCodeValidation)

	cards, err = svc.ListFlashcards(ctx, owner, setID)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestUpdateFlashcard_ReplacingImageSchedulesCleanup(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	setID := e.set(t, owner, false)
	oldURL, newURL := imageURL(owner, "old.png"), imageURL(owner, "new.png")

	card, err := svc.CreateFlashcard(ctx, owner, setID, services.CardInput{
		Term: "DNA", Description: "genetic code", ImageURL: strPtr(oldURL),
	})
	require.NoError(t, err)

	e.jobs.On("EnqueueBlobDelete", oldURL).Return(nil).Once()
	updated, err := svc.UpdateFlashcard(ctx, owner, card.ID, models.FlashcardPatch{ImageURL: strPtr(newURL)})
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, newURL, *updated.ImageURL)

	// Same image again: nothing to clean up.
	_, err = svc.UpdateFlashcard(ctx, owner, card.ID, models.FlashcardPatch{ImageURL: strPtr(newURL)})
	require.NoError(t, err)

	e.jobs.On("EnqueueBlobDelete", newURL).Return(nil).Once()
	require.NoError(t, svc.DeleteFlashcard(ctx, owner, card.ID))
	e.jobs.AssertExpectations(t)
}

func TestDeleteFlashcard_KeepsImagesOfOtherUploaders(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	editor := e.user(t, "editor@example.com")
	uploader := e.user(t, "uploader@example.com")
	setID := e.set(t, owner, false)
	e.grant(t, setID, editor, "editor")

	for _, url := range []string{imageURL(uploader, "x.png"), "https://elsewhere.example/x.png"} {
		card, err := svc.CreateFlashcard(ctx, editor, setID, services.CardInput{
			Term: "DNA", Description: "genetic code", ImageURL: strPtr(url),
		})
		require.NoError(t, err)

		_, err = svc.UpdateFlashcard(ctx, editor, card.ID, models.FlashcardPatch{ImageURL: strPtr("")})
		require.NoError(t, err)
		_, err = svc.UpdateFlashcard(ctx, editor, card.ID, models.FlashcardPatch{ImageURL: strPtr(url)})
		require.NoError(t, err)
		require.NoError(t, svc.DeleteFlashcard(ctx, editor, card.ID))
	}

	e.jobs.AssertNotCalled(t, "EnqueueBlobDelete", mock.Anything)
}

func TestDeleteFlashcard_SharedImageReleasedWithLastCard(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	editor := e.user(t, "editor@example.com")
	setID := e.set(t, owner, false)
	otherSet := e.set(t, owner, false)
	e.grant(t, setID, editor, "editor")
	url := imageURL(owner, "cell.png")

	first, err := svc.CreateFlashcard(ctx, owner, setID, services.CardInput{Term: "Cell", Description: "unit of life", ImageURL: strPtr(url)})
	require.NoError(t, err)
	second, err := svc.CreateFlashcard(ctx, owner, otherSet, services.CardInput{Term: "Cell", Description: "unit of life", ImageURL: strPtr(url)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFlashcard(ctx, editor, first.ID))
	e.jobs.AssertNotCalled(t, "EnqueueBlobDelete", url)

	e.jobs.On("EnqueueBlobDelete", url).Return(nil).Once()
	require.NoError(t, svc.DeleteFlashcard(ctx, owner, second.ID))
	e.jobs.AssertExpectations(t)
}

func TestFlashcard_HiddenSetReportsMissingCard(t *testing.T) {
	e := newEnv(t)
	svc := newFlashcardService(e)
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	setID := e.set(t, owner, false)
	cardID := e.card(t, setID, "DNA", "genetic code")

	_, err := svc.UpdateFlashcard(ctx, stranger, cardID, models.FlashcardPatch{Term: strPtr("RNA")})
	requireCode(t, err, errors.ErrCodeNotFound)
	appErr, _ := errors.As(err)
	assert.Contains(t, appErr.Message, "flashcard")

	requireCode(t, svc.DeleteFlashcard(ctx, stranger, cardID), errors.ErrCodeNotFound)
}

func TestListFlashcards_RepositoryFailure(t *testing.T) {
	e := newEnv(t)
	repo := &mocks.MockFlashcardRepository{}
	svc := services.NewFlashcardService(e.sets, e.collaborators, repo, e.jobs, e.images)
	owner := e.user(t, "owner@example.com")
	setID := e.set(t, owner, false)

	repo.On("ListBySet", mock.Anything, setID).Return(nil, assert.AnError)

	_, err := svc.ListFlashcards(ctx, owner, setID)
	requireCode(t, err, errors.ErrCodeInternal)
	repo.AssertExpectations(t)
}
