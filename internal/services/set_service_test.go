package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
)

func newSetService(e *env) services.SetService {
	return services.NewSetService(e.sets, e.flashcards, e.favorites, e.collaborators, e.jobs, e.images)
}

func TestCreateSet(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")

	set, err := svc.CreateSet(ctx, owner, services.SetInput{
		Title: "  Biology  ",
		Tags:  []string{"science", " science ", "", "cells"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Biology", set.Title)
	assert.Equal(t, owner, set.OwnerID)
	assert.ElementsMatch(t, []string{"science", "cells"}, set.Tags)
	assert.False(t, set.IsPublic)
}

func TestCreateSet_Validation(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")

	_, err := svc.CreateSet(ctx, "", services.SetInput{Title: "Biology"})
	requireCode(t, err, errors.ErrCodeUnauthenticated)

	_, err = svc.CreateSet(ctx, owner, services.SetInput{Title: "   "})
	requireCode(t, err, errors.ErrCodeValidation)

	tags := make([]string, 21)
	for i := range tags {
		tags[i] = string(rune('a' + i))
	}
	_, err = svc.CreateSet(ctx, owner, services.SetInput{Title: "Biology", Tags: tags})
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestGetSet_PrivateSetIsHidden(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	setID := e.set(t, owner, false)

	_, err := svc.GetSet(ctx, stranger, setID)
	requireCode(t, err, errors.ErrCodeNotFound)

	_, err = svc.GetSet(ctx, "", setID)
	requireCode(t, err, errors.ErrCodeNotFound)

	_, err = svc.GetSet(ctx, owner, "missing")
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestGetSet_Detail(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")
	editor := e.user(t, "editor@example.com")
	stranger := e.user(t, "stranger@example.com")
	setID := e.set(t, owner, true)
	e.card(t, setID, "DNA", "genetic code")
	e.grant(t, setID, editor, "editor")

	detail, err := svc.GetSet(ctx, owner, setID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessOwner, detail.Access)
	assert.Len(t, detail.Flashcards, 1)
	assert.Len(t, detail.Collaborators, 1)

	detail, err = svc.GetSet(ctx, editor, setID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessEditor, detail.Access)
	assert.Len(t, detail.Collaborators, 1)

	detail, err = svc.GetSet(ctx, stranger, setID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessViewer, detail.Access)
	assert.Empty(t, detail.Collaborators)

	detail, err = svc.GetSet(ctx, "", setID)
	require.NoError(t, err)
	assert.Equal(t, models.AccessViewer, detail.Access)
	assert.False(t, detail.IsFavorited)
}

func TestUpdateSet_Permissions(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")
	viewer := e.user(t, "viewer@example.com")
	editor := e.user(t, "editor@example.com")
	setID := e.set(t, owner, false)
	e.grant(t, setID, viewer, "viewer")
	e.grant(t, setID, editor, "editor")

	title := "Cell Biology"
	patch := models.SetPatch{Title: &title}

	_, err := svc.UpdateSet(ctx, viewer, setID, patch)
	requireCode(t, err, errors.ErrCodeForbidden)

	set, err := svc.UpdateSet(ctx, editor, setID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", set.Title)

	_, err = svc.UpdateSet(ctx, owner, setID, models.SetPatch{})
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestDeleteSet_OnlyTrueOwnerAndCleansImages(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")
	admin := e.user(t, "admin@example.com")
	setID := e.set(t, owner, false)
	keptSet := e.set(t, owner, false)
	e.grant(t, setID, admin, "owner")

	own, shared, foreign := imageURL(owner, "a.png"), imageURL(owner, "shared.png"), imageURL(admin, "b.png")
	for url, sets := range map[string][]string{
		own:     {setID, setID},
		shared:  {setID, keptSet},
		foreign: {setID},
	} {
		for _, id := range sets {
			cardID := e.card(t, id, "DNA", "genetic code")
			_, err := e.db.Exec(`UPDATE flashcards SET image_url = ? WHERE id = ?`, url, cardID)
			require.NoError(t, err)
		}
	}

	err := svc.DeleteSet(ctx, admin, setID)
	requireCode(t, err, errors.ErrCodeForbidden)

	e.jobs.On("EnqueueBlobDelete", own).Return(nil).Once()
	require.NoError(t, svc.DeleteSet(ctx, owner, setID))
	e.jobs.AssertExpectations(t)
	e.jobs.AssertNotCalled(t, "EnqueueBlobDelete", shared)
	e.jobs.AssertNotCalled(t, "EnqueueBlobDelete", foreign)

	_, err = svc.GetSet(ctx, owner, setID)
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestFavorites(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)
	owner := e.user(t, "owner@example.com")
	fan := e.user(t, "fan@example.com")
	public := e.set(t, owner, true)
	private := e.set(t, owner, false)

	require.NoError(t, svc.AddFavorite(ctx, fan, public))
	requireCode(t, svc.AddFavorite(ctx, fan, public), errors.ErrCodeConflict)
	requireCode(t, svc.AddFavorite(ctx, fan, private), errors.ErrCodeNotFound)

	favorites, err := svc.ListFavorites(ctx, fan)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, public, favorites[0].ID)

	detail, err := svc.GetSet(ctx, fan, public)
	require.NoError(t, err)
	assert.True(t, detail.IsFavorited)

	require.NoError(t, svc.RemoveFavorite(ctx, fan, public))
	requireCode(t, svc.RemoveFavorite(ctx, fan, public), errors.ErrCodeNotFound)
}

func TestListSets_NeverNil(t *testing.T) {
	e := newEnv(t)
	svc := newSetService(e)

	sets, err := svc.ListSets(ctx, "", models.SetFilter{})
	require.NoError(t, err)
	assert.NotNil(t, sets)
	assert.Empty(t, sets)
}
