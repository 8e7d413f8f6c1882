package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
	"github.com/vytor/brainyflash/internal/testutil/mocks"
)

func TestEnsureAndUpdateProfile(t *testing.T) {
	e := newEnv(t)
	svc := services.NewProfileService(e.profiles)

	p, err := svc.EnsureProfile(ctx, identity.Identity{UserID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)

	_, err = svc.EnsureProfile(ctx, identity.Identity{})
	requireCode(t, err, errors.ErrCodeUnauthenticated)

	name := "  alice_1 "
	p, err = svc.UpdateProfile(ctx, "user-1", models.ProfilePatch{Username: &name})
	require.NoError(t, err)
	require.NotNil(t, p.Username)
	assert.Equal(t, "alice_1", *p.Username)

	_, err = svc.EnsureProfile(ctx, identity.Identity{UserID: "user-2", Email: "b@example.com"})
	require.NoError(t, err)
	taken := "alice_1"
	_, err = svc.UpdateProfile(ctx, "user-2", models.ProfilePatch{Username: &taken})
	requireCode(t, err, errors.ErrCodeConflict)
}

func TestUpdateProfile_Validation(t *testing.T) {
	e := newEnv(t)
	svc := services.NewProfileService(e.profiles)

	bad := "a!"
	_, err := svc.UpdateProfile(ctx, "user-1", models.ProfilePatch{Username: &bad})
	requireCode(t, err, errors.ErrCodeValidation)

	_, err = svc.UpdateProfile(ctx, "user-1", models.ProfilePatch{})
	requireCode(t, err, errors.ErrCodeValidation)
}

func TestGetProfile_NotFound(t *testing.T) {
	e := newEnv(t)
	svc := services.NewProfileService(e.profiles)

	_, err := svc.GetProfile(ctx, "missing")
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestProfileService_RepositoryErrors(t *testing.T) {
	repo := &mocks.MockProfileRepository{}
	svc := services.NewProfileService(repo)

	repo.On("Stats", mock.Anything, "user-1").Return(nil, assert.AnError)
	repo.On("Delete", mock.Anything, "user-1").Return(assert.AnError)

	_, err := svc.UserStats(ctx, "user-1")
	requireCode(t, err, errors.ErrCodeInternal)
	requireCode(t, svc.DeleteAccount(ctx, "user-1"), errors.ErrCodeInternal)
	repo.AssertExpectations(t)
}
