package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/brainyflash/internal/access"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/models"
)

func TestResolve(t *testing.T) {
	private := models.Set{ID: "s1", OwnerID: "owner"}
	public := models.Set{ID: "s2", OwnerID: "owner", IsPublic: true}

	tests := []struct {
		name   string
		userID string
		set    models.Set
		grant  models.Permission
		want   models.AccessLevel
	}{
		{"owner of private set", "owner", private, "", models.AccessOwner},
		{"owner overrides stale lower grant", "owner", private, models.PermissionViewer, models.AccessOwner},
		{"stranger on private set", "stranger", private, "", models.AccessNone},
		{"anonymous on private set", "", private, "", models.AccessNone},
		{"anonymous on public set", "", public, "", models.AccessViewer},
		{"stranger on public set", "stranger", public, "", models.AccessViewer},
		{"viewer collaborator", "bob", private, models.PermissionViewer, models.AccessViewer},
		{"editor collaborator", "bob", private, models.PermissionEditor, models.AccessEditor},
		{"editor on public set keeps editor", "bob", public, models.PermissionEditor, models.AccessEditor},
		{"owner grant collaborator", "bob", private, models.PermissionOwner, models.AccessOwner},
		{"anonymous ignores grant", "", private, models.PermissionEditor, models.AccessNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, access.Resolve(tt.userID, tt.set, tt.grant))
		})
	}
}

func TestRequire_MasksPrivateSets(t *testing.T) {
	err := access.Require(models.AccessNone, models.AccessViewer, "s1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	err = access.Require(models.AccessViewer, models.AccessEditor, "s1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))

	assert.NoError(t, access.Require(models.AccessEditor, models.AccessEditor, "s1"))
	assert.NoError(t, access.Require(models.AccessOwner, models.AccessEditor, "s1"))
}

func TestRequireTrueOwner(t *testing.T) {
	set := models.Set{ID: "s1", OwnerID: "owner"}

	assert.NoError(t, access.RequireTrueOwner("owner", set, models.AccessOwner))

	err := access.RequireTrueOwner("bob", set, models.AccessOwner)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden), "owner-grant collaborator is not the true owner")

	err = access.RequireTrueOwner("stranger", set, models.AccessNone)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestShareLevel(t *testing.T) {
	set := models.Set{ID: "s1", OwnerID: "owner"}

	assert.Equal(t, "public", access.ShareLevel("", set, ""))
	assert.Equal(t, "public", access.ShareLevel("stranger", set, ""))
	assert.Equal(t, "owner", access.ShareLevel("owner", set, ""))
	assert.Equal(t, "editor", access.ShareLevel("bob", set, models.PermissionEditor))
	assert.Equal(t, "viewer", access.ShareLevel("bob", set, models.PermissionViewer))
}

func TestParsePermission_LegacyAliases(t *testing.T) {
	tests := map[string]models.Permission{
		"viewer": models.PermissionViewer,
		"read":   models.PermissionViewer,
		"editor": models.PermissionEditor,
		"write":  models.PermissionEditor,
		"Owner":  models.PermissionOwner,
		"admin":  models.PermissionOwner,
	}
	for in, want := range tests {
		got, ok := models.ParsePermission(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := models.ParsePermission("superuser")
	assert.False(t, ok)
}
