// Package access resolves the effective permission a caller holds on a set.
package access

import (
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/models"
)

// Resolve returns the caller's effective level on set. userID is empty for anonymous
// callers; grant is the stored collaborator permission for (set, user), or empty when
// no row exists.
func Resolve(userID string, set models.Set, grant models.Permission) models.AccessLevel {
	if userID != "" && userID == set.OwnerID {
		return models.AccessOwner
	}

	level := models.AccessNone
	if userID != "" {
		level = models.AccessFromPermission(grant)
	}
	if set.IsPublic && level < models.AccessViewer {
		level = models.AccessViewer
	}
	return level
}

// Require checks that level satisfies need. A caller with no access at all gets the
// same NOT_FOUND a missing set would produce.
func Require(level, need models.AccessLevel, setID string) error {
	if level == models.AccessNone {
		return errors.NewNotFoundError("set", setID)
	}
	if level < need {
		return errors.NewForbiddenError("insufficient permission on set")
	}
	return nil
}

// RequireTrueOwner checks that userID owns set outright. Collaborators holding an
// owner grant do not qualify.
func RequireTrueOwner(userID string, set models.Set, level models.AccessLevel) error {
	if level == models.AccessNone {
		return errors.NewNotFoundError("set", set.ID)
	}
	if userID == "" || userID != set.OwnerID {
		return errors.NewForbiddenError("only the set owner can do this")
	}
	return nil
}

// ShareLevel reports how a share-link holder sees the set: their own stronger level
// when they own or collaborate on it, "public" otherwise.
func ShareLevel(userID string, set models.Set, grant models.Permission) string {
	if userID == "" {
		return "public"
	}
	if userID == set.OwnerID {
		return models.AccessOwner.String()
	}
	if level := models.AccessFromPermission(grant); level != models.AccessNone {
		return level.String()
	}
	return "public"
}
