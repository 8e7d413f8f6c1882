package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SeedProfile inserts a profile and returns its id.
func SeedProfile(t *testing.T, sqlDB *sql.DB, email string) string {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := sqlDB.Exec(`INSERT INTO profiles (id, email, created_at, updated_at) VALUES (?, ?, ?, ?)`, id, email, now, now)
	require.NoError(t, err)
	return id
}

// SeedSet inserts a set owned by ownerID and returns its id.
func SeedSet(t *testing.T, sqlDB *sql.DB, ownerID, title string, public bool) string {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := sqlDB.Exec(`
INSERT INTO sets (id, owner_id, title, description, is_public, is_collaborative, created_at, updated_at)
VALUES (?, ?, ?, '', ?, 0, ?, ?)
`, id, ownerID, title, public, now, now)
	require.NoError(t, err)
	return id
}

// SeedFlashcard inserts a flashcard into setID and returns its id.
func SeedFlashcard(t *testing.T, sqlDB *sql.DB, setID, term, description string) string {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := sqlDB.Exec(`
INSERT INTO flashcards (id, set_id, term, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, id, setID, term, description, now, now)
	require.NoError(t, err)
	return id
}

// SeedCollaborator grants userID the given permission on setID.
func SeedCollaborator(t *testing.T, sqlDB *sql.DB, setID, userID, permission string) string {
	id := uuid.NewString()
	_, err := sqlDB.Exec(`
INSERT INTO collaborators (id, set_id, user_id, permission, created_at)
VALUES (?, ?, ?, ?, ?)
`, id, setID, userID, permission, time.Now().UTC())
	require.NoError(t, err)
	return id
}
