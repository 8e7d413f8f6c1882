package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/blob"
	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/repository"
	"github.com/vytor/brainyflash/internal/repository/sqlite"
	"github.com/vytor/brainyflash/internal/testutil"
	"github.com/vytor/brainyflash/internal/testutil/mocks"
)

// env wires real SQLite repositories with mocked external collaborators.
type env struct {
	db            *sql.DB
	profiles      repository.ProfileRepository
	sets          repository.SetRepository
	favorites     repository.FavoriteRepository
	flashcards    repository.FlashcardRepository
	collaborators repository.CollaboratorRepository
	links         repository.ShareLinkRepository
	study         repository.StudyRepository
	jobs          *mocks.MockJobQueue
	images        *blob.LocalStore
	completion    *mocks.MockCompletionService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	sqlDB := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, sqlDB) })
	images, err := blob.NewLocalStore(t.TempDir(), filesBaseURL)
	require.NoError(t, err)

	return &env{
		db:            sqlDB,
		profiles:      sqlite.NewProfileRepository(sqlDB),
		sets:          sqlite.NewSetRepository(sqlDB),
		favorites:     sqlite.NewFavoriteRepository(sqlDB),
		flashcards:    sqlite.NewFlashcardRepository(sqlDB),
		collaborators: sqlite.NewCollaboratorRepository(sqlDB),
		links:         sqlite.NewShareLinkRepository(sqlDB),
		study:         sqlite.NewStudyRepository(sqlDB),
		jobs:          &mocks.MockJobQueue{},
		images:        images,
		completion:    &mocks.MockCompletionService{},
	}
}

func (e *env) user(t *testing.T, email string) string {
	return testutil.SeedProfile(t, e.db, email)
}

func (e *env) set(t *testing.T, ownerID string, public bool) string {
	return testutil.SeedSet(t, e.db, ownerID, "Biology", public)
}

func (e *env) card(t *testing.T, setID, term, description string) string {
	id := testutil.SeedFlashcard(t, e.db, setID, term, description)
	// Distinct created_at values keep listing order deterministic.
	time.Sleep(time.Millisecond)
	return id
}

func (e *env) grant(t *testing.T, setID, userID, permission string) string {
	return testutil.SeedCollaborator(t, e.db, setID, userID, permission)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}

// imageURL is the public URL of an image uploaded by userID.
func imageURL(userID, name string) string {
	return filesBaseURL + "/images/" + userID + "/" + name
}

const filesBaseURL = "http://files.test"

var ctx = context.Background()
