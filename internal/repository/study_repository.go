package repository

import (
	"context"
	"time"

	"github.com/vytor/brainyflash/internal/models"
)

// StudyRepository handles study sessions and per-card progress
type StudyRepository interface {
	InsertSession(ctx context.Context, session models.StudySession) error
	GetSession(ctx context.Context, id string) (*models.StudySession, error)
	CompleteSession(ctx context.Context, id string, result models.SessionResult, completedAt time.Time) error
	RecentSessions(ctx context.Context, userID, setID string, limit int) ([]models.StudySession, error)
	Summary(ctx context.Context, userID, setID string) (*models.SessionSummary, error)

	// RecordAttempt folds one attempt into the (user, flashcard) row atomically.
	RecordAttempt(ctx context.Context, attempt models.Attempt) (*models.StudyProgress, error)
	ProgressForSet(ctx context.Context, userID, setID string) ([]models.StudyProgress, error)
	CardsWithProgress(ctx context.Context, userID, setID string) ([]models.CardProgress, error)
}
