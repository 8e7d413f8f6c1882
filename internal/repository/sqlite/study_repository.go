package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/brainyflash/internal/flashcard"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

type studyRepository struct {
	db *sql.DB
}

// NewStudyRepository creates a new StudyRepository implementation
func NewStudyRepository(db *sql.DB) repository.StudyRepository {
	return &studyRepository{db: db}
}

const sessionColumns = `id, user_id, set_id, mode, cards_studied, correct_answers, total_time_seconds, started_at, completed_at`

func scanSession(row interface{ Scan(...any) error }) (*models.StudySession, error) {
	var s models.StudySession
	var completed sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.SetID, &s.Mode, &s.CardsStudied, &s.CorrectAnswers,
		&s.TotalTimeSeconds, &s.StartedAt, &completed); err != nil {
		return nil, err
	}
	s.CompletedAt = timePtr(completed)
	return &s, nil
}

const progressColumns = `p.id, p.user_id, p.flashcard_id, p.correct_count, p.incorrect_count, p.last_studied, p.difficulty_rating`

func scanProgress(row interface{ Scan(...any) error }) (*models.StudyProgress, error) {
	var p models.StudyProgress
	var last sql.NullTime
	if err := row.Scan(&p.ID, &p.UserID, &p.FlashcardID, &p.CorrectCount, &p.IncorrectCount, &last, &p.DifficultyRating); err != nil {
		return nil, err
	}
	p.LastStudied = timePtr(last)
	return &p, nil
}

func (r *studyRepository) InsertSession(ctx context.Context, s models.StudySession) error {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("starting session: user=%s, set=%s, mode=%s", s.UserID, s.SetID, s.Mode)

	_, err := exec(ctx, r.db, `
INSERT INTO study_sessions (id, user_id, set_id, mode, cards_studied, correct_answers, total_time_seconds, started_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.UserID, s.SetID, string(s.Mode), s.CardsStudied, s.CorrectAnswers, s.TotalTimeSeconds,
		s.StartedAt.UTC(), nullTime(s.CompletedAt))
	if err != nil {
		log.Error("failed to insert session: %v", err)
	}
	return err
}

func (r *studyRepository) GetSession(ctx context.Context, id string) (*models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("fetching session: id=%s", id)

	s, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return s, nil
}

func (r *studyRepository) CompleteSession(ctx context.Context, id string, result models.SessionResult, completedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("completing session: id=%s, studied=%d, correct=%d", id, result.CardsStudied, result.CorrectAnswers)

	_, err := exec(ctx, r.db, `
UPDATE study_sessions
SET cards_studied = ?, correct_answers = ?, total_time_seconds = ?, completed_at = ?
WHERE id = ?
`, result.CardsStudied, result.CorrectAnswers, result.TotalTimeSeconds, completedAt.UTC(), id)
	if err != nil {
		log.Error("failed to complete session: %v", err)
	}
	return err
}

func (r *studyRepository) RecentSessions(ctx context.Context, userID, setID string, limit int) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT `+sessionColumns+`
FROM study_sessions
WHERE user_id = ? AND set_id = ?
ORDER BY started_at DESC, rowid DESC
LIMIT ?
`, userID, setID, limit)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *studyRepository) Summary(ctx context.Context, userID, setID string) (*models.SessionSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("summarizing sessions: user=%s, set=%s", userID, setID)

	var s models.SessionSummary
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(cards_studied), 0), COALESCE(SUM(correct_answers), 0), COALESCE(SUM(total_time_seconds), 0)
FROM study_sessions
WHERE user_id = ? AND set_id = ?
`, userID, setID).Scan(&s.TotalSessions, &s.TotalCardsStudied, &s.TotalCorrect, &s.TotalTimeSeconds)
	if err != nil {
		log.Error("failed to summarize sessions: %v", err)
		return nil, err
	}
	s.Accuracy = flashcard.Accuracy(s.TotalCorrect, s.TotalCardsStudied)
	return &s, nil
}

func (r *studyRepository) RecordAttempt(ctx context.Context, a models.Attempt) (*models.StudyProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("recording attempt: user=%s, flashcard=%s, correct=%t", a.UserID, a.FlashcardID, a.IsCorrect)

	correct, incorrect := 0, 1
	if a.IsCorrect {
		correct, incorrect = 1, 0
	}
	var difficulty sql.NullString
	if a.Difficulty != nil {
		difficulty = sql.NullString{String: string(*a.Difficulty), Valid: true}
	}

	var progress *models.StudyProgress
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		// Counters are incremented in place so concurrent attempts never lose an update.
		_, err := tx.ExecContext(ctx, `
INSERT INTO study_progress (id, user_id, flashcard_id, correct_count, incorrect_count, last_studied, difficulty_rating)
VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, 'medium'))
ON CONFLICT(user_id, flashcard_id) DO UPDATE SET
    correct_count = correct_count + excluded.correct_count,
    incorrect_count = incorrect_count + excluded.incorrect_count,
    last_studied = excluded.last_studied,
    difficulty_rating = COALESCE(?, difficulty_rating)
`, uuid.NewString(), a.UserID, a.FlashcardID, correct, incorrect, a.At.UTC(), difficulty, difficulty)
		if err != nil {
			log.Error("failed to upsert progress: %v", err)
			return err
		}

		progress, err = scanProgress(tx.QueryRowContext(ctx, `
SELECT `+progressColumns+` FROM study_progress p WHERE p.user_id = ? AND p.flashcard_id = ?
`, a.UserID, a.FlashcardID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *studyRepository) ProgressForSet(ctx context.Context, userID, setID string) ([]models.StudyProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT `+progressColumns+`
FROM study_progress p
JOIN flashcards f ON f.id = p.flashcard_id
WHERE p.user_id = ? AND f.set_id = ?
ORDER BY f.created_at ASC, f.rowid ASC
`, userID, setID)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []models.StudyProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *studyRepository) CardsWithProgress(ctx context.Context, userID, setID string) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("study_repo")
	log.Debug("loading cards with progress: user=%s, set=%s", userID, setID)

	rows, err := r.db.QueryContext(ctx, `
SELECT f.id, f.set_id, f.term, f.description, f.image_url, f.ai_review_notes, f.created_at, f.updated_at,
       p.id, p.correct_count, p.incorrect_count, p.last_studied, p.difficulty_rating
FROM flashcards f
LEFT JOIN study_progress p ON p.flashcard_id = f.id AND p.user_id = ?
WHERE f.set_id = ?
ORDER BY f.created_at ASC, f.rowid ASC
`, userID, setID)
	if err != nil {
		log.Error("failed to query cards with progress: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []models.CardProgress{}
	for rows.Next() {
		var c models.Flashcard
		var imageURL, notes, progressID, difficulty sql.NullString
		var correct, incorrect sql.NullInt64
		var last sql.NullTime
		if err := rows.Scan(&c.ID, &c.SetID, &c.Term, &c.Description, &imageURL, &notes, &c.CreatedAt, &c.UpdatedAt,
			&progressID, &correct, &incorrect, &last, &difficulty); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		c.ImageURL = stringPtr(imageURL)
		c.AIReviewNotes = stringPtr(notes)

		cp := models.CardProgress{Flashcard: c}
		if progressID.Valid {
			cp.Progress = &models.StudyProgress{
				ID:               progressID.String,
				UserID:           userID,
				FlashcardID:      c.ID,
				CorrectCount:     int(correct.Int64),
				IncorrectCount:   int(incorrect.Int64),
				LastStudied:      timePtr(last),
				DifficultyRating: models.Difficulty(difficulty.String),
			}
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}
