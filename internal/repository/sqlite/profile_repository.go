package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, username, display_name, avatar_url, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	var username, displayName, avatarURL sql.NullString
	if err := row.Scan(&p.ID, &p.Email, &username, &displayName, &avatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Username = stringPtr(username)
	p.DisplayName = stringPtr(displayName)
	p.AvatarURL = stringPtr(avatarURL)
	return &p, nil
}

func (r *profileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("fetching profile: id=%s", id)

	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("fetching profile by email")

	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = ? COLLATE NOCASE ORDER BY created_at LIMIT 1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile by email: %v", err)
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Ensure(ctx context.Context, id, email string, now time.Time) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("ensuring profile: id=%s", id)

	now = now.UTC()
	_, err := exec(ctx, r.db, `
INSERT INTO profiles (id, email, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    email = excluded.email,
    updated_at = CASE WHEN profiles.email <> excluded.email THEN excluded.updated_at ELSE profiles.updated_at END
`, id, email, now, now)
	if err != nil {
		log.Error("failed to ensure profile: %v", err)
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *profileRepository) Update(ctx context.Context, id string, patch models.ProfilePatch, now time.Time) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("updating profile: id=%s", id)

	query := sqlBuilder.Update("profiles").Set("updated_at", now.UTC()).Where(squirrel.Eq{"id": id})
	if patch.Username != nil {
		query = query.Set("username", *patch.Username)
	}
	if patch.DisplayName != nil {
		query = query.Set("display_name", *patch.DisplayName)
	}
	if patch.AvatarURL != nil {
		query = query.Set("avatar_url", *patch.AvatarURL)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	if _, err := exec(ctx, r.db, stmt, args...); err != nil {
		log.Error("failed to update profile: %v", err)
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *profileRepository) Stats(ctx context.Context, id string) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("computing user stats: id=%s", id)

	var s models.UserStats
	var totalSeconds int
	err := r.db.QueryRowContext(ctx, `
SELECT
    (SELECT COUNT(*) FROM sets WHERE owner_id = ?),
    (SELECT COUNT(*) FROM flashcards f JOIN sets s ON s.id = f.set_id WHERE s.owner_id = ?),
    (SELECT COUNT(*) FROM study_sessions WHERE user_id = ?),
    (SELECT COALESCE(SUM(total_time_seconds), 0) FROM study_sessions WHERE user_id = ?)
`, id, id, id, id).Scan(&s.TotalSets, &s.TotalFlashcards, &s.TotalSessions, &totalSeconds)
	if err != nil {
		log.Error("failed to compute user stats: %v", err)
		return nil, err
	}
	s.TotalStudyMinutes = totalSeconds / 60
	return &s, nil
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Info("deleting profile: id=%s", id)

	if _, err := exec(ctx, r.db, `DELETE FROM profiles WHERE id = ?`, id); err != nil {
		log.Error("failed to delete profile: %v", err)
		return err
	}
	return nil
}
