package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

const flashcardColumns = `id, set_id, term, description, image_url, ai_review_notes, created_at, updated_at`

func scanFlashcard(row interface{ Scan(...any) error }) (*models.Flashcard, error) {
	var c models.Flashcard
	var imageURL, notes sql.NullString
	if err := row.Scan(&c.ID, &c.SetID, &c.Term, &c.Description, &imageURL, &notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ImageURL = stringPtr(imageURL)
	c.AIReviewNotes = stringPtr(notes)
	return &c, nil
}

func (r *flashcardRepository) Get(ctx context.Context, id string) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("fetching flashcard: id=%s", id)

	c, err := scanFlashcard(r.db.QueryRowContext(ctx, `SELECT `+flashcardColumns+` FROM flashcards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return c, nil
}

func (r *flashcardRepository) ListBySet(ctx context.Context, setID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: set_id=%s", setID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+flashcardColumns+`
FROM flashcards
WHERE set_id = ?
ORDER BY created_at ASC, rowid ASC
`, setID)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, *c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func insertFlashcard(ctx context.Context, ex interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, c models.Flashcard) error {
	_, err := ex.ExecContext(ctx, `
INSERT INTO flashcards (id, set_id, term, description, image_url, ai_review_notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, c.ID, c.SetID, c.Term, c.Description, nullString(c.ImageURL), nullString(c.AIReviewNotes), c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: set_id=%s", c.SetID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertFlashcard(ctx, tx, c); err != nil {
			log.Error("failed to insert flashcard: %v", err)
			return err
		}
		return touchSet(ctx, tx, c.SetID, c.UpdatedAt)
	})
}

func (r *flashcardRepository) InsertBatch(ctx context.Context, cards []models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	if len(cards) == 0 {
		return nil
	}
	log.Debug("inserting %d flashcards in batch", len(cards))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, c := range cards {
			if err := insertFlashcard(ctx, tx, c); err != nil {
				log.Error("failed to insert flashcard in batch: %v", err)
				return err
			}
		}
		return touchSet(ctx, tx, cards[0].SetID, cards[len(cards)-1].UpdatedAt)
	})
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard: id=%s", c.ID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
UPDATE flashcards
SET term = ?, description = ?, image_url = ?, ai_review_notes = ?, updated_at = ?
WHERE id = ?
`, c.Term, c.Description, nullString(c.ImageURL), nullString(c.AIReviewNotes), c.UpdatedAt.UTC(), c.ID)
		if err != nil {
			log.Error("failed to update flashcard: %v", err)
			return err
		}
		return touchSet(ctx, tx, c.SetID, c.UpdatedAt)
	})
}

func (r *flashcardRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%s", id)

	if _, err := exec(ctx, r.db, `DELETE FROM flashcards WHERE id = ?`, id); err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return err
	}
	return nil
}

func (r *flashcardRepository) OtherDescriptions(ctx context.Context, setID, excludeID string, limit int) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("fetching distractor candidates: set_id=%s, limit=%d", setID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT description FROM flashcards
WHERE set_id = ? AND id <> ?
ORDER BY RANDOM()
LIMIT ?
`, setID, excludeID, limit)
	if err != nil {
		log.Error("failed to query descriptions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *flashcardRepository) CountByImageURL(ctx context.Context, url string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flashcards WHERE image_url = ?`, url).Scan(&n); err != nil {
		log.Error("failed to count image references: %v", err)
		return 0, err
	}
	return n, nil
}

func touchSet(ctx context.Context, tx *sql.Tx, setID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `UPDATE sets SET updated_at = ? WHERE id = ?`, at.UTC(), setID)
	return err
}
