package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

type setRepository struct {
	db *sql.DB
}

// NewSetRepository creates a new SetRepository implementation
func NewSetRepository(db *sql.DB) repository.SetRepository {
	return &setRepository{db: db}
}

const (
	defaultSetLimit = 20
	maxSetLimit     = 100
)

func selectSets() squirrel.SelectBuilder {
	return sqlBuilder.Select(
		"s.id", "s.owner_id", "s.title", "s.description", "s.is_public", "s.is_collaborative",
		"s.created_at", "s.updated_at", "p.username",
		"(SELECT COUNT(*) FROM flashcards f WHERE f.set_id = s.id) AS flashcard_count",
	).From("sets s").LeftJoin("profiles p ON p.id = s.owner_id")
}

// visibleTo restricts a set query to sets viewerID may see.
func visibleTo(viewerID string) squirrel.Sqlizer {
	if viewerID == "" {
		return squirrel.Eq{"s.is_public": true}
	}
	return squirrel.Or{
		squirrel.Eq{"s.is_public": true},
		squirrel.Eq{"s.owner_id": viewerID},
		squirrel.Expr("EXISTS (SELECT 1 FROM collaborators c WHERE c.set_id = s.id AND c.user_id = ?)", viewerID),
	}
}

func scanSets(rows *sql.Rows) ([]models.Set, error) {
	var sets []models.Set
	for rows.Next() {
		var s models.Set
		var ownerUsername sql.NullString
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.IsPublic, &s.IsCollaborative,
			&s.CreatedAt, &s.UpdatedAt, &ownerUsername, &s.FlashcardCount); err != nil {
			return nil, err
		}
		s.OwnerUsername = stringPtr(ownerUsername)
		s.Tags = []string{}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func querySets(ctx context.Context, sqlDB *sql.DB, query squirrel.SelectBuilder) ([]models.Set, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets, err := scanSets(rows)
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, sqlDB, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func loadTags(ctx context.Context, sqlDB *sql.DB, sets []models.Set) error {
	if len(sets) == 0 {
		return nil
	}
	ids := make([]string, len(sets))
	index := make(map[string]int, len(sets))
	for i, s := range sets {
		ids[i] = s.ID
		index[s.ID] = i
	}

	stmt, args, err := sqlBuilder.Select("set_id", "tag").From("set_tags").
		Where(squirrel.Eq{"set_id": ids}).OrderBy("tag").ToSql()
	if err != nil {
		return err
	}
	rows, err := sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var setID, tag string
		if err := rows.Scan(&setID, &tag); err != nil {
			return err
		}
		i := index[setID]
		sets[i].Tags = append(sets[i].Tags, tag)
	}
	return rows.Err()
}

func (r *setRepository) Get(ctx context.Context, id string) (*models.Set, error) {
	log := logger.FromContext(ctx).WithPrefix("set_repo")
	log.Debug("fetching set: id=%s", id)

	sets, err := querySets(ctx, r.db, selectSets().Where(squirrel.Eq{"s.id": id}))
	if err != nil {
		log.Error("failed to get set: %v", err)
		return nil, err
	}
	if len(sets) == 0 {
		log.Debug("set not found: id=%s", id)
		return nil, nil
	}
	return &sets[0], nil
}

func (r *setRepository) List(ctx context.Context, filter models.SetFilter) ([]models.Set, error) {
	log := logger.FromContext(ctx).WithPrefix("set_repo")
	log.Debug("listing sets: viewer=%s, search=%q, tags=%v, public_only=%t, owner=%s",
		filter.ViewerID, filter.Search, filter.Tags, filter.PublicOnly, filter.OwnerID)

	query := selectSets()
	if filter.PublicOnly {
		query = query.Where(squirrel.Eq{"s.is_public": true})
	} else {
		query = query.Where(visibleTo(filter.ViewerID))
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"s.owner_id": filter.OwnerID})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + escapeLike(search) + "%"
		query = query.Where(`(s.title LIKE ? ESCAPE '\' OR s.description LIKE ? ESCAPE '\')`, like, like)
	}
	if len(filter.Tags) > 0 {
		sub, args, err := sqlBuilder.Select("1").From("set_tags t").
			Where("t.set_id = s.id").Where(squirrel.Eq{"t.tag": filter.Tags}).ToSql()
		if err != nil {
			log.Error("failed to build tag filter: %v", err)
			return nil, err
		}
		query = query.Where("EXISTS ("+sub+")", args...)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSetLimit
	}
	if limit > maxSetLimit {
		limit = maxSetLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.OrderBy("s.updated_at DESC", "s.id").Limit(uint64(limit)).Offset(uint64(offset))

	sets, err := querySets(ctx, r.db, query)
	if err != nil {
		log.Error("failed to list sets: %v", err)
		return nil, err
	}
	log.Debug("found %d sets", len(sets))
	return sets, nil
}

func (r *setRepository) Insert(ctx context.Context, s models.Set) error {
	log := logger.FromContext(ctx).WithPrefix("set_repo")
	log.Debug("inserting set: id=%s, owner=%s", s.ID, s.OwnerID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO sets (id, owner_id, title, description, is_public, is_collaborative, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.OwnerID, s.Title, s.Description, s.IsPublic, s.IsCollaborative, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
		if err != nil {
			log.Error("failed to insert set: %v", err)
			return err
		}
		return replaceTags(ctx, tx, s.ID, s.Tags)
	})
}

func (r *setRepository) Update(ctx context.Context, id string, patch models.SetPatch, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("set_repo")
	log.Debug("updating set: id=%s", id)

	query := sqlBuilder.Update("sets").Set("updated_at", now.UTC()).Where(squirrel.Eq{"id": id})
	if patch.Title != nil {
		query = query.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}
	if patch.IsPublic != nil {
		query = query.Set("is_public", *patch.IsPublic)
	}
	if patch.IsCollaborative != nil {
		query = query.Set("is_collaborative", *patch.IsCollaborative)
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			log.Error("failed to update set: %v", err)
			return err
		}
		if patch.Tags != nil {
			return replaceTags(ctx, tx, id, *patch.Tags)
		}
		return nil
	})
}

func replaceTags(ctx context.Context, tx *sql.Tx, setID string, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM set_tags WHERE set_id = ?`, setID); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	insert := sqlBuilder.Insert("set_tags").Columns("set_id", "tag").Options("OR IGNORE")
	for _, t := range tags {
		insert = insert.Values(setID, t)
	}
	stmt, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, stmt, args...)
	return err
}

func (r *setRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("set_repo")
	log.Info("deleting set: id=%s", id)

	if _, err := exec(ctx, r.db, `DELETE FROM sets WHERE id = ?`, id); err != nil {
		log.Error("failed to delete set: %v", err)
		return err
	}
	return nil
}

func (r *setRepository) ImageURLs(ctx context.Context, id string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("set_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT image_url FROM flashcards
WHERE set_id = ? AND image_url IS NOT NULL AND image_url <> ''
`, id)
	if err != nil {
		log.Error("failed to list image urls: %v", err)
		return nil, err
	}
	defer rows.Close()
	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new FavoriteRepository implementation
func NewFavoriteRepository(db *sql.DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, setID string, now time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("adding favorite: user=%s, set=%s", userID, setID)

	_, err := exec(ctx, r.db, `INSERT INTO favorites (user_id, set_id, created_at) VALUES (?, ?, ?)`, userID, setID, now.UTC())
	if err != nil {
		log.Warn("failed to add favorite: %v", err)
	}
	return err
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, setID string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("removing favorite: user=%s, set=%s", userID, setID)

	res, err := exec(ctx, r.db, `DELETE FROM favorites WHERE user_id = ? AND set_id = ?`, userID, setID)
	if err != nil {
		log.Error("failed to remove favorite: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, setID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM favorites WHERE user_id = ? AND set_id = ?`, userID, setID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *favoriteRepository) List(ctx context.Context, userID string) ([]models.Set, error) {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("listing favorites: user=%s", userID)

	query := selectSets().
		Join("favorites fav ON fav.set_id = s.id").
		Where(squirrel.Eq{"fav.user_id": userID}).
		Where(visibleTo(userID)).
		OrderBy("fav.created_at DESC", "s.id")

	sets, err := querySets(ctx, r.db, query)
	if err != nil {
		log.Error("failed to list favorites: %v", err)
		return nil, err
	}
	return sets, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
