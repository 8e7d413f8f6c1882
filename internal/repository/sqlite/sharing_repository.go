package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/repository"
)

type collaboratorRepository struct {
	db *sql.DB
}

// NewCollaboratorRepository creates a new CollaboratorRepository implementation
func NewCollaboratorRepository(db *sql.DB) repository.CollaboratorRepository {
	return &collaboratorRepository{db: db}
}

const collaboratorSelect = `
SELECT c.id, c.set_id, c.user_id, c.permission, c.created_at, p.email, p.username
FROM collaborators c
JOIN profiles p ON p.id = c.user_id
`

func scanCollaborator(row interface{ Scan(...any) error }) (*models.Collaborator, error) {
	var c models.Collaborator
	var username sql.NullString
	if err := row.Scan(&c.ID, &c.SetID, &c.UserID, &c.Permission, &c.CreatedAt, &c.Email, &username); err != nil {
		return nil, err
	}
	c.Username = stringPtr(username)
	return &c, nil
}

func (r *collaboratorRepository) Grant(ctx context.Context, setID, userID string) (models.Permission, error) {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")

	var p models.Permission
	err := r.db.QueryRowContext(ctx, `SELECT permission FROM collaborators WHERE set_id = ? AND user_id = ?`, setID, userID).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Error("failed to look up grant: %v", err)
		return "", err
	}
	return p, nil
}

func (r *collaboratorRepository) Get(ctx context.Context, id string) (*models.Collaborator, error) {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")
	log.Debug("fetching collaborator: id=%s", id)

	c, err := scanCollaborator(r.db.QueryRowContext(ctx, collaboratorSelect+`WHERE c.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get collaborator: %v", err)
		return nil, err
	}
	return c, nil
}

func (r *collaboratorRepository) List(ctx context.Context, setID string) ([]models.Collaborator, error) {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")
	log.Debug("listing collaborators: set_id=%s", setID)

	rows, err := r.db.QueryContext(ctx, collaboratorSelect+`WHERE c.set_id = ? ORDER BY c.created_at ASC, c.rowid ASC`, setID)
	if err != nil {
		log.Error("failed to list collaborators: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []models.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			log.Error("failed to scan collaborator row: %v", err)
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *collaboratorRepository) Upsert(ctx context.Context, c models.Collaborator) (*models.Collaborator, error) {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")
	log.Debug("upserting collaborator: set_id=%s, user_id=%s, permission=%s", c.SetID, c.UserID, c.Permission)

	_, err := exec(ctx, r.db, `
INSERT INTO collaborators (id, set_id, user_id, permission, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(set_id, user_id) DO UPDATE SET permission = excluded.permission
`, c.ID, c.SetID, c.UserID, string(c.Permission), c.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to upsert collaborator: %v", err)
		return nil, err
	}

	out, err := scanCollaborator(r.db.QueryRowContext(ctx, collaboratorSelect+`WHERE c.set_id = ? AND c.user_id = ?`, c.SetID, c.UserID))
	if err != nil {
		log.Error("failed to reload collaborator: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *collaboratorRepository) UpdatePermission(ctx context.Context, id string, permission models.Permission) error {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")
	log.Debug("updating collaborator permission: id=%s, permission=%s", id, permission)

	if _, err := exec(ctx, r.db, `UPDATE collaborators SET permission = ? WHERE id = ?`, string(permission), id); err != nil {
		log.Error("failed to update collaborator: %v", err)
		return err
	}
	return nil
}

func (r *collaboratorRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("collaborator_repo")
	log.Debug("deleting collaborator: id=%s", id)

	if _, err := exec(ctx, r.db, `DELETE FROM collaborators WHERE id = ?`, id); err != nil {
		log.Error("failed to delete collaborator: %v", err)
		return err
	}
	return nil
}

type shareLinkRepository struct {
	db *sql.DB
}

// NewShareLinkRepository creates a new ShareLinkRepository implementation
func NewShareLinkRepository(db *sql.DB) repository.ShareLinkRepository {
	return &shareLinkRepository{db: db}
}

const shareLinkColumns = `id, set_id, created_by, token, expires_at, is_active, created_at`

func scanShareLink(row interface{ Scan(...any) error }) (*models.ShareLink, error) {
	var l models.ShareLink
	var expires sql.NullTime
	if err := row.Scan(&l.ID, &l.SetID, &l.CreatedBy, &l.Token, &expires, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.ExpiresAt = timePtr(expires)
	return &l, nil
}

func (r *shareLinkRepository) Insert(ctx context.Context, l models.ShareLink) error {
	log := logger.FromContext(ctx).WithPrefix("share_link_repo")
	log.Debug("inserting share link: set_id=%s", l.SetID)

	_, err := exec(ctx, r.db, `
INSERT INTO shared_links (id, set_id, created_by, token, expires_at, is_active, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, l.ID, l.SetID, l.CreatedBy, l.Token, nullTime(l.ExpiresAt), l.IsActive, l.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to insert share link: %v", err)
	}
	return err
}

func (r *shareLinkRepository) GetByToken(ctx context.Context, token string) (*models.ShareLink, error) {
	log := logger.FromContext(ctx).WithPrefix("share_link_repo")
	log.Debug("resolving share token")

	l, err := scanShareLink(r.db.QueryRowContext(ctx, `SELECT `+shareLinkColumns+` FROM shared_links WHERE token = ?`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get share link: %v", err)
		return nil, err
	}
	return l, nil
}

func (r *shareLinkRepository) ListBySet(ctx context.Context, setID string) ([]models.ShareLink, error) {
	log := logger.FromContext(ctx).WithPrefix("share_link_repo")
	log.Debug("listing share links: set_id=%s", setID)

	rows, err := r.db.QueryContext(ctx, `SELECT `+shareLinkColumns+` FROM shared_links WHERE set_id = ? ORDER BY created_at DESC, rowid DESC`, setID)
	if err != nil {
		log.Error("failed to list share links: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []models.ShareLink{}
	for rows.Next() {
		l, err := scanShareLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *shareLinkRepository) Deactivate(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithPrefix("share_link_repo")
	log.Debug("deactivating share link")

	if _, err := exec(ctx, r.db, `UPDATE shared_links SET is_active = 0 WHERE token = ?`, token); err != nil {
		log.Error("failed to deactivate share link: %v", err)
		return err
	}
	return nil
}
