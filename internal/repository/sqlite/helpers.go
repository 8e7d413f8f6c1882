package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/brainyflash/internal/db"
	"github.com/vytor/brainyflash/internal/logger"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Helper functions shared across repository implementations

func tx(ctx context.Context, sqlDB *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	return db.RetryOnce(func() error {
		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			log.Error("failed to begin transaction: %v", err)
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			log.Debug("transaction rolled back due to error: %v", err)
			return err
		}
		if err := tx.Commit(); err != nil {
			log.Error("failed to commit transaction: %v", err)
			return err
		}
		log.Debug("transaction committed")
		return nil
	})
}

// exec runs a single write statement, retrying once on BUSY/LOCKED.
func exec(ctx context.Context, sqlDB *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := db.RetryOnce(func() error {
		var err error
		res, err = sqlDB.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
