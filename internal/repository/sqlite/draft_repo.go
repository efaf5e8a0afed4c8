package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/and161185/shiftreport/internal/errs"
)

// DraftRepo implements repository.DraftRepository on the drafts table.
type DraftRepo struct{ db *DB }

// NewDraftRepo constructs a draft repository.
func NewDraftRepo(db *DB) *DraftRepo { return &DraftRepo{db: db} }

// Get selects the value stored under key.
func (r *DraftRepo) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM drafts WHERE key = ?`
	var v []byte
	if err := r.db.SQL.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Put upserts the value stored under key.
func (r *DraftRepo) Put(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO drafts (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.SQL.ExecContext(ctx, q, key, value)
	return err
}

// Delete removes key.
func (r *DraftRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.SQL.ExecContext(ctx, `DELETE FROM drafts WHERE key = ?`, key)
	return err
}

// Close closes the database.
func (r *DraftRepo) Close() error { return r.db.Close() }
