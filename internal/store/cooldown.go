package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CooldownRepo persists the last model call time per key.
type CooldownRepo struct {
	db *sql.DB
}

// Last returns the stored time for key, or the zero time if none.
func (c *CooldownRepo) Last(ctx context.Context, key string) (time.Time, error) {
	var ms int64
	err := c.db.QueryRowContext(ctx, `SELECT last_at FROM cooldowns WHERE name = $1`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read cooldown: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// Reserve stores t for key unless the stored time is after cutoff. The
// check and the write are one statement, so concurrent callers cannot both
// win.
func (c *CooldownRepo) Reserve(ctx context.Context, key string, t, cutoff time.Time) (bool, error) {
	res, err := c.db.ExecContext(ctx, `INSERT INTO cooldowns (name, last_at) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET last_at = excluded.last_at
		WHERE cooldowns.last_at <= $3`, key, t.UnixMilli(), cutoff.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve cooldown: %w", err)
	}
	return n > 0, nil
}

// Release deletes key if it still holds t.
func (c *CooldownRepo) Release(ctx context.Context, key string, t time.Time) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cooldowns WHERE name = $1 AND last_at = $2`, key, t.UnixMilli())
	if err != nil {
		return fmt.Errorf("release cooldown: %w", err)
	}
	return nil
}
