package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a KV backed by a single table with an expires_at column.
// Expiry is lazy: reads filter out expired rows, and writes replace
// them; a row is only physically removed by Del or by overwrite.
type Postgres struct {
	pool *pgxpool.Pool
}

// Schema is the DDL the Postgres KV expects. Applied by the operator
// or a migration tool, not by this package.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    expires_at TIMESTAMPTZ
);
`

// NewPostgres creates a KV over an existing connection pool. The
// caller owns the pool lifecycle.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// DialPostgres connects to the database and wraps it as a KV.
func DialPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres dial: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool when this KV owns it.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Get implements KV.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres set %q: %w", key, err)
	}
	return nil
}

// Del implements KV. Deleting an already-expired row reports absent.
func (p *Postgres) Del(ctx context.Context, key string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM kv_entries
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key,
	)
	if err != nil {
		return false, fmt.Errorf("postgres delete %q: %w", key, err)
	}
	// Clean up an expired leftover row regardless of the outcome.
	_, _ = p.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return tag.RowsAffected() > 0, nil
}

// Expire implements KV.
func (p *Postgres) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE kv_entries SET expires_at = $2
		 WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`,
		key, expiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("postgres expire %q: %w", key, err)
	}
	return tag.RowsAffected() > 0, nil
}
