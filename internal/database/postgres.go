package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PasswordHasher turns a plaintext password into the encoded hash that gets stored.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// PostgresStore is the PostgreSQL user repository.
type PostgresStore struct {
	db      *sql.DB
	hasher  PasswordHasher
	nowFunc func() time.Time
}

// NewPostgresStore wraps db. hasher is only used by Create and may be nil for a
// store that never signs users up, such as the activity writer.
func NewPostgresStore(db *sql.DB, hasher PasswordHasher) *PostgresStore {
	return &PostgresStore{
		db:      db,
		hasher:  hasher,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_friends (
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	friend_id  UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, friend_id)
);
CREATE TABLE IF NOT EXISTS activity_log (
	id          BIGSERIAL PRIMARY KEY,
	type        TEXT NOT NULL,
	user_id     UUID NOT NULL,
	friend_id   UUID,
	occurred_at TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the tables the store needs if they do not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
