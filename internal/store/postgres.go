// Package store is the persistence adapter for the catalog. Anime records
// are kept as JSONB documents with dedicated rank and name columns so the
// database enforces both uniqueness invariants.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	s := &Store{pool: pool}

	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("postgres not initialized")
	}
	return s.pool.Ping(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS anime (
			id UUID PRIMARY KEY,
			rank INTEGER NOT NULL,
			name TEXT NOT NULL,
			data JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS anime_rank_key ON anime(rank)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS anime_name_key ON anime(name)`,
		`CREATE INDEX IF NOT EXISTS idx_anime_studio ON anime ((data->>'studio'))`,
		`CREATE INDEX IF NOT EXISTS idx_anime_genres ON anime USING GIN ((data->'genres'))`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users(username)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users(email)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// conflictError maps a unique-violation to a domain.ConflictError naming the
// conflicting field, derived from the constraint name (anime_rank_key,
// users_username_key, ...). Returns nil when err is not a unique violation.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	name := pgErr.ConstraintName
	for _, field := range []string{"rank", "username", "email", "name"} {
		if strings.Contains(name, field) {
			return &domain.ConflictError{Field: field}
		}
	}
	return &domain.ConflictError{}
}
