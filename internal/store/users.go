package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

// InsertUser stores a new user. Username and email collisions surface as
// domain.ConflictError naming the field.
func (s *Store) InsertUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`, id, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByUsername returns the user record, or domain.ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash FROM users WHERE username = $1
	`, username).Scan(&id, &u.Username, &u.Email, &u.PasswordHash)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.ID = id.String()
	return &u, nil
}
