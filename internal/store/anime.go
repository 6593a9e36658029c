package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

// predicateSQL renders a query's predicate as a WHERE fragment with $1 as
// the single placeholder, plus its argument.
func predicateSQL(q domain.Query) (string, any) {
	switch q.Kind {
	case domain.ByStudio:
		return `data->>'studio' = $1`, q.Studio
	case domain.ByGenre:
		return `data->'genres' ? $1`, string(q.Genre)
	case domain.ByName:
		return `name = $1`, q.Name
	case domain.ByRank:
		return `rank = $1`, q.Rank
	case domain.ByMinRating:
		return `(data->>'rating')::float8 >= $1`, q.MinRating
	}
	return `FALSE`, nil
}

func scanAnime(id uuid.UUID, data []byte) (*domain.Anime, error) {
	var a domain.Anime
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode anime document: %w", err)
	}
	a.ID = id.String()
	return &a, nil
}

// ExistsAnime reports whether the predicate matches at least one record.
func (s *Store) ExistsAnime(ctx context.Context, q domain.Query) (bool, error) {
	where, arg := predicateSQL(q)
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM anime WHERE `+where+` LIMIT 1`, arg).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check anime presence: %w", err)
	}
	return true, nil
}

// FindAnime returns the records matching the predicate, up to the query's
// limit. Order is not guaranteed; callers sort.
func (s *Store) FindAnime(ctx context.Context, q domain.Query) ([]domain.Anime, error) {
	where, arg := predicateSQL(q)
	sql := `SELECT id, data FROM anime WHERE ` + where
	if q.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT %d`, q.Limit)
	}

	rows, err := s.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("find anime: %w", err)
	}
	defer rows.Close()

	var out []domain.Anime
	for rows.Next() {
		var id uuid.UUID
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan anime row: %w", err)
		}
		a, err := scanAnime(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anime rows: %w", err)
	}
	return out, nil
}

// FindOneAnime returns the single record matching a singleton predicate, or
// domain.ErrNotFound.
func (s *Store) FindOneAnime(ctx context.Context, q domain.Query) (*domain.Anime, error) {
	where, arg := predicateSQL(q)
	var id uuid.UUID
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT id, data FROM anime WHERE `+where+` LIMIT 1`, arg).Scan(&id, &data)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one anime: %w", err)
	}
	return scanAnime(id, data)
}

// InsertAnime stores a new record. A rank or name collision surfaces as a
// domain.ConflictError naming the field.
func (s *Store) InsertAnime(ctx context.Context, a *domain.Anime) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("invalid anime id: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO anime (id, rank, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $5)
	`, id, a.Rank, a.Name, data, now)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert anime: %w", err)
	}
	return nil
}

// UpdateAnime applies a partial update to the record with the given id.
// Updating an absent id is a no-op, mirroring a find-and-update against a
// missing document.
func (s *Store) UpdateAnime(ctx context.Context, id uuid.UUID, upd *domain.AnimeUpdate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	var data []byte
	err = tx.QueryRow(ctx, `SELECT data FROM anime WHERE id = $1 FOR UPDATE`, id).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load anime for update: %w", err)
	}

	a, err := scanAnime(id, data)
	if err != nil {
		return err
	}
	upd.Apply(a)

	newData, err := json.Marshal(a)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE anime SET rank = $2, name = $3, data = $4::jsonb, updated_at = NOW()
		WHERE id = $1
	`, id, a.Rank, a.Name, newData)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update anime: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteAnime removes the record with the given id. Deleting an absent id
// succeeds with zero effect.
func (s *Store) DeleteAnime(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM anime WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete anime: %w", err)
	}
	return nil
}
