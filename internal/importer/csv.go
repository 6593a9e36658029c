// Package importer bulk-loads catalog records from CSV files.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
)

// Store is the subset of the document store the importer needs.
type Store interface {
	InsertAnime(ctx context.Context, a *domain.Anime) error
}

// Result summarizes an import run.
type Result struct {
	Imported int
	Skipped  int
}

// columns maps header names to their position in a row. All six columns
// must be present; order does not matter.
type columns struct {
	rank, name, rating, episodes, studio, tags int
}

func parseHeader(header []string) (*columns, error) {
	cols := &columns{rank: -1, name: -1, rating: -1, episodes: -1, studio: -1, tags: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "rank":
			cols.rank = i
		case "name":
			cols.name = i
		case "rating":
			cols.rating = i
		case "episodes":
			cols.episodes = i
		case "studio":
			cols.studio = i
		case "tags", "genres":
			cols.tags = i
		}
	}
	for name, idx := range map[string]int{
		"rank": cols.rank, "name": cols.name, "rating": cols.rating,
		"episodes": cols.episodes, "studio": cols.studio, "tags": cols.tags,
	} {
		if idx < 0 {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return cols, nil
}

// Import reads CSV rows and inserts each valid record. Rows that fail
// canonicalization or collide with existing records are logged and skipped
// so one bad row does not abort the run.
func Import(ctx context.Context, store Store, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logging.Op().Warn("skipping malformed row", "line", line, "error", err)
			res.Skipped++
			continue
		}

		a, err := rowToAnime(cols, row)
		if err != nil {
			logging.Op().Warn("skipping invalid row", "line", line, "error", err)
			res.Skipped++
			continue
		}

		a.ID = uuid.NewString()
		if err := store.InsertAnime(ctx, a); err != nil {
			logging.Op().Warn("skipping row", "line", line, "name", a.Name, "error", err)
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return res, nil
}

func rowToAnime(cols *columns, row []string) (*domain.Anime, error) {
	field := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	raw := domain.RawAnime{
		Rank:     field(cols.rank),
		Name:     field(cols.name),
		Rating:   field(cols.rating),
		Episodes: field(cols.episodes),
		Studio:   field(cols.studio),
		Genres:   strings.Fields(field(cols.tags)),
	}
	return raw.Canonicalize()
}
