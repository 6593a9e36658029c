// Package domain holds the catalog's core types: anime records, partial
// updates, queries, users, and the errors the rest of the service maps to
// HTTP statuses.
package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Genre is one of the recognized anime genres.
type Genre string

const (
	GenreDrama        Genre = "Drama"
	GenreAction       Genre = "Action"
	GenreSupernatural Genre = "Supernatural"
	GenreAdventure    Genre = "Adventure"
	GenreComedy       Genre = "Comedy"
	GenreFantasy      Genre = "Fantasy"
	GenreShounen      Genre = "Shounen"
	GenreSeinen       Genre = "Seinen"
	GenreShoujo       Genre = "Shoujo"
	GenreIsekai       Genre = "Isekai"
	GenreMecha        Genre = "Mecha"
	GenreMystery      Genre = "Mystery"
	GenreSports       Genre = "Sports"
)

var validGenres = map[Genre]struct{}{
	GenreDrama: {}, GenreAction: {}, GenreSupernatural: {}, GenreAdventure: {},
	GenreComedy: {}, GenreFantasy: {}, GenreShounen: {}, GenreSeinen: {},
	GenreShoujo: {}, GenreIsekai: {}, GenreMecha: {}, GenreMystery: {},
	GenreSports: {},
}

// IsValid reports whether g is a recognized genre.
func (g Genre) IsValid() bool {
	_, ok := validGenres[g]
	return ok
}

// FilterGenres trims whitespace and drops unrecognized values, so raw tag
// lists from bulk imports never poison a record.
func FilterGenres(raw []string) []Genre {
	var out []Genre
	for _, s := range raw {
		g := Genre(strings.TrimSpace(s))
		if g.IsValid() {
			out = append(out, g)
		}
	}
	return out
}

// Anime is a catalog record. Rating, Episodes, and Genres are optional.
type Anime struct {
	ID       string   `json:"id,omitempty"`
	Rank     int      `json:"rank"`
	Name     string   `json:"name"`
	Rating   *float64 `json:"rating,omitempty"`
	Episodes *int     `json:"episodes,omitempty"`
	Studio   string   `json:"studio,omitempty"`
	Genres   []Genre  `json:"genres,omitempty"`
}

// Validate checks the record's field constraints.
func (a *Anime) Validate() error {
	if a.Rank < 1 {
		return &ValidationError{Field: "rank", Reason: "must be at least 1"}
	}
	if a.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if a.Rating != nil && (*a.Rating < 0 || *a.Rating > 5) {
		return &ValidationError{Field: "rating", Reason: "must be between 0 and 5"}
	}
	if a.Episodes != nil && *a.Episodes < 0 {
		return &ValidationError{Field: "episodes", Reason: "must not be negative"}
	}
	for _, g := range a.Genres {
		if !g.IsValid() {
			return &ValidationError{Field: "genres", Reason: "unknown genre " + strconv.Quote(string(g))}
		}
	}
	return nil
}

// RawAnime is an anime record with numeric fields still in string form, as
// they arrive from CSV rows. Empty strings mean unset.
type RawAnime struct {
	Rank     string
	Name     string
	Rating   string
	Episodes string
	Studio   string
	Genres   []string
}

// Canonicalize parses the raw fields into a validated Anime. Empty numeric
// strings become unset rather than errors.
func (r *RawAnime) Canonicalize() (*Anime, error) {
	a := &Anime{
		Name:   strings.TrimSpace(r.Name),
		Studio: strings.TrimSpace(r.Studio),
		Genres: FilterGenres(r.Genres),
	}

	rank, err := strconv.Atoi(strings.TrimSpace(r.Rank))
	if err != nil {
		return nil, &ValidationError{Field: "rank", Reason: "must be an integer"}
	}
	a.Rank = rank

	if s := strings.TrimSpace(r.Rating); s != "" {
		rating, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ValidationError{Field: "rating", Reason: "must be a number"}
		}
		a.Rating = &rating
	}

	if s := strings.TrimSpace(r.Episodes); s != "" {
		episodes, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ValidationError{Field: "episodes", Reason: "must be an integer"}
		}
		a.Episodes = &episodes
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// SortByRank orders records ascending by rank in place.
func SortByRank(items []Anime) {
	sort.Slice(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })
}

// AnimeUpdate is a partial update; nil fields are left untouched.
type AnimeUpdate struct {
	Rank     *int     `json:"rank,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
	Episodes *int     `json:"episodes,omitempty"`
	Studio   *string  `json:"studio,omitempty"`
	Genres   []Genre  `json:"genres,omitempty"`
}

// Empty reports whether no field is set.
func (u *AnimeUpdate) Empty() bool {
	return u.Rank == nil && u.Name == nil && u.Rating == nil &&
		u.Episodes == nil && u.Studio == nil && u.Genres == nil
}

// Validate checks the constraints of every set field.
func (u *AnimeUpdate) Validate() error {
	if u.Rank != nil && *u.Rank < 1 {
		return &ValidationError{Field: "rank", Reason: "must be at least 1"}
	}
	if u.Name != nil && *u.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if u.Rating != nil && (*u.Rating < 0 || *u.Rating > 5) {
		return &ValidationError{Field: "rating", Reason: "must be between 0 and 5"}
	}
	if u.Episodes != nil && *u.Episodes < 0 {
		return &ValidationError{Field: "episodes", Reason: "must not be negative"}
	}
	for _, g := range u.Genres {
		if !g.IsValid() {
			return &ValidationError{Field: "genres", Reason: "unknown genre " + strconv.Quote(string(g))}
		}
	}
	return nil
}

// Apply writes the set fields onto a.
func (u *AnimeUpdate) Apply(a *Anime) {
	if u.Rank != nil {
		a.Rank = *u.Rank
	}
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Rating != nil {
		a.Rating = u.Rating
	}
	if u.Episodes != nil {
		a.Episodes = u.Episodes
	}
	if u.Studio != nil {
		a.Studio = *u.Studio
	}
	if u.Genres != nil {
		a.Genres = u.Genres
	}
}
