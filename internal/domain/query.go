package domain

import (
	"fmt"
	"strconv"
)

// Predicate identifies which field a query filters on.
type Predicate string

const (
	ByStudio    Predicate = "studio"
	ByGenre     Predicate = "genre"
	ByName      Predicate = "name"
	ByRank      Predicate = "rank"
	ByMinRating Predicate = "rating"
)

// Query is a read against the catalog. Name and rank lookups return a single
// record; the rest return up to Limit matches.
type Query struct {
	Kind      Predicate
	Studio    string
	Genre     Genre
	Name      string
	Rank      int
	MinRating float64
	Limit     int
}

func QueryByStudio(studio string, limit int) Query {
	return Query{Kind: ByStudio, Studio: studio, Limit: limit}
}

func QueryByGenre(genre Genre, limit int) Query {
	return Query{Kind: ByGenre, Genre: genre, Limit: limit}
}

func QueryByName(name string) Query {
	return Query{Kind: ByName, Name: name}
}

func QueryByRank(rank int) Query {
	return Query{Kind: ByRank, Rank: rank}
}

func QueryByMinRating(rating float64, limit int) Query {
	return Query{Kind: ByMinRating, MinRating: rating, Limit: limit}
}

// Singleton reports whether the query resolves to at most one record.
func (q Query) Singleton() bool {
	return q.Kind == ByName || q.Kind == ByRank
}

func (q Query) value() string {
	switch q.Kind {
	case ByStudio:
		return q.Studio
	case ByGenre:
		return string(q.Genre)
	case ByName:
		return q.Name
	case ByRank:
		return strconv.Itoa(q.Rank)
	case ByMinRating:
		return strconv.FormatFloat(q.MinRating, 'g', -1, 64)
	}
	return ""
}

// CacheKey renders the query as a deterministic cache key. The predicate
// kind is part of the key so a studio named "5" can never collide with a
// rank-5 lookup, and the limit is included whenever it shapes the result.
func (q Query) CacheKey() string {
	if q.Singleton() {
		return fmt.Sprintf("q:%s:%s", q.Kind, q.value())
	}
	return fmt.Sprintf("q:%s:%s:%d", q.Kind, q.value(), q.Limit)
}
