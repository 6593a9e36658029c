// Package catalog implements the cache-aside query layer over the anime
// store. Reads check the cache first and populate it on a miss; mutations go
// straight to the store and never touch the cache, so a cached read can
// serve stale data until its entry expires.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sindrigils/restfulapi-anime/internal/cache"
	"github.com/sindrigils/restfulapi-anime/internal/domain"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
	"github.com/sindrigils/restfulapi-anime/internal/metrics"
)

// DefaultCacheTTL is how long a cached query result stays valid.
const DefaultCacheTTL = 5 * time.Minute

// Store is the persistence surface the service needs. *store.Store satisfies
// it; tests substitute a fake.
type Store interface {
	ExistsAnime(ctx context.Context, q domain.Query) (bool, error)
	FindAnime(ctx context.Context, q domain.Query) ([]domain.Anime, error)
	FindOneAnime(ctx context.Context, q domain.Query) (*domain.Anime, error)
	InsertAnime(ctx context.Context, a *domain.Anime) error
	UpdateAnime(ctx context.Context, id uuid.UUID, upd *domain.AnimeUpdate) error
	DeleteAnime(ctx context.Context, id uuid.UUID) error
}

// Service is the query engine plus the mutation path.
type Service struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
}

// New creates a Service. Pass ttl <= 0 to use DefaultCacheTTL.
func New(store Store, c cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{store: store, cache: c, ttl: ttl}
}

// Resolve answers a query with the serialized result exactly as it is
// returned to the caller: a JSON array for multi-result predicates, a single
// JSON object for name and rank lookups.
//
// The path is cache-aside: on a hit the bytes are returned as-is with no
// store access. On a miss the store is consulted in two phases — a presence
// check first, then the limited fetch — so that an empty result is signalled
// as domain.ErrNotFound without ever being cached. Matches are validated,
// sorted ascending by rank, serialized, and written back under the query's
// key with the configured TTL.
//
// A cache read failure other than a miss degrades to a forced miss; a
// write-back failure is logged and the result returned anyway. The store
// stays the source of truth either way.
func (s *Service) Resolve(ctx context.Context, q domain.Query) ([]byte, error) {
	key := q.CacheKey()

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.Global().CacheHit()
		return data, nil
	case !errors.Is(err, cache.ErrNotFound):
		logging.Op().Warn("cache read failed, falling through to store", "key", key, "error", err)
	}
	metrics.Global().CacheMiss()

	payload, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		metrics.Global().CacheWriteFail()
		logging.Op().Warn("cache write-back failed", "key", key, "error", err)
	}
	return payload, nil
}

// fetch executes the query against the store and serializes the result.
func (s *Service) fetch(ctx context.Context, q domain.Query) ([]byte, error) {
	if q.Singleton() {
		a, err := s.store.FindOneAnime(ctx, q)
		if err != nil {
			return nil, err
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("stored record failed validation: %w", err)
		}
		return json.Marshal(a)
	}

	ok, err := s.store.ExistsAnime(ctx, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}

	items, err := s.store.FindAnime(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("stored record failed validation: %w", err)
		}
	}
	domain.SortByRank(items)
	return json.Marshal(items)
}

// Create validates and inserts a new record. The cache is not touched;
// existing entries keep serving their old result until they expire.
func (s *Service) Create(ctx context.Context, a *domain.Anime) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return s.store.InsertAnime(ctx, a)
}

// Update applies a partial update to the record with the given id. A
// malformed id maps to domain.ErrNotFound; an empty payload to
// domain.ErrEmptyUpdate. Updating a well-formed but absent id succeeds with
// zero effect. The cache is not touched.
func (s *Service) Update(ctx context.Context, id string, upd *domain.AnimeUpdate) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}
	if upd.Empty() {
		return domain.ErrEmptyUpdate
	}
	if err := upd.Validate(); err != nil {
		return err
	}
	return s.store.UpdateAnime(ctx, uid, upd)
}

// Delete removes the record with the given id. A malformed id maps to
// domain.ErrNotFound; deleting an absent id succeeds with zero effect. The
// cache is not touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}
	return s.store.DeleteAnime(ctx, uid)
}
