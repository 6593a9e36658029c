package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sindrigils/restfulapi-anime/internal/cache"
	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

// fakeStore keeps records in a slice and counts store round trips so tests
// can assert exactly when the cache shielded the store.
type fakeStore struct {
	records []domain.Anime

	existsCalls  int
	findCalls    int
	findOneCalls int
}

func (f *fakeStore) matches(a domain.Anime, q domain.Query) bool {
	switch q.Kind {
	case domain.ByStudio:
		return a.Studio == q.Studio
	case domain.ByGenre:
		for _, g := range a.Genres {
			if g == q.Genre {
				return true
			}
		}
		return false
	case domain.ByName:
		return a.Name == q.Name
	case domain.ByRank:
		return a.Rank == q.Rank
	case domain.ByMinRating:
		return a.Rating != nil && *a.Rating >= q.MinRating
	}
	return false
}

func (f *fakeStore) ExistsAnime(_ context.Context, q domain.Query) (bool, error) {
	f.existsCalls++
	for _, a := range f.records {
		if f.matches(a, q) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindAnime(_ context.Context, q domain.Query) ([]domain.Anime, error) {
	f.findCalls++
	var out []domain.Anime
	for _, a := range f.records {
		if f.matches(a, q) {
			out = append(out, a)
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) FindOneAnime(_ context.Context, q domain.Query) (*domain.Anime, error) {
	f.findOneCalls++
	for _, a := range f.records {
		if f.matches(a, q) {
			cp := a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStore) InsertAnime(_ context.Context, a *domain.Anime) error {
	for _, existing := range f.records {
		if existing.Rank == a.Rank {
			return &domain.ConflictError{Field: "rank"}
		}
		if existing.Name == a.Name {
			return &domain.ConflictError{Field: "name"}
		}
	}
	f.records = append(f.records, *a)
	return nil
}

func (f *fakeStore) UpdateAnime(_ context.Context, id uuid.UUID, upd *domain.AnimeUpdate) error {
	for i := range f.records {
		if f.records[i].ID == id.String() {
			upd.Apply(&f.records[i])
			return nil
		}
	}
	return nil
}

func (f *fakeStore) DeleteAnime(_ context.Context, id uuid.UUID) error {
	for i := range f.records {
		if f.records[i].ID == id.String() {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func seedStore() *fakeStore {
	return &fakeStore{records: []domain.Anime{
		{ID: uuid.NewString(), Rank: 9, Name: "Jujutsu Kaisen", Rating: floatPtr(4.9), Studio: "MAPPA", Genres: []domain.Genre{domain.GenreAction}},
		{ID: uuid.NewString(), Rank: 2, Name: "Vinland Saga", Rating: floatPtr(4.8), Studio: "MAPPA", Genres: []domain.Genre{domain.GenreAction, domain.GenreDrama}},
		{ID: uuid.NewString(), Rank: 5, Name: "Mushishi", Rating: floatPtr(4.6), Studio: "Artland", Genres: []domain.Genre{domain.GenreMystery}},
	}}
}

func TestResolve_MissThenHit(t *testing.T) {
	store := seedStore()
	c := cache.NewInMemoryCache()
	svc := New(store, c, 0)
	ctx := context.Background()

	q := domain.QueryByStudio("MAPPA", 5)

	first, err := svc.Resolve(ctx, q)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if store.existsCalls != 1 || store.findCalls != 1 {
		t.Fatalf("miss should hit the store once: exists=%d find=%d", store.existsCalls, store.findCalls)
	}

	second, err := svc.Resolve(ctx, q)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if store.existsCalls != 1 || store.findCalls != 1 {
		t.Fatalf("hit must not touch the store: exists=%d find=%d", store.existsCalls, store.findCalls)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("hit returned different bytes:\n%s\n%s", first, second)
	}
}

func TestResolve_SortedByRank(t *testing.T) {
	svc := New(seedStore(), cache.NewInMemoryCache(), 0)

	payload, err := svc.Resolve(context.Background(), domain.QueryByStudio("MAPPA", 5))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var items []domain.Anime
	if err := json.Unmarshal(payload, &items); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Rank != 2 || items[1].Rank != 9 {
		t.Errorf("ranks = [%d %d], want ascending [2 9]", items[0].Rank, items[1].Rank)
	}
}

func TestResolve_AbsenceNeverCached(t *testing.T) {
	store := seedStore()
	svc := New(store, cache.NewInMemoryCache(), 0)
	ctx := context.Background()

	q := domain.QueryByStudio("Ghibli", 5)

	if _, err := svc.Resolve(ctx, q); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Resolve = %v, want ErrNotFound", err)
	}
	if _, err := svc.Resolve(ctx, q); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Resolve = %v, want ErrNotFound", err)
	}
	if store.existsCalls != 2 {
		t.Fatalf("both misses must reach the store: exists=%d, want 2", store.existsCalls)
	}
	if store.findCalls != 0 {
		t.Errorf("find ran despite absence: %d calls", store.findCalls)
	}
}

func TestResolve_EntryExpiresAfterTTL(t *testing.T) {
	store := seedStore()
	c := cache.NewInMemoryCache()
	now := time.Now()
	c.SetClock(func() time.Time { return now })

	svc := New(store, c, 5*time.Minute)
	ctx := context.Background()
	q := domain.QueryByGenre(domain.GenreAction, 5)

	if _, err := svc.Resolve(ctx, q); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := svc.Resolve(ctx, q); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store.findCalls != 1 {
		t.Fatalf("expected one store fetch before expiry, got %d", store.findCalls)
	}

	now = now.Add(5*time.Minute + time.Second)
	if _, err := svc.Resolve(ctx, q); err != nil {
		t.Fatalf("Resolve after expiry: %v", err)
	}
	if store.findCalls != 2 {
		t.Fatalf("expired entry should force a fresh fetch, findCalls=%d", store.findCalls)
	}
}

// A cached result keeps serving even after a mutation changes what the store
// would return; the fresh result only shows up once the entry expires.
func TestResolve_MutationLeavesCacheStale(t *testing.T) {
	store := seedStore()
	c := cache.NewInMemoryCache()
	now := time.Now()
	c.SetClock(func() time.Time { return now })

	svc := New(store, c, 5*time.Minute)
	ctx := context.Background()
	q := domain.QueryByStudio("MAPPA", 5)

	before, err := svc.Resolve(ctx, q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	err = svc.Create(ctx, &domain.Anime{Rank: 1, Name: "Chainsaw Man", Studio: "MAPPA"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	after, err := svc.Resolve(ctx, q)
	if err != nil {
		t.Fatalf("Resolve after create: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("mutation invalidated the cache entry; it must stay until expiry")
	}

	now = now.Add(6 * time.Minute)
	fresh, err := svc.Resolve(ctx, q)
	if err != nil {
		t.Fatalf("Resolve after expiry: %v", err)
	}
	var items []domain.Anime
	if err := json.Unmarshal(fresh, &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 3 || items[0].Name != "Chainsaw Man" {
		t.Errorf("expired refetch missing new rank-1 record: %v", items)
	}
}

func TestResolve_SingletonQueries(t *testing.T) {
	store := seedStore()
	svc := New(store, cache.NewInMemoryCache(), 0)
	ctx := context.Background()

	payload, err := svc.Resolve(ctx, domain.QueryByRank(5))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	var a domain.Anime
	if err := json.Unmarshal(payload, &a); err != nil {
		t.Fatalf("singleton result is not a single object: %v", err)
	}
	if a.Name != "Mushishi" {
		t.Errorf("name = %q, want Mushishi", a.Name)
	}
	if store.existsCalls != 0 {
		t.Errorf("singleton path ran a presence check: %d", store.existsCalls)
	}

	if _, err := svc.Resolve(ctx, domain.QueryByName("Bleach")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("absent name = %v, want ErrNotFound", err)
	}
}

// brokenCache fails every operation, standing in for an unreachable Redis.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Ping(context.Context) error { return errors.New("connection refused") }
func (brokenCache) Close() error               { return nil }

func TestResolve_CacheFailureFallsThroughToStore(t *testing.T) {
	store := seedStore()
	svc := New(store, brokenCache{}, 0)

	payload, err := svc.Resolve(context.Background(), domain.QueryByStudio("MAPPA", 5))
	if err != nil {
		t.Fatalf("Resolve with broken cache: %v", err)
	}
	if !strings.HasPrefix(string(payload), "[") {
		t.Errorf("payload = %s, want JSON array", payload)
	}
	if store.findCalls != 1 {
		t.Errorf("store not consulted: findCalls=%d", store.findCalls)
	}
}

func TestUpdate(t *testing.T) {
	store := seedStore()
	svc := New(store, cache.NewInMemoryCache(), 0)
	ctx := context.Background()

	t.Run("malformed id maps to not found", func(t *testing.T) {
		err := svc.Update(ctx, "not-a-uuid", &domain.AnimeUpdate{Name: strPtr("x")})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		err := svc.Update(ctx, store.records[0].ID, &domain.AnimeUpdate{})
		if !errors.Is(err, domain.ErrEmptyUpdate) {
			t.Errorf("err = %v, want ErrEmptyUpdate", err)
		}
	})

	t.Run("absent id is a no-op", func(t *testing.T) {
		err := svc.Update(ctx, uuid.NewString(), &domain.AnimeUpdate{Name: strPtr("x")})
		if err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})

	t.Run("applies fields", func(t *testing.T) {
		err := svc.Update(ctx, store.records[0].ID, &domain.AnimeUpdate{Name: strPtr("Renamed")})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if store.records[0].Name != "Renamed" {
			t.Errorf("name = %q, want Renamed", store.records[0].Name)
		}
	})
}

func TestDelete(t *testing.T) {
	store := seedStore()
	svc := New(store, cache.NewInMemoryCache(), 0)
	ctx := context.Background()

	if err := svc.Delete(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("malformed id err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, uuid.NewString()); err != nil {
		t.Errorf("absent id err = %v, want nil", err)
	}

	id := store.records[0].ID
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.records) != 2 {
		t.Errorf("records = %d, want 2", len(store.records))
	}
}

func TestCreate(t *testing.T) {
	store := seedStore()
	svc := New(store, cache.NewInMemoryCache(), 0)
	ctx := context.Background()

	t.Run("invalid record rejected before store", func(t *testing.T) {
		err := svc.Create(ctx, &domain.Anime{Rank: 0, Name: "X"})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("err = %v, want *ValidationError", err)
		}
	})

	t.Run("rank collision surfaces conflict", func(t *testing.T) {
		err := svc.Create(ctx, &domain.Anime{Rank: 9, Name: "Other"})
		var cerr *domain.ConflictError
		if !errors.As(err, &cerr) {
			t.Fatalf("err = %v, want *ConflictError", err)
		}
		if cerr.Field != "rank" {
			t.Errorf("conflict field = %q, want rank", cerr.Field)
		}
	})

	t.Run("assigns id on insert", func(t *testing.T) {
		a := &domain.Anime{Rank: 50, Name: "Frieren"}
		if err := svc.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := uuid.Parse(a.ID); err != nil {
			t.Errorf("id %q is not a uuid", a.ID)
		}
	})
}
