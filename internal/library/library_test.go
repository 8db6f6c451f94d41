package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
)

func track(id string) api.Track {
	return api.Track{ID: api.ID(id), Title: "Song " + id, Artist: "Artist"}
}

func TestRecent_RecordOrdersAndDedupes(t *testing.T) {
	ctx := context.Background()
	r := NewRecent(kvstore.NewMemoryStore(), nil)

	for _, id := range []string{"a", "b", "c", "a"} {
		if err := r.Record(ctx, track(id)); err != nil {
			t.Fatalf("Record(%s) returned error: %v", id, err)
		}
	}
	got, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var ids []string
	for _, tr := range got {
		ids = append(ids, tr.Key())
	}
	if strings.Join(ids, ",") != "a,c,b" {
		t.Fatalf("recent = %v, want [a c b]", ids)
	}
}

func TestRecent_DedupesAcrossIDFields(t *testing.T) {
	ctx := context.Background()
	r := NewRecent(kvstore.NewMemoryStore(), nil)
	_ = r.Record(ctx, api.Track{LegacyID: "m1", Title: "old"})
	_ = r.Record(ctx, api.Track{ID: "x", LegacyID: "m1", Title: "new"})

	got, _ := r.List(ctx)
	if len(got) != 1 || got[0].Title != "new" {
		t.Fatalf("recent = %#v, want single new entry", got)
	}
}

func TestRecent_CapsAtLimit(t *testing.T) {
	ctx := context.Background()
	r := NewRecent(kvstore.NewMemoryStore(), nil)
	for i := 0; i < RecentLimit+10; i++ {
		if err := r.Record(ctx, track(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}
	got, _ := r.List(ctx)
	if len(got) != RecentLimit {
		t.Fatalf("len(recent) = %d, want %d", len(got), RecentLimit)
	}
	if got[0].Key() != fmt.Sprintf("t%d", RecentLimit+9) {
		t.Fatalf("first = %q, want most recent", got[0].Key())
	}
}

func TestRecent_RejectsTrackWithoutID(t *testing.T) {
	r := NewRecent(kvstore.NewMemoryStore(), nil)
	if err := r.Record(context.Background(), api.Track{Title: "anon"}); err == nil {
		t.Fatalf("Record without id returned nil error")
	}
}

func TestRecent_ReplacesCorruptList(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	_ = kv.Set(ctx, kvstore.KeyRecentlyPlayed, "{broken")
	r := NewRecent(kv, nil)

	if _, err := r.List(ctx); err == nil {
		t.Fatalf("List on corrupt data returned nil error")
	}
	if err := r.Record(ctx, track("a")); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	got, err := r.List(ctx)
	if err != nil || len(got) != 1 {
		t.Fatalf("List = %v, %v", got, err)
	}
}

// failingGetStore fails reads while failGet is set.
type failingGetStore struct {
	*kvstore.MemoryStore
	failGet bool
}

func (f *failingGetStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("redis: i/o timeout")
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestRecent_ReadFailureKeepsList(t *testing.T) {
	ctx := context.Background()
	kv := &failingGetStore{MemoryStore: kvstore.NewMemoryStore()}
	r := NewRecent(kv, nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := r.Record(ctx, track(id)); err != nil {
			t.Fatalf("Record(%s) returned error: %v", id, err)
		}
	}

	kv.failGet = true
	if err := r.Record(ctx, track("d")); err == nil {
		t.Fatalf("Record with failing read returned nil error")
	}

	kv.failGet = false
	got, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 3 || got[0].Key() != "c" || got[2].Key() != "a" {
		t.Fatalf("List = %v, want [c b a] untouched", got)
	}
}

func TestRecent_ListEmptyAndClear(t *testing.T) {
	ctx := context.Background()
	r := NewRecent(kvstore.NewMemoryStore(), nil)
	got, err := r.List(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("List on empty store = %v, %v", got, err)
	}
	_ = r.Record(ctx, track("a"))
	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	got, _ = r.List(ctx)
	if len(got) != 0 {
		t.Fatalf("List after Clear = %v", got)
	}
}

type fakeFavorites struct {
	mu       sync.Mutex
	list     []api.Track
	songs    map[string]api.Track
	getErr   error
	updates  [][]api.Track
	removed  []string
	lookedUp []string
}

func (f *fakeFavorites) GetFavorites(context.Context) ([]api.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]api.Track(nil), f.list...), nil
}

func (f *fakeFavorites) AddFavorite(_ context.Context, t api.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, t)
	return nil
}

func (f *fakeFavorites) RemoveFavorite(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	kept := f.list[:0]
	for _, t := range f.list {
		if t.Key() != id {
			kept = append(kept, t)
		}
	}
	f.list = kept
	return nil
}

func (f *fakeFavorites) UpdateFavorites(_ context.Context, list []api.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, list)
	f.list = list
	return nil
}

func (f *fakeFavorites) GetSongByID(_ context.Context, id string) (api.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookedUp = append(f.lookedUp, id)
	if t, ok := f.songs[id]; ok {
		return t, nil
	}
	return api.Track{}, &api.Error{Status: 404, Message: "Song not found"}
}

func TestFavorites_Toggle(t *testing.T) {
	ctx := context.Background()
	backend := &fakeFavorites{}
	f := NewFavorites(backend, nil)

	added, err := f.Toggle(ctx, track("a"))
	if err != nil || !added {
		t.Fatalf("first Toggle = %v, %v; want added", added, err)
	}
	if ok, _ := f.IsFavorite(ctx, track("a")); !ok {
		t.Fatalf("IsFavorite = false after add")
	}

	added, err = f.Toggle(ctx, track("a"))
	if err != nil || added {
		t.Fatalf("second Toggle = %v, %v; want removed", added, err)
	}
	if len(backend.list) != 0 {
		t.Fatalf("favorites = %v, want empty", backend.list)
	}
}

func TestFavorites_ToggleRemovesByStoredID(t *testing.T) {
	ctx := context.Background()
	backend := &fakeFavorites{list: []api.Track{{LegacyID: "m1", Title: "x"}}}
	f := NewFavorites(backend, nil)

	added, err := f.Toggle(ctx, api.Track{ID: "other", LegacyID: "m1"})
	if err != nil || added {
		t.Fatalf("Toggle = %v, %v", added, err)
	}
	if len(backend.removed) != 1 || backend.removed[0] != "m1" {
		t.Fatalf("removed = %v, want [m1]", backend.removed)
	}
}

func TestFavorites_ToggleErrors(t *testing.T) {
	ctx := context.Background()
	f := NewFavorites(&fakeFavorites{getErr: errors.New("offline")}, nil)
	if _, err := f.Toggle(ctx, track("a")); err == nil || !strings.Contains(err.Error(), "load favorites") {
		t.Fatalf("Toggle error = %v", err)
	}
	if _, err := f.Toggle(ctx, api.Track{Title: "anon"}); err == nil {
		t.Fatalf("Toggle without id returned nil error")
	}
}

func TestFavorites_MigrateResolvesStubs(t *testing.T) {
	ctx := context.Background()
	backend := &fakeFavorites{
		list: []api.Track{{ID: "1"}, track("full"), {ID: "2"}, {ID: "gone"}},
		songs: map[string]api.Track{
			"1": {ID: "1", Title: "One", Artist: "A"},
			"2": {LegacyID: "2", Title: "Two", Artist: "B"},
		},
	}
	f := NewFavorites(backend, nil)

	n, err := f.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("resolved = %d, want 2", n)
	}
	if len(backend.updates) != 1 {
		t.Fatalf("UpdateFavorites calls = %d, want 1", len(backend.updates))
	}
	got := backend.updates[0]
	if len(got) != 4 {
		t.Fatalf("updated list = %#v", got)
	}
	if got[0].Title != "One" || got[1].Key() != "full" || got[2].Title != "Two" {
		t.Fatalf("updated list = %#v", got)
	}
	if !got[3].IsStub() || got[3].Key() != "gone" {
		t.Fatalf("unresolved entry = %#v, want kept stub", got[3])
	}
}

func TestFavorites_MigrateNoStubsIsNoop(t *testing.T) {
	backend := &fakeFavorites{list: []api.Track{track("a"), track("b")}}
	n, err := NewFavorites(backend, nil).Migrate(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Migrate = %d, %v", n, err)
	}
	if len(backend.updates) != 0 || len(backend.lookedUp) != 0 {
		t.Fatalf("Migrate touched backend: updates=%d lookups=%v", len(backend.updates), backend.lookedUp)
	}
}

func TestFavorites_MigrateNothingResolved(t *testing.T) {
	backend := &fakeFavorites{list: []api.Track{{ID: "gone"}}}
	n, err := NewFavorites(backend, nil).Migrate(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("Migrate = %d, %v", n, err)
	}
	if len(backend.updates) != 0 {
		t.Fatalf("UpdateFavorites called with nothing resolved")
	}
}
