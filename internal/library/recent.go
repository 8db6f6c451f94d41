package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
)

// RecentLimit caps the locally cached recently-played list.
const RecentLimit = 50

// Recent is the recently-played list kept under kvstore.KeyRecentlyPlayed,
// most recent first.
type Recent struct {
	kv  kvstore.Store
	log *zap.Logger

	mu sync.Mutex
}

// NewRecent returns a Recent backed by kv.
func NewRecent(kv kvstore.Store, logger *zap.Logger) *Recent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recent{kv: kv, log: logger.Named("recent")}
}

// List returns the stored tracks. A missing key yields an empty list.
func (r *Recent) List(ctx context.Context) ([]api.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Recent) load(ctx context.Context) ([]api.Track, error) {
	var tracks []api.Track
	if _, err := kvstore.GetJSON(ctx, r.kv, kvstore.KeyRecentlyPlayed, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Record moves track to the front, dropping earlier entries for the same
// track and anything beyond RecentLimit. A stored list that does not decode
// is replaced; a failed read leaves the stored list untouched.
func (r *Recent) Record(ctx context.Context, track api.Track) error {
	if track.Key() == "" {
		return errors.New("track has no id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.load(ctx)
	switch {
	case errors.Is(err, kvstore.ErrDecode):
		r.log.Warn("discarding corrupt recently played list", zap.Error(err))
		existing = nil
	case err != nil:
		return fmt.Errorf("read recently played: %w", err)
	}
	rest := lo.Filter(existing, func(t api.Track, _ int) bool {
		return !t.SameAs(track)
	})
	list := append([]api.Track{track}, rest...)
	if len(list) > RecentLimit {
		list = list[:RecentLimit]
	}
	return kvstore.SetJSON(ctx, r.kv, kvstore.KeyRecentlyPlayed, list)
}

// Clear removes the stored list.
func (r *Recent) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kv.Remove(ctx, kvstore.KeyRecentlyPlayed)
}
