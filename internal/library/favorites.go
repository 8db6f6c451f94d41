package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/tunesphere/internal/api"
)

// migrateWorkers bounds concurrent song lookups during Migrate.
const migrateWorkers = 4

// FavoritesBackend is the subset of the API favorites management needs.
type FavoritesBackend interface {
	GetFavorites(ctx context.Context) ([]api.Track, error)
	AddFavorite(ctx context.Context, track api.Track) error
	RemoveFavorite(ctx context.Context, songID string) error
	UpdateFavorites(ctx context.Context, favorites []api.Track) error
	GetSongByID(ctx context.Context, id string) (api.Track, error)
}

// ClientFavorites adapts an *api.Client to FavoritesBackend.
func ClientFavorites(c *api.Client) FavoritesBackend {
	return clientFavorites{c: c}
}

type clientFavorites struct {
	c *api.Client
}

func (b clientFavorites) GetFavorites(ctx context.Context) ([]api.Track, error) {
	return b.c.Users.GetFavorites(ctx)
}

func (b clientFavorites) AddFavorite(ctx context.Context, track api.Track) error {
	return b.c.Users.AddFavorite(ctx, track)
}

func (b clientFavorites) RemoveFavorite(ctx context.Context, songID string) error {
	return b.c.Users.RemoveFavorite(ctx, songID)
}

func (b clientFavorites) UpdateFavorites(ctx context.Context, favorites []api.Track) error {
	return b.c.Users.UpdateFavorites(ctx, favorites)
}

func (b clientFavorites) GetSongByID(ctx context.Context, id string) (api.Track, error) {
	return b.c.Music.GetSongByID(ctx, id)
}

// Favorites manages the server-side favorites list as full track objects.
type Favorites struct {
	backend FavoritesBackend
	log     *zap.Logger
}

// NewFavorites returns a Favorites using backend.
func NewFavorites(backend FavoritesBackend, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{backend: backend, log: logger.Named("favorites")}
}

// List returns the favorites as stored. Legacy id-only entries come back as
// stub tracks.
func (f *Favorites) List(ctx context.Context) ([]api.Track, error) {
	return f.backend.GetFavorites(ctx)
}

// IsFavorite reports whether track is in the favorites list.
func (f *Favorites) IsFavorite(ctx context.Context, track api.Track) (bool, error) {
	list, err := f.backend.GetFavorites(ctx)
	if err != nil {
		return false, err
	}
	return lo.ContainsBy(list, track.SameAs), nil
}

// Toggle adds track when absent and removes it when present. It reports
// whether the track is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, track api.Track) (bool, error) {
	if track.Key() == "" {
		return false, errors.New("track has no id")
	}
	list, err := f.backend.GetFavorites(ctx)
	if err != nil {
		return false, fmt.Errorf("load favorites: %w", err)
	}
	if existing, ok := lo.Find(list, track.SameAs); ok {
		if err := f.backend.RemoveFavorite(ctx, existing.Key()); err != nil {
			return true, fmt.Errorf("remove favorite: %w", err)
		}
		f.log.Debug("favorite removed", zap.String("track_id", existing.Key()))
		return false, nil
	}
	if err := f.backend.AddFavorite(ctx, track); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	f.log.Debug("favorite added", zap.String("track_id", track.Key()))
	return true, nil
}

// Migrate rewrites a favorites list that still holds bare ids into full
// track objects. Ids the server cannot resolve are kept as they are. It
// returns the number of entries resolved; nothing is written when zero.
func (f *Favorites) Migrate(ctx context.Context) (int, error) {
	list, err := f.backend.GetFavorites(ctx)
	if err != nil {
		return 0, fmt.Errorf("load favorites: %w", err)
	}
	if !lo.SomeBy(list, func(t api.Track) bool { return t.IsStub() }) {
		return 0, nil
	}

	resolved := make([]api.Track, len(list))
	copy(resolved, list)
	found := make([]bool, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(migrateWorkers)
	for i, t := range list {
		if !t.IsStub() || t.Key() == "" {
			continue
		}
		g.Go(func() error {
			track, err := f.backend.GetSongByID(gctx, t.Key())
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				f.log.Warn("resolve favorite failed", zap.String("track_id", t.Key()), zap.Error(err))
				return nil
			}
			if track.Key() == "" {
				track.ID = api.ID(t.Key())
			}
			resolved[i] = track
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := lo.Count(found, true)
	if count == 0 {
		return 0, nil
	}
	if err := f.backend.UpdateFavorites(ctx, resolved); err != nil {
		return 0, fmt.Errorf("update favorites: %w", err)
	}
	f.log.Info("favorites migrated", zap.Int("resolved", count), zap.Int("total", len(list)))
	return count, nil
}
