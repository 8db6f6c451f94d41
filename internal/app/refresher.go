package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/state"
)

const (
	defaultRefreshInterval = 60 * time.Second
	retryBase              = 2 * time.Second
	maxBackoff             = 30 * time.Second
)

// BrowseSource fetches the feeds the refresher keeps current.
type BrowseSource interface {
	GetTrendingSongs(ctx context.Context) ([]api.Track, error)
	GetFeaturedPlaylists(ctx context.Context) ([]api.Playlist, error)
}

// ClientBrowse adapts an *api.Client to BrowseSource.
func ClientBrowse(c *api.Client) BrowseSource {
	return clientBrowse{c: c}
}

type clientBrowse struct {
	c *api.Client
}

func (b clientBrowse) GetTrendingSongs(ctx context.Context) ([]api.Track, error) {
	return b.c.Music.GetTrendingSongs(ctx)
}

func (b clientBrowse) GetFeaturedPlaylists(ctx context.Context) ([]api.Playlist, error) {
	return b.c.Playlists.GetFeaturedPlaylists(ctx)
}

// StartRefresher launches a background goroutine that refreshes trending and
// featured data every interval. After failures it retries sooner, backing off
// exponentially up to maxBackoff. It returns immediately.
func StartRefresher(ctx context.Context, store *state.Store, source BrowseSource, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			refresh(ctx, store, source, logger)

			delay := interval
			if failures := store.Snapshot().ConsecutiveFailures; failures > 0 {
				delay = min(calculateBackoff(failures, retryBase), interval)
			}
			timer.Reset(delay)
		}
	}()
}

// refresh fetches trending and featured concurrently. Each result is applied
// under its own ticket; the returned error is the first failure.
func refresh(ctx context.Context, store *state.Store, source BrowseSource, logger *zap.Logger) error {
	var g errgroup.Group

	trending := store.Begin(state.KindTrending)
	g.Go(func() error {
		tracks, err := source.GetTrendingSongs(ctx)
		store.ApplyTrending(trending, tracks, err)
		if err != nil {
			logger.Warn("trending refresh failed", zap.Error(err))
		}
		return err
	})

	featured := store.Begin(state.KindFeatured)
	g.Go(func() error {
		playlists, err := source.GetFeaturedPlaylists(ctx)
		store.ApplyFeatured(featured, playlists, err)
		if err != nil {
			logger.Warn("featured refresh failed", zap.Error(err))
		}
		return err
	})

	return g.Wait()
}

// calculateBackoff returns base doubled once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
