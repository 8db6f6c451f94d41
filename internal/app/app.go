package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/config"
	"github.com/five82/tunesphere/internal/kvstore"
	"github.com/five82/tunesphere/internal/library"
	"github.com/five82/tunesphere/internal/logging"
	"github.com/five82/tunesphere/internal/player"
	"github.com/five82/tunesphere/internal/session"
	"github.com/five82/tunesphere/internal/state"
	"github.com/five82/tunesphere/internal/ui"
)

// Options configure the tunesphere application.
type Options struct {
	ConfigPath string
	APIURL     string // overrides the configured api_url when set
	LogLevel   string // overrides the configured log_level when set
	// Console additionally receives log entries (CLI --verbose).
	Console io.Writer
}

// App holds every long-lived component. Consumers receive it explicitly; no
// package keeps global state.
type App struct {
	Config    config.Config
	Log       *zap.Logger
	KV        kvstore.Store
	Client    *api.Client
	Session   *session.Store
	Player    *player.Store
	Browse    *state.Store
	Recent    *library.Recent
	Favorites *library.Favorites

	closers []func() error
}

// New loads configuration and wires the components. The session is restored
// before New returns. Call Close when done.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath,
		Console: opts.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Config: cfg, Log: logger, closers: []func() error{closeLog}}

	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if closeKV != nil {
		a.closers = append(a.closers, closeKV)
	}

	if err := a.wire(ctx, kv); err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("tunesphere started",
		zap.String("api_url", a.Client.BaseURL()),
		zap.String("storage", cfg.Storage),
		zap.String("session", a.Session.Snapshot().Status.String()),
	)
	return a, nil
}

// wire builds the client and stores on top of kv and restores the session.
func (a *App) wire(ctx context.Context, kv kvstore.Store) error {
	client, err := api.NewClient(a.Config.APIURL, api.StoredToken(kv), a.Log)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	a.KV = kv
	a.Client = client
	a.Session = session.New(session.ClientBackend(client), kv, a.Log)
	a.Player = player.New(nil)
	a.Browse = &state.Store{}
	a.Recent = library.NewRecent(kv, a.Log)
	a.Favorites = library.NewFavorites(library.ClientFavorites(client), a.Log)

	a.Session.Restore(ctx)
	a.recordHistory(ctx)
	return nil
}

// historyBuffer bounds the tracks waiting to be written to the
// recently-played list.
const historyBuffer = 64

// recordHistory adds each newly started track to the recently-played list.
// Writes run on a single worker so player callbacks never wait on storage;
// Close drains the pending tracks.
func (a *App) recordHistory(ctx context.Context) {
	var (
		mu     sync.Mutex
		last   string
		closed bool
	)
	pending := make(chan api.Track, historyBuffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for track := range pending {
			if err := a.Recent.Record(ctx, track); err != nil {
				a.Log.Warn("record recently played failed", zap.String("track_id", track.Key()), zap.Error(err))
			}
		}
	}()

	a.Player.OnChange(func(snap player.Snapshot) {
		if snap.CurrentTrack == nil || !snap.IsPlaying {
			return
		}
		key := snap.CurrentTrack.Key()
		mu.Lock()
		defer mu.Unlock()
		if closed || key == "" || key == last {
			return
		}
		last = key
		select {
		case pending <- *snap.CurrentTrack:
		default:
			a.Log.Warn("recently played backlog full, dropping track", zap.String("track_id", key))
		}
	})

	a.closers = append(a.closers, func() error {
		mu.Lock()
		if !closed {
			closed = true
			close(pending)
		}
		mu.Unlock()
		<-done
		return nil
	})
}

// Close releases storage connections and flushes the log.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg config.Config) (kvstore.Store, func() error, error) {
	switch cfg.Storage {
	case config.StorageRedis:
		store, err := kvstore.NewRedisStore(ctx, kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := kvstore.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// Run boots the TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	a, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	StartRefresher(ctx, a.Browse, ClientBrowse(a.Client), a.Config.RefreshInterval, a.Log)

	theme, _, err := a.KV.Get(ctx, kvstore.KeyTheme)
	if err != nil {
		a.Log.Warn("read theme failed", zap.Error(err))
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    a.Client,
		Session:   a.Session,
		Player:    a.Player,
		Browse:    a.Browse,
		Recent:    a.Recent,
		Favorites: a.Favorites,
		KV:        a.KV,
		Log:       a.Log,
		ThemeName: theme,
	})
}
