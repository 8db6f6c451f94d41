// Package app is the composition root of the tunesphere client.
//
// # Overview
//
// New loads configuration, builds the logger, opens the key-value store
// (TOML file or Redis), creates the API client and every store, and restores
// the persisted session. The CLI commands use the resulting *App directly;
// Run additionally starts the background refresher and the TUI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   New()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML + .env + TUNESPHERE_*
//	       ├─────> logging.New()        zap → lumberjack file
//	       ├─────> openStore()          kvstore file or redis
//	       ├─────> api.NewClient()      token read from kvstore per request
//	       ├─────> session.Restore()    restoring → (un)authenticated
//	       └─────> player.OnChange()    started tracks → library.Recent
//
//	Run():
//	       ├─────> StartRefresher()     trending + featured, errgroup
//	       └─────> ui.Run()             blocks until quit
//
// # Refresh Behavior
//
// The refresher fetches trending songs and featured playlists concurrently
// every refresh interval (default 60s). Each fetch takes a state ticket, so a
// slow response never overwrites a newer one. After failures the next
// attempt comes sooner: 4s, 8s, 16s, then every 30s until a fetch succeeds.
//
// # Shutdown
//
// Close flushes the log, closes the Redis connection when one is open, and
// joins any errors.
package app
