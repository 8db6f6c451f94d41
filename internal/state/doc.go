// Package state holds the browse data shown by the TUI: trending tracks,
// featured playlists, the latest search results and the latest per-platform
// listing.
//
// # Overview
//
// Fetches run off the UI goroutine, either from the background refresher in
// internal/app or from Bubble Tea commands started by key presses. The Store
// is where their results meet the render loop.
//
//	Fetchers:                         UI:
//	┌──────────────────────┐         ┌──────────────────┐
//	│ t := store.Begin(k)  │         │                  │
//	│ tracks, err := GET   │         │                  │
//	│ store.ApplyX(t, ...) │────────→│ store.Snapshot() │
//	└──────────────────────┘ (mutex) └──────────────────┘
//
// # Request Sequencing
//
// Every fetch first takes a Ticket with Begin. Tickets come from one
// monotonic counter, and each Kind remembers the last ticket it issued. An
// Apply call whose ticket is no longer the latest for its kind is dropped and
// reports false:
//
//	t1 := store.Begin(state.KindSearch) // user types "lo"
//	t2 := store.Begin(state.KindSearch) // user types "lofi"
//	store.ApplySearch(t2, "lofi", b, nil) // applied
//	store.ApplySearch(t1, "lo", a, nil)   // stale, dropped
//
// A slow response can therefore never overwrite a newer one. Kinds are
// independent: a trending refresh does not supersede a search.
//
// # Update Semantics
//
//	// Success: replace that kind's data, clear the error
//	store.ApplyTrending(t, tracks, nil)
//	→ snapshot.Trending = tracks
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Error: keep old data, record the error
//	store.ApplyTrending(t, nil, err)
//	→ snapshot.Trending = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// Stale results touch nothing, including the failure counter.
// Snapshot.IsOffline reports two or more consecutive failures, and
// Snapshot.Loading reports kinds with an outstanding ticket.
//
// # Copying
//
// Apply and Snapshot copy slices (and the songs of each playlist), so the UI
// and fetchers never share backing arrays. The zero Store is ready to use.
package state
