package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/tunesphere/internal/api"
)

// Kind identifies one browse feed.
type Kind int

const (
	KindTrending Kind = iota
	KindFeatured
	KindSearch
	KindPlatform
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTrending:
		return "trending"
	case KindFeatured:
		return "featured"
	case KindSearch:
		return "search"
	case KindPlatform:
		return "platform"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Ticket orders fetches of one kind. Only the most recently issued ticket
// for a kind may apply its result.
type Ticket struct {
	Kind Kind
	seq  uint64
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Trending       []api.Track
	Featured       []api.Playlist
	SearchQuery    string
	Search         []api.Track
	Platform       api.Platform
	PlatformTracks []api.Track

	pending [kindCount]bool

	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed fetches
}

// Loading reports whether a fetch of kind is outstanding.
func (s Snapshot) Loading(kind Kind) bool {
	if kind < 0 || kind >= kindCount {
		return false
	}
	return s.pending[kind]
}

// IsOffline returns true when the API has failed several fetches in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	seq      uint64
	latest   [kindCount]uint64
	snapshot Snapshot
}

// Begin issues a ticket for a new fetch of kind, superseding earlier ones.
func (s *Store) Begin(kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if kind >= 0 && kind < kindCount {
		s.latest[kind] = s.seq
		s.snapshot.pending[kind] = true
	}
	return Ticket{Kind: kind, seq: s.seq}
}

// ApplyTrending stores a trending result. It reports false when the ticket
// was superseded and the result discarded.
func (s *Store) ApplyTrending(t Ticket, tracks []api.Track, err error) bool {
	return s.apply(t, KindTrending, err, func(snap *Snapshot) {
		snap.Trending = cloneTracks(tracks)
	})
}

// ApplyFeatured stores a featured playlists result.
func (s *Store) ApplyFeatured(t Ticket, playlists []api.Playlist, err error) bool {
	return s.apply(t, KindFeatured, err, func(snap *Snapshot) {
		snap.Featured = clonePlaylists(playlists)
	})
}

// ApplySearch stores the results of a search for query.
func (s *Store) ApplySearch(t Ticket, query string, tracks []api.Track, err error) bool {
	return s.apply(t, KindSearch, err, func(snap *Snapshot) {
		snap.SearchQuery = query
		snap.Search = cloneTracks(tracks)
	})
}

// ApplyPlatform stores the tracks listed for platform.
func (s *Store) ApplyPlatform(t Ticket, platform api.Platform, tracks []api.Track, err error) bool {
	return s.apply(t, KindPlatform, err, func(snap *Snapshot) {
		snap.Platform = platform
		snap.PlatformTracks = cloneTracks(tracks)
	})
}

// apply records a completed fetch. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) apply(t Ticket, kind Kind, err error, set func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Kind != kind || t.seq == 0 || s.latest[kind] != t.seq {
		return false
	}
	s.snapshot.pending[kind] = false
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return true
	}

	set(&s.snapshot)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Trending = cloneTracks(s.snapshot.Trending)
	snap.Featured = clonePlaylists(s.snapshot.Featured)
	snap.Search = cloneTracks(s.snapshot.Search)
	snap.PlatformTracks = cloneTracks(s.snapshot.PlatformTracks)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneTracks(items []api.Track) []api.Track {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.Track, len(items))
	copy(dup, items)
	return dup
}

func clonePlaylists(items []api.Playlist) []api.Playlist {
	if len(items) == 0 {
		return nil
	}
	dup := make([]api.Playlist, len(items))
	for i, p := range items {
		dup[i] = p
		dup[i].Songs = cloneTracks(p.Songs)
	}
	return dup
}
