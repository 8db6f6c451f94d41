package player

import (
	"sync"

	"github.com/samber/lo"

	"github.com/five82/tunesphere/internal/api"
)

// Snapshot is a copy of the playback state.
type Snapshot struct {
	CurrentTrack *api.Track
	IsPlaying    bool
	Queue        []api.Track
	CurrentIndex int
	IsShuffle    bool
	IsRepeat     bool
}

// HasQueue reports whether a queue is loaded.
func (s Snapshot) HasQueue() bool {
	return len(s.Queue) > 0
}

// Upcoming returns the tracks after the current position.
func (s Snapshot) Upcoming() []api.Track {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Queue)-1 {
		return nil
	}
	return s.Queue[s.CurrentIndex+1:]
}

// Shuffler permutes positions in place and returns them.
type Shuffler func(positions []int) []int

// Store is the in-memory playback state. Operations never fail and never
// touch the network.
//
// While shuffle is on, queue holds the shuffled order and order maps each
// queue position back to its index in the unshuffled list.
type Store struct {
	mu       sync.RWMutex
	current  *api.Track
	playing  bool
	queue    []api.Track
	order    []int
	index    int
	shuffle  bool
	repeat   bool
	shuffler Shuffler
	onChange func(Snapshot)
}

// New returns an empty store. A nil shuffler uses lo.Shuffle.
func New(shuffler Shuffler) *Store {
	if shuffler == nil {
		shuffler = func(positions []int) []int { return lo.Shuffle(positions) }
	}
	return &Store{shuffler: shuffler}
}

// OnChange registers fn to run after every state change. fn runs outside the
// store lock and may call Snapshot.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsPlaying:    s.playing,
		Queue:        cloneTracks(s.queue),
		CurrentIndex: s.index,
		IsShuffle:    s.shuffle,
		IsRepeat:     s.repeat,
	}
	if s.current != nil {
		t := *s.current
		snap.CurrentTrack = &t
	}
	return snap
}

// mutate applies fn under the lock, then notifies the change hook.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// PlaySong makes track current and starts playing. A non-empty siblings list
// replaces the queue and positions it on track, or on the first entry when
// track is not in the list. An empty list leaves the queue alone.
func (s *Store) PlaySong(track api.Track, siblings []api.Track) {
	s.mutate(func() {
		t := track
		s.current = &t
		s.playing = true
		if len(siblings) == 0 {
			return
		}

		idx := 0
		for i, candidate := range siblings {
			if candidate.SameAs(track) {
				idx = i
				break
			}
		}
		s.queue = cloneTracks(siblings)
		s.order = nil
		s.index = idx
		if s.shuffle {
			s.shuffleLocked()
		}
	})
}

// TogglePlayPause flips the playing flag.
func (s *Store) TogglePlayPause() {
	s.mutate(func() {
		s.playing = !s.playing
	})
}

// PlayNext advances one position. Past the end it wraps to the start when
// repeat is on and stays on the last track otherwise.
func (s *Store) PlayNext() {
	s.mutate(func() {
		n := len(s.queue)
		if n == 0 {
			return
		}
		next := s.index + 1
		if next >= n {
			if s.repeat {
				next = 0
			} else {
				next = n - 1
			}
		}
		s.moveLocked(next)
	})
}

// PlayPrevious steps back one position, wrapping to the end with repeat on
// and staying on the first track otherwise.
func (s *Store) PlayPrevious() {
	s.mutate(func() {
		n := len(s.queue)
		if n == 0 {
			return
		}
		prev := s.index - 1
		if prev < 0 {
			if s.repeat {
				prev = n - 1
			} else {
				prev = 0
			}
		}
		s.moveLocked(prev)
	})
}

func (s *Store) moveLocked(idx int) {
	s.index = idx
	t := s.queue[idx]
	s.current = &t
	s.playing = true
}

// ToggleShuffle flips shuffle. Turning it on keeps the current queue entry at
// position 0 and shuffles the rest; turning it off restores the original order
// with the position following the current entry.
func (s *Store) ToggleShuffle() {
	s.mutate(func() {
		s.shuffle = !s.shuffle
		if len(s.queue) == 0 {
			s.order = nil
			return
		}
		if s.shuffle {
			s.shuffleLocked()
			return
		}
		s.unshuffleLocked()
	})
}

// ToggleRepeat flips repeat.
func (s *Store) ToggleRepeat() {
	s.mutate(func() {
		s.repeat = !s.repeat
	})
}

// shuffleLocked reorders an unshuffled queue around s.index.
func (s *Store) shuffleLocked() {
	n := len(s.queue)
	rest := withoutIndex(identity(n), s.index)
	order := append([]int{s.index}, s.shuffler(rest)...)
	if !isPermutation(order, n) {
		// A misbehaving shuffler only moves the current entry to the front.
		order = append([]int{s.index}, withoutIndex(identity(n), s.index)...)
	}

	shuffled := make([]api.Track, n)
	for i, src := range order {
		shuffled[i] = s.queue[src]
	}
	s.queue = shuffled
	s.order = order
	s.index = 0
}

func (s *Store) unshuffleLocked() {
	if len(s.order) != len(s.queue) {
		s.order = nil
		return
	}
	original := make([]api.Track, len(s.queue))
	for i, src := range s.order {
		original[src] = s.queue[i]
	}
	s.index = s.order[s.index]
	s.queue = original
	s.order = nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func withoutIndex(values []int, idx int) []int {
	return lo.Filter(values, func(v int, _ int) bool { return v != idx })
}

func cloneTracks(tracks []api.Track) []api.Track {
	if len(tracks) == 0 {
		return nil
	}
	dup := make([]api.Track, len(tracks))
	copy(dup, tracks)
	return dup
}
