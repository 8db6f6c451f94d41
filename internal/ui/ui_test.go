package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
	"github.com/five82/tunesphere/internal/library"
	"github.com/five82/tunesphere/internal/player"
	"github.com/five82/tunesphere/internal/state"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testTracks() []api.Track {
	return []api.Track{
		{ID: "a", Title: "Alpha", Artist: "One", Platform: api.PlatformYouTube, Duration: "3:10"},
		{ID: "b", Title: "Bravo", Artist: "Two", Platform: api.PlatformSpotify, Duration: "4:00"},
		{ID: "c", Title: "Charlie", Artist: "Three", Platform: api.PlatformJioSaavn},
	}
}

func newTestModel(t *testing.T) (Model, *player.Store, *state.Store, *kvstore.MemoryStore) {
	t.Helper()
	browse := &state.Store{}
	browse.ApplyTrending(browse.Begin(state.KindTrending), testTracks(), nil)
	browse.ApplyFeatured(browse.Begin(state.KindFeatured), []api.Playlist{
		{ID: "p1", Name: "Morning", Songs: api.TrackList(testTracks()[:2])},
	}, nil)

	kv := kvstore.NewMemoryStore()
	p := player.New(nil)
	m := New(Options{
		Context:   context.Background(),
		Player:    p,
		Browse:    browse,
		KV:        kv,
		Recent:    library.NewRecent(kv, nil),
		Favorites: library.NewFavorites(library.ClientFavorites(nil), nil),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), p, browse, kv
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestViewBeforeResize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() before size = %q", got)
	}
}

func TestViewRendersTrending(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	out := m.View()
	for _, want := range []string{"TuneSphere", "Trending (3)", "Alpha", "Nothing playing", "guest"} {
		if !strings.Contains(out, want) {
			t.Fatalf("View() missing %q", want)
		}
	}
}

func TestEnterPlaysSelectionWithListAsQueue(t *testing.T) {
	m, p, _, _ := newTestModel(t)
	m, _ = send(t, m, runes("j"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should reload recent history")
	}

	snap := p.Snapshot()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "b" {
		t.Fatalf("current = %+v, want b", snap.CurrentTrack)
	}
	if len(snap.Queue) != 3 || snap.CurrentIndex != 1 || !snap.IsPlaying {
		t.Fatalf("snapshot = %+v", snap)
	}
	if !strings.Contains(m.View(), "2/3") {
		t.Fatal("now playing bar missing queue position")
	}
}

func TestTransportKeys(t *testing.T) {
	m, p, _, _ := newTestModel(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = send(t, m, runes("n"))
	if got := p.Snapshot().CurrentTrack.ID; got != "b" {
		t.Fatalf("after next current = %s, want b", got)
	}
	m, _ = send(t, m, runes("p"))
	if got := p.Snapshot().CurrentTrack.ID; got != "a" {
		t.Fatalf("after previous current = %s, want a", got)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if p.Snapshot().IsPlaying {
		t.Fatal("space should pause")
	}
	m, _ = send(t, m, runes("r"))
	m, _ = send(t, m, runes("s"))
	snap := p.Snapshot()
	if !snap.IsRepeat || !snap.IsShuffle {
		t.Fatalf("repeat=%v shuffle=%v, want both on", snap.IsRepeat, snap.IsShuffle)
	}
	if snap.CurrentTrack.ID != "a" || snap.CurrentIndex != 0 {
		t.Fatalf("shuffle moved the current track: %+v", snap)
	}
	if !m.playerSnap.IsShuffle {
		t.Fatal("model snapshot not refreshed after transport key")
	}
}

func TestTabCyclesViews(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.view != ViewFeatured {
		t.Fatalf("view = %s, want Featured", m.view)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.view != ViewQueue {
		t.Fatalf("view = %s, want Queue", m.view)
	}
}

func TestFeaturedOpensPlaylist(t *testing.T) {
	m, p, _, _ := newTestModel(t)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.openPlaylist == nil || m.openPlaylist.Name != "Morning" {
		t.Fatalf("openPlaylist = %+v", m.openPlaylist)
	}
	if p.Snapshot().CurrentTrack != nil {
		t.Fatal("opening a playlist should not start playback")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	snap := p.Snapshot()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "a" || len(snap.Queue) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.openPlaylist != nil {
		t.Fatal("esc should close the playlist")
	}
}

func TestCursorClampsToList(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	for range 10 {
		m, _ = send(t, m, runes("j"))
	}
	if m.cursors[ViewTrending] != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursors[ViewTrending])
	}
	m, _ = send(t, m, runes("g"))
	if m.cursors[ViewTrending] != 0 {
		t.Fatalf("cursor after top = %d", m.cursors[ViewTrending])
	}
	m, _ = send(t, m, runes("G"))
	if m.cursors[ViewTrending] != 2 {
		t.Fatalf("cursor after bottom = %d", m.cursors[ViewTrending])
	}
}

func TestSearchWithoutClientReportsError(t *testing.T) {
	m, _, browse, _ := newTestModel(t)
	m, _ = send(t, m, runes("/"))
	if !m.searching || m.view != ViewSearch {
		t.Fatal("slash should focus search")
	}
	m, _ = send(t, m, runes("lofi"))
	if got := m.search.Value(); got != "lofi" {
		t.Fatalf("search value = %q", got)
	}
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.searching {
		t.Fatal("enter should submit and blur")
	}
	if !browse.Snapshot().Loading(state.KindSearch) {
		t.Fatal("search should be pending until the command runs")
	}

	m, _ = send(t, m, cmd())
	if !strings.Contains(m.flash, "search failed") || !m.flashErr {
		t.Fatalf("flash = %q", m.flash)
	}
	if browse.Snapshot().Loading(state.KindSearch) {
		t.Fatal("search still pending after result")
	}
}

func TestSearchIgnoresBlankQuery(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m, _ = send(t, m, runes("/"))
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("blank search should not issue a request")
	}
}

func TestSearchModeSwallowsShortcuts(t *testing.T) {
	m, p, _, _ := newTestModel(t)
	m, _ = send(t, m, runes("/"))
	m, _ = send(t, m, runes("q"))
	if m.search.Value() != "q" {
		t.Fatalf("search value = %q", m.search.Value())
	}
	if p.Snapshot().CurrentTrack != nil {
		t.Fatal("keys while searching should not drive the player")
	}
}

func TestFavoriteRequiresLogin(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	_, cmd := send(t, m, runes("f"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m, _ = send(t, m, cmd())
	if !m.flashErr || !strings.Contains(m.flash, "sign in") {
		t.Fatalf("flash = %q", m.flash)
	}
}

func TestCycleThemePersists(t *testing.T) {
	m, _, _, kv := newTestModel(t)
	m, cmd := send(t, m, runes("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %s, want Kanagawa", m.theme.Name)
	}
	m, _ = send(t, m, cmd())
	got, ok, _ := kv.Get(context.Background(), kvstore.KeyTheme)
	if !ok || got != "Kanagawa" {
		t.Fatalf("stored theme = %q ok=%v", got, ok)
	}
	if m.flash != "" {
		t.Fatalf("unexpected flash %q", m.flash)
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	m, _ = send(t, m, runes("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keys") {
		t.Fatal("help overlay not shown")
	}
	m, _ = send(t, m, runes("x"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestQuit(t *testing.T) {
	m, _, _, _ := newTestModel(t)
	_, cmd := send(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q did not return tea.Quit")
	}
}

func TestRecentViewLoadsHistory(t *testing.T) {
	m, _, _, kv := newTestModel(t)
	recent := library.NewRecent(kv, nil)
	if err := recent.Record(context.Background(), testTracks()[2]); err != nil {
		t.Fatal(err)
	}
	for m.view != ViewRecent {
		var cmd tea.Cmd
		m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.view == ViewRecent {
			m, _ = send(t, m, cmd())
		}
	}
	if len(m.recentList) != 1 || m.recentList[0].ID != "c" {
		t.Fatalf("recent = %+v", m.recentList)
	}
	if !strings.Contains(m.View(), "Charlie") {
		t.Fatal("recent view missing track")
	}
}
