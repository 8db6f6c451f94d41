package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
	"github.com/five82/tunesphere/internal/library"
	"github.com/five82/tunesphere/internal/player"
	"github.com/five82/tunesphere/internal/session"
	"github.com/five82/tunesphere/internal/state"
)

// View is one tab of the TUI.
type View int

const (
	ViewTrending View = iota
	ViewFeatured
	ViewSearch
	ViewPlatform
	ViewFavorites
	ViewRecent
	ViewQueue
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewTrending:
		return "Trending"
	case ViewFeatured:
		return "Featured"
	case ViewSearch:
		return "Search"
	case ViewPlatform:
		return "Platforms"
	case ViewFavorites:
		return "Favorites"
	case ViewRecent:
		return "Recent"
	case ViewQueue:
		return "Queue"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    *api.Client
	Session   *session.Store
	Player    *player.Store
	Browse    *state.Store
	Recent    *library.Recent
	Favorites *library.Favorites
	KV        kvstore.Store
	Log       *zap.Logger
	ThemeName string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    *api.Client
	session   *session.Store
	player    *player.Store
	browse    *state.Store
	recent    *library.Recent
	favorites *library.Favorites
	kv        kvstore.Store
	log       *zap.Logger
	tick      time.Duration

	theme  Theme
	keys   keyMap
	help   help.Model
	view   View
	width  int
	height int
	ready  bool

	cursors [viewCount]int

	browseSnap  state.Snapshot
	playerSnap  player.Snapshot
	sessionSnap session.Snapshot

	favList      []api.Track
	recentList   []api.Track
	openPlaylist *api.Playlist
	platformIdx  int

	search    textinput.Model
	searching bool

	flash    string
	flashErr bool
	showHelp bool
}

// New creates a new Bubble Tea model. Nil stores are replaced with empty
// ones so the model is always renderable.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	if opts.Player == nil {
		opts.Player = player.New(nil)
	}
	if opts.Browse == nil {
		opts.Browse = &state.Store{}
	}

	input := textinput.New()
	input.Placeholder = "song, artist or album"
	input.Prompt = "/ "
	input.CharLimit = 200

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		session:   opts.Session,
		player:    opts.Player,
		browse:    opts.Browse,
		recent:    opts.Recent,
		favorites: opts.Favorites,
		kv:        opts.KV,
		log:       logger.Named("ui"),
		tick:      tick,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		view:      ViewTrending,
		search:    input,
	}
	m.syncSnapshots()
	return m
}

// Run starts the TUI and blocks until the user quits or the context ends.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tick), m.loadRecentCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.search.Width = max(msg.Width-8, 10)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.syncSnapshots()
		return m, tickCmd(m.tick)

	case browseMsg:
		m.syncSnapshots()
		if msg.err != nil && msg.applied {
			m.setFlash(fmt.Sprintf("%s failed: %s", msg.kind, errText(msg.err)), true)
		}
		return m, nil

	case favoritesMsg:
		if msg.err != nil {
			m.setFlash("Favorites: "+errText(msg.err), true)
			return m, nil
		}
		m.favList = msg.tracks
		m.clampCursor(ViewFavorites)
		return m, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			m.setFlash("Favorite: "+errText(msg.err), true)
			return m, nil
		}
		verb := "Removed from"
		if msg.added {
			verb = "Added to"
		}
		m.setFlash(fmt.Sprintf("%s favorites: %s", verb, msg.track.Title), false)
		return m, m.loadFavoritesCmd()

	case recentMsg:
		if msg.err != nil {
			m.setFlash("Recent: "+msg.err.Error(), true)
			return m, nil
		}
		m.recentList = msg.tracks
		m.clampCursor(ViewRecent)
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.setFlash("Theme not saved: "+msg.err.Error(), true)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m *Model) syncSnapshots() {
	m.browseSnap = m.browse.Snapshot()
	m.playerSnap = m.player.Snapshot()
	if m.session != nil {
		m.sessionSnap = m.session.Snapshot()
	}
	for v := View(0); v < viewCount; v++ {
		m.clampCursor(v)
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, m.saveThemeCmd(m.theme.Name)
	case key.Matches(msg, m.keys.Tab):
		return m.switchView((m.view + 1) % viewCount)
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView((m.view + viewCount - 1) % viewCount)
	case key.Matches(msg, m.keys.Escape):
		if m.view == ViewFeatured && m.openPlaylist != nil {
			m.openPlaylist = nil
		}
		m.flash = ""
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.view = ViewSearch
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadCmd(m.view)

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.cursors[m.view] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.cursors[m.view] = max(m.listLen()-1, 0)
		return m, nil

	case key.Matches(msg, m.keys.Play):
		return m.activate()
	case key.Matches(msg, m.keys.PlayPause):
		m.player.TogglePlayPause()
	case key.Matches(msg, m.keys.Next):
		m.player.PlayNext()
	case key.Matches(msg, m.keys.Previous):
		m.player.PlayPrevious()
	case key.Matches(msg, m.keys.Shuffle):
		m.player.ToggleShuffle()
	case key.Matches(msg, m.keys.Repeat):
		m.player.ToggleRepeat()

	case key.Matches(msg, m.keys.Favorite):
		track, ok := m.selectedTrack()
		if !ok && m.playerSnap.CurrentTrack != nil {
			track, ok = *m.playerSnap.CurrentTrack, true
		}
		if !ok {
			return m, nil
		}
		return m, m.toggleFavoriteCmd(track)
	case key.Matches(msg, m.keys.PlatformNext):
		return m.cyclePlatform(1)
	case key.Matches(msg, m.keys.PlatformPrev):
		return m.cyclePlatform(-1)
	default:
		return m, nil
	}

	// Transport keys fall through here.
	m.syncSnapshots()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, m.searchCmd(m.search.Value())
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.flash = ""
	switch v {
	case ViewFavorites:
		return m, m.loadFavoritesCmd()
	case ViewRecent:
		return m, m.loadRecentCmd()
	case ViewPlatform:
		if len(m.browseSnap.PlatformTracks) == 0 && !m.browseSnap.Loading(state.KindPlatform) {
			return m, m.platformCmd(m.currentPlatform())
		}
	}
	return m, nil
}

func (m Model) cyclePlatform(delta int) (tea.Model, tea.Cmd) {
	if m.view != ViewPlatform {
		return m, nil
	}
	n := len(api.Platforms)
	m.platformIdx = (m.platformIdx + delta + n) % n
	m.cursors[ViewPlatform] = 0
	return m, m.platformCmd(m.currentPlatform())
}

func (m Model) currentPlatform() api.Platform {
	return api.Platforms[m.platformIdx%len(api.Platforms)]
}

// activate handles enter: open a featured playlist or play the selection
// with its list as the queue.
func (m Model) activate() (tea.Model, tea.Cmd) {
	if m.view == ViewFeatured && m.openPlaylist == nil {
		playlists := m.browseSnap.Featured
		idx := m.cursors[ViewFeatured]
		if idx >= 0 && idx < len(playlists) {
			pl := playlists[idx]
			m.openPlaylist = &pl
			m.cursors[ViewFeatured] = 0
		}
		return m, nil
	}

	tracks := m.tracksFor(m.view)
	idx := m.cursors[m.view]
	if idx < 0 || idx >= len(tracks) {
		return m, nil
	}
	m.player.PlaySong(tracks[idx], tracks)
	m.syncSnapshots()
	return m, m.loadRecentCmd()
}

// tracksFor returns the track list shown by v.
func (m Model) tracksFor(v View) []api.Track {
	switch v {
	case ViewTrending:
		return m.browseSnap.Trending
	case ViewFeatured:
		if m.openPlaylist != nil {
			return m.openPlaylist.Songs
		}
		return nil
	case ViewSearch:
		return m.browseSnap.Search
	case ViewPlatform:
		if m.browseSnap.Platform != m.currentPlatform() {
			return nil
		}
		return m.browseSnap.PlatformTracks
	case ViewFavorites:
		return m.favList
	case ViewRecent:
		return m.recentList
	case ViewQueue:
		return m.playerSnap.Queue
	default:
		return nil
	}
}

func (m Model) lenFor(v View) int {
	if v == ViewFeatured && m.openPlaylist == nil {
		return len(m.browseSnap.Featured)
	}
	return len(m.tracksFor(v))
}

func (m Model) listLen() int {
	return m.lenFor(m.view)
}

func (m Model) selectedTrack() (api.Track, bool) {
	tracks := m.tracksFor(m.view)
	idx := m.cursors[m.view]
	if idx < 0 || idx >= len(tracks) {
		return api.Track{}, false
	}
	return tracks[idx], true
}

func (m *Model) moveCursor(delta int) {
	n := m.listLen()
	if n == 0 {
		m.cursors[m.view] = 0
		return
	}
	m.cursors[m.view] = min(max(m.cursors[m.view]+delta, 0), n-1)
}

func (m *Model) clampCursor(v View) {
	n := m.lenFor(v)
	if m.cursors[v] >= n {
		m.cursors[v] = max(n-1, 0)
	}
	if m.cursors[v] < 0 {
		m.cursors[v] = 0
	}
}
