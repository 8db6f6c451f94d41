package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/kvstore"
	"github.com/five82/tunesphere/internal/state"
)

var errOffline = errors.New("no API client configured")

// errText prefers the server's message over the transport error text.
func errText(err error) string {
	return api.MessageOf(err, err.Error())
}

type browseMsg struct {
	kind    state.Kind
	applied bool
	err     error
}

type favoritesMsg struct {
	tracks []api.Track
	err    error
}

type favoriteToggledMsg struct {
	track api.Track
	added bool
	err   error
}

type recentMsg struct {
	tracks []api.Track
	err    error
}

type themeSavedMsg struct {
	err error
}

// searchCmd claims a search ticket now and fills it when the request returns.
// Results for a superseded ticket are discarded by the store.
func (m Model) searchCmd(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	ticket := m.browse.Begin(state.KindSearch)
	client, browse, ctx := m.client, m.browse, m.ctx
	return func() tea.Msg {
		if client == nil {
			return browseMsg{kind: state.KindSearch, applied: browse.ApplySearch(ticket, query, nil, errOffline), err: errOffline}
		}
		tracks, err := client.Music.SearchSongs(ctx, query)
		return browseMsg{kind: state.KindSearch, applied: browse.ApplySearch(ticket, query, tracks, err), err: err}
	}
}

func (m Model) platformCmd(platform api.Platform) tea.Cmd {
	ticket := m.browse.Begin(state.KindPlatform)
	client, browse, ctx := m.client, m.browse, m.ctx
	return func() tea.Msg {
		if client == nil {
			return browseMsg{kind: state.KindPlatform, applied: browse.ApplyPlatform(ticket, platform, nil, errOffline), err: errOffline}
		}
		tracks, err := client.Music.GetSongsByPlatform(ctx, platform)
		return browseMsg{kind: state.KindPlatform, applied: browse.ApplyPlatform(ticket, platform, tracks, err), err: err}
	}
}

func (m Model) trendingCmd() tea.Cmd {
	ticket := m.browse.Begin(state.KindTrending)
	client, browse, ctx := m.client, m.browse, m.ctx
	return func() tea.Msg {
		if client == nil {
			return browseMsg{kind: state.KindTrending, applied: browse.ApplyTrending(ticket, nil, errOffline), err: errOffline}
		}
		tracks, err := client.Music.GetTrendingSongs(ctx)
		return browseMsg{kind: state.KindTrending, applied: browse.ApplyTrending(ticket, tracks, err), err: err}
	}
}

func (m Model) featuredCmd() tea.Cmd {
	ticket := m.browse.Begin(state.KindFeatured)
	client, browse, ctx := m.client, m.browse, m.ctx
	return func() tea.Msg {
		if client == nil {
			return browseMsg{kind: state.KindFeatured, applied: browse.ApplyFeatured(ticket, nil, errOffline), err: errOffline}
		}
		playlists, err := client.Playlists.GetFeaturedPlaylists(ctx)
		return browseMsg{kind: state.KindFeatured, applied: browse.ApplyFeatured(ticket, playlists, err), err: err}
	}
}

// reloadCmd re-fetches whatever backs view v.
func (m Model) reloadCmd(v View) tea.Cmd {
	switch v {
	case ViewTrending:
		return m.trendingCmd()
	case ViewFeatured:
		return m.featuredCmd()
	case ViewSearch:
		return m.searchCmd(m.browseSnap.SearchQuery)
	case ViewPlatform:
		return m.platformCmd(m.currentPlatform())
	case ViewFavorites:
		return m.loadFavoritesCmd()
	case ViewRecent:
		return m.loadRecentCmd()
	default:
		return nil
	}
}

func (m Model) loggedIn() bool {
	return m.session != nil && m.session.Snapshot().Authenticated()
}

func (m Model) loadFavoritesCmd() tea.Cmd {
	if m.favorites == nil || !m.loggedIn() {
		return nil
	}
	favorites, ctx := m.favorites, m.ctx
	return func() tea.Msg {
		tracks, err := favorites.List(ctx)
		return favoritesMsg{tracks: tracks, err: err}
	}
}

func (m Model) toggleFavoriteCmd(track api.Track) tea.Cmd {
	if m.favorites == nil {
		return nil
	}
	if !m.loggedIn() {
		return func() tea.Msg {
			return favoriteToggledMsg{track: track, err: errors.New("sign in with `tunesphere login` to use favorites")}
		}
	}
	favorites, ctx, logger := m.favorites, m.ctx, m.log
	return func() tea.Msg {
		added, err := favorites.Toggle(ctx, track)
		if err != nil {
			logger.Warn("toggle favorite failed", zap.String("track", track.Key()), zap.Error(err))
		}
		return favoriteToggledMsg{track: track, added: added, err: err}
	}
}

func (m Model) loadRecentCmd() tea.Cmd {
	if m.recent == nil {
		return nil
	}
	recent, ctx := m.recent, m.ctx
	return func() tea.Msg {
		tracks, err := recent.List(ctx)
		return recentMsg{tracks: tracks, err: err}
	}
}

func (m Model) saveThemeCmd(name string) tea.Cmd {
	if m.kv == nil {
		return nil
	}
	kv, ctx, logger := m.kv, m.ctx, m.log
	return func() tea.Msg {
		err := kv.Set(ctx, kvstore.KeyTheme, name)
		if err != nil {
			logger.Warn("save theme failed", zap.String("theme", name), zap.Error(err))
		}
		return themeSavedMsg{err: err}
	}
}
