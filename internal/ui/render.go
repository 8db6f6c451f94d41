package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tunesphere/internal/api"
	"github.com/five82/tunesphere/internal/session"
	"github.com/five82/tunesphere/internal/state"
)

func (m Model) renderMain() string {
	header := m.renderHeader()
	tabs := m.renderTabs()
	nowPlaying := m.renderNowPlaying()
	status := m.renderStatusBar()

	bodyHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(tabs)-2, 3)
	if m.view == ViewSearch {
		bodyHeight = max(bodyHeight-1, 3)
	}
	body := m.renderBody(bodyHeight)

	parts := []string{header, tabs}
	if m.view == ViewSearch {
		parts = append(parts, m.renderSearchInput())
	}
	parts = append(parts, body, nowPlaying, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	left := bg.Render("♪ TuneSphere", styles.Logo)

	var right []string
	if m.browseSnap.IsOffline() {
		right = append(right, bg.Render("offline", styles.DangerText))
	}
	snap := m.sessionSnap
	switch {
	case snap.Loading:
		right = append(right, bg.Render("restoring session...", styles.FaintText))
	case snap.Authenticated():
		name := snap.User.Name
		if name == "" {
			name = snap.User.Email
		}
		right = append(right, bg.Render(name, styles.Text))
		if snap.IsAdmin {
			right = append(right, bg.Render("admin", styles.WarningText))
		}
		if exp, ok := session.TokenExpiry(snap.Token); ok {
			right = append(right, bg.Render(expiryLabel(exp, time.Now()), styles.FaintText))
		}
	default:
		right = append(right, bg.Render("guest", styles.MutedText))
	}

	rightText := strings.Join(right, bg.Render("  ", styles.Text))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(rightText)-2, 1)
	line := bg.Space() + left + bg.Render(strings.Repeat(" ", gap), styles.Text) + rightText
	return bg.FillLine(line, m.width)
}

// expiryLabel describes when a token expires relative to now.
func expiryLabel(exp, now time.Time) string {
	d := exp.Sub(now)
	switch {
	case d <= 0:
		return "token expired"
	case d < time.Hour:
		return fmt.Sprintf("token %dm left", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("token %dh left", int(d.Hours()))
	default:
		return fmt.Sprintf("token %dd left", int(d.Hours()/24))
	}
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, viewCount)
	for v := View(0); v < viewCount; v++ {
		label := fmt.Sprintf(" %d %s ", int(v)+1, v)
		if v == m.view {
			tabs = append(tabs, styles.TabOn.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderSearchInput() string {
	return m.search.View()
}

func (m Model) renderBody(height int) string {
	title, content := m.bodyContent(height - 2)
	return m.renderTitledBox(title, content, m.width, height, true)
}

func (m Model) bodyContent(rows int) (string, string) {
	snap := m.browseSnap
	switch m.view {
	case ViewTrending:
		return m.listTitle("Trending", len(snap.Trending), state.KindTrending), m.renderTracks(snap.Trending, rows, "Nothing trending yet")
	case ViewFeatured:
		if m.openPlaylist != nil {
			title := fmt.Sprintf("%s (%d)", m.openPlaylist.Name, len(m.openPlaylist.Songs))
			return title, m.renderTracks(m.openPlaylist.Songs, rows, "This playlist is empty")
		}
		return m.listTitle("Featured playlists", len(snap.Featured), state.KindFeatured), m.renderPlaylists(snap.Featured, rows)
	case ViewSearch:
		title := "Search"
		if snap.SearchQuery != "" {
			title = fmt.Sprintf("Search: %s", snap.SearchQuery)
		}
		empty := "Press / to search"
		if snap.SearchQuery != "" {
			empty = "No results"
		}
		return m.listTitle(title, len(snap.Search), state.KindSearch), m.renderTracks(snap.Search, rows, empty)
	case ViewPlatform:
		title := fmt.Sprintf("Platform: %s  [ ]", m.currentPlatform())
		tracks := m.tracksFor(ViewPlatform)
		return m.listTitle(title, len(tracks), state.KindPlatform), m.renderTracks(tracks, rows, "No tracks for this platform")
	case ViewFavorites:
		if !m.sessionSnap.Authenticated() {
			return "Favorites", m.theme.Styles().MutedText.Render("Sign in with `tunesphere login` to see favorites")
		}
		return fmt.Sprintf("Favorites (%d)", len(m.favList)), m.renderTracks(m.favList, rows, "No favorites yet. Press f on a track")
	case ViewRecent:
		return fmt.Sprintf("Recently played (%d)", len(m.recentList)), m.renderTracks(m.recentList, rows, "Nothing played yet")
	case ViewQueue:
		return fmt.Sprintf("Queue (%d)", len(m.playerSnap.Queue)), m.renderTracks(m.playerSnap.Queue, rows, "Queue is empty")
	}
	return "", ""
}

func (m Model) listTitle(base string, n int, kind state.Kind) string {
	if m.browseSnap.Loading(kind) {
		return base + " (loading...)"
	}
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s (%d)", base, n)
}

// window returns the visible slice bounds keeping cursor on screen.
func window(cursor, total, rows int) (int, int) {
	if rows <= 0 || total <= rows {
		return 0, total
	}
	start := max(cursor-rows+1, 0)
	return start, min(start+rows, total)
}

func (m Model) renderTracks(tracks []api.Track, rows int, empty string) string {
	styles := m.theme.Styles()
	if len(tracks) == 0 {
		return styles.MutedText.Render(empty)
	}
	cursor := m.cursors[m.view]
	start, end := window(cursor, len(tracks), rows)
	inner := max(m.width-4, 10)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderTrackRow(tracks[i], i == cursor, inner))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTrackRow(t api.Track, selected bool, width int) string {
	styles := m.theme.Styles()

	marker := "  "
	if cur := m.playerSnap.CurrentTrack; cur != nil && cur.SameAs(t) {
		marker = "▶ "
		if !m.playerSnap.IsPlaying {
			marker = "⏸ "
		}
	}
	title := t.Title
	if title == "" {
		title = t.Key()
	}
	platform := string(t.Platform)
	duration := string(t.Duration)

	fixed := 2 + 1 + len(platform) + 1 + len(duration)
	textWidth := max(width-fixed, 8)
	artistWidth := textWidth / 3
	titleWidth := textWidth - artistWidth - 1

	text := padRight(truncate(title, titleWidth), titleWidth) + " " + padRight(truncate(t.Artist, artistWidth), artistWidth)
	if selected {
		line := padRight(marker+text+" "+platform+" "+duration, width)
		return styles.Selected.Render(line)
	}
	platformStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.PlatformColor(t.Platform)))
	return styles.AccentText.Render(marker) + styles.Text.Render(text) + " " + platformStyle.Render(platform) + " " + styles.FaintText.Render(duration)
}

func (m Model) renderPlaylists(playlists []api.Playlist, rows int) string {
	styles := m.theme.Styles()
	if len(playlists) == 0 {
		return styles.MutedText.Render("No featured playlists")
	}
	cursor := m.cursors[ViewFeatured]
	start, end := window(cursor, len(playlists), rows)
	inner := max(m.width-4, 10)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		pl := playlists[i]
		count := fmt.Sprintf("%d songs", len(pl.Songs))
		nameWidth := max(inner-len(count)-3, 8)
		label := padRight(truncate(pl.Name, nameWidth), nameWidth)
		if i == cursor {
			lines = append(lines, styles.Selected.Render(padRight("  "+label+" "+count, inner)))
			continue
		}
		lines = append(lines, "  "+styles.Text.Render(label)+" "+styles.FaintText.Render(count))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderNowPlaying() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	snap := m.playerSnap

	if snap.CurrentTrack == nil {
		return bg.FillLine(bg.Space()+bg.Render("Nothing playing", styles.FaintText), m.width)
	}

	icon := "⏸"
	if snap.IsPlaying {
		icon = "▶"
	}
	parts := []string{
		bg.Render(icon, styles.AccentText),
		bg.Render(truncate(snap.CurrentTrack.Title, max(m.width/2, 10)), styles.Text),
	}
	if snap.CurrentTrack.Artist != "" {
		parts = append(parts, bg.Render("· "+snap.CurrentTrack.Artist, styles.MutedText))
	}
	if snap.HasQueue() {
		parts = append(parts, bg.Render(fmt.Sprintf("%d/%d", snap.CurrentIndex+1, len(snap.Queue)), styles.FaintText))
	}
	if snap.IsShuffle {
		parts = append(parts, bg.Render("shuffle", styles.SuccessText))
	}
	if snap.IsRepeat {
		parts = append(parts, bg.Render("repeat", styles.SuccessText))
	}
	if up := snap.Upcoming(); len(up) > 0 {
		parts = append(parts, bg.Render("next: "+truncate(up[0].Title, 30), styles.FaintText))
	}
	return bg.FillLine(bg.Space()+strings.Join(parts, bg.Render("  ", styles.Text)), m.width)
}

func (m Model) renderStatusBar() string {
	styles := m.theme.Styles()
	if m.flash != "" {
		style := styles.SuccessText
		if m.flashErr {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(" " + style.Render(truncate(m.flash, max(m.width-2, 10))))
	}
	return styles.Footer.Width(m.width).Render(" " + m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	content := h.View(m.keys) + "\n\n" + styles.FaintText.Render(fmt.Sprintf("theme: %s    press any key to close", m.theme.Name))
	return m.renderTitledBox("Keys", content, m.width, max(m.height, 6), true)
}
