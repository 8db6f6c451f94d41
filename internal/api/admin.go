package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultUsersPage     = 1
	defaultUsersLimit    = 20
	defaultActivityLimit = 20
	defaultTopSongsLimit = 50
	allPlatforms         = "all"
)

// AdminAPI groups the /admin endpoints. They require an admin token.
type AdminAPI struct {
	c *Client
}

// GetDashboardStats returns service totals.
func (a AdminAPI) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	var payload struct {
		Stats DashboardStats `json:"stats"`
	}
	err := a.c.do(ctx, request{method: http.MethodGet, path: "/admin/dashboard"}, &payload)
	return payload.Stats, err
}

// GetAllUsers pages through users. Non-positive page or limit use 1 and 20.
func (a AdminAPI) GetAllUsers(ctx context.Context, page, limit int) (UserPage, error) {
	if page <= 0 {
		page = defaultUsersPage
	}
	if limit <= 0 {
		limit = defaultUsersLimit
	}
	var payload UserPage
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/users",
		query:  url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}},
	}, &payload)
	return payload, err
}

// GetUserByID fetches one user.
func (a AdminAPI) GetUserByID(ctx context.Context, id string) (User, error) {
	if err := requireID(id, "user"); err != nil {
		return User{}, err
	}
	var payload User
	err := a.c.do(ctx, request{method: http.MethodGet, path: "/admin/users/" + segment(id)}, &payload)
	return payload, err
}

// DeleteUser removes a user.
func (a AdminAPI) DeleteUser(ctx context.Context, id string) error {
	if err := requireID(id, "user"); err != nil {
		return err
	}
	return a.c.do(ctx, request{method: http.MethodDelete, path: "/admin/users/" + segment(id)}, nil)
}

// GetRecentActivity returns the latest activity entries.
func (a AdminAPI) GetRecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	var payload []Activity
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/activity",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
	}, &payload)
	return payload, err
}

// GetTopSearchedSongs ranks songs by search count. An empty platform means all.
func (a AdminAPI) GetTopSearchedSongs(ctx context.Context, limit int, platform Platform) ([]TopSong, error) {
	if limit <= 0 {
		limit = defaultTopSongsLimit
	}
	p := string(platform)
	if p == "" {
		p = allPlatforms
	}
	var payload []TopSong
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/top-songs",
		query:  url.Values{"limit": {strconv.Itoa(limit)}, "platform": {p}},
	}, &payload)
	return payload, err
}

// AddFeaturedPlaylist marks a playlist as featured.
func (a AdminAPI) AddFeaturedPlaylist(ctx context.Context, playlistID string) error {
	if err := requireID(playlistID, "playlist"); err != nil {
		return err
	}
	body := struct {
		PlaylistID string `json:"playlistId"`
	}{PlaylistID: playlistID}
	return a.c.do(ctx, request{method: http.MethodPost, path: "/admin/featured-playlists", body: body}, nil)
}

// RemoveFeaturedPlaylist unmarks a featured playlist.
func (a AdminAPI) RemoveFeaturedPlaylist(ctx context.Context, id string) error {
	if err := requireID(id, "playlist"); err != nil {
		return err
	}
	return a.c.do(ctx, request{method: http.MethodDelete, path: "/admin/featured-playlists/" + segment(id)}, nil)
}

// GetFeaturedPlaylists lists featured playlists as the admin sees them.
func (a AdminAPI) GetFeaturedPlaylists(ctx context.Context) ([]Playlist, error) {
	var payload playlistList
	err := a.c.do(ctx, request{method: http.MethodGet, path: "/admin/featured-playlists"}, &payload)
	return payload, err
}

// SearchUsers finds users by name or email.
func (a AdminAPI) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var payload userList
	err := a.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/admin/users/search",
		query:  url.Values{"query": {query}},
	}, &payload)
	return payload, err
}
