package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// MusicAPI groups the /music endpoints.
type MusicAPI struct {
	c *Client
}

// SearchSongs searches every platform for query.
func (m MusicAPI) SearchSongs(ctx context.Context, query string) ([]Track, error) {
	var payload TrackList
	err := m.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/music/search",
		query:  url.Values{"q": {query}},
	}, &payload)
	return payload, err
}

// GetTrendingSongs returns the trending list.
func (m MusicAPI) GetTrendingSongs(ctx context.Context) ([]Track, error) {
	var payload TrackList
	err := m.c.do(ctx, request{method: http.MethodGet, path: "/music/trending"}, &payload)
	return payload, err
}

// GetSongByID fetches a single track.
func (m MusicAPI) GetSongByID(ctx context.Context, id string) (Track, error) {
	if strings.TrimSpace(id) == "" {
		return Track{}, fmt.Errorf("song id required")
	}
	var payload Track
	err := m.c.do(ctx, request{method: http.MethodGet, path: "/music/" + segment(id)}, &payload)
	return payload, err
}

// GetSongsByPlatform lists tracks from one platform.
func (m MusicAPI) GetSongsByPlatform(ctx context.Context, platform Platform) ([]Track, error) {
	var payload TrackList
	err := m.c.do(ctx, request{method: http.MethodGet, path: "/music/platform/" + segment(string(platform))}, &payload)
	return payload, err
}
