package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// PlaylistAPI groups the /playlists endpoints.
type PlaylistAPI struct {
	c *Client
}

type songRef struct {
	SongID string `json:"songId"`
}

// GetAllPlaylists lists the user's playlists.
func (p PlaylistAPI) GetAllPlaylists(ctx context.Context) ([]Playlist, error) {
	var payload playlistList
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/playlists"}, &payload)
	return payload, err
}

// GetPlaylistByID fetches one playlist with its songs.
func (p PlaylistAPI) GetPlaylistByID(ctx context.Context, id string) (Playlist, error) {
	if err := requireID(id, "playlist"); err != nil {
		return Playlist{}, err
	}
	var payload Playlist
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/playlists/" + segment(id)}, &payload)
	return payload, err
}

// CreatePlaylist creates a playlist.
func (p PlaylistAPI) CreatePlaylist(ctx context.Context, input PlaylistInput) (Playlist, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Playlist{}, fmt.Errorf("playlist name required")
	}
	var payload Playlist
	err := p.c.do(ctx, request{method: http.MethodPost, path: "/playlists", body: input}, &payload)
	return payload, err
}

// UpdatePlaylist changes name, description or songs.
func (p PlaylistAPI) UpdatePlaylist(ctx context.Context, id string, input PlaylistInput) (Playlist, error) {
	if err := requireID(id, "playlist"); err != nil {
		return Playlist{}, err
	}
	var payload Playlist
	err := p.c.do(ctx, request{method: http.MethodPut, path: "/playlists/" + segment(id), body: input}, &payload)
	return payload, err
}

// DeletePlaylist removes a playlist.
func (p PlaylistAPI) DeletePlaylist(ctx context.Context, id string) error {
	if err := requireID(id, "playlist"); err != nil {
		return err
	}
	return p.c.do(ctx, request{method: http.MethodDelete, path: "/playlists/" + segment(id)}, nil)
}

// AddSongToPlaylist appends a song.
func (p PlaylistAPI) AddSongToPlaylist(ctx context.Context, id, songID string) error {
	if err := requireID(id, "playlist"); err != nil {
		return err
	}
	return p.c.do(ctx, request{
		method: http.MethodPut,
		path:   "/playlists/" + segment(id) + "/add",
		body:   songRef{SongID: songID},
	}, nil)
}

// RemoveSongFromPlaylist removes a song.
func (p PlaylistAPI) RemoveSongFromPlaylist(ctx context.Context, id, songID string) error {
	if err := requireID(id, "playlist"); err != nil {
		return err
	}
	return p.c.do(ctx, request{
		method: http.MethodPut,
		path:   "/playlists/" + segment(id) + "/remove",
		body:   songRef{SongID: songID},
	}, nil)
}

// GetFeaturedPlaylists lists the editor-picked playlists.
func (p PlaylistAPI) GetFeaturedPlaylists(ctx context.Context) ([]Playlist, error) {
	var payload playlistList
	err := p.c.do(ctx, request{method: http.MethodGet, path: "/playlists/featured"}, &payload)
	return payload, err
}

func requireID(id, kind string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s id required", kind)
	}
	return nil
}
