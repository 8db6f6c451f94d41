package api

import (
	"context"
	"net/http"
)

// UserAPI groups the /users endpoints for the signed-in user.
type UserAPI struct {
	c *Client
}

// GetProfile returns the current user.
func (u UserAPI) GetProfile(ctx context.Context) (User, error) {
	var payload User
	err := u.c.do(ctx, request{method: http.MethodGet, path: "/users/profile"}, &payload)
	return payload, err
}

// UpdateProfile applies a partial update and returns the stored user.
func (u UserAPI) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var payload struct {
		User User `json:"user"`
	}
	err := u.c.do(ctx, request{method: http.MethodPut, path: "/users/profile", body: update}, &payload)
	return payload.User, err
}

// GetFavorites returns the favorites list. Legacy entries holding only an id
// decode as stub tracks (see Track.IsStub).
func (u UserAPI) GetFavorites(ctx context.Context) ([]Track, error) {
	var payload struct {
		Favorites []Track `json:"favorites"`
	}
	if err := u.c.do(ctx, request{method: http.MethodGet, path: "/users/favorites"}, &payload); err != nil {
		return nil, err
	}
	return payload.Favorites, nil
}

// AddFavorite stores the full track object as a favorite.
func (u UserAPI) AddFavorite(ctx context.Context, track Track) error {
	return u.c.do(ctx, request{method: http.MethodPost, path: "/users/favorites", body: track}, nil)
}

// RemoveFavorite deletes a favorite by track id.
func (u UserAPI) RemoveFavorite(ctx context.Context, songID string) error {
	return u.c.do(ctx, request{method: http.MethodDelete, path: "/users/favorites/" + segment(songID)}, nil)
}

// UpdateFavorites replaces the whole favorites list.
func (u UserAPI) UpdateFavorites(ctx context.Context, favorites []Track) error {
	body := struct {
		Favorites []Track `json:"favorites"`
	}{Favorites: favorites}
	if body.Favorites == nil {
		body.Favorites = []Track{}
	}
	return u.c.do(ctx, request{method: http.MethodPut, path: "/users/favorites", body: body}, nil)
}

// GetRecentlyPlayed returns the server-side play history.
func (u UserAPI) GetRecentlyPlayed(ctx context.Context) ([]Track, error) {
	var payload TrackList
	err := u.c.do(ctx, request{method: http.MethodGet, path: "/users/recently-played"}, &payload)
	return payload, err
}
