package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Platform tags the origin platform of a track.
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformSpotify  Platform = "spotify"
	PlatformJioSaavn Platform = "jiosaavn"
)

// Platforms lists every known platform in display order.
var Platforms = []Platform{PlatformYouTube, PlatformSpotify, PlatformJioSaavn}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// ID is a server-assigned identifier. The backend emits both strings and
// numbers, so decoding accepts either and normalizes to a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Duration is the display duration of a track. Numbers are read as seconds
// and rendered m:ss; strings are kept as sent.
type Duration string

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Duration(strings.TrimSpace(s))
		return nil
	}
	seconds, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	total := int(seconds)
	*d = Duration(fmt.Sprintf("%d:%02d", total/60, total%60))
	return nil
}

// Track is a song reference returned by the music endpoints.
type Track struct {
	ID        ID       `json:"id,omitempty"`
	LegacyID  ID       `json:"_id,omitempty"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Platform  Platform `json:"platform,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Duration  Duration `json:"duration,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// UnmarshalJSON accepts either a full track object or a bare id, which older
// favorites lists and unpopulated playlists contain.
func (t *Track) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var id ID
		if err := id.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("track: %w", err)
		}
		*t = Track{ID: id}
		return nil
	}
	type plain Track
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*t = Track(p)
	return nil
}

// Key returns the canonical id, falling back to the legacy id.
func (t Track) Key() string {
	if t.ID != "" {
		return string(t.ID)
	}
	return string(t.LegacyID)
}

// SameAs reports whether both references name the same track under either
// id field. Empty ids never match.
func (t Track) SameAs(other Track) bool {
	if t.LegacyID != "" && t.LegacyID == other.LegacyID {
		return true
	}
	if t.ID != "" && t.ID == other.ID {
		return true
	}
	return false
}

// IsStub reports whether the track carries only an id.
func (t Track) IsStub() bool {
	return t.Title == "" && t.Artist == "" && t.URL == ""
}

// User is an identity record. Fields the client does not model are kept in
// the raw payload and written back unchanged by MarshalJSON.
type User struct {
	ID      ID
	Name    string
	Email   string
	IsAdmin bool

	raw json.RawMessage
}

type userFields struct {
	ID       ID     `json:"id,omitempty"`
	LegacyID ID     `json:"_id,omitempty"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *User) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*u = User{}
		return nil
	}
	var f userFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	id := f.ID
	if id == "" {
		id = f.LegacyID
	}
	*u = User{
		ID:      id,
		Name:    f.Name,
		Email:   f.Email,
		IsAdmin: f.IsAdmin,
		raw:     append(json.RawMessage(nil), bytes.TrimSpace(data)...),
	}
	return nil
}

// IsZero reports whether u was never filled from a server payload.
func (u User) IsZero() bool {
	return len(u.raw) == 0 && u.ID == ""
}

// MarshalJSON returns the payload exactly as the server sent it when known.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	return json.Marshal(userFields{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin})
}

// Field returns a server field by name from the raw payload.
func (u User) Field(name string) (json.RawMessage, bool) {
	if len(u.raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(u.raw, &fields); err != nil {
		return nil, false
	}
	value, ok := fields[name]
	return value, ok
}

// WithAdmin returns a copy of u whose payload carries isAdmin=admin, keeping
// every other server field.
func (u User) WithAdmin(admin bool) (User, error) {
	fields := map[string]json.RawMessage{}
	if len(u.raw) > 0 {
		if err := json.Unmarshal(u.raw, &fields); err != nil {
			return User{}, fmt.Errorf("decode user: %w", err)
		}
	} else {
		base, err := json.Marshal(userFields{ID: u.ID, Name: u.Name, Email: u.Email})
		if err != nil {
			return User{}, err
		}
		if err := json.Unmarshal(base, &fields); err != nil {
			return User{}, err
		}
	}
	fields["isAdmin"] = json.RawMessage(strconv.FormatBool(admin))
	data, err := json.Marshal(fields)
	if err != nil {
		return User{}, fmt.Errorf("encode user: %w", err)
	}
	var out User
	if err := out.UnmarshalJSON(data); err != nil {
		return User{}, err
	}
	return out, nil
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AdminAuthResponse is returned by the admin login.
type AdminAuthResponse struct {
	Token string `json:"token"`
	Admin User   `json:"admin"`
}

// ProfileUpdate carries the fields a user may change. Empty values are omitted.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// TrackList decodes either a bare JSON array or an object wrapping the array
// under "songs", "results" or "data".
type TrackList []Track

// UnmarshalJSON implements json.Unmarshaler.
func (l *TrackList) UnmarshalJSON(data []byte) error {
	items, err := decodeWrapped[Track](data, "songs", "results", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Playlist is a named, ordered collection of tracks.
type Playlist struct {
	ID          ID        `json:"id,omitempty"`
	LegacyID    ID        `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Songs       TrackList `json:"songs"`
	IsFeatured  bool      `json:"isFeatured,omitempty"`
}

// Key returns the canonical id, falling back to the legacy id.
func (p Playlist) Key() string {
	if p.ID != "" {
		return string(p.ID)
	}
	return string(p.LegacyID)
}

// PlaylistInput is the body of create and update calls.
type PlaylistInput struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Songs       []Track `json:"songs,omitempty"`
}

// DashboardStats summarizes the service for administrators.
type DashboardStats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalSongs     int `json:"totalSongs"`
	TotalPlaylists int `json:"totalPlaylists"`
	TotalAdmins    int `json:"totalAdmins"`
	RecentUsers    int `json:"recentUsers"`
	RecentSongs    int `json:"recentSongs"`
}

// UserPage is one page of the admin user listing.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// Activity is an entry of the admin activity feed.
type Activity struct {
	ID          ID     `json:"_id,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description"`
	UserName    string `json:"userName,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// TopSong is a track with its search count.
type TopSong struct {
	Track
	SearchCount int `json:"searchCount"`
}

// UnmarshalJSON decodes the embedded track and the count side by side.
func (s *TopSong) UnmarshalJSON(data []byte) error {
	if err := s.Track.UnmarshalJSON(data); err != nil {
		return err
	}
	var count struct {
		SearchCount int `json:"searchCount"`
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &count); err != nil {
			return err
		}
	}
	s.SearchCount = count.SearchCount
	return nil
}

type playlistList []Playlist

func (l *playlistList) UnmarshalJSON(data []byte) error {
	items, err := decodeWrapped[Playlist](data, "playlists", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

type userList []User

func (l *userList) UnmarshalJSON(data []byte) error {
	items, err := decodeWrapped[User](data, "users", "data")
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// decodeWrapped reads a JSON array, or the first of keys present in a
// wrapping object.
func decodeWrapped[T any](data []byte, keys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var items []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	for _, key := range keys {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return items, nil
	}
	return nil, nil
}
