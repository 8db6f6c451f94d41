// Package ui implements the TuneSphere terminal interface with Bubble Tea.
//
// The model never blocks on the network. Key handling claims a browse ticket
// from the state store and returns a tea.Cmd that performs the request and
// applies the result; a periodic tick copies fresh snapshots from the state,
// player and session stores into the model for rendering.
//
// Views are tabs: trending, featured playlists, search, per-platform
// listings, favorites, recently played and the play queue. Pressing enter on
// a track plays it with the visible list as the queue.
package ui
