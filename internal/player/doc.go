// Package player holds the playback queue: the current track, the play/pause
// flag, the ordered queue with its position, and the shuffle and repeat flags.
//
// The store selects tracks; it does not decode or output audio.
package player
