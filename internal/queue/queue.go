// Package queue implements the playing queue and its navigation rules:
// sequential advance with repeat and shuffle modes, linear retreat, and
// current-track-pinned reshuffling.
package queue

import (
	"math/rand/v2"

	"github.com/mbaylis/sutra/internal/track"
)

// RepeatMode defines what happens when a track finishes or next is requested.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// Queue holds the ordered tracks scheduled for playback and the index of
// the active one. The index is always a valid position, except on an empty
// queue where it is 0.
type Queue struct {
	tracks     []track.Track
	index      int
	repeatMode RepeatMode
	shuffle    bool

	intn func(n int) int // injectable for tests
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		tracks: make([]track.Track, 0),
		intn:   rand.IntN,
	}
}

// Current returns the track at the current index, or nil if the queue is
// empty.
func (q *Queue) Current() *track.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return &q.tracks[q.index]
}

// Index returns the current index (0 on an empty queue).
func (q *Queue) Index() int {
	return q.index
}

// Tracks returns a copy of all tracks.
func (q *Queue) Tracks() []track.Track {
	out := make([]track.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue holds no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// RepeatMode returns the active repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	return q.repeatMode
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(m RepeatMode) {
	q.repeatMode = m
}

// Shuffle reports whether shuffle mode is enabled.
func (q *Queue) Shuffle() bool {
	return q.shuffle
}

// SetShuffle enables or disables shuffle mode.
func (q *Queue) SetShuffle(enabled bool) {
	q.shuffle = enabled
}

// Add appends tracks without changing the current position.
func (q *Queue) Add(tracks ...track.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Replace swaps the queue contents and resets the index to 0.
// Returns the new current track, or nil if tracks is empty.
func (q *Queue) Replace(tracks ...track.Track) *track.Track {
	q.tracks = q.tracks[:0]
	q.tracks = append(q.tracks, tracks...)
	q.index = 0
	return q.Current()
}

// JumpTo moves the index to the given position.
// Returns the track there, or nil if the position is invalid.
func (q *Queue) JumpTo(index int) *track.Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.index = index
	return q.Current()
}

// Clear removes all tracks and resets the index.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
	q.index = 0
}

// RemoveAt removes the track at the given index, adjusting the current
// index so it keeps pointing at a valid position.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	if q.index > index {
		q.index--
	}
	if q.index >= len(q.tracks) && q.index > 0 {
		q.index = len(q.tracks) - 1
	}
	return true
}

// Advance moves to the next track per the active modes and returns it.
//
// Repeat-one re-resolves the same index. Shuffle picks a uniformly random
// index. Otherwise the index advances sequentially; on overflow it wraps to
// 0 under repeat-all, and under repeat-off it stays at the last position
// and Advance returns nil (terminal state, not an error).
func (q *Queue) Advance() *track.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	switch {
	case q.repeatMode == RepeatOne:
		// stay
	case q.shuffle:
		q.index = q.intn(len(q.tracks))
	case q.index+1 < len(q.tracks):
		q.index++
	case q.repeatMode == RepeatAll:
		q.index = 0
	default:
		return nil
	}
	return q.Current()
}

// Retreat moves to the previous track and returns it. Retreat is always
// linear, ignoring shuffle, and wraps from 0 to the last index.
func (q *Queue) Retreat() *track.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	if q.index == 0 {
		q.index = len(q.tracks) - 1
	} else {
		q.index--
	}
	return q.Current()
}

// ShuffleTracks randomizes the order of all tracks except the current one,
// which is pinned to the front so playback is not interrupted.
func (q *Queue) ShuffleTracks() {
	if len(q.tracks) < 2 {
		return
	}
	q.tracks[0], q.tracks[q.index] = q.tracks[q.index], q.tracks[0]
	q.index = 0
	rest := q.tracks[1:]
	for i := len(rest) - 1; i > 0; i-- {
		j := q.intn(i + 1)
		rest[i], rest[j] = rest[j], rest[i]
	}
}
