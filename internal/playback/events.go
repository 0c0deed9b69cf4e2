package playback

import (
	"time"

	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/track"
)

// StateChange is emitted when playing/loading flags change.
type StateChange struct {
	IsPlaying bool
	IsLoading bool
}

// TrackChange is emitted when playback moves to a different track.
//
// Emitted on successful loads only: superseded (stale) loads and failed
// attempts never emit. Collaborators handle track side effects
// (media-control metadata, now-playing surfaces) in response to this.
type TrackChange struct {
	Previous *track.Track
	Current  *track.Track
	Index    int
}

// QueueChange is emitted when the queue contents or order change.
type QueueChange struct {
	Tracks []track.Track
	Index  int
}

// ModeChange is emitted when repeat, shuffle, volume, rate or mute
// settings change.
type ModeChange struct {
	RepeatMode   queue.RepeatMode
	Shuffle      bool
	Volume       float64
	PlaybackRate float64
	Muted        bool
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when playback fails in a way the user should see.
type ErrorEvent struct {
	TrackID  string
	Message  string
	Systemic bool // breaker open: auto-skip halted, explicit retry required
}
