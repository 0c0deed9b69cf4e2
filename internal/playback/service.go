package playback

import (
	"time"

	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/store"
	"github.com/mbaylis/sutra/internal/track"
)

// Service is the playback command surface exposed to external
// collaborators. Commands are accepted synchronously; loading new audio
// happens asynchronously and never raises to the caller — failures
// resolve into the error-surface fields of PlayerState.
type Service interface {
	// Playback control
	Play() error                  // resume, or start the track at the queue index
	PlayTrack(tr track.Track) error // make tr current and (re)start from 0
	Pause()
	Toggle()
	Stop()
	Next()
	Previous()
	SeekTo(pos time.Duration)

	// Settings
	SetVolume(level float64)
	SetPlaybackRate(rate float64)
	SetRepeatMode(mode queue.RepeatMode)
	ToggleShuffle() bool
	ToggleMute() bool

	// Queue manipulation
	Enqueue(tracks ...track.Track)
	ReplaceQueue(tracks ...track.Track)
	RemoveFromQueue(index int) bool
	ClearQueue()
	ShuffleQueue()

	// Recovery: resets the circuit breaker and error surface, then
	// re-attempts the current (or first queued) track. No-op when there
	// is nothing to play.
	RetryPlayback()

	// Snapshot restore at startup. Track ids that no longer resolve
	// through lookup are skipped.
	Restore(snap *store.Snapshot, lookup TrackLookup)

	// State queries
	State() PlayerState
	CurrentTrack() *track.Track
	IsPlaying() bool

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
