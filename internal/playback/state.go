package playback

import (
	"time"

	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/track"
)

// PlayerState is a point-in-time snapshot of the full player aggregate,
// exposed to UI and now-playing collaborators. It is a copy; mutating it
// has no effect on the engine.
type PlayerState struct {
	CurrentTrack *track.Track
	Queue        []track.Track
	QueueIndex   int

	IsPlaying bool
	IsLoading bool
	Position  time.Duration
	Duration  time.Duration

	Volume       float64
	PlaybackRate float64
	RepeatMode   queue.RepeatMode
	Shuffle      bool
	Muted        bool

	PlayHistory []string

	// Error surface: a plain-language message naming the missing
	// capability, and whether failures look systemic rather than
	// per-track.
	AudioError     string
	HasAudioIssues bool
}

// TrackLookup resolves a track id against the external catalog. Used to
// reconstruct the queue from a persisted snapshot; ids that no longer
// resolve are skipped.
type TrackLookup func(id string) (track.Track, bool)
