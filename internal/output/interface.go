// Package output owns the single audio output handle for the process.
// Exactly one source is loaded at a time; loading a new source always
// stops and releases the previous one.
package output

import "time"

// State represents the output handle's playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// Interface defines the output handle contract for dependency injection
// and testing. Implementations are not safe for concurrent use; commands
// are serialized by the playback service.
type Interface interface {
	// Load decodes the audio file at path and starts playback from 0.
	// Any previously loaded source is stopped and released first.
	Load(path string) error
	Pause()
	Resume()
	Stop()

	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration)

	SetVolume(level float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	SetRate(rate float64)
	Rate() float64

	// FinishedChan signals natural end of the loaded source. Stop does
	// not signal it.
	FinishedChan() <-chan struct{}
}

// Verify Device implements Interface at compile time.
var _ Interface = (*Device)(nil)
