// Package resources manages the two singular playback resources of the
// process: the audio output handle and the speech synthesis engine. It
// guarantees the two strategies are never active at the same time and
// that transient audio buffers are released before a new source is
// assigned.
package resources

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mbaylis/sutra/internal/output"
	"github.com/mbaylis/sutra/internal/speech"
)

// Manager is the only component permitted to mutate the output handle and
// the synthesizer directly. It is not safe for concurrent use; the
// playback service serializes access.
type Manager struct {
	out   output.Interface
	synth speech.Synthesizer

	bufferPath string // transient buffer file of the active attempt, if any
}

// NewManager creates a manager owning the given resources.
func NewManager(out output.Interface, synth speech.Synthesizer) *Manager {
	return &Manager{out: out, synth: synth}
}

// Output returns the shared output handle.
func (m *Manager) Output() output.Interface { return m.out }

// Synth returns the speech engine.
func (m *Manager) Synth() speech.Synthesizer { return m.synth }

// Prepare runs the unconditional preconditions of any new playback
// attempt: cancel in-progress speech and release the previous transient
// buffer. Skipping either is a leak, not an optimization.
func (m *Manager) Prepare() {
	m.synth.Cancel()
	m.ReleaseBuffer()
}

// AdoptBuffer takes ownership of a transient buffer file, releasing any
// prior one first. Exactly one buffer is owned at a time.
func (m *Manager) AdoptBuffer(path string) {
	m.ReleaseBuffer()
	m.bufferPath = path
}

// BufferPath returns the owned transient buffer path, or "".
func (m *Manager) BufferPath() string { return m.bufferPath }

// ReleaseBuffer deletes the owned transient buffer, if any.
func (m *Manager) ReleaseBuffer() {
	if m.bufferPath == "" {
		return
	}
	if err := os.Remove(m.bufferPath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", m.bufferPath).Msg("failed to release transient buffer")
	}
	m.bufferPath = ""
}

// StopAll halts both playback strategies and releases the transient
// buffer. Used by stop() and at shutdown.
func (m *Manager) StopAll() {
	m.synth.Cancel()
	m.out.Stop()
	m.ReleaseBuffer()
}
