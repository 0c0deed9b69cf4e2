package output

import "time"

// Mock is a test double for the output handle.
type Mock struct {
	state    State
	position time.Duration
	duration time.Duration

	volumeLevel float64
	muted       bool
	rate        float64

	loadErr   error
	loadCalls []string
	stopCalls int
	seekCalls []time.Duration

	finished chan struct{}
}

// NewMock creates a new mock output handle for testing.
func NewMock() *Mock {
	return &Mock{
		state:       Stopped,
		volumeLevel: 1.0,
		rate:        1.0,
		finished:    make(chan struct{}, 1),
	}
}

func (m *Mock) Load(path string) error {
	m.loadCalls = append(m.loadCalls, path)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.state = Playing
	m.position = 0
	return nil
}

func (m *Mock) Stop() {
	m.stopCalls++
	m.state = Stopped
	m.position = 0
}

func (m *Mock) Pause() {
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) State() State { return m.state }

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SeekTo(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	if pos > m.duration {
		pos = m.duration
	}
	m.position = pos
	m.seekCalls = append(m.seekCalls, pos)
}

func (m *Mock) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	m.volumeLevel = level
}

func (m *Mock) Volume() float64 { return m.volumeLevel }

func (m *Mock) SetMuted(muted bool) { m.muted = muted }

func (m *Mock) Muted() bool { return m.muted }

func (m *Mock) SetRate(rate float64) {
	if rate < 0.5 {
		rate = 0.5
	}
	if rate > 2.0 {
		rate = 2.0
	}
	m.rate = rate
}

func (m *Mock) Rate() float64 { return m.rate }

func (m *Mock) FinishedChan() <-chan struct{} { return m.finished }

// Test helpers

func (m *Mock) SetState(s State) { m.state = s }

func (m *Mock) SetPosition(d time.Duration) { m.position = d }

func (m *Mock) SetTrackDuration(d time.Duration) { m.duration = d }

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) LoadCalls() []string { return m.loadCalls }

func (m *Mock) StopCalls() int { return m.stopCalls }

func (m *Mock) SeekCalls() []time.Duration { return m.seekCalls }

// SimulateFinished simulates the loaded source reaching its natural end.
func (m *Mock) SimulateFinished() {
	m.state = Stopped
	select {
	case m.finished <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
