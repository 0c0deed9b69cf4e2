package speech

// Mock is a test double for the speech engine.
type Mock struct {
	available bool
	speaking  bool

	speakErr    error
	speakCalls  []Utterance
	cancelCalls int

	finished chan struct{}
}

// NewMock creates a new mock synthesizer for testing. It is available by
// default.
func NewMock() *Mock {
	return &Mock{
		available: true,
		finished:  make(chan struct{}, 1),
	}
}

func (m *Mock) Available() bool { return m.available }

func (m *Mock) Speak(u Utterance) error {
	m.speakCalls = append(m.speakCalls, u)
	if m.speakErr != nil {
		return m.speakErr
	}
	m.speaking = true
	return nil
}

func (m *Mock) Cancel() {
	m.cancelCalls++
	m.speaking = false
}

func (m *Mock) Speaking() bool { return m.speaking }

func (m *Mock) FinishedChan() <-chan struct{} { return m.finished }

// Test helpers

func (m *Mock) SetAvailable(available bool) { m.available = available }

func (m *Mock) SetSpeakError(err error) { m.speakErr = err }

func (m *Mock) SpeakCalls() []Utterance { return m.speakCalls }

func (m *Mock) CancelCalls() int { return m.cancelCalls }

// SimulateFinished simulates an utterance completing naturally.
func (m *Mock) SimulateFinished() {
	m.speaking = false
	select {
	case m.finished <- struct{}{}:
	default:
	}
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
