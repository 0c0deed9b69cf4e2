// Package speech provides on-device speech synthesis, used as the last
// playback strategy for voice tracks whose endpoint cannot supply audio.
package speech

// Utterance is a single piece of text to synthesize.
type Utterance struct {
	Text     string
	Language string  // BCP 47 tag, e.g. "en-US"
	Rate     float64 // 1.0 = normal
	Pitch    float64 // 1.0 = normal
}

// Synthesizer defines the speech engine contract. The engine speaks at
// most one utterance at a time; starting a new one cancels the previous.
type Synthesizer interface {
	// Available reports whether the runtime can synthesize speech at all.
	Available() bool

	// Speak starts synthesizing the utterance, cancelling any prior one.
	// It returns once synthesis has started; completion is signaled on
	// FinishedChan.
	Speak(u Utterance) error

	// Cancel stops any in-progress synthesis. Cancelled synthesis never
	// signals FinishedChan.
	Cancel()

	// Speaking reports whether synthesis is in progress.
	Speaking() bool

	// FinishedChan signals natural completion of an utterance. The
	// playback service treats it as equivalent to a track ending.
	FinishedChan() <-chan struct{}
}
