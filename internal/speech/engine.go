package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	defaultBinary = "espeak-ng"

	// espeak-ng defaults: 175 words per minute, pitch midpoint 50.
	baseWordsPerMinute = 175
	basePitch          = 50
)

// Engine synthesizes speech by running an espeak-ng compatible binary.
type Engine struct {
	binary string

	mu       sync.Mutex
	cancel   context.CancelFunc
	speaking bool
	gen      uint64

	finished chan struct{}
}

// NewEngine creates an engine using the given binary, or espeak-ng if
// empty.
func NewEngine(binary string) *Engine {
	if binary == "" {
		binary = defaultBinary
	}
	return &Engine{
		binary:   binary,
		finished: make(chan struct{}, 1),
	}
}

// Available reports whether the synthesis binary can be found.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Speak starts synthesizing the utterance, cancelling any prior one.
func (e *Engine) Speak(u Utterance) error {
	if u.Text == "" {
		return fmt.Errorf("speech: empty utterance")
	}
	if !e.Available() {
		return fmt.Errorf("speech: %s not found", e.binary)
	}

	e.Cancel()

	e.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.speaking = true
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	args := []string{
		"-s", strconv.Itoa(wordsPerMinute(u.Rate)),
		"-p", strconv.Itoa(pitchValue(u.Pitch)),
	}
	if voice := e.pickVoice(u.Language); voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, u.Text)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	if err := cmd.Start(); err != nil {
		e.mu.Lock()
		e.speaking = false
		e.mu.Unlock()
		cancel()
		return fmt.Errorf("speech: start %s: %w", e.binary, err)
	}

	go func() {
		err := cmd.Wait()

		e.mu.Lock()
		stale := gen != e.gen
		if !stale {
			e.speaking = false
		}
		e.mu.Unlock()

		// A superseded or cancelled utterance never signals completion.
		if stale || ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Warn().Err(err).Msg("speech synthesis exited with error")
			return
		}
		select {
		case e.finished <- struct{}{}:
		default:
		}
	}()

	return nil
}

// Cancel stops any in-progress synthesis.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.speaking = false
	e.gen++
}

// Speaking reports whether synthesis is in progress.
func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speaking
}

// FinishedChan signals natural completion of an utterance.
func (e *Engine) FinishedChan() <-chan struct{} { return e.finished }

// pickVoice selects a voice for the language tag. It prefers an exact
// match on the full tag over the bare language prefix, falling back to
// the prefix in lowercase (which espeak-ng resolves itself).
func (e *Engine) pickVoice(language string) string {
	if language == "" {
		return ""
	}
	prefix := strings.ToLower(strings.SplitN(language, "-", 2)[0])

	out, err := exec.Command(e.binary, "--voices="+prefix).Output()
	if err != nil {
		return prefix
	}
	voices := parseVoices(out)
	full := strings.ToLower(language)
	for _, v := range voices {
		if v == full {
			return v
		}
	}
	if len(voices) > 0 {
		return voices[0]
	}
	return prefix
}

// parseVoices extracts voice language codes from espeak-ng --voices
// output, skipping the header line.
func parseVoices(out []byte) []string {
	var voices []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		voices = append(voices, strings.ToLower(fields[1]))
	}
	return voices
}

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	wpm := int(baseWordsPerMinute * rate)
	if wpm < 80 {
		wpm = 80
	}
	if wpm > 450 {
		wpm = 450
	}
	return wpm
}

func pitchValue(pitch float64) int {
	if pitch <= 0 {
		pitch = 1.0
	}
	p := int(basePitch * pitch)
	if p < 0 {
		p = 0
	}
	if p > 99 {
		p = 99
	}
	return p
}

// Verify Engine implements Synthesizer at compile time.
var _ Synthesizer = (*Engine)(nil)
