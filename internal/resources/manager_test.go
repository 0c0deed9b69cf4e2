package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mbaylis/sutra/internal/output"
	"github.com/mbaylis/sutra/internal/speech"
)

func tempBuffer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buf.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrepare_CancelsSpeechAndReleasesBuffer(t *testing.T) {
	out := output.NewMock()
	synth := speech.NewMock()
	m := NewManager(out, synth)

	_ = synth.Speak(speech.Utterance{Text: "hello"})
	buf := tempBuffer(t)
	m.AdoptBuffer(buf)

	m.Prepare()

	if synth.Speaking() {
		t.Error("speech still active after Prepare")
	}
	if m.BufferPath() != "" {
		t.Errorf("BufferPath() = %q, want empty", m.BufferPath())
	}
	if _, err := os.Stat(buf); !os.IsNotExist(err) {
		t.Error("transient buffer file not deleted")
	}
}

func TestAdoptBuffer_ReleasesPriorBuffer(t *testing.T) {
	m := NewManager(output.NewMock(), speech.NewMock())

	first := tempBuffer(t)
	second := tempBuffer(t)

	m.AdoptBuffer(first)
	m.AdoptBuffer(second)

	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("prior buffer not released on adopt")
	}
	if _, err := os.Stat(second); err != nil {
		t.Error("new buffer should still exist")
	}
	if m.BufferPath() != second {
		t.Errorf("BufferPath() = %q, want %q", m.BufferPath(), second)
	}
}

func TestReleaseBuffer_MissingFileIsNotFatal(t *testing.T) {
	m := NewManager(output.NewMock(), speech.NewMock())
	m.AdoptBuffer(filepath.Join(t.TempDir(), "gone.mp3"))

	m.ReleaseBuffer() // must not panic

	if m.BufferPath() != "" {
		t.Errorf("BufferPath() = %q, want empty", m.BufferPath())
	}
}

func TestStopAll_HaltsBothStrategies(t *testing.T) {
	out := output.NewMock()
	synth := speech.NewMock()
	m := NewManager(out, synth)

	_ = out.Load("/some/track.mp3")
	_ = synth.Speak(speech.Utterance{Text: "hello"})
	m.AdoptBuffer(tempBuffer(t))

	m.StopAll()

	if out.State() != output.Stopped {
		t.Errorf("output state = %v, want Stopped", out.State())
	}
	if synth.Speaking() {
		t.Error("speech still active after StopAll")
	}
	if m.BufferPath() != "" {
		t.Error("buffer not released after StopAll")
	}
}
