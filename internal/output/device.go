package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const resampleQuality = 4

// Device is the real output handle backed by the beep speaker.
type Device struct {
	state    State
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	resample *beep.Resampler
	volume   *effects.Volume

	volumeLevel float64
	muted       bool
	rate        float64

	finished chan struct{}
}

var speakerInitialized bool

// NewDevice creates a stopped output device.
func NewDevice() *Device {
	return &Device{
		state:       Stopped,
		volumeLevel: 1.0,
		rate:        1.0,
		finished:    make(chan struct{}, 1),
	}
}

// Load decodes the file and starts playback from position 0.
func (d *Device) Load(path string) error {
	d.Stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		// mp3 is the default: fetched voice audio is materialized
		// without a meaningful extension.
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		speakerInitialized = true
	}

	d.file = f
	d.streamer = streamer
	d.format = format
	d.ctrl = &beep.Ctrl{Streamer: streamer}
	d.resample = beep.ResampleRatio(resampleQuality, d.rate, d.ctrl)
	d.volume = &effects.Volume{
		Streamer: d.resample,
		Base:     2,
		Volume:   levelToVolume(d.volumeLevel),
		Silent:   d.muted,
	}
	d.state = Playing

	speaker.Play(beep.Seq(d.volume, beep.Callback(func() {
		select {
		case d.finished <- struct{}{}:
		default:
		}
	})))

	return nil
}

// Stop stops playback and releases the loaded source.
func (d *Device) Stop() {
	if d.state == Stopped {
		return
	}

	speaker.Clear()

	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.ctrl = nil
	d.resample = nil
	d.volume = nil
	d.state = Stopped
}

// Pause pauses playback.
func (d *Device) Pause() {
	if d.state != Playing || d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
	d.state = Paused
}

// Resume resumes paused playback.
func (d *Device) Resume() {
	if d.state != Paused || d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	d.state = Playing
}

// State returns the current state.
func (d *Device) State() State { return d.state }

// Position returns the playback position of the loaded source.
func (d *Device) Position() time.Duration {
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := d.format.SampleRate.D(d.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the duration of the loaded source.
func (d *Device) Duration() time.Duration {
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len())
}

// SeekTo moves the playback position, clamped to [0, Duration].
func (d *Device) SeekTo(pos time.Duration) {
	if d.streamer == nil || d.state == Stopped {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if max := d.Duration(); pos > max {
		pos = max
	}
	speaker.Lock()
	_ = d.streamer.Seek(d.format.SampleRate.N(pos))
	speaker.Unlock()
}

// SetVolume sets the volume level, clamped to [0, 1].
func (d *Device) SetVolume(level float64) {
	d.volumeLevel = math.Min(math.Max(level, 0), 1)
	if d.volume != nil {
		speaker.Lock()
		d.volume.Volume = levelToVolume(d.volumeLevel)
		speaker.Unlock()
	}
}

// Volume returns the current volume level.
func (d *Device) Volume() float64 { return d.volumeLevel }

// SetMuted silences output without losing the volume level.
func (d *Device) SetMuted(muted bool) {
	d.muted = muted
	if d.volume != nil {
		speaker.Lock()
		d.volume.Silent = muted
		speaker.Unlock()
	}
}

// Muted returns true if output is silenced.
func (d *Device) Muted() bool { return d.muted }

// SetRate sets the playback rate, clamped to [0.5, 2.0].
func (d *Device) SetRate(rate float64) {
	d.rate = math.Min(math.Max(rate, 0.5), 2.0)
	if d.resample != nil {
		speaker.Lock()
		d.resample.SetRatio(d.rate)
		speaker.Unlock()
	}
}

// Rate returns the current playback rate.
func (d *Device) Rate() float64 { return d.rate }

// FinishedChan signals natural end of the loaded source.
func (d *Device) FinishedChan() <-chan struct{} { return d.finished }

// levelToVolume converts a 0.0-1.0 level to beep's base-2 log scale.
// 1.0 -> 0 (no change), 0.5 -> -1 (half), 0 -> -10 (effectively silent).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
