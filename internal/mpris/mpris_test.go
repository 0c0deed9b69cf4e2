//go:build linux

package mpris

import (
	"context"
	"strings"
	"testing"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/mbaylis/sutra/internal/availability"
	"github.com/mbaylis/sutra/internal/output"
	"github.com/mbaylis/sutra/internal/playback"
	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/resolver"
	"github.com/mbaylis/sutra/internal/resources"
	"github.com/mbaylis/sutra/internal/speech"
	"github.com/mbaylis/sutra/internal/track"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, _ track.Track) resolver.Outcome {
	return resolver.Outcome{Strategy: resolver.StrategyUnavailable, Reason: "no audio is available"}
}

func newTestService(t *testing.T) playback.Service {
	t.Helper()
	res := resources.NewManager(output.NewMock(), speech.NewMock())
	svc := playback.New(res, queue.New(), stubResolver{}, availability.New(0), nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestFormatTrackID(t *testing.T) {
	a := formatTrackID("track-a")
	if !strings.HasPrefix(a, "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("formatTrackID = %q, want MPRIS track path", a)
	}
	if a != formatTrackID("track-a") {
		t.Error("formatTrackID not stable for the same id")
	}
	if a == formatTrackID("track-b") {
		t.Error("formatTrackID collides for different ids")
	}
}

func TestPlaybackStatusStoppedWithoutTrack(t *testing.T) {
	p := &playerAdapter{service: newTestService(t)}
	status, err := p.PlaybackStatus()
	if err != nil {
		t.Fatal(err)
	}
	if status != types.PlaybackStatusStopped {
		t.Errorf("PlaybackStatus = %v, want Stopped", status)
	}
}

func TestLoopStatusRoundTrip(t *testing.T) {
	p := &playerAdapter{service: newTestService(t)}

	cases := []types.LoopStatus{
		types.LoopStatusNone,
		types.LoopStatusTrack,
		types.LoopStatusPlaylist,
	}
	for _, want := range cases {
		if err := p.SetLoopStatus(want); err != nil {
			t.Fatal(err)
		}
		got, err := p.LoopStatus()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("LoopStatus = %v, want %v", got, want)
		}
	}
}

func TestSetShuffleIsIdempotent(t *testing.T) {
	p := &playerAdapter{service: newTestService(t)}

	for range 2 {
		if err := p.SetShuffle(true); err != nil {
			t.Fatal(err)
		}
		on, err := p.Shuffle()
		if err != nil {
			t.Fatal(err)
		}
		if !on {
			t.Fatal("Shuffle = false after SetShuffle(true)")
		}
	}

	if err := p.SetShuffle(false); err != nil {
		t.Fatal(err)
	}
	if on, _ := p.Shuffle(); on {
		t.Error("Shuffle = true after SetShuffle(false)")
	}
}

func TestCanPlayReflectsQueue(t *testing.T) {
	svc := newTestService(t)
	p := &playerAdapter{service: svc}

	if can, _ := p.CanPlay(); can {
		t.Error("CanPlay = true on empty queue")
	}
	svc.Enqueue(track.Track{ID: "a", Source: track.SourceBuiltIn, Location: "/audio/a.mp3"})
	if can, _ := p.CanPlay(); !can {
		t.Error("CanPlay = false with a queued track")
	}
}
