package playback

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/track"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{IsPlaying: true})
		sub.sendTrack(TrackChange{Index: 1})
		sub.sendPosition(PositionChange{Position: 30 * time.Second})
		sub.sendQueue(QueueChange{Index: 2, Tracks: []track.Track{{ID: "q1"}}})
		sub.sendMode(ModeChange{RepeatMode: queue.RepeatAll, Shuffle: true})
		sub.sendError(ErrorEvent{TrackID: "q1", Message: "no audio is available"})

		e := <-sub.StateChanged
		if !e.IsPlaying {
			t.Error("StateChanged.IsPlaying = false, want true")
		}

		tr := <-sub.TrackChanged
		if tr.Index != 1 {
			t.Errorf("TrackChanged.Index = %d, want 1", tr.Index)
		}

		pos := <-sub.PositionChanged
		if pos.Position != 30*time.Second {
			t.Errorf("PositionChanged.Position = %v, want 30s", pos.Position)
		}

		q := <-sub.QueueChanged
		if q.Index != 2 {
			t.Errorf("QueueChanged.Index = %d, want 2", q.Index)
		}
		if len(q.Tracks) != 1 || q.Tracks[0].ID != "q1" {
			t.Errorf("QueueChanged.Tracks = %v, want [{ID: q1}]", q.Tracks)
		}

		m := <-sub.ModeChanged
		if m.RepeatMode != queue.RepeatAll {
			t.Errorf("ModeChanged.RepeatMode = %v, want RepeatAll", m.RepeatMode)
		}

		errEvent := <-sub.Error
		if errEvent.TrackID != "q1" {
			t.Errorf("Error.TrackID = %q, want q1", errEvent.TrackID)
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Fill buffer
	for range eventBufferSize + 5 {
		sub.sendState(StateChange{})
	}

	// Should not block or panic - count what we got
	count := 0
	for {
		select {
		case <-sub.StateChanged:
			count++
		default:
			goto done
		}
	}
done:
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}
