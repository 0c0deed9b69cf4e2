package queue

import (
	"testing"

	"github.com/mbaylis/sutra/internal/track"
)

func makeTracks(ids ...string) []track.Track {
	tracks := make([]track.Track, len(ids))
	for i, id := range ids {
		tracks[i] = track.Track{ID: id, Title: id, Source: track.SourceBuiltIn}
	}
	return tracks
}

func TestNew_Empty(t *testing.T) {
	q := New()

	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
	if q.Index() != 0 {
		t.Errorf("Index() = %d, want 0 on empty queue", q.Index())
	}
	if q.Current() != nil {
		t.Error("Current() should be nil on empty queue")
	}
}

func TestAdvance_Sequential(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c")...)

	// N-1 advances from index 0 reach the last index.
	for i := 1; i < 3; i++ {
		got := q.Advance()
		if got == nil {
			t.Fatalf("Advance() #%d returned nil", i)
		}
		if q.Index() != i {
			t.Errorf("Index() = %d, want %d", q.Index(), i)
		}
	}

	// One further advance is terminal: nil, index unchanged.
	if got := q.Advance(); got != nil {
		t.Errorf("Advance() past end = %v, want nil", got)
	}
	if q.Index() != 2 {
		t.Errorf("Index() = %d, want 2 after terminal advance", q.Index())
	}
}

func TestAdvance_RepeatAll_Wraps(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c")...)
	q.SetRepeatMode(RepeatAll)
	q.JumpTo(2)

	got := q.Advance()

	if got == nil || got.ID != "a" {
		t.Fatalf("Advance() = %v, want track a", got)
	}
	if q.Index() != 0 {
		t.Errorf("Index() = %d, want 0", q.Index())
	}
}

func TestAdvance_RepeatOne_StaysPut(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c")...)
	q.SetRepeatMode(RepeatOne)
	q.JumpTo(1)

	for range 5 {
		got := q.Advance()
		if got == nil || got.ID != "b" {
			t.Fatalf("Advance() = %v, want track b", got)
		}
		if q.Index() != 1 {
			t.Errorf("Index() = %d, want 1", q.Index())
		}
	}
}

func TestAdvance_Shuffle_PicksRandomIndex(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c", "d")...)
	q.SetShuffle(true)
	q.intn = func(int) int { return 2 }

	got := q.Advance()

	if got == nil || got.ID != "c" {
		t.Fatalf("Advance() = %v, want track c", got)
	}
}

func TestRetreat_LinearWithWraparound(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c")...)
	q.SetShuffle(true) // retreat ignores shuffle

	got := q.Retreat()
	if got == nil || got.ID != "c" {
		t.Fatalf("Retreat() from 0 = %v, want wrap to track c", got)
	}

	got = q.Retreat()
	if got == nil || got.ID != "b" {
		t.Fatalf("Retreat() = %v, want track b", got)
	}
}

func TestJumpTo_InvalidIndex(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b")...)

	if q.JumpTo(-1) != nil {
		t.Error("JumpTo(-1) should return nil")
	}
	if q.JumpTo(2) != nil {
		t.Error("JumpTo(2) should return nil")
	}
	if q.Index() != 0 {
		t.Errorf("Index() = %d, want 0 after invalid jumps", q.Index())
	}
}

func TestShuffleTracks_PinsCurrentToFront(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c", "d", "e")...)
	q.JumpTo(3)

	q.ShuffleTracks()

	if q.Index() != 0 {
		t.Errorf("Index() = %d, want 0 after shuffle", q.Index())
	}
	if cur := q.Current(); cur == nil || cur.ID != "d" {
		t.Fatalf("Current() = %v, want pinned track d", cur)
	}

	// Same multiset of tracks.
	seen := make(map[string]int)
	for _, tr := range q.Tracks() {
		seen[tr.ID]++
	}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		if seen[id] != 1 {
			t.Errorf("track %q appears %d times, want 1", id, seen[id])
		}
	}
}

func TestRemoveAt_AdjustsIndex(t *testing.T) {
	q := New()
	q.Replace(makeTracks("a", "b", "c")...)
	q.JumpTo(2)

	if !q.RemoveAt(0) {
		t.Fatal("RemoveAt(0) failed")
	}
	if q.Index() != 1 {
		t.Errorf("Index() = %d, want 1", q.Index())
	}
	if cur := q.Current(); cur == nil || cur.ID != "c" {
		t.Errorf("Current() = %v, want track c", cur)
	}

	// Removing the last track while current clamps the index.
	if !q.RemoveAt(1) {
		t.Fatal("RemoveAt(1) failed")
	}
	if q.Index() != 0 {
		t.Errorf("Index() = %d, want 0", q.Index())
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory(3)
	for _, id := range []string{"a", "b", "c", "d"} {
		h.Push(id)
	}

	ids := h.IDs()
	if len(ids) != 3 {
		t.Fatalf("len(IDs()) = %d, want 3", len(ids))
	}
	want := []string{"b", "c", "d"}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], id)
		}
	}
}
