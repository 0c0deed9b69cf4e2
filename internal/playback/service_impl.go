package playback

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mbaylis/sutra/internal/availability"
	"github.com/mbaylis/sutra/internal/errmsg"
	"github.com/mbaylis/sutra/internal/output"
	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/resolver"
	"github.com/mbaylis/sutra/internal/resources"
	"github.com/mbaylis/sutra/internal/speech"
	"github.com/mbaylis/sutra/internal/store"
	"github.com/mbaylis/sutra/internal/track"
)

const (
	// defaultSkipGrace is the delay before auto-advancing past a failed
	// track, leaving room for the user's own next/previous to win.
	defaultSkipGrace = 500 * time.Millisecond

	// restartWindow is how far into a track Previous restarts it instead
	// of moving to the prior index.
	restartWindow = 3 * time.Second

	historySize = 50
)

// trackResolver is the resolver contract the service needs; satisfied by
// *resolver.Resolver and by test fakes.
type trackResolver interface {
	Resolve(ctx context.Context, tr track.Track) resolver.Outcome
}

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mu sync.Mutex

	res      *resources.Manager
	queue    *queue.Queue
	resolver trackResolver
	avail    *availability.Tracker
	store    store.Interface
	history  *queue.History

	current *track.Track

	// activeUtterance is set while the speech strategy is playing;
	// pausedUtterance holds it across a pause, since exec-based
	// synthesis cannot be suspended and must be restarted.
	activeUtterance *speech.Utterance
	pausedUtterance *speech.Utterance

	isLoading  bool
	audioError string
	hasIssues  bool

	// loadGen is the generation counter guarding against stale loads: a
	// load may only apply its result while its generation is current.
	loadGen uint64

	skipGrace time.Duration

	subs   []*Subscription
	subsMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// Option configures the service.
type Option func(*serviceImpl)

// WithSkipGrace overrides the auto-skip grace period.
func WithSkipGrace(d time.Duration) Option {
	return func(s *serviceImpl) {
		if d > 0 {
			s.skipGrace = d
		}
	}
}

// New creates the playback service. st receives fire-and-forget state
// snapshots; persistence failures never reach the playback path.
func New(res *resources.Manager, q *queue.Queue, r trackResolver, avail *availability.Tracker, st store.Interface, opts ...Option) Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		res:       res,
		queue:     q,
		resolver:  r,
		avail:     avail,
		store:     st,
		history:   queue.NewHistory(historySize),
		skipGrace: defaultSkipGrace,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.watchFinished()
	return s
}

// --- Commands ---

func (s *serviceImpl) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		cur := s.queue.Current()
		if cur == nil {
			return nil
		}
		s.startLoadLocked(*cur)
		return nil
	}

	// Pure resume paths never re-trigger a load.
	if s.res.Output().State() == output.Paused {
		s.res.Output().Resume()
		s.sendStateLocked()
		return nil
	}
	if s.pausedUtterance != nil {
		u := s.pausedUtterance
		s.pausedUtterance = nil
		if err := s.res.Synth().Speak(*u); err == nil {
			s.activeUtterance = u
			s.sendStateLocked()
			return nil
		}
		// Fall through to a full reload if the engine refused.
	}
	if s.res.Output().State() == output.Playing || s.res.Synth().Speaking() || s.isLoading {
		return nil
	}

	s.startLoadLocked(*s.current)
	return nil
}

func (s *serviceImpl) PlayTrack(tr track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An explicit track always restarts from 0, even if already current.
	if idx := s.indexOfLocked(tr.ID); idx >= 0 {
		s.queue.JumpTo(idx)
	}
	s.startLoadLocked(tr)
	return nil
}

func (s *serviceImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.res.Output().State() == output.Playing {
		s.res.Output().Pause()
	}
	if s.res.Synth().Speaking() {
		// Synthesis cannot be suspended; remember the utterance so Play
		// can restart it.
		s.pausedUtterance = s.activeUtterance
		s.activeUtterance = nil
		s.res.Synth().Cancel()
	}
	s.sendStateLocked()
}

func (s *serviceImpl) Toggle() {
	s.mu.Lock()
	playing := s.isPlayingLocked()
	s.mu.Unlock()

	if playing {
		s.Pause()
	} else {
		_ = s.Play()
	}
}

func (s *serviceImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadGen++ // supersede any in-flight load
	s.res.StopAll()
	s.activeUtterance = nil
	s.pausedUtterance = nil
	s.isLoading = false
	s.sendStateLocked()
	s.persistLocked()
}

func (s *serviceImpl) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLocked()
}

func (s *serviceImpl) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.res.Output().Position() < restartWindow && !s.res.Synth().Speaking() {
		s.restartCurrentLocked()
		return
	}
	if tr := s.queue.Retreat(); tr != nil {
		s.startLoadLocked(*tr)
	}
}

func (s *serviceImpl) SeekTo(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.res.Output().SeekTo(pos)
	s.sendPositionLocked(s.res.Output().Position())
	s.persistLocked()
}

// --- Settings ---

func (s *serviceImpl) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res.Output().SetVolume(level)
	s.sendModeLocked()
	s.persistLocked()
}

func (s *serviceImpl) SetPlaybackRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res.Output().SetRate(rate)
	s.sendModeLocked()
	s.persistLocked()
}

func (s *serviceImpl) SetRepeatMode(mode queue.RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetRepeatMode(mode)
	s.sendModeLocked()
	s.persistLocked()
}

func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.SetShuffle(!s.queue.Shuffle())
	s.sendModeLocked()
	s.persistLocked()
	return s.queue.Shuffle()
}

func (s *serviceImpl) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res.Output().SetMuted(!s.res.Output().Muted())
	s.sendModeLocked()
	s.persistLocked()
	return s.res.Output().Muted()
}

// --- Queue manipulation ---

func (s *serviceImpl) Enqueue(tracks ...track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Add(tracks...)
	s.sendQueueLocked()
	s.persistLocked()
}

func (s *serviceImpl) ReplaceQueue(tracks ...track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Replace(tracks...)
	s.sendQueueLocked()
	s.persistLocked()
}

func (s *serviceImpl) RemoveFromQueue(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queue.RemoveAt(index) {
		return false
	}
	s.sendQueueLocked()
	s.persistLocked()
	return true
}

func (s *serviceImpl) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
	s.sendQueueLocked()
	s.persistLocked()
}

func (s *serviceImpl) ShuffleQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.ShuffleTracks()
	s.sendQueueLocked()
	s.persistLocked()
}

// --- Recovery ---

func (s *serviceImpl) RetryPlayback() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.avail.Reset()
	s.audioError = ""
	s.hasIssues = false

	switch {
	case s.current != nil:
		s.startLoadLocked(*s.current)
	case !s.queue.IsEmpty():
		s.startLoadLocked(*s.queue.Current())
	default:
		// Nothing to retry with an empty queue and no current track.
		s.sendStateLocked()
	}
}

// --- Restore ---

func (s *serviceImpl) Restore(snap *store.Snapshot, lookup TrackLookup) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var tracks []track.Track
	for _, id := range snap.QueueIDs {
		if tr, ok := lookup(id); ok {
			tracks = append(tracks, tr)
		}
	}
	s.queue.Replace(tracks...)
	if snap.QueueIndex >= 0 && snap.QueueIndex < len(tracks) {
		s.queue.JumpTo(snap.QueueIndex)
	}

	if snap.CurrentTrackID != "" {
		if tr, ok := lookup(snap.CurrentTrackID); ok {
			s.current = &tr
			if idx := s.indexOfLocked(tr.ID); idx >= 0 {
				s.queue.JumpTo(idx)
			}
		}
	}
	if s.current == nil {
		s.current = s.queue.Current()
	}

	s.res.Output().SetVolume(snap.Volume)
	s.res.Output().SetRate(snap.PlaybackRate)
	s.res.Output().SetMuted(snap.Muted)
	s.queue.SetRepeatMode(queue.RepeatMode(snap.RepeatMode))
	s.queue.SetShuffle(snap.Shuffle)

	s.sendQueueLocked()
	s.sendModeLocked()
}

// --- Queries ---

func (s *serviceImpl) State() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur *track.Track
	if s.current != nil {
		c := *s.current
		cur = &c
	}
	return PlayerState{
		CurrentTrack:   cur,
		Queue:          s.queue.Tracks(),
		QueueIndex:     s.queue.Index(),
		IsPlaying:      s.isPlayingLocked(),
		IsLoading:      s.isLoading,
		Position:       s.res.Output().Position(),
		Duration:       s.durationLocked(),
		Volume:         s.res.Output().Volume(),
		PlaybackRate:   s.res.Output().Rate(),
		RepeatMode:     s.queue.RepeatMode(),
		Shuffle:        s.queue.Shuffle(),
		Muted:          s.res.Output().Muted(),
		PlayHistory:    s.history.IDs(),
		AudioError:     s.audioError,
		HasAudioIssues: s.hasIssues,
	}
}

func (s *serviceImpl) CurrentTrack() *track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *serviceImpl) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isPlayingLocked()
}

func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.loadGen++
	s.cancel()
	close(s.done)
	s.res.StopAll()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

// --- Load pipeline ---

// startLoadLocked makes tr current and kicks off the asynchronous load.
// Mutating shared state here is safe: commands are serialized, and only
// the load whose generation is still current may apply results later.
func (s *serviceImpl) startLoadLocked(tr track.Track) {
	prev := s.current
	if prev != nil && prev.ID != tr.ID {
		s.history.Push(prev.ID)
	}

	c := tr
	s.current = &c

	// Unconditional preconditions of any new attempt.
	s.res.Prepare()
	s.res.Output().Stop()
	s.activeUtterance = nil
	s.pausedUtterance = nil

	s.isLoading = true
	s.audioError = ""
	s.loadGen++
	gen := s.loadGen

	s.sendStateLocked()

	go s.load(gen, tr, prev)
}

func (s *serviceImpl) load(gen uint64, tr track.Track, prev *track.Track) {
	outcome := s.resolver.Resolve(s.ctx, tr)
	s.applyOutcome(gen, tr, prev, outcome)
}

func (s *serviceImpl) applyOutcome(gen uint64, tr track.Track, prev *track.Track, out resolver.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.loadGen {
		// Superseded: a newer command owns the state now. Clean up
		// anything this attempt materialized and walk away.
		if out.Strategy == resolver.StrategyBuffered && out.Path != "" {
			_ = os.Remove(out.Path)
		}
		return
	}

	switch out.Strategy {
	case resolver.StrategyDirect:
		if err := s.res.Output().Load(out.Path); err != nil {
			log.Warn().Err(err).Str("track", tr.ID).Msg("failed to load audio")
			s.failLocked(gen, tr, errmsg.Format(errmsg.OpPlaybackStart, err))
			return
		}
	case resolver.StrategyBuffered:
		s.res.AdoptBuffer(out.Path)
		if err := s.res.Output().Load(out.Path); err != nil {
			log.Warn().Err(err).Str("track", tr.ID).Msg("failed to load buffered audio")
			s.failLocked(gen, tr, errmsg.Format(errmsg.OpPlaybackStart, err))
			return
		}
	case resolver.StrategySpeech:
		if err := s.res.Synth().Speak(*out.Utterance); err != nil {
			log.Warn().Err(err).Str("track", tr.ID).Msg("speech synthesis failed to start")
			s.failLocked(gen, tr, errmsg.SpeechUnavailable)
			return
		}
		s.activeUtterance = out.Utterance
	case resolver.StrategyUnavailable:
		s.failLocked(gen, tr, out.Reason)
		return
	}

	s.isLoading = false
	s.avail.MarkAvailable(tr.ID)
	s.sendTrackLocked(TrackChange{Previous: prev, Current: s.current, Index: s.queue.Index()})
	s.sendStateLocked()
	s.persistLocked()
}

// failLocked absorbs a per-track failure: it never raises to the caller.
// Recoverable failures auto-advance after the grace period; systemic
// failures halt auto-skip and demand an explicit retry.
func (s *serviceImpl) failLocked(gen uint64, tr track.Track, reason string) {
	s.avail.MarkUnavailable(tr.ID)
	s.isLoading = false

	if s.avail.HasSystemicIssues() {
		s.audioError = errmsg.SystemicFailure
		s.hasIssues = true
		s.sendErrorLocked(ErrorEvent{TrackID: tr.ID, Message: s.audioError, Systemic: true})
		s.sendStateLocked()
		return
	}

	if s.queue.Len() > 1 {
		// Auto-skip unless a newer command lands first.
		log.Debug().Str("track", tr.ID).Msg("track unavailable, scheduling auto-skip")
		time.AfterFunc(s.skipGrace, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed || gen != s.loadGen {
				return
			}
			s.nextLocked()
		})
		s.sendStateLocked()
		return
	}

	s.audioError = reason
	s.sendErrorLocked(ErrorEvent{TrackID: tr.ID, Message: reason})
	s.sendStateLocked()
}

func (s *serviceImpl) nextLocked() {
	tr := s.queue.Advance()
	if tr == nil {
		// Terminal: end of queue with repeat off. Not an error.
		s.loadGen++
		s.res.StopAll()
		s.activeUtterance = nil
		s.pausedUtterance = nil
		s.isLoading = false
		s.sendStateLocked()
		s.persistLocked()
		return
	}
	s.startLoadLocked(*tr)
}

func (s *serviceImpl) restartCurrentLocked() {
	if s.res.Output().State().IsActive() {
		s.res.Output().SeekTo(0)
		if s.res.Output().State() == output.Paused {
			s.res.Output().Resume()
		}
		s.sendPositionLocked(0)
		return
	}
	s.startLoadLocked(*s.current)
}

// watchFinished advances the queue when a source plays to its natural
// end. Speech completion is deliberately equivalent to track end.
func (s *serviceImpl) watchFinished() {
	for {
		select {
		case <-s.done:
			return
		case <-s.res.Output().FinishedChan():
			s.handleFinished()
		case <-s.res.Synth().FinishedChan():
			s.handleFinished()
		}
	}
}

func (s *serviceImpl) handleFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.isLoading {
		return
	}
	s.activeUtterance = nil
	s.nextLocked()
}

// --- Locked helpers ---

func (s *serviceImpl) isPlayingLocked() bool {
	return s.res.Output().State() == output.Playing || s.res.Synth().Speaking()
}

func (s *serviceImpl) durationLocked() time.Duration {
	if d := s.res.Output().Duration(); d > 0 {
		return d
	}
	if s.current != nil {
		return s.current.Duration
	}
	return 0
}

func (s *serviceImpl) indexOfLocked(id string) int {
	for i, tr := range s.queue.Tracks() {
		if tr.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked schedules a best-effort snapshot write. Never blocks
// playback; the store debounces and swallows failures.
func (s *serviceImpl) persistLocked() {
	if s.store == nil {
		return
	}
	snap := store.Snapshot{
		Position:     s.res.Output().Position(),
		Volume:       s.res.Output().Volume(),
		PlaybackRate: s.res.Output().Rate(),
		RepeatMode:   int(s.queue.RepeatMode()),
		Shuffle:      s.queue.Shuffle(),
		Muted:        s.res.Output().Muted(),
		QueueIndex:   s.queue.Index(),
	}
	if s.current != nil {
		snap.CurrentTrackID = s.current.ID
	}
	for _, tr := range s.queue.Tracks() {
		snap.QueueIDs = append(snap.QueueIDs, tr.ID)
	}
	s.store.SaveSnapshot(snap)
}

// --- Event fan-out ---

func (s *serviceImpl) sendStateLocked() {
	e := StateChange{IsPlaying: s.isPlayingLocked(), IsLoading: s.isLoading}
	s.eachSub(func(sub *Subscription) { sub.sendState(e) })
}

func (s *serviceImpl) sendTrackLocked(e TrackChange) {
	s.eachSub(func(sub *Subscription) { sub.sendTrack(e) })
}

func (s *serviceImpl) sendQueueLocked() {
	e := QueueChange{Tracks: s.queue.Tracks(), Index: s.queue.Index()}
	s.eachSub(func(sub *Subscription) { sub.sendQueue(e) })
}

func (s *serviceImpl) sendModeLocked() {
	e := ModeChange{
		RepeatMode:   s.queue.RepeatMode(),
		Shuffle:      s.queue.Shuffle(),
		Volume:       s.res.Output().Volume(),
		PlaybackRate: s.res.Output().Rate(),
		Muted:        s.res.Output().Muted(),
	}
	s.eachSub(func(sub *Subscription) { sub.sendMode(e) })
}

func (s *serviceImpl) sendPositionLocked(pos time.Duration) {
	e := PositionChange{Position: pos}
	s.eachSub(func(sub *Subscription) { sub.sendPosition(e) })
}

func (s *serviceImpl) sendErrorLocked(e ErrorEvent) {
	s.eachSub(func(sub *Subscription) { sub.sendError(e) })
}

func (s *serviceImpl) eachSub(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}
