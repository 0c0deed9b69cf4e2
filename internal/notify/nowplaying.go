package notify

import (
	"github.com/mbaylis/sutra/internal/playback"
)

// Watcher posts a desktop notification whenever playback moves to a new
// track. Each track change replaces the previous notification instead of
// stacking.
type Watcher struct {
	notifier Notifier
	sub      *playback.Subscription
	lastID   uint32
	done     chan struct{}
}

// Watch subscribes to the playback service and starts posting
// notifications. Degrades to a no-op when D-Bus is unavailable.
func Watch(svc playback.Service) *Watcher {
	notifier, _ := New()
	w := &Watcher{
		notifier: notifier,
		sub:      svc.Subscribe(),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.sub.Done:
			return
		case e := <-w.sub.TrackChanged:
			if e.Current == nil {
				continue
			}
			id, err := w.notifier.Notify(Notification{
				Title:      e.Current.Title,
				Body:       e.Current.Artist,
				Timeout:    5000,
				ReplacesID: w.lastID,
				Urgency:    UrgencyLow,
			})
			if err == nil && id != 0 {
				w.lastID = id
			}
		case e := <-w.sub.Error:
			urgency := UrgencyNormal
			if e.Systemic {
				urgency = UrgencyCritical
			}
			_, _ = w.notifier.Notify(Notification{
				Title:   "Playback problem",
				Body:    e.Message,
				Timeout: 8000,
				Urgency: urgency,
			})
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
}
