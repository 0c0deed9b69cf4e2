package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/mbaylis/sutra/internal/availability"
	"github.com/mbaylis/sutra/internal/config"
	"github.com/mbaylis/sutra/internal/logger"
	"github.com/mbaylis/sutra/internal/mpris"
	"github.com/mbaylis/sutra/internal/notify"
	"github.com/mbaylis/sutra/internal/output"
	"github.com/mbaylis/sutra/internal/playback"
	"github.com/mbaylis/sutra/internal/queue"
	"github.com/mbaylis/sutra/internal/resolver"
	"github.com/mbaylis/sutra/internal/resources"
	"github.com/mbaylis/sutra/internal/speech"
	"github.com/mbaylis/sutra/internal/store"
	"github.com/mbaylis/sutra/internal/track"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel(), File: cfg.Log.File}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	dev := output.NewDevice()
	synth := speech.NewEngine(cfg.SpeechBinary())
	if !synth.Available() {
		log.Warn().Str("binary", cfg.SpeechBinary()).Msg("speech synthesis unavailable, voice fallback disabled")
	}
	res := resources.NewManager(dev, synth)

	rslv := resolver.New(st, st.CacheDir(), synth.Available)
	rslv.SetFetchTimeout(cfg.FetchTimeout())

	avail := availability.New(cfg.GetPlaybackConfig().FailureThreshold)

	svc := playback.New(res, queue.New(), rslv, avail, st,
		playback.WithSkipGrace(cfg.SkipGrace()))
	defer svc.Close()

	restoreSession(svc, st)

	adapter, err := mpris.New(svc)
	if err != nil {
		log.Warn().Err(err).Msg("media controls unavailable")
	} else {
		defer adapter.Close()
	}

	watcher := notify.Watch(svc)
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("sutra ready")
	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

func openStore(cfg *config.Config) (*store.Manager, error) {
	if cfg.DataDir == "" {
		return store.OpenDefault()
	}
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(cfg.DataDir, "blobs")
	}
	return store.Open(filepath.Join(cfg.DataDir, "sutra.db"), cacheDir)
}

// restoreSession rebuilds the previous session from the persisted
// snapshot. Missing or stale track ids are skipped; with no snapshot the
// uploaded tracks become the initial queue so media keys have something
// to play.
func restoreSession(svc playback.Service, st *store.Manager) {
	uploads, err := st.AllUploadedTracks()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load uploaded tracks")
	}
	catalog := make(map[string]track.Track, len(uploads))
	for _, tr := range uploads {
		catalog[tr.ID] = tr
	}

	snap, err := st.GetSnapshot()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted state")
		snap = nil
	}
	if snap != nil {
		svc.Restore(snap, func(id string) (track.Track, bool) {
			tr, ok := catalog[id]
			return tr, ok
		})
		return
	}
	if len(uploads) > 0 {
		svc.ReplaceQueue(uploads...)
	}
}
