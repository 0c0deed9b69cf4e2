// Package store is the durable persistence layer: the player settings
// snapshot, uploaded track metadata and blobs, and user playlists. All
// operations are best-effort; playback never depends on them succeeding.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "sutra"
	dbFileName   = "sutra.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the sqlite database and the blob cache directory.
type Manager struct {
	db       *sql.DB
	cacheDir string

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Snapshot
}

// Open opens (or creates) the database at dbPath, with cacheDir used to
// materialize blobs for playback.
func Open(dbPath, cacheDir string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db, cacheDir: cacheDir}, nil
}

// OpenDefault opens the database at the XDG data path.
func OpenDefault() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	cacheDir, err := xdg.CacheFile(filepath.Join(appName, "blobs"))
	if err != nil {
		return nil, err
	}
	return Open(dbPath, cacheDir)
}

// Close flushes any pending snapshot and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveSnapshot(m.db, *pending); err != nil {
			log.Warn().Err(err).Msg("failed to flush snapshot on close")
		}
	}

	return m.db.Close()
}

// DB exposes the underlying handle for tests.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// CacheDir returns the directory blobs are materialized into. Transient
// playback buffers share it so everything disposable lives in one place.
func (m *Manager) CacheDir() string {
	return m.cacheDir
}

// SaveSnapshot schedules a debounced, best-effort write of the settings
// snapshot. Failures are logged and swallowed.
func (m *Manager) SaveSnapshot(s Snapshot) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveSnapshot(m.db, *pending); err != nil {
				log.Warn().Err(err).Msg("failed to persist snapshot")
			}
		}
	})
}

// GetSnapshot returns the persisted settings snapshot, or nil if none has
// ever been written.
func (m *Manager) GetSnapshot() (*Snapshot, error) {
	// A scheduled-but-unwritten snapshot is the freshest state.
	m.saveMu.Lock()
	pending := m.pending
	m.saveMu.Unlock()
	if pending != nil {
		s := *pending
		return &s, nil
	}
	return getSnapshot(m.db)
}
