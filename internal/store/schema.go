package store

import "database/sql"

const currentSchemaVersion = 1

// initSchema creates the four logical namespaces: the player snapshot,
// uploaded track metadata, audio blobs, and playlists. A version mismatch
// is treated as "no persisted state": the tables are rebuilt empty rather
// than failing startup.
func initSchema(db *sql.DB) error {
	version, err := readSchemaVersion(db)
	if err != nil {
		return err
	}
	if version != 0 && version != currentSchemaVersion {
		if err := dropAll(db); err != nil {
			return err
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS player_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_track_id TEXT,
			position_ms INTEGER NOT NULL DEFAULT 0,
			volume REAL NOT NULL DEFAULT 1.0,
			playback_rate REAL NOT NULL DEFAULT 1.0,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0,
			muted INTEGER NOT NULL DEFAULT 0,
			queue_index INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS snapshot_queue (
			position INTEGER PRIMARY KEY,
			track_id TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS uploaded_tracks (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			size INTEGER NOT NULL,
			mime_type TEXT NOT NULL,
			title TEXT,
			artist TEXT,
			duration_ms INTEGER,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_uploaded_tracks_created ON uploaded_tracks(created_at);

		CREATE TABLE IF NOT EXISTS audio_blobs (
			id TEXT PRIMARY KEY,
			data BLOB NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_playlists_created ON playlists(created_at);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			UNIQUE(playlist_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}

// readSchemaVersion returns 0 when the version table does not exist yet.
func readSchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'
	`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func dropAll(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS schema_version;
		DROP TABLE IF EXISTS player_state;
		DROP TABLE IF EXISTS snapshot_queue;
		DROP TABLE IF EXISTS uploaded_tracks;
		DROP TABLE IF EXISTS audio_blobs;
		DROP TABLE IF EXISTS playlists;
		DROP TABLE IF EXISTS playlist_tracks;
	`)
	return err
}
