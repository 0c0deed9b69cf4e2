package store

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/mbaylis/sutra/internal/db"
)

// Snapshot is the reduced projection of player state that is safe to
// store durably. It is a best-effort resume hint, not authoritative
// state: readers must tolerate stale or missing track ids.
type Snapshot struct {
	CurrentTrackID string
	Position       time.Duration
	Volume         float64
	PlaybackRate   float64
	RepeatMode     int
	Shuffle        bool
	Muted          bool
	QueueIDs       []string
	QueueIndex     int
}

func getSnapshot(db *sql.DB) (*Snapshot, error) {
	var s Snapshot
	var trackID sql.NullString
	var positionMs int64

	row := db.QueryRow(`
		SELECT current_track_id, position_ms, volume, playback_rate, repeat_mode, shuffle, muted, queue_index
		FROM player_state WHERE id = 1
	`)
	err := row.Scan(&trackID, &positionMs, &s.Volume, &s.PlaybackRate, &s.RepeatMode, &s.Shuffle, &s.Muted, &s.QueueIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CurrentTrackID = dbutil.NullStringValue(trackID)
	s.Position = time.Duration(positionMs) * time.Millisecond

	rows, err := db.Query(`SELECT track_id FROM snapshot_queue ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		s.QueueIDs = append(s.QueueIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}

func saveSnapshot(sqlDB *sql.DB, s Snapshot) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		var trackID any
		if s.CurrentTrackID != "" {
			trackID = s.CurrentTrackID
		}
		_, err := tx.Exec(`
			INSERT INTO player_state (id, current_track_id, position_ms, volume, playback_rate, repeat_mode, shuffle, muted, queue_index)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_track_id = excluded.current_track_id,
				position_ms = excluded.position_ms,
				volume = excluded.volume,
				playback_rate = excluded.playback_rate,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				muted = excluded.muted,
				queue_index = excluded.queue_index
		`, trackID, s.Position.Milliseconds(), s.Volume, s.PlaybackRate, s.RepeatMode, s.Shuffle, s.Muted, s.QueueIndex)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM snapshot_queue`); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT INTO snapshot_queue (position, track_id) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, id := range s.QueueIDs {
			if _, err := stmt.Exec(i, id); err != nil {
				return err
			}
		}
		return nil
	})
}
