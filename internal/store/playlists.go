package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	dbutil "github.com/mbaylis/sutra/internal/db"
)

// Playlist is a user-defined ordering of track ids.
type Playlist struct {
	ID        string
	Name      string
	TrackIDs  []string
	CreatedAt time.Time
}

// SavePlaylist stores a playlist, assigning an id if it has none.
// Returns the saved playlist's id.
func (m *Manager) SavePlaylist(p Playlist) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	err := dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO playlists (id, name, created_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
		`, p.ID, p.Name, p.CreatedAt.Unix())
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, p.ID); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT INTO playlist_tracks (playlist_id, position, track_id) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, id := range p.TrackIDs {
			if _, err := stmt.Exec(p.ID, i, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// GetPlaylist returns a playlist by id.
func (m *Manager) GetPlaylist(id string) (*Playlist, error) {
	var p Playlist
	var createdAt int64
	err := m.db.QueryRow(`SELECT id, name, created_at FROM playlists WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(createdAt, 0)

	rows, err := m.db.Query(`
		SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var trackID string
		if err := rows.Scan(&trackID); err != nil {
			return nil, err
		}
		p.TrackIDs = append(p.TrackIDs, trackID)
	}
	return &p, rows.Err()
}

// AllPlaylists returns all playlists ordered by creation time, without
// their track lists.
func (m *Manager) AllPlaylists() ([]Playlist, error) {
	rows, err := m.db.Query(`SELECT id, name, created_at FROM playlists ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// DeletePlaylist removes a playlist and its track list.
func (m *Manager) DeletePlaylist(id string) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM playlists WHERE id = ?`, id)
		return err
	})
}
