package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/rs/zerolog/log"

	dbutil "github.com/mbaylis/sutra/internal/db"
	"github.com/mbaylis/sutra/internal/track"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// UploadedTrackMeta describes a user-uploaded track. It is co-owned with
// the blob stored under the same id; deleting one without the other is a
// defect.
type UploadedTrackMeta struct {
	ID        string
	Filename  string
	Size      int64
	MimeType  string
	Title     string
	Artist    string
	Duration  time.Duration
	CreatedAt time.Time
}

// UploadTrack is the composite upload operation: generate an id, store
// the blob, probe metadata and duration (non-fatally), store the meta
// record, and return an upload-sourced track descriptor.
func (m *Manager) UploadTrack(filename, mimeType string, data []byte) (track.Track, error) {
	meta := UploadedTrackMeta{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		CreatedAt: time.Now(),
	}

	// Neither probe failing blocks the upload.
	if md, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		meta.Title = md.Title()
		meta.Artist = md.Artist()
	} else {
		log.Debug().Err(err).Str("filename", filename).Msg("no readable tags in upload")
	}
	if d, err := probeDuration(data); err == nil {
		meta.Duration = d
	} else {
		log.Debug().Err(err).Str("filename", filename).Msg("could not probe upload duration")
	}
	if meta.Title == "" {
		meta.Title = filename
	}

	if err := m.SaveAudioBlob(meta.ID, data); err != nil {
		return track.Track{}, fmt.Errorf("store upload blob: %w", err)
	}
	if err := m.SaveTrackMeta(meta); err != nil {
		// Keep the pair consistent: roll the blob back.
		_ = m.DeleteAudioBlob(meta.ID)
		return track.Track{}, fmt.Errorf("store upload meta: %w", err)
	}

	return metaToTrack(meta), nil
}

// DeleteUploadedTrack removes the metadata and the blob together in one
// transaction, and drops any cached blob file.
func (m *Manager) DeleteUploadedTrack(id string) error {
	err := dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM uploaded_tracks WHERE id = ?`, id); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM audio_blobs WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return err
	}
	if err := os.Remove(m.blobCachePath(id)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("id", id).Msg("failed to remove cached blob file")
	}
	return nil
}

// SaveTrackMeta stores an uploaded track's metadata record.
func (m *Manager) SaveTrackMeta(meta UploadedTrackMeta) error {
	_, err := m.db.Exec(`
		INSERT INTO uploaded_tracks (id, filename, size, mime_type, title, artist, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			size = excluded.size,
			mime_type = excluded.mime_type,
			title = excluded.title,
			artist = excluded.artist,
			duration_ms = excluded.duration_ms
	`, meta.ID, meta.Filename, meta.Size, meta.MimeType, meta.Title, meta.Artist,
		meta.Duration.Milliseconds(), meta.CreatedAt.Unix())
	return err
}

// GetTrackMeta returns the metadata record for an uploaded track.
func (m *Manager) GetTrackMeta(id string) (*UploadedTrackMeta, error) {
	row := m.db.QueryRow(`
		SELECT id, filename, size, mime_type, title, artist, duration_ms, created_at
		FROM uploaded_tracks WHERE id = ?
	`, id)
	meta, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// AllUploadedTracks returns all uploaded tracks ordered by creation time.
func (m *Manager) AllUploadedTracks() ([]track.Track, error) {
	rows, err := m.db.Query(`
		SELECT id, filename, size, mime_type, title, artist, duration_ms, created_at
		FROM uploaded_tracks ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []track.Track
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, metaToTrack(*meta))
	}
	return tracks, rows.Err()
}

// SaveAudioBlob stores the raw audio payload for an uploaded track.
func (m *Manager) SaveAudioBlob(id string, data []byte) error {
	_, err := m.db.Exec(`
		INSERT INTO audio_blobs (id, data) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, id, data)
	return err
}

// GetAudioBlob returns the raw audio payload.
func (m *Manager) GetAudioBlob(id string) ([]byte, error) {
	var data []byte
	err := m.db.QueryRow(`SELECT data FROM audio_blobs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteAudioBlob removes the raw audio payload.
func (m *Manager) DeleteAudioBlob(id string) error {
	_, err := m.db.Exec(`DELETE FROM audio_blobs WHERE id = ?`, id)
	return err
}

// BlobPath materializes the blob to a cache file and returns its path,
// for playback through the output handle.
func (m *Manager) BlobPath(id string) (string, error) {
	path := m.blobCachePath(id)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	data, err := m.GetAudioBlob(id)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (m *Manager) blobCachePath(id string) string {
	return filepath.Join(m.cacheDir, id+".audio")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeta(row rowScanner) (*UploadedTrackMeta, error) {
	var meta UploadedTrackMeta
	var title, artist sql.NullString
	var durationMs sql.NullInt64
	var createdAt int64

	err := row.Scan(&meta.ID, &meta.Filename, &meta.Size, &meta.MimeType,
		&title, &artist, &durationMs, &createdAt)
	if err != nil {
		return nil, err
	}
	meta.Title = dbutil.NullStringValue(title)
	meta.Artist = dbutil.NullStringValue(artist)
	meta.Duration = time.Duration(dbutil.NullInt64Value(durationMs)) * time.Millisecond
	meta.CreatedAt = time.Unix(createdAt, 0)
	return &meta, nil
}

func metaToTrack(meta UploadedTrackMeta) track.Track {
	return track.Track{
		ID:       meta.ID,
		Title:    meta.Title,
		Artist:   meta.Artist,
		Source:   track.SourceUpload,
		Location: meta.ID, // blob-store key
		Duration: meta.Duration,
		Created:  meta.CreatedAt,
	}
}

// probeDuration decodes the payload as mp3 to measure its length.
func probeDuration(data []byte) (time.Duration, error) {
	streamer, format, err := mp3.Decode(nopSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
