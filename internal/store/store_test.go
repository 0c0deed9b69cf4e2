package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mbaylis/sutra/internal/track"
)

func openTestStore(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sutra.db")
	m, err := Open(dbPath, filepath.Join(dir, "blobs"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, dbPath
}

func TestGetSnapshot_EmptyStore(t *testing.T) {
	m, _ := openTestStore(t)

	s, err := m.GetSnapshot()

	require.NoError(t, err)
	require.Nil(t, s)
}

func TestSnapshot_ReadAfterWrite(t *testing.T) {
	m, _ := openTestStore(t)

	want := Snapshot{
		CurrentTrackID: "t1",
		Position:       42 * time.Second,
		Volume:         0.7,
		PlaybackRate:   1.25,
		RepeatMode:     2,
		Shuffle:        true,
		Muted:          false,
		QueueIDs:       []string{"t1", "t2", "t3"},
		QueueIndex:     1,
	}
	m.SaveSnapshot(want)

	got, err := m.GetSnapshot()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, want.Volume, got.Volume)
	require.Equal(t, want.PlaybackRate, got.PlaybackRate)
	require.Equal(t, want.RepeatMode, got.RepeatMode)
	require.Equal(t, want.Shuffle, got.Shuffle)
	require.Equal(t, want.QueueIDs, got.QueueIDs)
	require.Equal(t, want.QueueIndex, got.QueueIndex)
}

func TestSnapshot_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sutra.db")
	cacheDir := filepath.Join(dir, "blobs")

	m, err := Open(dbPath, cacheDir)
	require.NoError(t, err)
	m.SaveSnapshot(Snapshot{CurrentTrackID: "t9", Volume: 0.4, PlaybackRate: 1.5})
	// Close flushes the pending debounced write.
	require.NoError(t, m.Close())

	m2, err := Open(dbPath, cacheDir)
	require.NoError(t, err)
	defer m2.Close()

	got, err := m2.GetSnapshot()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "t9", got.CurrentTrackID)
	require.Equal(t, 0.4, got.Volume)
	require.Equal(t, 1.5, got.PlaybackRate)
}

func TestSchemaVersionMismatch_TreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sutra.db")
	cacheDir := filepath.Join(dir, "blobs")

	m, err := Open(dbPath, cacheDir)
	require.NoError(t, err)
	m.SaveSnapshot(Snapshot{CurrentTrackID: "old", Volume: 0.9})
	_, err = m.DB().Exec(`UPDATE schema_version SET version = 99`)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m2, err := Open(dbPath, cacheDir)
	require.NoError(t, err)
	defer m2.Close()

	got, err := m2.GetSnapshot()
	require.NoError(t, err)
	require.Nil(t, got, "version mismatch should read as no persisted state")
}

func TestUploadTrack_StoresMetaAndBlob(t *testing.T) {
	m, _ := openTestStore(t)

	// Not valid mp3: both probes fail non-fatally.
	tr, err := m.UploadTrack("chant.mp3", "audio/mpeg", []byte("not-really-mp3"))
	require.NoError(t, err)
	require.Equal(t, track.SourceUpload, tr.Source)
	require.NotEmpty(t, tr.ID)
	require.Equal(t, tr.ID, tr.Location)
	require.Equal(t, "chant.mp3", tr.Title)

	meta, err := m.GetTrackMeta(tr.ID)
	require.NoError(t, err)
	require.Equal(t, int64(14), meta.Size)
	require.Equal(t, "audio/mpeg", meta.MimeType)

	data, err := m.GetAudioBlob(tr.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("not-really-mp3"), data)
}

func TestDeleteUploadedTrack_RemovesBothRecords(t *testing.T) {
	m, _ := openTestStore(t)

	tr, err := m.UploadTrack("a.mp3", "audio/mpeg", []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, m.DeleteUploadedTrack(tr.ID))

	_, err = m.GetTrackMeta(tr.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetAudioBlob(tr.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBlobPath_MaterializesFile(t *testing.T) {
	m, _ := openTestStore(t)

	tr, err := m.UploadTrack("a.mp3", "audio/mpeg", []byte("payload"))
	require.NoError(t, err)

	path, err := m.BlobPath(tr.ID)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	// Second call reuses the cached file.
	again, err := m.BlobPath(tr.ID)
	require.NoError(t, err)
	require.Equal(t, path, again)
}

func TestBlobPath_MissingBlob(t *testing.T) {
	m, _ := openTestStore(t)

	_, err := m.BlobPath("nope")

	require.ErrorIs(t, err, ErrNotFound)
}

func TestAllUploadedTracks_OrderedByCreation(t *testing.T) {
	m, _ := openTestStore(t)

	first := UploadedTrackMeta{ID: "u1", Filename: "one.mp3", MimeType: "audio/mpeg", Title: "one", CreatedAt: time.Unix(100, 0)}
	second := UploadedTrackMeta{ID: "u2", Filename: "two.mp3", MimeType: "audio/mpeg", Title: "two", CreatedAt: time.Unix(200, 0)}
	require.NoError(t, m.SaveTrackMeta(second))
	require.NoError(t, m.SaveTrackMeta(first))

	tracks, err := m.AllUploadedTracks()
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	require.Equal(t, "u1", tracks[0].ID)
	require.Equal(t, "u2", tracks[1].ID)
}

func TestPlaylists_CRUD(t *testing.T) {
	m, _ := openTestStore(t)

	id, err := m.SavePlaylist(Playlist{Name: "Morning", TrackIDs: []string{"a", "b", "c"}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := m.GetPlaylist(id)
	require.NoError(t, err)
	require.Equal(t, "Morning", got.Name)
	require.Equal(t, []string{"a", "b", "c"}, got.TrackIDs)

	// Re-save replaces the track list.
	got.TrackIDs = []string{"c", "a"}
	_, err = m.SavePlaylist(*got)
	require.NoError(t, err)
	got, err = m.GetPlaylist(id)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a"}, got.TrackIDs)

	all, err := m.AllPlaylists()
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, m.DeletePlaylist(id))
	_, err = m.GetPlaylist(id)
	require.ErrorIs(t, err, ErrNotFound)
}
