package store

import "github.com/mbaylis/sutra/internal/track"

// Interface defines the persistence contract for dependency injection
// and testing.
type Interface interface {
	SaveSnapshot(s Snapshot)
	GetSnapshot() (*Snapshot, error)

	UploadTrack(filename, mimeType string, data []byte) (track.Track, error)
	DeleteUploadedTrack(id string) error
	SaveTrackMeta(meta UploadedTrackMeta) error
	GetTrackMeta(id string) (*UploadedTrackMeta, error)
	AllUploadedTracks() ([]track.Track, error)

	SaveAudioBlob(id string, data []byte) error
	GetAudioBlob(id string) ([]byte, error)
	DeleteAudioBlob(id string) error
	BlobPath(id string) (string, error)

	SavePlaylist(p Playlist) (string, error)
	GetPlaylist(id string) (*Playlist, error)
	AllPlaylists() ([]Playlist, error)
	DeletePlaylist(id string) error

	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
