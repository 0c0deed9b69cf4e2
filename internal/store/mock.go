package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mbaylis/sutra/internal/track"
)

// Mock is an in-memory test double for the store.
type Mock struct {
	mu sync.Mutex

	snapshot  *Snapshot
	saveCount int

	meta  map[string]UploadedTrackMeta
	blobs map[string][]byte
	lists map[string]Playlist

	closed bool
}

// NewMock creates a new mock store for testing.
func NewMock() *Mock {
	return &Mock{
		meta:  make(map[string]UploadedTrackMeta),
		blobs: make(map[string][]byte),
		lists: make(map[string]Playlist),
	}
}

func (m *Mock) SaveSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = &s
	m.saveCount++
}

func (m *Mock) GetSnapshot() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, nil
	}
	s := *m.snapshot
	return &s, nil
}

func (m *Mock) UploadTrack(filename, mimeType string, data []byte) (track.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := UploadedTrackMeta{
		ID:        uuid.NewString(),
		Filename:  filename,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		Title:     filename,
		CreatedAt: time.Now(),
	}
	m.blobs[meta.ID] = data
	m.meta[meta.ID] = meta
	return metaToTrack(meta), nil
}

func (m *Mock) DeleteUploadedTrack(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.meta, id)
	delete(m.blobs, id)
	return nil
}

func (m *Mock) SaveTrackMeta(meta UploadedTrackMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[meta.ID] = meta
	return nil
}

func (m *Mock) GetTrackMeta(id string) (*UploadedTrackMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.meta[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &meta, nil
}

func (m *Mock) AllUploadedTracks() ([]track.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tracks []track.Track
	for _, meta := range m.meta {
		tracks = append(tracks, metaToTrack(meta))
	}
	return tracks, nil
}

func (m *Mock) SaveAudioBlob(id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[id] = data
	return nil
}

func (m *Mock) GetAudioBlob(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *Mock) DeleteAudioBlob(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

func (m *Mock) BlobPath(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return "", ErrNotFound
	}
	return "/mock/blobs/" + id, nil
}

func (m *Mock) SavePlaylist(p Playlist) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.lists[p.ID] = p
	return p.ID, nil
}

func (m *Mock) GetPlaylist(id string) (*Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Mock) AllPlaylists() ([]Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Playlist
	for _, p := range m.lists {
		out = append(out, p)
	}
	return out, nil
}

func (m *Mock) DeletePlaylist(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, id)
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSnapshot(s *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = s
}

func (m *Mock) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCount
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
