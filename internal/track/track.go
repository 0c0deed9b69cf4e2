// Package track defines the immutable track descriptor shared by the
// queue, resolver and persistence layers.
package track

import "time"

// SourceType identifies where a track's audio comes from, which in turn
// selects the playback strategy used by the resolver.
type SourceType string

const (
	// SourceBuiltIn is audio bundled with the application.
	SourceBuiltIn SourceType = "builtin"
	// SourceRemote is audio streamed from a CDN URL.
	SourceRemote SourceType = "remote"
	// SourceUpload is user-uploaded audio stored in the local blob store.
	SourceUpload SourceType = "upload"
	// SourceAPIGenerated is audio produced on demand by the backend voice
	// endpoint. The endpoint may legitimately answer with a non-audio
	// fallback payload instead.
	SourceAPIGenerated SourceType = "api"
)

// VoiceMeta carries the data needed to synthesize a track on-device when
// the voice endpoint cannot supply streamable audio. Only apiGenerated
// tracks carry it.
type VoiceMeta struct {
	Text     string
	Language string  // BCP 47 tag, e.g. "en-US"
	Rate     float64 // 1.0 = normal
	Pitch    float64 // 1.0 = normal
}

// Track describes a playable unit and where to obtain its audio.
// Tracks are value types; nothing in the engine mutates one after creation.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Source   SourceType
	Location string // URL, or a blob-store key for uploads
	Duration time.Duration
	Tags     []string
	Created  time.Time

	Voice *VoiceMeta // apiGenerated only, may be nil
}

// HasVoiceFallback reports whether the track can be synthesized on-device.
func (t Track) HasVoiceFallback() bool {
	return t.Voice != nil && t.Voice.Text != ""
}

// IsLocal reports whether the track's audio lives on the local machine.
func (t Track) IsLocal() bool {
	return t.Source == SourceBuiltIn || t.Source == SourceUpload
}
