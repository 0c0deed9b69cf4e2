// Package resolver selects and prepares the playback strategy for a
// track based on its source type, cascading through fallbacks for voice
// tracks whose endpoint cannot supply audio.
package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mbaylis/sutra/internal/speech"
	"github.com/mbaylis/sutra/internal/track"
)

// DefaultFetchTimeout bounds the voice endpoint pre-fetch.
const DefaultFetchTimeout = 15 * time.Second

// Strategy identifies how a resolved track should be played.
type Strategy int

const (
	// StrategyDirect plays a local file through the output handle.
	StrategyDirect Strategy = iota
	// StrategyBuffered plays a fetched transient buffer through the
	// output handle. The caller owns releasing the buffer.
	StrategyBuffered
	// StrategySpeech synthesizes the track's voice metadata on-device.
	StrategySpeech
	// StrategyUnavailable means no strategy can play the track.
	StrategyUnavailable
)

// Outcome is the result of resolving a track.
type Outcome struct {
	Strategy  Strategy
	Path      string            // file to load (Direct, Buffered)
	Utterance *speech.Utterance // what to speak (Speech)
	Reason    string            // missing capability, user-facing (Unavailable)
}

// FetchKind tags the result of a voice endpoint pre-fetch.
type FetchKind int

const (
	// FetchAudio means the endpoint returned a binary audio payload.
	FetchAudio FetchKind = iota
	// FetchFallback means the endpoint answered with a non-audio payload
	// signaling "no audio available, use the embedded text".
	FetchFallback
	// FetchNetworkError covers transport failures and timeouts.
	FetchNetworkError
)

// FetchResult is the tagged outcome of a pre-fetch. The resolver branches
// on Kind, never on payload size.
type FetchResult struct {
	Kind FetchKind
	Data []byte // audio payload, FetchAudio only
	Err  error  // FetchNetworkError only
}

// BlobResolver materializes an uploaded track's blob to a playable file.
type BlobResolver interface {
	BlobPath(id string) (string, error)
}

// Resolver selects playback strategies. Safe for use from the playback
// service's load goroutines; it holds no mutable state of its own.
type Resolver struct {
	client    *http.Client
	timeout   time.Duration
	bufferDir string
	blobs     BlobResolver
	speechOK  func() bool
}

// New creates a resolver. bufferDir receives transient buffer files;
// speechOK reports whether on-device synthesis is available.
func New(blobs BlobResolver, bufferDir string, speechOK func() bool) *Resolver {
	return &Resolver{
		client:    &http.Client{},
		timeout:   DefaultFetchTimeout,
		bufferDir: bufferDir,
		blobs:     blobs,
		speechOK:  speechOK,
	}
}

// SetFetchTimeout overrides the pre-fetch timeout.
func (r *Resolver) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Resolve determines how to play the track. Per-track failures are
// absorbed here: the returned outcome is always usable, with
// StrategyUnavailable carrying a plain-language reason.
func (r *Resolver) Resolve(ctx context.Context, tr track.Track) Outcome {
	switch tr.Source {
	case track.SourceBuiltIn:
		return Outcome{Strategy: StrategyDirect, Path: tr.Location}

	case track.SourceUpload:
		path, err := r.blobs.BlobPath(tr.Location)
		if err != nil {
			log.Warn().Err(err).Str("track", tr.ID).Msg("uploaded audio missing")
			return Outcome{Strategy: StrategyUnavailable, Reason: "the uploaded audio file is no longer available"}
		}
		return Outcome{Strategy: StrategyDirect, Path: path}

	case track.SourceRemote:
		res := r.Prefetch(ctx, tr.Location)
		if res.Kind != FetchAudio {
			return Outcome{Strategy: StrategyUnavailable, Reason: "the audio stream could not be reached"}
		}
		path, err := r.materialize(res.Data)
		if err != nil {
			return Outcome{Strategy: StrategyUnavailable, Reason: "the audio stream could not be saved locally"}
		}
		return Outcome{Strategy: StrategyBuffered, Path: path}

	case track.SourceAPIGenerated:
		return r.resolveVoice(ctx, tr)

	default:
		return Outcome{Strategy: StrategyUnavailable, Reason: fmt.Sprintf("unknown track source %q", tr.Source)}
	}
}

// resolveVoice runs the two-phase cascade for voice tracks: endpoint
// audio first, then on-device synthesis. A non-audio payload must never
// reach the output handle.
func (r *Resolver) resolveVoice(ctx context.Context, tr track.Track) Outcome {
	res := r.Prefetch(ctx, tr.Location)

	if res.Kind == FetchAudio {
		path, err := r.materialize(res.Data)
		if err == nil {
			return Outcome{Strategy: StrategyBuffered, Path: path}
		}
		log.Warn().Err(err).Str("track", tr.ID).Msg("failed to buffer voice audio, trying speech")
	} else {
		log.Debug().Str("track", tr.ID).Int("kind", int(res.Kind)).Msg("voice endpoint returned no audio")
	}

	if tr.HasVoiceFallback() {
		if !r.speechOK() {
			return Outcome{Strategy: StrategyUnavailable, Reason: "this device cannot synthesize speech"}
		}
		return Outcome{
			Strategy: StrategySpeech,
			Utterance: &speech.Utterance{
				Text:     tr.Voice.Text,
				Language: tr.Voice.Language,
				Rate:     tr.Voice.Rate,
				Pitch:    tr.Voice.Pitch,
			},
		}
	}

	if res.Kind == FetchNetworkError {
		return Outcome{Strategy: StrategyUnavailable, Reason: "the voice service could not be reached"}
	}
	return Outcome{Strategy: StrategyUnavailable, Reason: "no audio is available for this track"}
}

// Prefetch fetches the endpoint with a bounded timeout and tags the
// response by content type.
func (r *Resolver) Prefetch(ctx context.Context, url string) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{Kind: FetchNetworkError, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return FetchResult{Kind: FetchNetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{Kind: FetchNetworkError, Err: fmt.Errorf("endpoint returned %s", resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAudioContentType(contentType) {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return FetchResult{Kind: FetchFallback}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{Kind: FetchNetworkError, Err: err}
	}
	return FetchResult{Kind: FetchAudio, Data: data}
}

// materialize writes fetched audio to a transient buffer file.
func (r *Resolver) materialize(data []byte) (string, error) {
	f, err := os.CreateTemp(r.bufferDir, "sutra-buffer-*.mp3")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func isAudioContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "audio/")
}
