// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Queue operations
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"
	OpQueueAdd  Op = "add to queue"

	// Upload operations
	OpUploadStore  Op = "store uploaded track"
	OpUploadDelete Op = "delete uploaded track"
	OpUploadRead   Op = "read uploaded audio"

	// Playlist operations
	OpPlaylistCreate Op = "create playlist"
	OpPlaylistDelete Op = "delete playlist"
	OpPlaylistLoad   Op = "load playlists"

	// Persistence operations
	OpStateSave    Op = "save player state"
	OpStateRestore Op = "restore player state"

	// Speech operations
	OpSpeechStart Op = "start speech synthesis"

	// Initialization
	OpInitialize Op = "initialize player"
)

// Fixed user-facing messages for conditions that are states rather than
// wrapped errors.
const (
	// SpeechUnavailable is surfaced when a voice fallback exists but no
	// synthesis engine is usable on this machine.
	SpeechUnavailable = "this device cannot synthesize speech"

	// SystemicFailure is surfaced when consecutive failures cross the
	// breaker threshold and auto-skip is halted.
	SystemicFailure = "playback keeps failing; check your connection and retry"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
