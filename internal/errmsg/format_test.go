//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "upload operation",
			op:       OpUploadStore,
			err:      errors.New("disk full"),
			expected: "Failed to store uploaded track: disk full",
		},
		{
			name:     "playlist operation",
			op:       OpPlaylistCreate,
			err:      errors.New("already exists"),
			expected: "Failed to create playlist: already exists",
		},
		{
			name:     "persistence operation",
			op:       OpStateSave,
			err:      errors.New("database is locked"),
			expected: "Failed to save player state: database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpUploadDelete,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpUploadDelete,
			context:  "song.mp3",
			err:      errors.New("not found"),
			expected: "Failed to delete uploaded track 'song.mp3': not found",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpUploadDelete,
			context:  "",
			err:      errors.New("not found"),
			expected: "Failed to delete uploaded track: not found",
		},
		{
			name:     "playlist delete with name context",
			op:       OpPlaylistDelete,
			context:  "Morning",
			err:      errors.New("database is locked"),
			expected: "Failed to delete playlist 'Morning': database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpPlaybackStart, OpPlaybackSeek,
		OpQueueLoad, OpQueueSave, OpQueueAdd,
		OpUploadStore, OpUploadDelete, OpUploadRead,
		OpPlaylistCreate, OpPlaylistDelete, OpPlaylistLoad,
		OpStateSave, OpStateRestore,
		OpSpeechStart,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
