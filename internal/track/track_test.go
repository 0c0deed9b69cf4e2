package track

import "testing"

func TestHasVoiceFallback(t *testing.T) {
	tests := []struct {
		name     string
		tr       Track
		expected bool
	}{
		{
			name:     "no voice meta",
			tr:       Track{ID: "a", Source: SourceAPIGenerated},
			expected: false,
		},
		{
			name:     "voice meta with text",
			tr:       Track{ID: "a", Source: SourceAPIGenerated, Voice: &VoiceMeta{Text: "hello", Language: "en-US"}},
			expected: true,
		},
		{
			name:     "voice meta with empty text",
			tr:       Track{ID: "a", Source: SourceAPIGenerated, Voice: &VoiceMeta{Language: "en-US"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.HasVoiceFallback(); got != tt.expected {
				t.Errorf("HasVoiceFallback() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		source   SourceType
		expected bool
	}{
		{SourceBuiltIn, true},
		{SourceUpload, true},
		{SourceRemote, false},
		{SourceAPIGenerated, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.source), func(t *testing.T) {
			tr := Track{ID: "a", Source: tt.source}
			if got := tr.IsLocal(); got != tt.expected {
				t.Errorf("IsLocal() = %v, want %v", got, tt.expected)
			}
		})
	}
}
