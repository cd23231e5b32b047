package chat

import (
	"strings"
	"testing"
)

func TestFormatWithSpeaker(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		speaker  string
		expected string
	}{
		{
			name:     "adds speaker prefix to plain message",
			message:  "I appreciate you taking the time.",
			speaker:  "Player",
			expected: "Player: I appreciate you taking the time.",
		},
		{
			name:     "preserves existing speaker prefix",
			message:  "Narrator: Elena sets down her pen.",
			speaker:  "Player",
			expected: "Narrator: Elena sets down her pen.",
		},
		{
			name:     "preserves colon in sentence (acceptable false positive)",
			message:  "I look at the letter: it is sealed.",
			speaker:  "Player",
			expected: "I look at the letter: it is sealed.",
		},
		{
			name:     "handles empty message",
			message:  "",
			speaker:  "Elena",
			expected: "Elena: ",
		},
		{
			name:     "handles very long potential speaker name (over 50 chars)",
			message:  "This is a really really really really really long name: message",
			speaker:  "Marcus",
			expected: "Marcus: This is a really really really really really long name: message",
		},
		{
			name:     "keeps speaker names with spaces",
			message:  "Captain Viktor: Stand aside.",
			speaker:  "Player",
			expected: "Captain Viktor: Stand aside.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWithSpeaker(tt.message, tt.speaker)
			if result != tt.expected {
				t.Errorf("FormatWithSpeaker(%q, %q) = %q; want %q",
					tt.message, tt.speaker, result, tt.expected)
			}
		})
	}
}

func TestTranscript(t *testing.T) {
	got := Transcript([]string{"a", "b"})
	if got != "a\nb" {
		t.Errorf("unexpected transcript %q", got)
	}
	if strings.Contains(Transcript(nil), "\n") {
		t.Error("empty transcript should have no newlines")
	}
}
