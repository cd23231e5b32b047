package chat

import (
	"strings"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // NPC
	ChatRoleSystem = "system"    // Narrator or system
)

// maxSpeakerLength bounds what counts as a "Name:" prefix.
const maxSpeakerLength = 50

// ChatMessage represents a single message sent to an LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the text an LLM produced.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

// FormatWithSpeaker prefixes message with "speaker: " unless it already
// starts with a speaker label.
func FormatWithSpeaker(message, speaker string) string {
	if idx := strings.Index(message, ":"); idx > 0 && idx <= maxSpeakerLength {
		return message
	}
	return speaker + ": " + message
}

// Transcript joins lines into a single block, one line per entry.
func Transcript(lines []string) string {
	return strings.Join(lines, "\n")
}
