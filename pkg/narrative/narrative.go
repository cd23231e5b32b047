// Package narrative describes conversation turns in prose. The engine never
// depends on the prose: a failed or slow narrator falls back to a fixed
// description.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Snapshot is the read-only view of a turn handed to a narrator.
type Snapshot struct {
	NPCID          string   `json:"npc_id"`
	NPCName        string   `json:"npc_name"`
	NPCDescription string   `json:"npc_description,omitempty"`
	Personality    string   `json:"personality,omitempty"`
	Action         string   `json:"action"`
	CardName       string   `json:"card_name,omitempty"`
	Dialogue       string   `json:"dialogue,omitempty"`
	Success        bool     `json:"success"`
	Drawn          []string `json:"drawn,omitempty"`
	Exhausted      []string `json:"exhausted,omitempty"`
	PreviousState  string   `json:"previous_state"`
	State          string   `json:"state"`
	Flow           int      `json:"flow"`
	Momentum       int      `json:"momentum"`
	Doubt          int      `json:"doubt"`
	Atmosphere     string   `json:"atmosphere"`
	Ended          bool     `json:"ended"`
	EndReason      string   `json:"end_reason,omitempty"`
}

// Narrator turns a snapshot into descriptive text.
type Narrator interface {
	Narrate(ctx context.Context, s Snapshot) (string, error)
}

// Title formats an identifier such as "very_easy" for display.
func Title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// Fallback returns a deterministic description of the snapshot.
func Fallback(s Snapshot) string {
	name := s.NPCName
	if name == "" {
		name = s.NPCID
	}

	var b strings.Builder
	switch s.Action {
	case "start":
		fmt.Fprintf(&b, "You approach %s. They seem %s.", name, strings.ToLower(Title(s.State)))
	case "listen":
		fmt.Fprintf(&b, "You listen to %s", name)
		if n := len(s.Drawn); n > 0 {
			fmt.Fprintf(&b, " and gather %d new thought", n)
			if n > 1 {
				b.WriteString("s")
			}
		}
		b.WriteString(".")
	case "speak":
		if s.Success {
			fmt.Fprintf(&b, "%q lands well with %s.", s.CardName, name)
		} else {
			fmt.Fprintf(&b, "%q falls flat with %s.", s.CardName, name)
		}
	case "end":
		fmt.Fprintf(&b, "Your conversation with %s ends.", name)
	default:
		fmt.Fprintf(&b, "%s waits.", name)
	}

	if s.PreviousState != "" && s.PreviousState != s.State {
		fmt.Fprintf(&b, " %s is now %s.", name, strings.ToLower(Title(s.State)))
	}
	if len(s.Exhausted) > 0 {
		fmt.Fprintf(&b, " You let go of: %s.", strings.Join(s.Exhausted, ", "))
	}
	if s.Atmosphere != "" && s.Atmosphere != "neutral" {
		fmt.Fprintf(&b, " The mood feels %s.", strings.ToLower(s.Atmosphere))
	}
	if s.Ended && s.Action != "end" {
		fmt.Fprintf(&b, " The conversation is over (%s).", strings.ReplaceAll(s.EndReason, "_", " "))
	}
	return b.String()
}

// Describe asks n for a description within timeout and substitutes the
// fallback when n is nil, fails, or returns nothing.
func Describe(ctx context.Context, n Narrator, s Snapshot, timeout time.Duration) (string, string, error) {
	if n == nil {
		return Fallback(s), SourceFallback, nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := n.Narrate(ctx, s)
	if err != nil {
		return Fallback(s), SourceFallback, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback(s), SourceFallback, nil
	}
	return text, SourceLLM, nil
}
