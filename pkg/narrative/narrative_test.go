package narrative

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/parley/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type narratorFunc func(ctx context.Context, s Snapshot) (string, error)

func (f narratorFunc) Narrate(ctx context.Context, s Snapshot) (string, error) { return f(ctx, s) }

type fakeCompleter struct {
	messages []chat.ChatMessage
	reply    string
	err      error
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &chat.ChatResponse{Message: f.reply}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func speakSnapshot() Snapshot {
	return Snapshot{
		NPCID:         "elena",
		NPCName:       "Elena",
		Action:        "speak",
		CardName:      "Kind Word",
		Dialogue:      "I appreciate you taking the time to talk with me.",
		Success:       true,
		PreviousState: "neutral",
		State:         "receptive",
		Atmosphere:    "focused",
	}
}

func TestFallback_Deterministic(t *testing.T) {
	s := speakSnapshot()
	first := Fallback(s)
	assert.Equal(t, first, Fallback(s))
	assert.Contains(t, first, `"Kind Word" lands well with Elena.`)
	assert.Contains(t, first, "Elena is now receptive.")
	assert.Contains(t, first, "The mood feels focused.")

	s.Success = false
	s.Ended = true
	s.EndReason = "final_failure"
	got := Fallback(s)
	assert.Contains(t, got, "falls flat")
	assert.Contains(t, got, "final failure")
}

func TestFallback_Listen(t *testing.T) {
	got := Fallback(Snapshot{NPCName: "Marcus", Action: "listen", Drawn: []string{"a", "b"}, State: "neutral", PreviousState: "neutral"})
	assert.Equal(t, "You listen to Marcus and gather 2 new thoughts.", got)
}

func TestDescribe_NilNarrator(t *testing.T) {
	text, source, err := Describe(context.Background(), nil, speakSnapshot(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, Fallback(speakSnapshot()), text)
}

func TestDescribe_FailureFallsBack(t *testing.T) {
	boom := errors.New("boom")
	n := narratorFunc(func(ctx context.Context, s Snapshot) (string, error) { return "", boom })

	text, source, err := Describe(context.Background(), n, speakSnapshot(), time.Second)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, SourceFallback, source)
	assert.NotEmpty(t, text)
}

func TestDescribe_Timeout(t *testing.T) {
	n := narratorFunc(func(ctx context.Context, s Snapshot) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	start := time.Now()
	_, source, err := Describe(context.Background(), n, speakSnapshot(), 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, SourceFallback, source)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDescribe_LLM(t *testing.T) {
	completer := &fakeCompleter{reply: "  Elena smiles warmly.  "}
	n, err := NewLLMNarrator(completer, testLogger())
	require.NoError(t, err)

	text, source, err := Describe(context.Background(), n, speakSnapshot(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, source)
	assert.Equal(t, "Elena smiles warmly.", text)

	require.Len(t, completer.messages, 2)
	assert.Equal(t, chat.ChatRoleSystem, completer.messages[0].Role)
	prompt := completer.messages[0].Content
	assert.Contains(t, prompt, "NPC: Elena")
	assert.Contains(t, prompt, "Current disposition: Receptive (was Neutral)")
	assert.Contains(t, prompt, "This lands well.")
	assert.True(t, strings.HasPrefix(completer.messages[1].Content, "Player: "))
}

func TestLLMNarrator_Error(t *testing.T) {
	n, err := NewLLMNarrator(&fakeCompleter{err: errors.New("rate limited")}, testLogger())
	require.NoError(t, err)
	_, err = n.Narrate(context.Background(), speakSnapshot())
	assert.ErrorContains(t, err, "rate limited")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Very Easy", Title("very_easy"))
	assert.Equal(t, "Trusting", Title("trusting"))
}
