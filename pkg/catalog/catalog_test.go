package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/personality"
	"github.com/jwebster45206/parley/pkg/relationship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cards", "basic.yaml"), `
cards:
  - id: hello
    difficulty: easy
    focus: 1
    success: rapport
  - id: vow
    name: Vow
    category: promise
    difficulty: hard
    focus: 3
    success: promising
`)
	writeFile(t, filepath.Join(dir, "npcs", "ada.yaml"), `
name: Ada
personality: repeat_focus_penalty
deck: [hello, hello]
requests:
  - id: ada_vow
    card: vow
    threshold: 6
`)
	writeFile(t, filepath.Join(dir, "npcs", "bo.json"), `{"name": "Bo", "deck": ["hello"], "connection": "shadow"}`)
	writeFile(t, filepath.Join(dir, "npcs", "README.md"), "ignored")

	cat, err := Load(dir)
	require.NoError(t, err)

	hello, ok := cat.Card("hello")
	require.True(t, ok)
	assert.Equal(t, "hello", hello.Name, "name defaults to id")
	assert.Equal(t, card.Thought, hello.Persistence)
	assert.Equal(t, card.Expression, hello.Category)

	ada, ok := cat.NPC("ada")
	require.True(t, ok, "id should default to file name")
	assert.Equal(t, personality.RepeatFocusPenalty, ada.Personality)
	assert.Equal(t, relationship.Trust, ada.Connection)
	assert.Equal(t, 1, ada.Level)
	assert.Len(t, ada.Requests, 1)

	bo, ok := cat.NPC("bo")
	require.True(t, ok)
	assert.Equal(t, relationship.Shadow, bo.Connection)

	deck, err := cat.Resolve(ada.Deck)
	require.NoError(t, err)
	assert.Len(t, deck, 2)

	other, ok := cat.OtherNPC("ada")
	require.True(t, ok)
	assert.Equal(t, "bo", other.ID)
}

func TestNew_ReportsAllProblems(t *testing.T) {
	cards := []*card.Definition{
		{ID: "ok", Difficulty: card.Easy, Focus: 1},
		{ID: "bad", Difficulty: "impossible"},
		{ID: "plain", Difficulty: card.Easy},
	}
	npcs := []*NPC{
		{ID: "x", Deck: []string{"ok", "missing"}, Personality: "moody"},
		{ID: "y", Deck: []string{"ok"}, Requests: []Request{{ID: "r", Card: "plain"}}},
	}
	_, err := New(cards, npcs)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"impossible", "missing", "moody", "not a goal card"} {
		assert.True(t, strings.Contains(msg, want), "expected %q in %q", want, msg)
	}
}

func TestLoad_SampleData(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "data"))
	require.NoError(t, err)
	assert.NotEmpty(t, cat.NPCs())
	assert.NotEmpty(t, cat.Cards())

	for _, npc := range cat.NPCs() {
		_, err := cat.Resolve(npc.Deck)
		assert.NoError(t, err, npc.ID)
	}
}

func TestLoad_MissingDirIsEmpty(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "nothing"))
	require.NoError(t, err)
	assert.Empty(t, cat.NPCs())
}
