package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCards = `cards:
  - id: kind_word
    name: Kind Word
    difficulty: easy
    focus: 1
    success: rapport
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestValidateDir_SampleData(t *testing.T) {
	v := &CatalogValidator{}
	cat, err := v.validateDir("../../data")
	if err != nil {
		t.Fatalf("Expected sample data to validate, got: %v", err)
	}
	if len(cat.NPCs()) == 0 {
		t.Error("Expected sample NPCs")
	}
}

func TestValidateDir_Errors(t *testing.T) {
	tests := []struct {
		name    string
		npcFile string
		npc     string
		wantErr string
	}{
		{
			name:    "bad filename",
			npcFile: "Old-Tom.yaml",
			npc:     "name: Tom\ndeck: [kind_word]\n",
			wantErr: "lowercase snake_case",
		},
		{
			name:    "unknown card",
			npcFile: "tom.yaml",
			npc:     "name: Tom\ndeck: [kind_word, shout]\n",
			wantErr: "unknown card",
		},
		{
			name:    "bad id",
			npcFile: "tom.yaml",
			npc:     "id: Tom\nname: Tom\ndeck: [kind_word]\n",
			wantErr: "NPC ID 'Tom'",
		},
		{
			name:    "unknown personality",
			npcFile: "tom.yaml",
			npc:     "name: Tom\npersonality: grumpy\ndeck: [kind_word]\n",
			wantErr: "grumpy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "cards"), "cards.yaml", testCards)
			writeFile(t, filepath.Join(dir, "npcs"), tt.npcFile, tt.npc)

			v := &CatalogValidator{}
			_, err := v.validateDir(dir)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsValidID(t *testing.T) {
	valid := []string{"a", "elena", "kind_word", "req2"}
	invalid := []string{"", "Elena", "kind-word", "_x", "x_", "2req"}
	for _, id := range valid {
		if !isValidID(id) {
			t.Errorf("Expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if isValidID(id) {
			t.Errorf("Expected %q to be invalid", id)
		}
	}
	if !isValidFilename("x.draft_npc") {
		t.Error("Expected x. prefix to be allowed")
	}
}
