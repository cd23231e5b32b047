package relationship

import (
	"encoding/json"
	"testing"
)

func TestState_UpDown(t *testing.T) {
	if s, ok := Neutral.Up(); !ok || s != Receptive {
		t.Errorf("Neutral.Up() = %v, %v", s, ok)
	}
	if s, ok := Trusting.Up(); ok || s != Trusting {
		t.Errorf("Trusting.Up() should saturate, got %v, %v", s, ok)
	}
	if s, ok := Guarded.Down(); !ok || s != Disconnected {
		t.Errorf("Guarded.Down() = %v, %v", s, ok)
	}
	if s, ok := Disconnected.Down(); ok || s != Disconnected {
		t.Errorf("Disconnected.Down() should saturate, got %v, %v", s, ok)
	}
}

func TestState_Tables(t *testing.T) {
	tests := []struct {
		state  State
		focus  int
		draw   int
		reward int
	}{
		{Disconnected, 3, 1, -1},
		{Guarded, 4, 2, 0},
		{Neutral, 5, 2, 1},
		{Receptive, 5, 3, 2},
		{Trusting, 6, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.FocusCapacity(); got != tt.focus {
				t.Errorf("FocusCapacity() = %d, want %d", got, tt.focus)
			}
			if got := tt.state.DrawCount(); got != tt.draw {
				t.Errorf("DrawCount() = %d, want %d", got, tt.draw)
			}
			if got := tt.state.TokenReward(); got != tt.reward {
				t.Errorf("TokenReward() = %d, want %d", got, tt.reward)
			}
		})
	}
}

func TestState_JSONNames(t *testing.T) {
	rec := NewRecord("p1", "elena")
	rec.State = Receptive
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.State != Receptive {
		t.Errorf("expected receptive, got %v", back.State)
	}

	if _, err := ParseState("furious"); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestTokens_Total(t *testing.T) {
	tokens := Tokens{Trust: 3, Commerce: 1}
	if tokens.Total() != 4 {
		t.Errorf("expected 4, got %d", tokens.Total())
	}
	if !tokens.Has(Trust, 3) || tokens.Has(Shadow, 1) {
		t.Error("Has returned wrong result")
	}
	clone := tokens.Clone()
	clone[Trust] = 0
	if tokens[Trust] != 3 {
		t.Error("Clone should not alias the original")
	}
}
