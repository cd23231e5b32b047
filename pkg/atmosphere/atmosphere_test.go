package atmosphere

import "testing"

func TestModifyFlow(t *testing.T) {
	tests := []struct {
		atm   Type
		delta int
		want  int
	}{
		{Neutral, 2, 2},
		{Volatile, 2, 3},
		{Volatile, -2, -3},
		{Volatile, 0, 0},
		{Exposed, 1, 2},
		{Exposed, -1, -2},
		{Synchronized, 1, 2},
		{Focused, 1, 1},
	}
	for _, tt := range tests {
		if got := tt.atm.ModifyFlow(tt.delta); got != tt.want {
			t.Errorf("%s.ModifyFlow(%d) = %d, want %d", tt.atm, tt.delta, got, tt.want)
		}
	}
}

func TestFromMagnitude(t *testing.T) {
	want := map[int]Type{1: Patient, 2: Receptive, 3: Focused, 4: Synchronized, 8: Synchronized}
	for m, atm := range want {
		if got := FromMagnitude(m); got != atm {
			t.Errorf("FromMagnitude(%d) = %s, want %s", m, got, atm)
		}
	}
}

func TestModifier_OneShot(t *testing.T) {
	var m Modifier
	if m.Current() != Neutral {
		t.Fatalf("zero modifier should be neutral, got %s", m.Current())
	}

	m.Set(Prepared)
	if m.ConsumeOneShot() {
		t.Error("Prepared is not one-shot")
	}
	if m.Current() != Prepared {
		t.Errorf("Prepared should persist, got %s", m.Current())
	}

	m.Set(Informed)
	if !m.ConsumeOneShot() {
		t.Error("Informed should be consumed")
	}
	if m.Current() != Neutral {
		t.Errorf("expected neutral after consume, got %s", m.Current())
	}
}

func TestQueries(t *testing.T) {
	if Prepared.FocusBonus() != 1 || Neutral.FocusBonus() != 0 {
		t.Error("focus bonus wrong")
	}
	if Receptive.DrawModifier() != 1 || Pressured.DrawModifier() != -1 {
		t.Error("draw modifier wrong")
	}
	if Focused.SuccessBonus() != 20 || Focused.MagnitudeBonus() != 1 {
		t.Error("focused bonuses wrong")
	}
	if Exposed.MagnitudeMultiplier() != 2 {
		t.Error("exposed multiplier wrong")
	}
	if !Patient.WaivesFocusCost() || !Informed.AutoSucceeds() || !Final.EndsOnFailure() || !Synchronized.DoublesNextEffect() {
		t.Error("one-shot queries wrong")
	}
	if _, err := Parse("stormy"); err == nil {
		t.Error("expected parse error")
	}
	if atm, err := Parse(""); err != nil || atm != Neutral {
		t.Errorf("empty should parse as neutral, got %s %v", atm, err)
	}
}
