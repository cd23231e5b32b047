package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_SeedsMomentumFromTokens(t *testing.T) {
	assert.Equal(t, 9, New(3).Momentum())
	assert.Equal(t, 0, New(0).Momentum())
	assert.Equal(t, 0, New(-2).Momentum())
}

func TestAddMomentum_Floors(t *testing.T) {
	l := New(1)
	applied := l.AddMomentum(-5)
	assert.Equal(t, -3, applied)
	assert.Equal(t, 0, l.Momentum())
}

func TestAddDoubt_Bounded(t *testing.T) {
	l := New(0)
	assert.Equal(t, 1, l.AddDoubt(1))
	assert.Equal(t, 9, l.AddDoubt(20))
	assert.Equal(t, MaxDoubt, l.Doubt())
	assert.True(t, l.Overwhelmed())
	assert.Equal(t, 50, l.Penalty())

	assert.Equal(t, -10, l.AddDoubt(-15))
	assert.Equal(t, 0, l.Doubt())
}

func TestErode(t *testing.T) {
	tests := []struct {
		name       string
		momentum   int
		doubt      int
		multiplier int
		lost       int
		left       int
	}{
		{"plain", 10, 3, 1, 3, 7},
		{"doubled", 10, 3, 2, 6, 4},
		{"floors at zero", 4, 3, 2, 4, 0},
		{"no doubt", 5, 0, 2, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Ledger{momentum: tt.momentum, doubt: tt.doubt}
			assert.Equal(t, tt.lost, l.Erode(tt.multiplier))
			assert.Equal(t, tt.left, l.Momentum())
			assert.Equal(t, tt.doubt, l.Doubt(), "erosion never changes doubt")
		})
	}
}

func TestCheckPanicsOnCorruption(t *testing.T) {
	l := &Ledger{momentum: -1}
	assert.Panics(t, l.check)
	l = &Ledger{doubt: 11}
	assert.Panics(t, l.check)
}
