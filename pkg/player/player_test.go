package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{9, 1},
		{10, 2},
		{39, 4},
		{40, 5},
		{400, 5},
		{-3, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestStats_Actor(t *testing.T) {
	stats := NewStats("p1")
	stats.Grant(Rapport, 25)
	stats.Grant(Cunning, 60)

	actor, err := stats.Actor()
	require.NoError(t, err)

	assert.Equal(t, 3, LevelOf(actor, Rapport))
	assert.Equal(t, 5, LevelOf(actor, Cunning))
	assert.Equal(t, 1, LevelOf(actor, Insight))
	assert.Equal(t, 1, LevelOf(actor, Stat("")))
	assert.Equal(t, 1, LevelOf(nil, Rapport))
}

func TestStat_Valid(t *testing.T) {
	assert.True(t, Diplomacy.Valid())
	assert.False(t, Stat("charm").Valid())
	assert.False(t, Stat("").Valid())
}
