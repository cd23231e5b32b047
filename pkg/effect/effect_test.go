package effect

import (
	"testing"

	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/personality"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func def(d card.Difficulty) *card.Definition {
	return &card.Definition{ID: "x", Name: "x", Difficulty: d, Focus: 2, Persistence: card.Thought}
}

func TestMagnitude(t *testing.T) {
	c := def(card.Medium)
	assert.Equal(t, 2, Magnitude(c, atmosphere.Neutral))
	assert.Equal(t, 3, Magnitude(c, atmosphere.Focused))
	assert.Equal(t, 4, Magnitude(c, atmosphere.Exposed))
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		name   string
		effect card.SuccessEffect
		diff   card.Difficulty
		atm    atmosphere.Type
		want   Projection
	}{
		{"rapport", card.Rapport, card.Hard, atmosphere.Neutral, Projection{Momentum: 3}},
		{"rapport focused", card.Rapport, card.Medium, atmosphere.Focused, Projection{Momentum: 3}},
		{"rapport volatile", card.Rapport, card.Medium, atmosphere.Volatile, Projection{Momentum: 3}},
		{"rapport synchronized", card.Rapport, card.Easy, atmosphere.Synchronized, Projection{Momentum: 2}},
		{"threading", card.Threading, card.Medium, atmosphere.Neutral, Projection{Draw: 2}},
		{"focusing exposed", card.Focusing, card.Easy, atmosphere.Exposed, Projection{Focus: 2}},
		{"promising", card.Promising, card.Medium, atmosphere.Neutral, Projection{Momentum: 4, Reprioritize: true}},
		{"advancing ignores magnitude", card.Advancing, card.VeryHard, atmosphere.Exposed, Projection{Flow: 1}},
		{"advancing not doubled here", card.Advancing, card.Easy, atmosphere.Synchronized, Projection{Flow: 1}},
		{"soothe", card.Soothe, card.Hard, atmosphere.Neutral, Projection{Doubt: -3}},
		{"atmospheric tier", card.Atmospheric, card.Hard, atmosphere.Exposed, Projection{SetAtmosphere: atmosphere.Focused}},
		{"none", card.SuccessNone, card.Hard, atmosphere.Neutral, Projection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := def(tt.diff)
			c.Success = tt.effect
			got := Success(Input{Card: c, Atmosphere: tt.atm})
			got.Description = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuccess_AtmosphericOverride(t *testing.T) {
	c := def(card.Easy)
	c.Success = card.Atmospheric
	c.Atmosphere = atmosphere.Informed
	got := Success(Input{Card: c, Atmosphere: atmosphere.Neutral})
	assert.Equal(t, atmosphere.Informed, got.SetAtmosphere)
}

func TestFailure(t *testing.T) {
	tests := []struct {
		name   string
		effect card.FailureEffect
		atm    atmosphere.Type
		want   Projection
	}{
		{"none", card.FailureNone, atmosphere.Neutral, Projection{Doubt: 1, ClearAtmosphere: true}},
		{"overreach", card.Overreach, atmosphere.Neutral, Projection{Doubt: 1, ClearAtmosphere: true, DiscardHand: true}},
		{"backfire", card.Backfire, atmosphere.Neutral, Projection{Doubt: 1, ClearAtmosphere: true, Momentum: -2}},
		{"backfire volatile", card.Backfire, atmosphere.Volatile, Projection{Doubt: 1, ClearAtmosphere: true, Momentum: -3}},
		{"disrupting", card.Disrupting, atmosphere.Neutral, Projection{Doubt: 1, ClearAtmosphere: true, DiscardFocusAtLeast: 3}},
		{"final", card.FailureNone, atmosphere.Final, Projection{Doubt: 1, ClearAtmosphere: true, EndsConversation: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := def(card.Medium)
			c.Failure = tt.effect
			got := Failure(Input{Card: c, Atmosphere: tt.atm})
			got.Description = ""
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExhaust(t *testing.T) {
	c := def(card.Medium)
	c.Exhaust = card.Regret
	assert.Equal(t, -2, Exhaust(Input{Card: c}).Momentum)

	c.Exhaust = card.ExhaustThreading
	assert.Equal(t, 2, Exhaust(Input{Card: c}).Draw)

	c.Exhaust = card.ExhaustFocusing
	assert.Equal(t, 4, Exhaust(Input{Card: c, Atmosphere: atmosphere.Exposed}).Focus)
}

func TestPersonalityShapesMomentum(t *testing.T) {
	doubled, err := personality.New(personality.MomentumLossDoubled, personality.Params{})
	require.NoError(t, err)
	capped, err := personality.New(personality.RapportChangeCap, personality.Params{})
	require.NoError(t, err)

	c := def(card.Hard)
	c.Failure = card.Backfire
	assert.Equal(t, -6, Failure(Input{Card: c, Rules: doubled}).Momentum)

	c.Success = card.Rapport
	assert.Equal(t, 2, Success(Input{Card: c, Rules: capped}).Momentum)

	c.Exhaust = card.Regret
	assert.Equal(t, -6, Exhaust(Input{Card: c, Rules: doubled}).Momentum)
}

func TestDescription(t *testing.T) {
	c := def(card.Medium)
	c.Success = card.Rapport
	p := Success(Input{Card: c})
	assert.Equal(t, "success:rapport, momentum +2", p.Description)
}
