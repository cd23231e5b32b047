// Package effect turns a card's effect kinds into a resource projection.
// Every function here is pure: the caller applies the projection.
package effect

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/personality"
)

// DisruptingFocus is the focus cost at or above which Disrupting discards.
const DisruptingFocus = 3

type Input struct {
	Card       *card.Definition
	Atmosphere atmosphere.Type
	Rules      personality.Enforcer // optional
}

// Projection is the set of changes a resolved effect asks for.
type Projection struct {
	Momentum int `json:"momentum,omitempty"`
	Doubt    int `json:"doubt,omitempty"`
	Focus    int `json:"focus,omitempty"`
	Flow     int `json:"flow,omitempty"`
	Draw     int `json:"draw,omitempty"`

	SetAtmosphere       atmosphere.Type `json:"set_atmosphere,omitempty"`
	ClearAtmosphere     bool            `json:"clear_atmosphere,omitempty"`
	DiscardHand         bool            `json:"discard_hand,omitempty"`
	DiscardFocusAtLeast int             `json:"discard_focus_at_least,omitempty"`
	Reprioritize        bool            `json:"reprioritize,omitempty"`
	EndsConversation    bool            `json:"ends_conversation,omitempty"`

	Description string `json:"description,omitempty"`
}

// Magnitude is the card's base magnitude after the atmosphere's bonus and
// multiplier.
func Magnitude(c *card.Definition, atm atmosphere.Type) int {
	return (c.Magnitude() + atm.MagnitudeBonus()) * atm.MagnitudeMultiplier()
}

// Success resolves a card's success effect.
func Success(in Input) Projection {
	m := Magnitude(in.Card, in.Atmosphere)
	var p Projection

	switch in.Card.Success {
	case card.Rapport:
		p.Momentum = volatile(m, in.Atmosphere)
	case card.Threading:
		p.Draw = m
	case card.Atmospheric:
		p.SetAtmosphere = in.Card.Atmosphere
		if p.SetAtmosphere == "" {
			p.SetAtmosphere = atmosphere.FromMagnitude(in.Card.Magnitude())
		}
	case card.Focusing:
		p.Focus = m
	case card.Promising:
		p.Momentum = volatile(2*m, in.Atmosphere)
		p.Reprioritize = true
	case card.Advancing:
		p.Flow = 1
	case card.Soothe:
		p.Doubt = -m
	case card.SuccessNone:
	default:
		panic(fmt.Sprintf("effect: unhandled success effect %q", in.Card.Success))
	}

	if in.Atmosphere.DoublesNextEffect() {
		// Flow is doubled by the flow battery itself.
		p.Momentum *= 2
		p.Draw *= 2
		p.Focus *= 2
		p.Doubt *= 2
	}

	p.Momentum = shapeMomentum(in, in.Card, p.Momentum)
	p.Description = describe("success", string(in.Card.Success), p)
	return p
}

// Failure resolves a card's failure effect. Every failure adds one doubt and
// clears the atmosphere.
func Failure(in Input) Projection {
	m := Magnitude(in.Card, in.Atmosphere)
	p := Projection{
		Doubt:            1,
		ClearAtmosphere:  true,
		EndsConversation: in.Atmosphere.EndsOnFailure(),
	}

	switch in.Card.Failure {
	case card.Overreach:
		p.DiscardHand = true
	case card.Backfire:
		p.Momentum = volatile(-m, in.Atmosphere)
	case card.Disrupting:
		p.DiscardFocusAtLeast = DisruptingFocus
	case card.FailureNone:
	default:
		panic(fmt.Sprintf("effect: unhandled failure effect %q", in.Card.Failure))
	}

	p.Momentum = shapeMomentum(in, in.Card, p.Momentum)
	p.Description = describe("failure", string(in.Card.Failure), p)
	return p
}

// Exhaust resolves the effect fired when an Impulse or Opening card leaves
// the hand unplayed.
func Exhaust(in Input) Projection {
	m := Magnitude(in.Card, in.Atmosphere)
	var p Projection

	switch in.Card.Exhaust {
	case card.ExhaustThreading:
		p.Draw = m
	case card.ExhaustFocusing:
		p.Focus = m
	case card.Regret:
		p.Momentum = volatile(-m, in.Atmosphere)
	case card.ExhaustNone:
	default:
		panic(fmt.Sprintf("effect: unhandled exhaust effect %q", in.Card.Exhaust))
	}

	if p.Momentum != 0 {
		p.Momentum = shapeMomentum(in, nil, p.Momentum)
	}
	p.Description = describe("exhaust", string(in.Card.Exhaust), p)
	return p
}

func volatile(v int, atm atmosphere.Type) int {
	if atm.IsVolatile() {
		return atmosphere.AwayFromZero(v, 1)
	}
	return v
}

func shapeMomentum(in Input, c *card.Definition, delta int) int {
	if in.Rules == nil {
		return delta
	}
	return in.Rules.ModifyMomentum(c, delta)
}

func describe(phase, kind string, p Projection) string {
	if kind == "" {
		kind = "none"
	}
	parts := []string{fmt.Sprintf("%s:%s", phase, kind)}
	add := func(label string, v int) {
		if v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", label, v))
		}
	}
	add("momentum", p.Momentum)
	add("doubt", p.Doubt)
	add("focus", p.Focus)
	add("flow", p.Flow)
	add("draw", p.Draw)
	if p.SetAtmosphere != "" {
		parts = append(parts, "atmosphere "+string(p.SetAtmosphere))
	}
	if p.DiscardHand {
		parts = append(parts, "discard hand")
	}
	if p.DiscardFocusAtLeast > 0 {
		parts = append(parts, fmt.Sprintf("discard focus>=%d", p.DiscardFocusAtLeast))
	}
	if p.EndsConversation {
		parts = append(parts, "conversation ends")
	}
	return strings.Join(parts, ", ")
}
