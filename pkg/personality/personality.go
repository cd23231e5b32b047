// Package personality enforces per-NPC conversational rules. Each rule is a
// strategy behind the Enforcer interface, chosen once when a session starts.
package personality

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/parley/pkg/card"
)

type Rule string

const (
	None                Rule = "none"
	AscendingFocus      Rule = "ascending_focus"
	MomentumLossDoubled Rule = "momentum_loss_doubled"
	HighestFocusBonus   Rule = "highest_focus_bonus"
	RepeatFocusPenalty  Rule = "repeat_focus_penalty"
	RapportChangeCap    Rule = "rapport_change_cap"
)

// ErrViolation wraps every play rejected by a personality rule.
var ErrViolation = errors.New("personality rule violated")

// Params tunes rule strength. Zero fields fall back to DefaultParams.
type Params struct {
	FocusBonus    int `json:"focus_bonus,omitempty" yaml:"focus_bonus,omitempty"`
	RepeatPenalty int `json:"repeat_penalty,omitempty" yaml:"repeat_penalty,omitempty"`
	MomentumCap   int `json:"momentum_cap,omitempty" yaml:"momentum_cap,omitempty"`
}

func DefaultParams() Params {
	return Params{
		FocusBonus:    15,
		RepeatPenalty: 2,
		MomentumCap:   2,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.FocusBonus > 0 {
		d.FocusBonus = p.FocusBonus
	}
	if p.RepeatPenalty > 0 {
		d.RepeatPenalty = p.RepeatPenalty
	}
	if p.MomentumCap > 0 {
		d.MomentumCap = p.MomentumCap
	}
	return d
}

// Enforcer is consulted by the turn orchestrator and the effect resolver.
type Enforcer interface {
	Rule() Rule

	// ValidatePlay returns an error wrapping ErrViolation when c may not be
	// played now.
	ValidatePlay(c *card.Definition) error

	// ModifySuccessRate shapes the success rate of c.
	ModifySuccessRate(c *card.Definition, rate int) int

	// ModifyMomentum reshapes a momentum delta. c is nil for effects that
	// did not come from a played card.
	ModifyMomentum(c *card.Definition, delta int) int

	// ErosionMultiplier scales momentum erosion on LISTEN.
	ErosionMultiplier() int

	OnCardPlayed(c *card.Definition)
	OnListen()
	Describe() string
	State() Tracking
}

// Tracking is the per-turn history a rule looks at.
type Tracking struct {
	CostsThisTurn []int  `json:"costs_this_turn,omitempty"`
	HighestCost   int    `json:"highest_cost"`
	LastCardID    string `json:"last_card_id,omitempty"`
	LastCost      int    `json:"last_cost"`
}

// New returns the enforcer for rule. An empty rule means None.
func New(rule Rule, params Params) (Enforcer, error) {
	t := &tracker{params: params.withDefaults(), highest: -1}
	switch rule {
	case None, "":
		return &noRule{t}, nil
	case AscendingFocus:
		return &ascendingFocus{t}, nil
	case MomentumLossDoubled:
		return &momentumLossDoubled{t}, nil
	case HighestFocusBonus:
		return &highestFocusBonus{t}, nil
	case RepeatFocusPenalty:
		return &repeatFocusPenalty{t}, nil
	case RapportChangeCap:
		return &rapportChangeCap{t}, nil
	default:
		return nil, fmt.Errorf("unknown personality rule %q", rule)
	}
}

// tracker supplies the shared bookkeeping and pass-through hooks.
type tracker struct {
	params  Params
	costs   []int
	highest int
	last    *card.Definition
}

func (t *tracker) ValidatePlay(*card.Definition) error { return nil }
func (t *tracker) ModifySuccessRate(_ *card.Definition, rate int) int { return rate }
func (t *tracker) ModifyMomentum(_ *card.Definition, delta int) int { return delta }
func (t *tracker) ErosionMultiplier() int { return 1 }

func (t *tracker) OnCardPlayed(c *card.Definition) {
	t.costs = append(t.costs, c.Focus)
	if c.Focus > t.highest {
		t.highest = c.Focus
	}
	t.last = c
}

// OnListen clears the turn. The last card played is kept so repeats across
// a LISTEN still count.
func (t *tracker) OnListen() {
	t.costs = nil
	t.highest = -1
}

func (t *tracker) State() Tracking {
	tr := Tracking{
		CostsThisTurn: append([]int(nil), t.costs...),
		HighestCost:   t.highest,
	}
	if t.last != nil {
		tr.LastCardID = t.last.ID
		tr.LastCost = t.last.Focus
	}
	return tr
}

func (t *tracker) previousCost() (int, bool) {
	if len(t.costs) == 0 {
		return 0, false
	}
	return t.costs[len(t.costs)-1], true
}

type noRule struct{ *tracker }

func (r *noRule) Rule() Rule { return None }
func (r *noRule) Describe() string { return "No special rules" }

type ascendingFocus struct{ *tracker }

func (r *ascendingFocus) Rule() Rule { return AscendingFocus }
func (r *ascendingFocus) Describe() string {
	return "Proud: cards must be played in ascending focus order each turn"
}

func (r *ascendingFocus) ValidatePlay(c *card.Definition) error {
	if prev, ok := r.previousCost(); ok && c.Focus <= prev {
		return fmt.Errorf("%w: %s needs more than %d focus, it costs %d", ErrViolation, c.Name, prev, c.Focus)
	}
	return nil
}

type momentumLossDoubled struct{ *tracker }

func (r *momentumLossDoubled) Rule() Rule { return MomentumLossDoubled }
func (r *momentumLossDoubled) Describe() string {
	return "Devoted: momentum losses are doubled"
}

func (r *momentumLossDoubled) ModifyMomentum(_ *card.Definition, delta int) int {
	if delta < 0 {
		return delta * 2
	}
	return delta
}

func (r *momentumLossDoubled) ErosionMultiplier() int { return 2 }

type highestFocusBonus struct{ *tracker }

func (r *highestFocusBonus) Rule() Rule { return HighestFocusBonus }
func (r *highestFocusBonus) Describe() string {
	return fmt.Sprintf("Mercantile: the highest focus card each turn gains +%d%% success", r.params.FocusBonus)
}

func (r *highestFocusBonus) ModifySuccessRate(c *card.Definition, rate int) int {
	if c.Focus > r.highest {
		return rate + r.params.FocusBonus
	}
	return rate
}

type repeatFocusPenalty struct{ *tracker }

func (r *repeatFocusPenalty) Rule() Rule { return RepeatFocusPenalty }
func (r *repeatFocusPenalty) Describe() string {
	return fmt.Sprintf("Cunning: repeating the previous focus cost loses %d momentum", r.params.RepeatPenalty)
}

func (r *repeatFocusPenalty) ModifyMomentum(c *card.Definition, delta int) int {
	if c != nil && r.last != nil && r.last.Focus == c.Focus {
		return delta - r.params.RepeatPenalty
	}
	return delta
}

type rapportChangeCap struct{ *tracker }

func (r *rapportChangeCap) Rule() Rule { return RapportChangeCap }
func (r *rapportChangeCap) Describe() string {
	return fmt.Sprintf("Steadfast: momentum changes are capped at ±%d", r.params.MomentumCap)
}

func (r *rapportChangeCap) ModifyMomentum(_ *card.Definition, delta int) int {
	limit := r.params.MomentumCap
	if delta > limit {
		return limit
	}
	if delta < -limit {
		return -limit
	}
	return delta
}
