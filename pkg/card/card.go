// Package card defines immutable card definitions and the per-session
// instances that move between piles.
package card

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

type Difficulty string

const (
	VeryEasy Difficulty = "very_easy"
	Easy     Difficulty = "easy"
	Medium   Difficulty = "medium"
	Hard     Difficulty = "hard"
	VeryHard Difficulty = "very_hard"
)

// Magnitude is the numeric strength of effects on a card of this difficulty.
func (d Difficulty) Magnitude() int {
	switch d {
	case VeryEasy, Easy:
		return 1
	case Medium:
		return 2
	case Hard:
		return 3
	case VeryHard:
		return 4
	default:
		return 1
	}
}

// BaseSuccessRate is the success percentage before doubt and modifiers.
func (d Difficulty) BaseSuccessRate() int {
	switch d {
	case VeryEasy:
		return 85
	case Easy:
		return 70
	case Medium:
		return 60
	case Hard:
		return 50
	case VeryHard:
		return 40
	default:
		return 60
	}
}

func (d Difficulty) Valid() bool {
	switch d {
	case VeryEasy, Easy, Medium, Hard, VeryHard:
		return true
	}
	return false
}

// Persistence controls when an unplayed card leaves the hand.
type Persistence string

const (
	Thought Persistence = "thought" // stays until played
	Impulse Persistence = "impulse" // exhausts after any SPEAK
	Opening Persistence = "opening" // exhausts on LISTEN
)

type SuccessEffect string

const (
	SuccessNone SuccessEffect = ""
	Rapport     SuccessEffect = "rapport"
	Threading   SuccessEffect = "threading"
	Atmospheric SuccessEffect = "atmospheric"
	Focusing    SuccessEffect = "focusing"
	Promising   SuccessEffect = "promising"
	Advancing   SuccessEffect = "advancing"
	Soothe      SuccessEffect = "soothe"
)

type FailureEffect string

const (
	FailureNone FailureEffect = ""
	Overreach   FailureEffect = "overreach"
	Backfire    FailureEffect = "backfire"
	Disrupting  FailureEffect = "disrupting"
)

type ExhaustEffect string

const (
	ExhaustNone      ExhaustEffect = ""
	ExhaustThreading ExhaustEffect = "threading"
	ExhaustFocusing  ExhaustEffect = "focusing"
	Regret           ExhaustEffect = "regret"
)

// Category separates ordinary expression cards from goal-bearing cards that
// live in the Request pile.
type Category string

const (
	Expression Category = "expression"
	Letter     Category = "letter"
	Promise    Category = "promise"
	Burden     Category = "burden"
)

// IsGoal reports whether cards of this category fulfil a conversation goal.
func (c Category) IsGoal() bool {
	return c == Letter || c == Promise || c == Burden
}

// Definition is the immutable template shared by every copy of a card.
type Definition struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Dialogue    string        `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
	Category    Category      `json:"category,omitempty" yaml:"category,omitempty"`
	Difficulty  Difficulty    `json:"difficulty" yaml:"difficulty"`
	Focus       int           `json:"focus" yaml:"focus"`
	Persistence Persistence   `json:"persistence" yaml:"persistence"`
	Success     SuccessEffect `json:"success,omitempty" yaml:"success,omitempty"`
	Failure     FailureEffect `json:"failure,omitempty" yaml:"failure,omitempty"`
	Exhaust     ExhaustEffect `json:"exhaust,omitempty" yaml:"exhaust,omitempty"`

	// Atmosphere overrides the tier picked by an Atmospheric success.
	Atmosphere atmosphere.Type `json:"atmosphere,omitempty" yaml:"atmosphere,omitempty"`

	Stat           player.Stat                 `json:"stat,omitempty" yaml:"stat,omitempty"`
	PersonalityTag string                      `json:"personality_tag,omitempty" yaml:"personality_tag,omitempty"`
	Threshold      int                         `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	TokenType      relationship.ConnectionType `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	TokensRequired int                         `json:"tokens_required,omitempty" yaml:"tokens_required,omitempty"`
	SuccessRate    int                         `json:"success_rate,omitempty" yaml:"success_rate,omitempty"`

	IgnoresForcedListen bool `json:"ignores_forced_listen,omitempty" yaml:"ignores_forced_listen,omitempty"`
}

// Magnitude is the difficulty-derived effect strength.
func (d *Definition) Magnitude() int {
	return d.Difficulty.Magnitude()
}

// BaseRate returns the explicit success rate or the difficulty default.
func (d *Definition) BaseRate() int {
	if d.SuccessRate > 0 {
		return d.SuccessRate
	}
	return d.Difficulty.BaseSuccessRate()
}

// Validate checks that every enumerated field holds a known value.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if !d.Difficulty.Valid() {
		errs = append(errs, fmt.Errorf("unknown difficulty %q", d.Difficulty))
	}
	if d.Focus < 0 {
		errs = append(errs, fmt.Errorf("focus cost %d is negative", d.Focus))
	}
	switch d.Persistence {
	case Thought, Impulse, Opening:
	default:
		errs = append(errs, fmt.Errorf("unknown persistence %q", d.Persistence))
	}
	switch d.Success {
	case SuccessNone, Rapport, Threading, Atmospheric, Focusing, Promising, Advancing, Soothe:
	default:
		errs = append(errs, fmt.Errorf("unknown success effect %q", d.Success))
	}
	switch d.Failure {
	case FailureNone, Overreach, Backfire, Disrupting:
	default:
		errs = append(errs, fmt.Errorf("unknown failure effect %q", d.Failure))
	}
	switch d.Exhaust {
	case ExhaustNone, ExhaustThreading, ExhaustFocusing, Regret:
	default:
		errs = append(errs, fmt.Errorf("unknown exhaust effect %q", d.Exhaust))
	}
	switch d.Category {
	case "", Expression, Letter, Promise, Burden:
	default:
		errs = append(errs, fmt.Errorf("unknown category %q", d.Category))
	}
	if d.Atmosphere != "" {
		if _, err := atmosphere.Parse(string(d.Atmosphere)); err != nil {
			errs = append(errs, err)
		}
	}
	if d.Stat != "" && !d.Stat.Valid() {
		errs = append(errs, fmt.Errorf("unknown stat %q", d.Stat))
	}
	if d.TokensRequired > 0 && !d.TokenType.Valid() {
		errs = append(errs, fmt.Errorf("tokens_required set with unknown token type %q", d.TokenType))
	}
	if d.SuccessRate < 0 || d.SuccessRate > 100 {
		errs = append(errs, fmt.Errorf("success rate %d outside 0..100", d.SuccessRate))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("card %q: %w", d.ID, err)
	}
	return nil
}
