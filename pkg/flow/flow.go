// Package flow implements the flow battery that drives relationship state
// transitions.
package flow

import (
	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/relationship"
)

const (
	Min = -3
	Max = 3
)

// Change describes the result of one ApplyDelta call.
type Change struct {
	Requested    int                `json:"requested"`
	Effective    int                `json:"effective"`
	Before       int                `json:"before"`
	After        int                `json:"after"`
	From         relationship.State `json:"from"`
	To           relationship.State `json:"to"`
	Transitioned bool               `json:"transitioned"`
	Collapsed    bool               `json:"collapsed"`
}

// Battery holds the flow value and the relationship state it drives.
type Battery struct {
	state     relationship.State
	value     int
	collapsed bool
}

// New restores a battery from persisted values. Out-of-range flow is clamped.
func New(state relationship.State, value int) *Battery {
	return &Battery{state: state, value: clamp(value)}
}

func (b *Battery) State() relationship.State { return b.state }
func (b *Battery) Value() int { return b.value }

// Collapsed reports whether the battery drained past Disconnected.
func (b *Battery) Collapsed() bool { return b.collapsed }

// ApplyDelta adjusts flow by d after the atmosphere's flow rule. Reaching +3
// moves the state up and resets flow; Trusting instead pins flow at +3.
// Reaching -3 moves the state down and resets flow; at Disconnected the
// battery collapses and nothing else changes.
func (b *Battery) ApplyDelta(d int, atm atmosphere.Type) Change {
	c := Change{
		Requested: d,
		Before:    b.value,
		From:      b.state,
		To:        b.state,
		After:     b.value,
	}
	if b.collapsed {
		c.Collapsed = true
		return c
	}

	c.Effective = atm.ModifyFlow(d)
	next := clamp(b.value + c.Effective)

	switch {
	case next >= Max:
		if up, ok := b.state.Up(); ok {
			b.state = up
			b.value = 0
			c.Transitioned = true
		} else {
			b.value = Max
		}
	case next <= Min:
		if down, ok := b.state.Down(); ok {
			b.state = down
			b.value = 0
			c.Transitioned = true
		} else {
			b.collapsed = true
			c.Collapsed = true
		}
	default:
		b.value = next
	}

	c.After = b.value
	c.To = b.state
	return c
}

func clamp(v int) int {
	if v > Max {
		return Max
	}
	if v < Min {
		return Min
	}
	return v
}
