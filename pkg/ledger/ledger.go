// Package ledger tracks momentum and doubt for one conversation.
package ledger

import "fmt"

const (
	MaxDoubt         = 10
	DoubtPenalty     = 5 // success percentage lost per doubt point
	MomentumPerToken = 3
)

type Ledger struct {
	momentum int
	doubt    int
}

// New seeds momentum from the tokens the player holds with the NPC.
func New(tokens int) *Ledger {
	if tokens < 0 {
		tokens = 0
	}
	return &Ledger{momentum: tokens * MomentumPerToken}
}

func (l *Ledger) Momentum() int { return l.momentum }
func (l *Ledger) Doubt() int { return l.doubt }

// AddMomentum applies delta with a floor at zero and returns the change that
// actually happened.
func (l *Ledger) AddMomentum(delta int) int {
	before := l.momentum
	l.momentum += delta
	if l.momentum < 0 {
		l.momentum = 0
	}
	l.check()
	return l.momentum - before
}

// AddDoubt applies delta within [0, MaxDoubt] and returns the change that
// actually happened.
func (l *Ledger) AddDoubt(delta int) int {
	before := l.doubt
	l.doubt += delta
	if l.doubt < 0 {
		l.doubt = 0
	}
	if l.doubt > MaxDoubt {
		l.doubt = MaxDoubt
	}
	l.check()
	return l.doubt - before
}

// Erode removes doubt × multiplier momentum and returns how much was lost.
func (l *Ledger) Erode(multiplier int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	return -l.AddMomentum(-l.doubt * multiplier)
}

// Penalty is the success percentage removed by current doubt.
func (l *Ledger) Penalty() int {
	return l.doubt * DoubtPenalty
}

// Overwhelmed reports whether doubt has hit the cap.
func (l *Ledger) Overwhelmed() bool {
	return l.doubt >= MaxDoubt
}

func (l *Ledger) check() {
	if l.momentum < 0 {
		panic(fmt.Sprintf("ledger: momentum went negative (%d)", l.momentum))
	}
	if l.doubt < 0 || l.doubt > MaxDoubt {
		panic(fmt.Sprintf("ledger: doubt %d outside [0,%d]", l.doubt, MaxDoubt))
	}
}
