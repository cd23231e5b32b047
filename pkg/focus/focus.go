package focus

import (
	"errors"
	"fmt"
)

var ErrInsufficientFocus = errors.New("insufficient focus")

// Pool is the per-turn focus budget. Capacity is computed on demand so it
// follows relationship and atmosphere changes without explicit updates.
type Pool struct {
	spent    int
	capacity func() int
}

func New(capacity func() int) *Pool {
	return &Pool{capacity: capacity}
}

func (p *Pool) Capacity() int {
	return p.capacity()
}

func (p *Pool) Spent() int {
	return p.spent
}

// Available is the focus left this turn, never negative.
func (p *Pool) Available() int {
	if avail := p.capacity() - p.spent; avail > 0 {
		return avail
	}
	return 0
}

// Spend deducts cost. It leaves the pool untouched when cost is more than
// what is available.
func (p *Pool) Spend(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative focus cost %d", cost)
	}
	if cost > p.Available() {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFocus, cost, p.Available())
	}
	p.spent += cost
	return nil
}

// Refresh restores the full budget at the start of a turn.
func (p *Pool) Refresh() {
	p.spent = 0
}

// Add refunds focus spent this turn. Spent focus never drops below zero.
func (p *Pool) Add(n int) {
	p.spent -= n
	if p.spent < 0 {
		p.spent = 0
	}
}

// Deplete spends everything left, forcing the next action to be a LISTEN.
func (p *Pool) Deplete() {
	if c := p.capacity(); p.spent < c {
		p.spent = c
	}
}
