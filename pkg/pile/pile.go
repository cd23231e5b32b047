// Package pile owns every card instance in a conversation and moves them
// between the five piles. Instances live in an arena and are addressed by
// handle; a move only changes which pile a handle is filed under.
package pile

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jwebster45206/parley/pkg/card"
)

type Pile int

const (
	Draw Pile = iota
	Hand
	Discard
	Exhaust
	Request
	numPiles
)

func (p Pile) String() string {
	switch p {
	case Draw:
		return "draw"
	case Hand:
		return "hand"
	case Discard:
		return "discard"
	case Exhaust:
		return "exhaust"
	case Request:
		return "request"
	default:
		return fmt.Sprintf("pile(%d)", int(p))
	}
}

var (
	ErrUnknownHandle = errors.New("unknown card handle")
	ErrWrongPile     = errors.New("card is not in the expected pile")
)

// Counts is a snapshot of pile sizes.
type Counts struct {
	Draw    int `json:"draw"`
	Hand    int `json:"hand"`
	Discard int `json:"discard"`
	Exhaust int `json:"exhaust"`
	Request int `json:"request"`
}

func (c Counts) Total() int {
	return c.Draw + c.Hand + c.Discard + c.Exhaust + c.Request
}

// Set is the pile set for one session. It is not safe for concurrent use.
type Set struct {
	arena    []*card.Instance
	location []Pile
	order    [numPiles][]card.Handle
	played   []card.Handle
	sealed   bool
	total    int
}

func New() *Set {
	return &Set{}
}

// Add creates a new instance of def in pile p. Instances can only be added
// before Seal is called.
func (s *Set) Add(def *card.Definition, p Pile, ctx card.Context) *card.Instance {
	if s.sealed {
		panic("pile: Add called after Seal")
	}
	h := card.Handle(len(s.arena))
	inst := &card.Instance{
		Handle:   h,
		Def:      def,
		Playable: p != Request,
		Context:  ctx,
	}
	s.arena = append(s.arena, inst)
	s.location = append(s.location, p)
	s.order[p] = append(s.order[p], h)
	return inst
}

// Seal shuffles the Draw pile and freezes the instance count.
func (s *Set) Seal(rng *rand.Rand) {
	if rng != nil {
		draw := s.order[Draw]
		rng.Shuffle(len(draw), func(i, j int) { draw[i], draw[j] = draw[j], draw[i] })
	}
	s.sealed = true
	s.total = len(s.arena)
	s.CheckInvariants()
}

// Lookup returns the instance for h and the pile it is in.
func (s *Set) Lookup(h card.Handle) (*card.Instance, Pile, bool) {
	if h < 0 || int(h) >= len(s.arena) {
		return nil, 0, false
	}
	return s.arena[h], s.location[h], true
}

// Draw moves up to n cards from the top of the Draw pile into the Hand. An
// empty Draw pile yields a short draw.
func (s *Set) Draw(n int) []*card.Instance {
	var drawn []*card.Instance
	for i := 0; i < n && len(s.order[Draw]) > 0; i++ {
		h := s.order[Draw][0]
		s.mustMove(h, Draw, Hand)
		drawn = append(drawn, s.arena[h])
	}
	return drawn
}

// Play moves a played card from Hand to Discard and records it in the
// play history.
func (s *Set) Play(h card.Handle) error {
	if err := s.move(h, Hand, Discard); err != nil {
		return err
	}
	s.played = append(s.played, h)
	return nil
}

// ExhaustFromHand removes an unplayed card from the session for good.
func (s *Set) ExhaustFromHand(h card.Handle) error {
	return s.move(h, Hand, Exhaust)
}

// DiscardFromHand moves an unplayed card to Discard without recording a play.
func (s *Set) DiscardFromHand(h card.Handle) error {
	return s.move(h, Hand, Discard)
}

// PromoteRequest moves a goal card into the Hand and makes it playable.
func (s *Set) PromoteRequest(h card.Handle) error {
	if err := s.move(h, Request, Hand); err != nil {
		return err
	}
	s.arena[h].Playable = true
	return nil
}

// Cards returns the instances in pile p in pile order.
func (s *Set) Cards(p Pile) []*card.Instance {
	out := make([]*card.Instance, 0, len(s.order[p]))
	for _, h := range s.order[p] {
		out = append(out, s.arena[h])
	}
	return out
}

func (s *Set) Hand() []*card.Instance     { return s.Cards(Hand) }
func (s *Set) Requests() []*card.Instance { return s.Cards(Request) }

// History returns played cards, oldest first.
func (s *Set) History() []*card.Instance {
	out := make([]*card.Instance, 0, len(s.played))
	for _, h := range s.played {
		out = append(out, s.arena[h])
	}
	return out
}

func (s *Set) Len(p Pile) int {
	return len(s.order[p])
}

func (s *Set) Counts() Counts {
	return Counts{
		Draw:    len(s.order[Draw]),
		Hand:    len(s.order[Hand]),
		Discard: len(s.order[Discard]),
		Exhaust: len(s.order[Exhaust]),
		Request: len(s.order[Request]),
	}
}

// Total is the number of instances owned by the set.
func (s *Set) Total() int {
	return len(s.arena)
}

func (s *Set) move(h card.Handle, from, to Pile) error {
	if h < 0 || int(h) >= len(s.arena) {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	if s.location[h] != from {
		return fmt.Errorf("%w: card %d is in %s, not %s", ErrWrongPile, h, s.location[h], from)
	}
	s.mustMove(h, from, to)
	return nil
}

func (s *Set) mustMove(h card.Handle, from, to Pile) {
	idx := -1
	for i, other := range s.order[from] {
		if other == h {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("pile: handle %d filed under %s but missing from its order", h, from))
	}
	s.order[from] = append(s.order[from][:idx], s.order[from][idx+1:]...)
	s.order[to] = append(s.order[to], h)
	s.location[h] = to
}

// CheckInvariants panics if any instance is missing, duplicated, or filed
// under the wrong pile, or if the instance count changed since Seal.
func (s *Set) CheckInvariants() {
	seen := make([]bool, len(s.arena))
	count := 0
	for p := Pile(0); p < numPiles; p++ {
		for _, h := range s.order[p] {
			if int(h) >= len(s.arena) || h < 0 {
				panic(fmt.Sprintf("pile: %s holds unknown handle %d", p, h))
			}
			if seen[h] {
				panic(fmt.Sprintf("pile: handle %d appears twice", h))
			}
			if s.location[h] != p {
				panic(fmt.Sprintf("pile: handle %d found in %s but located in %s", h, p, s.location[h]))
			}
			seen[h] = true
			count++
		}
	}
	if count != len(s.arena) {
		panic(fmt.Sprintf("pile: %d instances filed, %d owned", count, len(s.arena)))
	}
	if s.sealed && len(s.arena) != s.total {
		panic(fmt.Sprintf("pile: instance count changed from %d to %d", s.total, len(s.arena)))
	}
}
