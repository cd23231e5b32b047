package pile

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jwebster45206/parley/pkg/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDef(id string) *card.Definition {
	return &card.Definition{ID: id, Name: id, Difficulty: card.Easy, Focus: 1, Persistence: card.Thought}
}

func newTestSet(t *testing.T, draw int, requests int) *Set {
	t.Helper()
	s := New()
	for i := 0; i < draw; i++ {
		s.Add(newDef("c"), Draw, card.Context{})
	}
	for i := 0; i < requests; i++ {
		s.Add(newDef("r"), Request, card.Context{Threshold: 5})
	}
	s.Seal(rand.New(rand.NewSource(1)))
	return s
}

func TestDraw_ShortDraw(t *testing.T) {
	s := newTestSet(t, 3, 0)

	drawn := s.Draw(2)
	assert.Len(t, drawn, 2)
	assert.Equal(t, 1, s.Len(Draw))

	drawn = s.Draw(5)
	assert.Len(t, drawn, 1, "empty draw pile should give a short draw")
	assert.Equal(t, 0, s.Len(Draw))
	assert.Equal(t, 3, s.Len(Hand))

	drawn = s.Draw(2)
	assert.Empty(t, drawn)
}

func TestMoves_ConserveInstances(t *testing.T) {
	s := newTestSet(t, 6, 2)
	total := s.Counts().Total()
	require.Equal(t, 8, total)

	hand := s.Draw(4)
	require.NoError(t, s.Play(hand[0].Handle))
	require.NoError(t, s.ExhaustFromHand(hand[1].Handle))
	require.NoError(t, s.DiscardFromHand(hand[2].Handle))
	req := s.Requests()[0]
	require.NoError(t, s.PromoteRequest(req.Handle))

	assert.Equal(t, total, s.Counts().Total())
	assert.Equal(t, Counts{Draw: 2, Hand: 2, Discard: 2, Exhaust: 1, Request: 1}, s.Counts())
	assert.True(t, req.Playable, "promotion should clear the unplayable flag")
	assert.Len(t, s.History(), 1)
	assert.Equal(t, hand[0].Handle, s.History()[0].Handle)

	assert.NotPanics(t, s.CheckInvariants)
}

func TestMoves_WrongPile(t *testing.T) {
	s := newTestSet(t, 2, 1)
	drawPile := s.Cards(Draw)

	err := s.Play(drawPile[0].Handle)
	assert.True(t, errors.Is(err, ErrWrongPile), "playing from draw pile should fail, got %v", err)

	err = s.PromoteRequest(drawPile[0].Handle)
	assert.True(t, errors.Is(err, ErrWrongPile))

	err = s.ExhaustFromHand(card.Handle(99))
	assert.True(t, errors.Is(err, ErrUnknownHandle))

	assert.Equal(t, 3, s.Counts().Total())
}

func TestRequestCardsStartUnplayable(t *testing.T) {
	s := newTestSet(t, 0, 1)
	req := s.Requests()[0]
	assert.False(t, req.Playable)

	inst, p, ok := s.Lookup(req.Handle)
	require.True(t, ok)
	assert.Equal(t, Request, p)
	assert.Same(t, req, inst)
}

func TestCheckInvariants_DetectsDuplicate(t *testing.T) {
	s := newTestSet(t, 2, 0)
	s.order[Hand] = append(s.order[Hand], s.order[Draw][0])
	assert.Panics(t, s.CheckInvariants)
}

func TestAddAfterSealPanics(t *testing.T) {
	s := newTestSet(t, 1, 0)
	assert.Panics(t, func() { s.Add(newDef("late"), Draw, card.Context{}) })
}

func TestSeal_Deterministic(t *testing.T) {
	build := func() []card.Handle {
		s := New()
		for i := 0; i < 10; i++ {
			s.Add(newDef("c"), Draw, card.Context{})
		}
		s.Seal(rand.New(rand.NewSource(42)))
		var hs []card.Handle
		for _, inst := range s.Cards(Draw) {
			hs = append(hs, inst.Handle)
		}
		return hs
	}
	assert.Equal(t, build(), build())
}
