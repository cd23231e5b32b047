package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/conversation"
	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/storage"
)

const turnTimeout = 30 * time.Second

// Backend runs engine calls off the UI goroutine and reports back as
// messages.
type Backend struct {
	engine   *conversation.Engine
	store    storage.Storage
	playerID string
}

type sessionStartedMsg struct {
	session *conversation.Session
	turn    *conversation.TurnResult
	err     error
}

type turnMsg struct {
	turn *conversation.TurnResult
	err  error
}

type endedMsg struct {
	outcome *conversation.Outcome
	err     error
}

type obligationsMsg struct {
	queue []*obligation.Obligation
	err   error
}

func (b *Backend) start(npcID string, kind conversation.Kind) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		s, res, err := b.engine.StartSession(ctx, conversation.StartRequest{
			PlayerID: b.playerID,
			NPCID:    npcID,
			Kind:     kind,
		})
		return sessionStartedMsg{session: s, turn: res, err: err}
	}
}

func (b *Backend) listen(s *conversation.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		res, err := b.engine.Listen(ctx, s)
		return turnMsg{turn: res, err: err}
	}
}

func (b *Backend) speak(s *conversation.Session, h card.Handle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		res, err := b.engine.Speak(ctx, s, h)
		return turnMsg{turn: res, err: err}
	}
}

func (b *Backend) end(s *conversation.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		out, err := b.engine.EndSession(ctx, s)
		return endedMsg{outcome: out, err: err}
	}
}

func (b *Backend) obligations() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		queue, err := b.store.ListObligations(ctx, b.playerID)
		if err != nil {
			err = fmt.Errorf("failed to list obligations: %w", err)
		}
		return obligationsMsg{queue: queue, err: err}
	}
}
