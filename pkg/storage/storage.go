package storage

import (
	"context"

	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

// Storage defines a unified interface for all persistent player data:
// relationship records, the obligation queue and stat experience.
// Loads return nil, nil when nothing has been stored yet.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Relationship records, one per player and NPC
	LoadRelationship(ctx context.Context, playerID, npcID string) (*relationship.Record, error)
	SaveRelationship(ctx context.Context, rec *relationship.Record) error

	// Obligation queue, ordered by priority
	EnqueueObligation(ctx context.Context, playerID string, o *obligation.Obligation) error
	PrioritizeObligations(ctx context.Context, playerID, senderID string) error
	ListObligations(ctx context.Context, playerID string) ([]*obligation.Obligation, error)

	// Player stat experience
	GrantExperience(ctx context.Context, playerID string, stat player.Stat, amount int) error
	LoadPlayerStats(ctx context.Context, playerID string) (*player.Stats, error)
}

// Prioritize returns queue with every obligation from senderID moved to the
// front, keeping relative order otherwise. Priorities are renumbered from 0.
func Prioritize(queue []*obligation.Obligation, senderID string) []*obligation.Obligation {
	out := make([]*obligation.Obligation, 0, len(queue))
	for _, o := range queue {
		if o.SenderID == senderID {
			out = append(out, o)
		}
	}
	for _, o := range queue {
		if o.SenderID != senderID {
			out = append(out, o)
		}
	}
	for i, o := range out {
		o.Priority = i
	}
	return out
}
