// Package obligation describes follow-up deliveries created by successful
// conversations.
package obligation

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/parley/pkg/relationship"
)

type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

// TierFor picks the obligation tier from the relationship state reached.
func TierFor(state relationship.State) Tier {
	switch {
	case state >= relationship.Trusting:
		return Tier3
	case state >= relationship.Neutral:
		return Tier2
	default:
		return Tier1
	}
}

// Obligation is a letter the player has agreed to deliver.
type Obligation struct {
	ID               string                      `json:"id"`
	SenderID         string                      `json:"sender_id"`
	RecipientID      string                      `json:"recipient_id"`
	TokenType        relationship.ConnectionType `json:"token_type"`
	Tier             Tier                        `json:"tier"`
	DeadlineSegments int                         `json:"deadline_segments"`
	Payment          int                         `json:"payment"`
	Priority         int                         `json:"priority"`
	CreatedAt        time.Time                   `json:"created_at"`
}

// Qualifies reports whether a conversation ending in state with the given
// momentum earns a letter.
func Qualifies(state relationship.State, momentum int) bool {
	return state == relationship.Trusting || (state == relationship.Receptive && momentum > 5)
}

// NewLetter builds the letter obligation for a conversation ending in state.
func NewLetter(senderID, recipientID string, state relationship.State, now time.Time) *Obligation {
	deadline := 12 - int(state)*2
	if deadline < 2 {
		deadline = 2
	}
	return &Obligation{
		ID:               uuid.New().String(),
		SenderID:         senderID,
		RecipientID:      recipientID,
		TokenType:        relationship.Trust,
		Tier:             TierFor(state),
		DeadlineSegments: deadline,
		Payment:          5 + int(state),
		CreatedAt:        now,
	}
}
