package conversation

import (
	"errors"
	"fmt"
)

// Kind is the purpose of a conversation. It decides which goal cards are
// dealt and how quickly doubt builds.
type Kind string

const (
	KindFriendlyChat Kind = "friendly_chat"
	KindRequest      Kind = "request"
	KindDelivery     Kind = "delivery"
	KindResolution   Kind = "resolution"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFriendlyChat, KindRequest, KindDelivery, KindResolution:
		return k, nil
	case "":
		return KindFriendlyChat, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// DoubtPerListen is the doubt added on every LISTEN.
func (k Kind) DoubtPerListen() int {
	switch k {
	case KindRequest:
		return 1
	case KindResolution:
		return 2
	default:
		return 0
	}
}

// EndReason records why a session ended.
type EndReason string

const (
	EndNone             EndReason = ""
	EndDoubtOverflow    EndReason = "doubt_overflow"
	EndCollapse         EndReason = "relationship_collapse"
	EndCardsExhausted   EndReason = "cards_exhausted"
	EndFinalFailure     EndReason = "final_failure"
	EndRequestFulfilled EndReason = "request_fulfilled"
	EndPlayerLeft       EndReason = "player_left"
)

// Failed reports whether the reason counts against the player.
func (r EndReason) Failed() bool {
	switch r {
	case EndDoubtOverflow, EndCollapse, EndFinalFailure:
		return true
	default:
		return false
	}
}

type Action string

const (
	ActionStart  Action = "start"
	ActionListen Action = "listen"
	ActionSpeak  Action = "speak"
	ActionEnd    Action = "end"
)

var (
	ErrNilSession      = errors.New("session is nil")
	ErrSessionEnded    = errors.New("session has ended")
	ErrCardNotInHand   = errors.New("card is not in hand")
	ErrUnknownNPC      = errors.New("unknown npc")
	ErrInvalidKind     = errors.New("invalid conversation kind")
	ErrActiveSession   = errors.New("player already has an active conversation")
	ErrSessionNotFound = errors.New("session not found")
)
