package conversation

import (
	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

// XPGrant is the experience earned by one SPEAK.
type XPGrant struct {
	Stat   player.Stat `json:"stat"`
	Amount int         `json:"amount"`
}

// TurnResult describes one action. Rejected results carry a Reason and
// leave the session untouched.
type TurnResult struct {
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`
	Action    Action `json:"action"`

	Rejected bool   `json:"rejected,omitempty"`
	Reason   string `json:"reason,omitempty"`

	Success     bool `json:"success"`
	SuccessRate int  `json:"success_rate,omitempty"`
	Needed      int  `json:"needed,omitempty"` // zero when the atmosphere guaranteed success

	Played    *card.Instance   `json:"played,omitempty"`
	Drawn     []*card.Instance `json:"drawn,omitempty"`
	Exhausted []*card.Instance `json:"exhausted,omitempty"`
	Discarded []*card.Instance `json:"discarded,omitempty"`
	Promoted  []*card.Instance `json:"promoted,omitempty"`

	PreviousState relationship.State `json:"previous_state"`
	State         relationship.State `json:"state"`
	Flow          int                `json:"flow"`
	FlowDelta     int                `json:"flow_delta"`
	Momentum      int                `json:"momentum"`
	MomentumDelta int                `json:"momentum_delta"`
	Doubt         int                `json:"doubt"`
	DoubtDelta    int                `json:"doubt_delta"`
	Focus         int                `json:"focus"`
	FocusCapacity int                `json:"focus_capacity"`
	Atmosphere    atmosphere.Type    `json:"atmosphere"`
	ForcedListen  bool               `json:"forced_listen,omitempty"`
	Reprioritize  bool               `json:"reprioritize,omitempty"`
	XP            *XPGrant           `json:"xp,omitempty"`
	Effects       []string           `json:"effects,omitempty"`

	Ended     bool      `json:"ended"`
	EndReason EndReason `json:"end_reason,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`

	Narrative       string `json:"narrative,omitempty"`
	NarrativeSource string `json:"narrative_source,omitempty"`
}

// Outcome summarizes a finished session.
type Outcome struct {
	SessionID       string                      `json:"session_id"`
	NPCID           string                      `json:"npc_id"`
	Success         bool                        `json:"success"`
	Reason          EndReason                   `json:"reason"`
	StartState      relationship.State          `json:"start_state"`
	FinalState      relationship.State          `json:"final_state"`
	Flow            int                         `json:"flow"`
	Momentum        int                         `json:"momentum"`
	Doubt           int                         `json:"doubt"`
	Turns           int                         `json:"turns"`
	TokensEarned    int                         `json:"tokens_earned"`
	TokenType       relationship.ConnectionType `json:"token_type"`
	RequestAchieved bool                        `json:"request_achieved"`
	Obligation      *obligation.Obligation      `json:"obligation,omitempty"`
}
