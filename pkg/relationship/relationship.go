package relationship

import (
	"fmt"
	"strings"
	"time"
)

// State is how receptive an NPC currently is toward the player.
// The ordering matters: transitions only ever move one step.
type State int

const (
	Disconnected State = iota
	Guarded
	Neutral
	Receptive
	Trusting
)

var stateNames = [...]string{"disconnected", "guarded", "neutral", "receptive", "trusting"}

func (s State) String() string {
	if s < Disconnected || s > Trusting {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState converts a state name into a State. Matching is case-insensitive.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return State(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown relationship state %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Up returns the next warmer state. The second value is false when s is
// already Trusting.
func (s State) Up() (State, bool) {
	if s >= Trusting {
		return Trusting, false
	}
	return s + 1, true
}

// Down returns the next colder state. The second value is false when s is
// already Disconnected.
func (s State) Down() (State, bool) {
	if s <= Disconnected {
		return Disconnected, false
	}
	return s - 1, true
}

// FocusCapacity is the per-turn focus budget granted by the state.
func (s State) FocusCapacity() int {
	switch s {
	case Disconnected:
		return 3
	case Guarded:
		return 4
	case Neutral, Receptive:
		return 5
	case Trusting:
		return 6
	default:
		return 5
	}
}

// DrawCount is the number of cards drawn on LISTEN before modifiers.
func (s State) DrawCount() int {
	switch s {
	case Disconnected:
		return 1
	case Guarded, Neutral:
		return 2
	case Receptive, Trusting:
		return 3
	default:
		return 2
	}
}

// TokenReward is the base number of connection tokens awarded when a
// conversation ends in this state. It can be negative.
func (s State) TokenReward() int {
	switch s {
	case Trusting:
		return 3
	case Receptive:
		return 2
	case Neutral:
		return 1
	case Guarded:
		return 0
	default:
		return -1
	}
}

// ConnectionType categorizes the tokens a player holds with an NPC.
type ConnectionType string

const (
	Trust    ConnectionType = "trust"
	Commerce ConnectionType = "commerce"
	Status   ConnectionType = "status"
	Shadow   ConnectionType = "shadow"
)

// Valid reports whether c is one of the known connection types.
func (c ConnectionType) Valid() bool {
	switch c {
	case Trust, Commerce, Status, Shadow:
		return true
	default:
		return false
	}
}

// Tokens counts connection tokens by type.
type Tokens map[ConnectionType]int

// Total returns the sum of all token counts.
func (t Tokens) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Has reports whether at least n tokens of type c are held.
func (t Tokens) Has(c ConnectionType, n int) bool {
	return t[c] >= n
}

// Clone returns an independent copy of t.
func (t Tokens) Clone() Tokens {
	out := make(Tokens, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Record is the persisted relationship between one player and one NPC.
type Record struct {
	PlayerID         string    `json:"player_id"`
	NPCID            string    `json:"npc_id"`
	State            State     `json:"state"`
	Flow             int       `json:"flow"`
	Tokens           Tokens    `json:"tokens,omitempty"`
	LastObligationID string    `json:"last_obligation_id,omitempty"`
	Conversations    int       `json:"conversations"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewRecord returns the relationship used for an NPC the player has never
// spoken with.
func NewRecord(playerID, npcID string) *Record {
	return &Record{
		PlayerID: playerID,
		NPCID:    npcID,
		State:    Neutral,
		Tokens:   Tokens{},
	}
}
