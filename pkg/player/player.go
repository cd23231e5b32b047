package player

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/d20"
)

// Stat is a conversational skill a card can be bound to.
type Stat string

const (
	Insight   Stat = "insight"
	Rapport   Stat = "rapport"
	Authority Stat = "authority"
	Commerce  Stat = "commerce"
	Cunning   Stat = "cunning"
	Diplomacy Stat = "diplomacy"
)

// AllStats lists every stat in display order.
var AllStats = []Stat{Insight, Rapport, Authority, Commerce, Cunning, Diplomacy}

const (
	XPPerLevel = 10
	MaxLevel   = 5

	// MasteryLevel is the level at which a failed card no longer forces a LISTEN.
	MasteryLevel = 5
)

// Valid reports whether s is a known stat. The empty stat is not valid.
func (s Stat) Valid() bool {
	for _, known := range AllStats {
		if s == known {
			return true
		}
	}
	return false
}

// Stats is the persisted experience a player has earned per stat.
type Stats struct {
	PlayerID string       `json:"player_id"`
	XP       map[Stat]int `json:"xp"`
}

// NewStats returns a zeroed stat sheet.
func NewStats(playerID string) *Stats {
	return &Stats{PlayerID: playerID, XP: make(map[Stat]int)}
}

// LevelForXP converts accumulated experience into a level in [1, MaxLevel].
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := 1 + xp/XPPerLevel
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// Level returns the current level of stat.
func (s *Stats) Level(stat Stat) int {
	if s == nil {
		return 1
	}
	return LevelForXP(s.XP[stat])
}

// Grant adds experience to a stat.
func (s *Stats) Grant(stat Stat, amount int) {
	if s.XP == nil {
		s.XP = make(map[Stat]int)
	}
	s.XP[stat] += amount
}

// Actor builds a d20 actor whose attributes are the player's stat levels.
// Conversation code reads levels back through LevelOf.
func (s *Stats) Actor() (*d20.Actor, error) {
	id := "player"
	if s != nil && s.PlayerID != "" {
		id = s.PlayerID
	}

	attrs := make(map[string]int, len(AllStats))
	for _, stat := range AllStats {
		attrs[string(stat)] = s.Level(stat)
	}

	actor, err := d20.NewActor(id).
		WithHP(1).
		WithAC(10).
		WithAttributes(attrs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build player actor: %w", err)
	}
	return actor, nil
}

// LevelOf reads a stat level from an actor built by Stats.Actor.
// Unknown stats and nil actors report level 1.
func LevelOf(actor *d20.Actor, stat Stat) int {
	if actor == nil || stat == "" {
		return 1
	}
	level, ok := actor.Attribute(string(stat))
	if !ok || level < 1 {
		return 1
	}
	return level
}

// Summary returns "stat:level" pairs sorted by stat name.
func (s *Stats) Summary() []string {
	out := make([]string, 0, len(AllStats))
	for _, stat := range AllStats {
		out = append(out, fmt.Sprintf("%s:%d", stat, s.Level(stat)))
	}
	sort.Strings(out)
	return out
}
