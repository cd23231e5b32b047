// Package catalog loads card definitions and NPC profiles from a data
// directory. Files may be YAML or JSON.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/personality"
	"github.com/jwebster45206/parley/pkg/relationship"
	"gopkg.in/yaml.v3"
)

// Request is a goal card an NPC can offer during a request conversation.
type Request struct {
	ID        string `json:"id" yaml:"id"`
	Card      string `json:"card" yaml:"card"`
	Threshold int    `json:"threshold" yaml:"threshold"`
}

// NPC is the static profile of a conversation partner.
type NPC struct {
	ID          string                      `json:"id" yaml:"id"`
	Name        string                      `json:"name" yaml:"name"`
	Description string                      `json:"description,omitempty" yaml:"description,omitempty"`
	Level       int                         `json:"level,omitempty" yaml:"level,omitempty"`
	Personality personality.Rule            `json:"personality,omitempty" yaml:"personality,omitempty"`
	Params      personality.Params          `json:"personality_params,omitempty" yaml:"personality_params,omitempty"`
	Connection  relationship.ConnectionType `json:"connection,omitempty" yaml:"connection,omitempty"`
	Deck        []string                    `json:"deck" yaml:"deck"`
	Requests    []Request                   `json:"requests,omitempty" yaml:"requests,omitempty"`
	Burdens     []string                    `json:"burdens,omitempty" yaml:"burdens,omitempty"`
}

type cardFile struct {
	Cards []*card.Definition `yaml:"cards"`
}

// Catalog is read-only after construction.
type Catalog struct {
	cards map[string]*card.Definition
	npcs  map[string]*NPC
}

// New validates cards and npcs and indexes them by ID.
func New(cards []*card.Definition, npcs []*NPC) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[string]*card.Definition, len(cards)),
		npcs:  make(map[string]*NPC, len(npcs)),
	}

	var errs []error
	for _, def := range cards {
		if def.Persistence == "" {
			def.Persistence = card.Thought
		}
		if def.Category == "" {
			def.Category = card.Expression
		}
		if def.Name == "" {
			def.Name = def.ID
		}
		if err := def.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.cards[def.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate card id %q", def.ID))
			continue
		}
		c.cards[def.ID] = def
	}

	for _, npc := range npcs {
		if npc.Level < 1 {
			npc.Level = 1
		}
		if npc.Connection == "" {
			npc.Connection = relationship.Trust
		}
		if npc.Personality == "" {
			npc.Personality = personality.None
		}
		if err := c.validateNPC(npc); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.npcs[npc.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate npc id %q", npc.ID))
			continue
		}
		c.npcs[npc.ID] = npc
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validateNPC(npc *NPC) error {
	var errs []error
	if npc.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if _, err := personality.New(npc.Personality, npc.Params); err != nil {
		errs = append(errs, err)
	}
	if !npc.Connection.Valid() {
		errs = append(errs, fmt.Errorf("unknown connection type %q", npc.Connection))
	}
	if len(npc.Deck) == 0 {
		errs = append(errs, errors.New("deck is empty"))
	}
	for _, id := range append(append([]string{}, npc.Deck...), npc.Burdens...) {
		if _, ok := c.cards[id]; !ok {
			errs = append(errs, fmt.Errorf("unknown card %q", id))
		}
	}
	for _, req := range npc.Requests {
		def, ok := c.cards[req.Card]
		if !ok {
			errs = append(errs, fmt.Errorf("request %q uses unknown card %q", req.ID, req.Card))
			continue
		}
		if !def.Category.IsGoal() {
			errs = append(errs, fmt.Errorf("request %q uses card %q which is not a goal card", req.ID, req.Card))
		}
		if req.Threshold < 0 {
			errs = append(errs, fmt.Errorf("request %q has negative threshold", req.ID))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("npc %q: %w", npc.ID, err)
	}
	return nil
}

// Load reads <dir>/cards and <dir>/npcs. NPC ids default to the file name.
func Load(dir string) (*Catalog, error) {
	var cards []*card.Definition
	err := eachFile(filepath.Join(dir, "cards"), func(path string, data []byte) error {
		var f cardFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("failed to parse card file %s: %w", path, err)
		}
		cards = append(cards, f.Cards...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var npcs []*NPC
	err = eachFile(filepath.Join(dir, "npcs"), func(path string, data []byte) error {
		var npc NPC
		if err := yaml.Unmarshal(data, &npc); err != nil {
			return fmt.Errorf("failed to parse npc file %s: %w", path, err)
		}
		if npc.ID == "" {
			npc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		npcs = append(npcs, &npc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return New(cards, npcs)
}

func eachFile(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) Card(id string) (*card.Definition, bool) {
	def, ok := c.cards[id]
	return def, ok
}

func (c *Catalog) NPC(id string) (*NPC, bool) {
	npc, ok := c.npcs[id]
	return npc, ok
}

// NPCs returns every NPC sorted by ID.
func (c *Catalog) NPCs() []*NPC {
	out := make([]*NPC, 0, len(c.npcs))
	for _, npc := range c.npcs {
		out = append(out, npc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cards returns every card sorted by ID.
func (c *Catalog) Cards() []*card.Definition {
	out := make([]*card.Definition, 0, len(c.cards))
	for _, def := range c.cards {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve maps card ids to definitions, keeping duplicates.
func (c *Catalog) Resolve(ids []string) ([]*card.Definition, error) {
	out := make([]*card.Definition, 0, len(ids))
	for _, id := range ids {
		def, ok := c.cards[id]
		if !ok {
			return nil, fmt.Errorf("unknown card %q", id)
		}
		out = append(out, def)
	}
	return out, nil
}

// OtherNPC returns the first NPC by ID that is not excludeID.
func (c *Catalog) OtherNPC(excludeID string) (*NPC, bool) {
	for _, npc := range c.NPCs() {
		if npc.ID != excludeID {
			return npc, true
		}
	}
	return nil, false
}
