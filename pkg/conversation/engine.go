package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/catalog"
	"github.com/jwebster45206/parley/pkg/narrative"
	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

// RelationshipStore persists per-NPC relationship records. A missing record
// loads as nil, nil.
type RelationshipStore interface {
	LoadRelationship(ctx context.Context, playerID, npcID string) (*relationship.Record, error)
	SaveRelationship(ctx context.Context, rec *relationship.Record) error
}

// ObligationQueue receives letters produced by conversations.
type ObligationQueue interface {
	EnqueueObligation(ctx context.Context, playerID string, o *obligation.Obligation) error
	// PrioritizeObligations moves every pending obligation from senderID to
	// the front of the player's queue.
	PrioritizeObligations(ctx context.Context, playerID, senderID string) error
}

// ExperienceStore tracks the player's stat XP.
type ExperienceStore interface {
	GrantExperience(ctx context.Context, playerID string, stat player.Stat, amount int) error
	LoadPlayerStats(ctx context.Context, playerID string) (*player.Stats, error)
}

// Store is everything the engine persists.
type Store interface {
	RelationshipStore
	ObligationQueue
	ExperienceStore
}

// DefaultSessionRetention is how long a session that ended on its own stays
// readable when Options.SessionRetention is zero.
const DefaultSessionRetention = 30 * time.Minute

// Options configures an Engine.
type Options struct {
	Catalog          *catalog.Catalog
	Store            Store
	Narrator         narrative.Narrator // nil uses the fallback narrative
	NarrativeTimeout time.Duration
	SessionRetention time.Duration
	Seed             int64 // zero seeds from the clock
	Logger           *slog.Logger
	Now              func() time.Time
}

// StartRequest names the NPC and the purpose of a new conversation.
type StartRequest struct {
	PlayerID string `json:"player_id"`
	NPCID    string `json:"npc_id"`
	Kind     Kind   `json:"kind"`
	Seed     int64  `json:"seed,omitempty"`
}

// Engine owns live sessions and does all of their I/O.
type Engine struct {
	catalog  *catalog.Catalog
	store    Store
	narrator narrative.Narrator
	timeout   time.Duration
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	seeds    *rand.Rand
	sessions map[string]*Session
	active   map[string]string    // player ID to session ID
	endedAt  map[string]time.Time // persisted sessions awaiting eviction
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = now().UnixNano()
	}
	retention := opts.SessionRetention
	if retention <= 0 {
		retention = DefaultSessionRetention
	}
	return &Engine{
		catalog:   opts.Catalog,
		store:     opts.Store,
		narrator:  opts.Narrator,
		timeout:   opts.NarrativeTimeout,
		retention: retention,
		logger:    logger,
		now:       now,
		seeds:     rand.New(rand.NewSource(seed)),
		sessions:  make(map[string]*Session),
		active:    make(map[string]string),
		endedAt:   make(map[string]time.Time),
	}, nil
}

// StartSession loads the relationship and player stats, deals the deck and
// registers the session as the player's active conversation.
func (e *Engine) StartSession(ctx context.Context, req StartRequest) (*Session, *TurnResult, error) {
	npc, ok := e.catalog.NPC(req.NPCID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownNPC, req.NPCID)
	}
	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	e.evictLocked()
	if id, busy := e.active[req.PlayerID]; busy {
		e.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrActiveSession, id)
	}
	seed := req.Seed
	if seed == 0 {
		seed = e.seeds.Int63()
	}
	e.mu.Unlock()

	rec, err := e.store.LoadRelationship(ctx, req.PlayerID, npc.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load relationship: %w", err)
	}
	stats, err := e.store.LoadPlayerStats(ctx, req.PlayerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load player stats: %w", err)
	}
	if stats == nil {
		stats = player.NewStats(req.PlayerID)
	}
	actor, err := stats.Actor()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build player actor: %w", err)
	}

	deckIDs := npc.Deck
	if kind == KindResolution {
		deckIDs = append(append([]string{}, npc.Deck...), npc.Burdens...)
	}
	deck, err := e.catalog.Resolve(deckIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve deck: %w", err)
	}
	var requests []RequestCard
	if kind == KindRequest {
		for _, r := range npc.Requests {
			def, ok := e.catalog.Card(r.Card)
			if !ok {
				return nil, nil, fmt.Errorf("request %q: unknown card %q", r.ID, r.Card)
			}
			requests = append(requests, RequestCard{
				Def: def,
				Context: card.Context{
					Threshold:           r.Threshold,
					RequestID:           r.ID,
					SuccessRateOverride: 100,
				},
			})
		}
	}
	var recipient string
	if other, ok := e.catalog.OtherNPC(npc.ID); ok {
		recipient = other.ID
	}

	s, res, err := NewSession(Config{
		PlayerID:  req.PlayerID,
		NPC:       npc,
		Kind:      kind,
		Deck:      deck,
		Requests:  requests,
		Record:    rec,
		Player:    actor,
		Rand:      rand.New(rand.NewSource(seed)),
		Recipient: recipient,
		Now:       e.now,
	})
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	if id, busy := e.active[req.PlayerID]; busy {
		e.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: %s", ErrActiveSession, id)
	}
	e.sessions[s.ID()] = s
	e.active[req.PlayerID] = s.ID()
	e.mu.Unlock()

	e.logger.Info("Conversation started",
		"session_id", s.ID(),
		"player_id", req.PlayerID,
		"npc_id", npc.ID,
		"kind", kind,
		"state", res.State.String(),
		"momentum", res.Momentum,
		"seed", seed)

	if err := e.afterTurn(ctx, s, res); err != nil {
		return s, res, err
	}
	return s, res, nil
}

func (e *Engine) Listen(ctx context.Context, s *Session) (*TurnResult, error) {
	res, err := s.Listen()
	if err != nil {
		return nil, err
	}
	return res, e.afterTurn(ctx, s, res)
}

func (e *Engine) Speak(ctx context.Context, s *Session, h card.Handle) (*TurnResult, error) {
	res, err := s.Speak(h)
	if err != nil {
		return nil, err
	}
	if res.Rejected {
		e.logger.Debug("Play rejected", "session_id", s.ID(), "card", h, "reason", res.Reason)
		return res, nil
	}
	if res.XP != nil {
		if err := e.store.GrantExperience(ctx, s.PlayerID(), res.XP.Stat, res.XP.Amount); err != nil {
			return res, fmt.Errorf("failed to grant experience: %w", err)
		}
	}
	if res.Reprioritize {
		if err := e.store.PrioritizeObligations(ctx, s.PlayerID(), s.NPC().ID); err != nil {
			return res, fmt.Errorf("failed to prioritize obligations: %w", err)
		}
	}
	return res, e.afterTurn(ctx, s, res)
}

// EndSession finishes the session, persists its outcome if that has not
// happened yet, and forgets it. When persisting fails the session stays
// registered and active so the call can be retried.
func (e *Engine) EndSession(ctx context.Context, s *Session) (*Outcome, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	out, err := e.finalize(ctx, s)
	if err != nil {
		return out, err
	}
	e.mu.Lock()
	delete(e.sessions, s.ID())
	delete(e.endedAt, s.ID())
	e.mu.Unlock()
	return out, nil
}

// Session looks up a live session, or one that ended on its own within the
// retention window.
func (e *Engine) Session(id string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evictLocked()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// ActiveSession returns the player's running conversation, if any.
func (e *Engine) ActiveSession(playerID string) (*Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, ok := e.active[playerID]
	if !ok {
		return nil, false
	}
	return e.sessions[id], true
}

func (e *Engine) afterTurn(ctx context.Context, s *Session, res *TurnResult) error {
	if res.State != res.PreviousState {
		e.logger.Debug("Relationship state changed",
			"session_id", s.ID(),
			"from", res.PreviousState.String(),
			"to", res.State.String())
	}

	var err error
	if res.Ended {
		res.Outcome, err = e.finalize(ctx, s)
	}

	text, source, nerr := narrative.Describe(ctx, e.narrator, s.Snapshot(res), e.timeout)
	if nerr != nil {
		e.logger.Warn("Narrative unavailable, using fallback", "session_id", s.ID(), "error", nerr)
	}
	res.Narrative = text
	res.NarrativeSource = source
	return err
}

// finalize persists the outcome once. The player's active slot is released
// only after the relationship and any obligation are stored.
func (e *Engine) finalize(ctx context.Context, s *Session) (*Outcome, error) {
	out := s.Finish()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.saved {
		return out, nil
	}
	if err := e.persist(ctx, s, out); err != nil {
		return out, err
	}
	s.saved = true

	e.mu.Lock()
	if id, ok := e.active[s.PlayerID()]; ok && id == s.ID() {
		delete(e.active, s.PlayerID())
	}
	if _, ok := e.sessions[s.ID()]; ok {
		e.endedAt[s.ID()] = e.now()
	}
	e.mu.Unlock()

	e.logger.Info("Conversation ended",
		"session_id", s.ID(),
		"npc_id", out.NPCID,
		"reason", out.Reason,
		"success", out.Success,
		"final_state", out.FinalState.String(),
		"tokens_earned", out.TokensEarned,
		"turns", out.Turns)
	if out.Obligation != nil {
		e.logger.Info("Obligation created",
			"session_id", s.ID(),
			"obligation_id", out.Obligation.ID,
			"recipient", out.Obligation.RecipientID,
			"deadline", out.Obligation.DeadlineSegments)
	}
	return out, nil
}

func (e *Engine) persist(ctx context.Context, s *Session, out *Outcome) error {
	if err := e.store.SaveRelationship(ctx, s.UpdatedRecord()); err != nil {
		e.logger.Error("Failed to persist conversation", "session_id", s.ID(), "error", err)
		return fmt.Errorf("failed to save relationship: %w", err)
	}
	if out.Obligation != nil && !s.obligationQueued {
		if err := e.store.EnqueueObligation(ctx, s.PlayerID(), out.Obligation); err != nil {
			e.logger.Error("Failed to persist conversation", "session_id", s.ID(), "error", err)
			return fmt.Errorf("failed to enqueue obligation: %w", err)
		}
		s.obligationQueued = true
	}
	return nil
}

// evictLocked drops sessions that were persisted longer ago than the
// retention window. e.mu must be held.
func (e *Engine) evictLocked() {
	now := e.now()
	for id, at := range e.endedAt {
		if now.Sub(at) >= e.retention {
			delete(e.sessions, id)
			delete(e.endedAt, id)
		}
	}
}
