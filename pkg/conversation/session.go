// Package conversation runs a single conversation between the player and an
// NPC as a deterministic card game, and wires finished conversations back
// into persistent storage.
package conversation

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
	"github.com/jwebster45206/parley/pkg/atmosphere"
	"github.com/jwebster45206/parley/pkg/card"
	"github.com/jwebster45206/parley/pkg/catalog"
	"github.com/jwebster45206/parley/pkg/effect"
	"github.com/jwebster45206/parley/pkg/flow"
	"github.com/jwebster45206/parley/pkg/focus"
	"github.com/jwebster45206/parley/pkg/ledger"
	"github.com/jwebster45206/parley/pkg/narrative"
	"github.com/jwebster45206/parley/pkg/obligation"
	"github.com/jwebster45206/parley/pkg/personality"
	"github.com/jwebster45206/parley/pkg/pile"
	"github.com/jwebster45206/parley/pkg/player"
	"github.com/jwebster45206/parley/pkg/relationship"
)

// RequestCard is a goal card dealt into the Request pile.
type RequestCard struct {
	Def     *card.Definition
	Context card.Context
}

// Config seeds a new session.
type Config struct {
	ID        string
	PlayerID  string
	NPC       *catalog.NPC
	Kind      Kind
	Deck      []*card.Definition
	Requests  []RequestCard
	Record    *relationship.Record
	Player    *d20.Actor
	Rand      *rand.Rand // shuffles the draw pile
	Judge     Judge
	Recipient string // receives any letter this conversation produces
	Now       func() time.Time
}

// Session is one conversation. All methods are safe for concurrent use;
// actions are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	playerID  string
	npc       *catalog.NPC
	kind      Kind
	record    relationship.Record
	player    *d20.Actor
	recipient string
	now       func() time.Time

	piles  *pile.Set
	focus  *focus.Pool
	flow   *flow.Battery
	ledger *ledger.Ledger
	atm    atmosphere.Modifier
	rules  personality.Enforcer
	judge  Judge

	turn            int
	mustListen      bool
	requestAchieved bool
	ended           bool
	endReason       EndReason
	outcome         *Outcome
	finalRecord     *relationship.Record

	// Held by the engine while it persists the outcome.
	saveMu           sync.Mutex
	saved            bool
	obligationQueued bool
}

// NewSession builds a session, deals the opening hand, and promotes any goal
// card whose threshold the seeded momentum already meets.
func NewSession(cfg Config) (*Session, *TurnResult, error) {
	if cfg.NPC == nil {
		return nil, nil, ErrUnknownNPC
	}
	kind, err := ParseKind(string(cfg.Kind))
	if err != nil {
		return nil, nil, err
	}
	rules, err := personality.New(cfg.NPC.Personality, cfg.NPC.Params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create personality: %w", err)
	}

	rec := cfg.Record
	if rec == nil {
		rec = relationship.NewRecord(cfg.PlayerID, cfg.NPC.ID)
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	judge := cfg.Judge
	if judge == nil {
		judge = NewJudge()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	id := cfg.ID
	if id == "" {
		id = uuid.New().String()
	}

	s := &Session{
		id:        id,
		playerID:  cfg.PlayerID,
		npc:       cfg.NPC,
		kind:      kind,
		record:    *rec,
		player:    cfg.Player,
		recipient: cfg.Recipient,
		now:       now,
		piles:     pile.New(),
		flow:      flow.New(rec.State, rec.Flow),
		ledger:    ledger.New(rec.Tokens.Total()),
		rules:     rules,
		judge:     judge,
	}
	s.record.Tokens = rec.Tokens.Clone()
	s.atm.Clear()
	s.focus = focus.New(func() int {
		return s.flow.State().FocusCapacity() + s.atm.Current().FocusBonus()
	})

	for _, def := range cfg.Deck {
		inst := s.piles.Add(def, pile.Draw, card.Context{})
		inst.Playable = !s.gated(def)
	}
	for _, req := range cfg.Requests {
		s.piles.Add(req.Def, pile.Request, req.Context)
	}
	s.piles.Seal(rng)

	res := &TurnResult{Action: ActionStart, PreviousState: s.flow.State()}
	m0, d0 := s.ledger.Momentum(), s.ledger.Doubt()
	res.Promoted = s.promoteRequests()
	res.Drawn = s.piles.Draw(s.flow.State().DrawCount())
	s.checkTermination()
	return s, s.finish(res, m0, d0), nil
}

// Listen draws new cards. It adds doubt for the conversation kind and any
// unspent focus, exhausts Opening cards, refreshes focus, erodes momentum,
// and promotes goal cards that have become reachable.
func (s *Session) Listen() (*TurnResult, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, ErrSessionEnded
	}

	res := &TurnResult{Action: ActionListen, PreviousState: s.flow.State()}
	m0, d0 := s.ledger.Momentum(), s.ledger.Doubt()
	s.turn++

	s.ledger.AddDoubt(s.kind.DoubtPerListen() + s.focus.Available())

	atm := s.atm.Current()
	for _, inst := range s.piles.Hand() {
		if s.ended {
			break
		}
		if inst.Def.Persistence == card.Opening {
			s.exhaust(res, inst, atm)
		}
	}

	s.focus.Refresh()
	s.mustListen = false
	if !s.ended {
		res.Drawn = append(res.Drawn, s.piles.Draw(s.drawCount())...)
		if lost := s.ledger.Erode(s.rules.ErosionMultiplier()); lost > 0 {
			res.Effects = append(res.Effects, fmt.Sprintf("erosion, momentum -%d", lost))
		}
		res.Promoted = s.promoteRequests()
	}
	s.rules.OnListen()

	s.checkTermination()
	return s.finish(res, m0, d0), nil
}

// Speak plays one card from the hand. Rule violations come back as a
// rejected result with nothing changed; a handle that is not in the hand is
// an error.
func (s *Session) Speak(h card.Handle) (*TurnResult, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, ErrSessionEnded
	}

	inst, where, ok := s.piles.Lookup(h)
	if !ok || where != pile.Hand {
		return nil, fmt.Errorf("%w: %d", ErrCardNotInHand, h)
	}

	res := &TurnResult{Action: ActionSpeak, PreviousState: s.flow.State(), Played: inst}
	m0, d0 := s.ledger.Momentum(), s.ledger.Doubt()
	atm := s.atm.Current()

	if s.mustListen {
		return s.reject(res, m0, d0, "a failed play must be followed by listening"), nil
	}
	if !inst.Playable {
		return s.reject(res, m0, d0, fmt.Sprintf("%s cannot be played yet", inst.Def.Name)), nil
	}
	if err := s.rules.ValidatePlay(inst.Def); err != nil {
		return s.reject(res, m0, d0, err.Error()), nil
	}
	cost := inst.Def.Focus
	if atm.WaivesFocusCost() {
		cost = 0
	}
	if cost > s.focus.Available() {
		reason := fmt.Sprintf("%s needs %d focus, only %d available", inst.Def.Name, cost, s.focus.Available())
		return s.reject(res, m0, d0, reason), nil
	}

	s.turn++
	res.SuccessRate = s.successRate(inst)
	if atm.AutoSucceeds() {
		res.Success = true
	} else {
		res.Needed = s.judge.Need(res.SuccessRate)
		res.Success = res.SuccessRate >= res.Needed
	}

	s.must(s.focus.Spend(cost))
	s.must(s.piles.Play(h))

	in := effect.Input{Card: inst.Def, Atmosphere: atm, Rules: s.rules}
	var proj effect.Projection
	if res.Success {
		proj = effect.Success(in)
	} else {
		proj = effect.Failure(in)
	}
	s.resolve(res, inst, proj, atm)

	s.checkTermination()
	return s.finish(res, m0, d0), nil
}

// resolve applies a played card's projection and everything that follows
// from it. A collapse ends the session before anything else changes.
func (s *Session) resolve(res *TurnResult, inst *card.Instance, proj effect.Projection, atm atmosphere.Type) {
	s.apply(res, proj, atm)
	if s.endReason == EndCollapse {
		return
	}

	if res.Success {
		s.atm.ConsumeOneShot()
		if proj.SetAtmosphere != "" {
			s.atm.Set(proj.SetAtmosphere)
		}
	} else {
		if proj.EndsConversation {
			s.end(EndFinalFailure)
		}
		s.atm.Clear()
	}

	inst.XP++
	if inst.Def.Stat != "" {
		res.XP = &XPGrant{Stat: inst.Def.Stat, Amount: s.xpPerSpeak()}
	}
	s.rules.OnCardPlayed(inst.Def)

	if !res.Success && !s.ended && !s.ignoresForcedListen(inst.Def) {
		s.focus.Deplete()
		s.mustListen = true
		res.ForcedListen = true
	}
	if res.Success && inst.Def.Category.IsGoal() {
		s.requestAchieved = true
		s.end(EndRequestFulfilled)
	}

	if !s.ended {
		post := s.atm.Current()
		for _, other := range s.piles.Hand() {
			if s.ended {
				break
			}
			if other.Def.Persistence == card.Impulse {
				s.exhaust(res, other, post)
			}
		}
	}
}

// Finish ends the session if it is still running and returns its outcome.
// Later calls return the same outcome.
func (s *Session) Finish() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		return s.outcome
	}
	s.end(EndPlayerLeft)

	state := s.flow.State()
	momentum := s.ledger.Momentum()
	out := &Outcome{
		SessionID:       s.id,
		NPCID:           s.npc.ID,
		Reason:          s.endReason,
		StartState:      s.record.State,
		FinalState:      state,
		Flow:            s.flow.Value(),
		Momentum:        momentum,
		Doubt:           s.ledger.Doubt(),
		Turns:           s.turn,
		TokenType:       s.npc.Connection,
		RequestAchieved: s.requestAchieved,
		TokensEarned:    TokenReward(state, momentum, s.requestAchieved),
	}
	switch {
	case s.endReason == EndRequestFulfilled:
		out.Success = true
	case s.endReason.Failed():
		out.Success = false
	case s.kind == KindRequest:
		out.Success = s.requestAchieved
	default:
		out.Success = state >= s.record.State
	}

	if s.recipient != "" && obligation.Qualifies(state, momentum) {
		out.Obligation = obligation.NewLetter(s.npc.ID, s.recipient, state, s.now())
	}

	rec := s.record
	rec.Tokens = s.record.Tokens.Clone()
	rec.State = state
	rec.Flow = s.flow.Value()
	if out.TokensEarned > 0 {
		rec.Tokens[s.npc.Connection] += out.TokensEarned
	}
	if out.Obligation != nil {
		rec.LastObligationID = out.Obligation.ID
	}
	rec.Conversations++
	rec.UpdatedAt = s.now()

	s.outcome = out
	s.finalRecord = &rec
	return out
}

// TokenReward computes the connection tokens earned by a conversation.
func TokenReward(state relationship.State, momentum int, requestAchieved bool) int {
	tokens := state.TokenReward()
	switch {
	case momentum >= 12:
		tokens++
	case momentum < 4:
		tokens--
	}
	if tokens < 0 {
		tokens = 0
	}
	if requestAchieved {
		tokens += 2
	}
	return tokens
}

// UpdatedRecord returns the relationship record to persist. It is nil until
// Finish has been called.
func (s *Session) UpdatedRecord() *relationship.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalRecord == nil {
		return nil
	}
	rec := *s.finalRecord
	rec.Tokens = s.finalRecord.Tokens.Clone()
	return &rec
}

func (s *Session) reject(res *TurnResult, m0, d0 int, reason string) *TurnResult {
	res.Rejected = true
	res.Reason = reason
	return s.finish(res, m0, d0)
}

func (s *Session) finish(res *TurnResult, m0, d0 int) *TurnResult {
	res.SessionID = s.id
	res.Turn = s.turn
	res.State = s.flow.State()
	res.Flow = s.flow.Value()
	res.Momentum = s.ledger.Momentum()
	res.MomentumDelta = res.Momentum - m0
	res.Doubt = s.ledger.Doubt()
	res.DoubtDelta = res.Doubt - d0
	res.Focus = s.focus.Available()
	res.FocusCapacity = s.focus.Capacity()
	res.Atmosphere = s.atm.Current()
	res.Ended = s.ended
	res.EndReason = s.endReason
	s.piles.CheckInvariants()
	return res
}

func (s *Session) apply(res *TurnResult, p effect.Projection, atm atmosphere.Type) {
	s.ledger.AddMomentum(p.Momentum)
	s.ledger.AddDoubt(p.Doubt)
	if p.Focus > 0 {
		s.focus.Add(p.Focus)
	}
	if p.Flow != 0 {
		change := s.flow.ApplyDelta(p.Flow, atm)
		res.FlowDelta += change.Effective
		if change.Collapsed {
			s.end(EndCollapse)
		}
	}
	if p.Draw > 0 && !s.ended {
		res.Drawn = append(res.Drawn, s.piles.Draw(p.Draw)...)
	}
	if (p.DiscardHand || p.DiscardFocusAtLeast > 0) && !s.ended {
		for _, inst := range s.piles.Hand() {
			if p.DiscardHand || inst.Def.Focus >= p.DiscardFocusAtLeast {
				s.must(s.piles.DiscardFromHand(inst.Handle))
				res.Discarded = append(res.Discarded, inst)
			}
		}
	}
	if p.Reprioritize {
		res.Reprioritize = true
	}
	if p.Description != "" {
		res.Effects = append(res.Effects, p.Description)
	}
}

func (s *Session) exhaust(res *TurnResult, inst *card.Instance, atm atmosphere.Type) {
	s.must(s.piles.ExhaustFromHand(inst.Handle))
	res.Exhausted = append(res.Exhausted, inst)
	s.apply(res, effect.Exhaust(effect.Input{Card: inst.Def, Atmosphere: atm, Rules: s.rules}), atm)
}

func (s *Session) promoteRequests() []*card.Instance {
	var promoted []*card.Instance
	for _, inst := range s.piles.Requests() {
		if s.ledger.Momentum() >= inst.Threshold() {
			s.must(s.piles.PromoteRequest(inst.Handle))
			inst.Playable = !s.gated(inst.Def)
			promoted = append(promoted, inst)
		}
	}
	return promoted
}

func (s *Session) drawCount() int {
	n := s.flow.State().DrawCount() + s.atm.Current().DrawModifier()
	for _, inst := range s.piles.Hand() {
		if inst.Def.Persistence == card.Impulse {
			n--
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Session) successRate(inst *card.Instance) int {
	if rate, ok := inst.FixedRate(); ok {
		return clampRate(rate)
	}
	rate := inst.Def.BaseRate() - s.ledger.Penalty() + s.atm.Current().SuccessBonus()
	return clampRate(s.rules.ModifySuccessRate(inst.Def, rate))
}

func clampRate(rate int) int {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

func (s *Session) gated(def *card.Definition) bool {
	return def.TokensRequired > 0 && !s.record.Tokens.Has(def.TokenType, def.TokensRequired)
}

func (s *Session) ignoresForcedListen(def *card.Definition) bool {
	return def.IgnoresForcedListen || player.LevelOf(s.player, def.Stat) >= player.MasteryLevel
}

func (s *Session) xpPerSpeak() int {
	if s.npc.Level < 1 {
		return 1
	}
	return s.npc.Level
}

func (s *Session) checkTermination() {
	if s.ended {
		return
	}
	switch {
	case s.ledger.Overwhelmed():
		s.end(EndDoubtOverflow)
	case s.piles.Len(pile.Draw) == 0 && s.piles.Len(pile.Hand) == 0:
		s.end(EndCardsExhausted)
	}
}

func (s *Session) end(reason EndReason) {
	if s.ended {
		return
	}
	s.ended = true
	s.endReason = reason
}

func (s *Session) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("conversation %s: %v", s.id, err))
	}
}

// View is a read-only copy of the session for display.
type View struct {
	ID            string             `json:"id"`
	PlayerID      string             `json:"player_id"`
	NPCID         string             `json:"npc_id"`
	NPCName       string             `json:"npc_name"`
	Kind          Kind               `json:"kind"`
	Turn          int                `json:"turn"`
	State         relationship.State `json:"state"`
	Flow          int                `json:"flow"`
	Momentum      int                `json:"momentum"`
	Doubt         int                `json:"doubt"`
	Focus         int                `json:"focus"`
	FocusCapacity int                `json:"focus_capacity"`
	Atmosphere    atmosphere.Type    `json:"atmosphere"`
	MustListen    bool               `json:"must_listen,omitempty"`
	Personality   personality.Rule   `json:"personality"`
	Rules         string             `json:"rules"`
	Hand          []card.Instance    `json:"hand"`
	Requests      []card.Instance    `json:"requests"`
	Counts        pile.Counts        `json:"counts"`
	Ended         bool               `json:"ended"`
	EndReason     EndReason          `json:"end_reason,omitempty"`
}

func (s *Session) ID() string        { return s.id }
func (s *Session) PlayerID() string  { return s.playerID }
func (s *Session) NPC() *catalog.NPC { return s.npc }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:            s.id,
		PlayerID:      s.playerID,
		NPCID:         s.npc.ID,
		NPCName:       s.npc.Name,
		Kind:          s.kind,
		Turn:          s.turn,
		State:         s.flow.State(),
		Flow:          s.flow.Value(),
		Momentum:      s.ledger.Momentum(),
		Doubt:         s.ledger.Doubt(),
		Focus:         s.focus.Available(),
		FocusCapacity: s.focus.Capacity(),
		Atmosphere:    s.atm.Current(),
		MustListen:    s.mustListen,
		Personality:   s.rules.Rule(),
		Rules:         s.rules.Describe(),
		Hand:          copyInstances(s.piles.Hand()),
		Requests:      copyInstances(s.piles.Requests()),
		Counts:        s.piles.Counts(),
		Ended:         s.ended,
		EndReason:     s.endReason,
	}
}

// Hand returns copies of the cards in hand.
func (s *Session) Hand() []card.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyInstances(s.piles.Hand())
}

// RequestPile returns copies of goal cards not yet promoted.
func (s *Session) RequestPile() []card.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyInstances(s.piles.Requests())
}

// History returns copies of played cards, oldest first.
func (s *Session) History() []card.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyInstances(s.piles.History())
}

func (s *Session) Counts() pile.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.piles.Counts()
}

func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// Snapshot builds the narrator's view of a turn result.
func (s *Session) Snapshot(res *TurnResult) narrative.Snapshot {
	snap := narrative.Snapshot{
		NPCID:          s.npc.ID,
		NPCName:        s.npc.Name,
		NPCDescription: s.npc.Description,
		Personality:    s.rules.Describe(),
		Action:         string(res.Action),
		Success:        res.Success,
		PreviousState:  res.PreviousState.String(),
		State:          res.State.String(),
		Flow:           res.Flow,
		Momentum:       res.Momentum,
		Doubt:          res.Doubt,
		Atmosphere:     string(res.Atmosphere),
		Ended:          res.Ended,
		EndReason:      string(res.EndReason),
	}
	if res.Played != nil {
		snap.CardName = res.Played.Def.Name
		snap.Dialogue = res.Played.Def.Dialogue
	}
	for _, inst := range res.Drawn {
		snap.Drawn = append(snap.Drawn, inst.Def.Name)
	}
	for _, inst := range res.Exhausted {
		snap.Exhausted = append(snap.Exhausted, inst.Def.Name)
	}
	return snap
}

func copyInstances(in []*card.Instance) []card.Instance {
	out := make([]card.Instance, 0, len(in))
	for _, inst := range in {
		out = append(out, *inst)
	}
	return out
}
