// Package session orchestrates one training table: it owns the engine,
// drives the AI seats, records hand histories and exposes the trainee's
// action surface. The engine itself stays free of timers and logging.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"holdem-trainer/ai"
	"holdem-trainer/card"
	"holdem-trainer/handhistory"
	"holdem-trainer/holdem"
)

// HandEndHook is a post-settlement callback.
type HandEndHook func(rec *handhistory.Record, settle *holdem.SettlementResult)

// Opponent pairs a seat with the persona that plays it for the whole
// session.
type Opponent struct {
	Seat    uint16
	Name    string
	Persona *ai.Persona
	Stack   int64
}

type Options struct {
	Table     holdem.Config
	HeroSeat  uint16
	HeroName  string
	HeroStack int64
	Opponents []Opponent

	// ThinkDelay is the cosmetic pause before an AI decision is applied.
	// Zero applies decisions synchronously (tests, fast-forward).
	ThinkDelay time.Duration

	// Seed drives the per-villain decision RNGs (0 => time-based).
	Seed int64

	Logger  *log.Logger
	Advisor Advisor
	Store   *handhistory.Store
}

type villain struct {
	name    string
	persona *ai.Persona
	rng     *rand.Rand
}

// Session is the single-writer owner of one table. All mutation goes
// through its mutex; the AI think delay is a cooperative suspension
// point guarded by a generation counter, so a reset invalidates any
// decision still in flight instead of applying it to a stale hand.
type Session struct {
	ID string

	mu       sync.Mutex
	game     *holdem.Game
	heroSeat uint16
	villains map[uint16]*villain

	thinkDelay time.Duration
	generation uint64
	pending    *time.Timer

	recorder *handhistory.Recorder
	handID   string

	logger  *log.Logger
	advisor Advisor
	store   *handhistory.Store
	hooks   []HandEndHook

	lastSettlement *holdem.SettlementResult
}

func New(opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	game, err := holdem.NewGame(opts.Table)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:         uuid.NewString(),
		game:       game,
		heroSeat:   opts.HeroSeat,
		villains:   make(map[uint16]*villain, len(opts.Opponents)),
		thinkDelay: opts.ThinkDelay,
		logger:     opts.Logger.WithPrefix("session"),
		advisor:    opts.Advisor,
		store:      opts.Store,
	}

	if err := game.SitDown(opts.HeroSeat, 1, opts.HeroName, opts.HeroStack, true); err != nil {
		return nil, fmt.Errorf("seat hero: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	for i, opp := range opts.Opponents {
		if opp.Persona == nil {
			return nil, fmt.Errorf("opponent at seat %d has no persona", opp.Seat)
		}
		name := opp.Name
		if name == "" {
			name = opp.Persona.Name
		}
		// Villain player IDs start from 9M to stay clear of real users.
		id := uint64(9_000_000 + i)
		if err := game.SitDown(opp.Seat, id, name, opp.Stack, false); err != nil {
			return nil, fmt.Errorf("seat villain %s: %w", name, err)
		}
		s.villains[opp.Seat] = &villain{
			name:    name,
			persona: opp.Persona,
			rng:     rand.New(rand.NewSource(seed + int64(i))),
		}
		s.logger.Info("seated villain", "seat", opp.Seat, "persona", opp.Persona.ID, "stack", opp.Stack)
	}

	return s, nil
}

// OnHandEnd registers a callback fired after each settlement.
func (s *Session) OnHandEnd(hook HandEndHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// StartHand begins a new hand and lets any AI seats act until the hero
// is up or the hand ends.
func (s *Session) StartHand() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A failed start (hand still running) must not cancel the pending
	// AI decision that hand is waiting on.
	if err := s.game.StartHand(); err != nil {
		return err
	}
	s.invalidatePendingLocked()
	s.handID = uuid.NewString()
	snap := s.game.Snapshot()
	s.recorder = handhistory.Begin(s.handID, snap)
	s.lastSettlement = nil

	s.logger.Info("hand started",
		"hand", s.handID,
		"round", snap.Round,
		"button", snap.DealerSeat,
		"sb", snap.SmallBlindSeat,
		"bb", snap.BigBlindSeat)

	s.pumpLocked()
	return nil
}

// Dispatch applies one hero action, then lets the AI seats respond.
func (s *Session) Dispatch(action holdem.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.game.Snapshot()
	if snap.ActionSeat != s.heroSeat {
		return holdem.ErrOutOfTurn
	}

	settle, err := s.game.Act(s.heroSeat, action)
	if err != nil {
		return err
	}
	s.logger.Info("hero action", "action", action.Type, "amount", action.Amount)

	if settle != nil {
		s.finishHandLocked(settle)
		return nil
	}
	s.pumpLocked()
	return nil
}

// AvailableActions enumerates the hero's current legal actions and the
// minimum bet/raise total.
func (s *Session) AvailableActions() ([]holdem.ActionType, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.LegalActions(s.heroSeat)
}

// Snapshot returns the current immutable table state.
func (s *Session) Snapshot() holdem.Snapshot {
	return s.game.Snapshot()
}

// LastSettlement returns the most recent hand result, or nil mid-hand.
func (s *Session) LastSettlement() *holdem.SettlementResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSettlement
}

// Advice consults the external recommendation service for the hero's
// current spot. The engine never computes this itself.
func (s *Session) Advice(ctx context.Context) (Advice, error) {
	if s.advisor == nil {
		return Advice{}, ErrNoAdvisor
	}
	snap := s.Snapshot()
	return s.advisor.Recommend(ctx, QueryFromSnapshot(snap, s.heroSeat))
}

// Close invalidates any in-flight AI decision and releases the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatePendingLocked()
}

// pumpLocked advances AI seats. With a think delay it schedules one
// decision and returns; the fired timer re-enters through applyAI.
func (s *Session) pumpLocked() {
	for {
		snap := s.game.Snapshot()
		if snap.Ended || snap.ActionSeat == holdem.InvalidSeat || snap.ActionSeat == s.heroSeat {
			return
		}
		v := s.villains[snap.ActionSeat]
		if v == nil {
			return
		}

		if s.thinkDelay <= 0 {
			if done := s.applyAILocked(snap.ActionSeat, v); done {
				return
			}
			continue
		}

		gen := s.generation
		seat := snap.ActionSeat
		s.pending = time.AfterFunc(s.thinkDelay, func() {
			s.applyAI(gen, seat, v)
		})
		return
	}
}

// applyAI is the deferred half of a scheduled decision. A stale
// generation means the hand was reset mid-delay: drop the decision.
func (s *Session) applyAI(gen uint64, seat uint16, v *villain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("dropping stale AI decision", "seat", seat)
		return
	}
	if s.applyAILocked(seat, v) {
		return
	}
	s.pumpLocked()
}

// applyAILocked makes and applies one villain decision. Returns true
// when the hand ended.
func (s *Session) applyAILocked(seat uint16, v *villain) bool {
	view, err := s.buildViewLocked(seat)
	if err != nil {
		s.logger.Error("build AI view", "seat", seat, "err", err)
		return true
	}

	decision := ai.Decide(view, v.persona.Stats, v.rng)
	s.logger.Info("villain action",
		"seat", seat,
		"persona", v.persona.ID,
		"action", decision.Action.Type,
		"amount", decision.Action.Amount,
		"confidence", fmt.Sprintf("%.2f", decision.Confidence),
		"reasoning", decision.Reasoning)

	settle, err := s.game.Act(seat, decision.Action)
	if err != nil {
		if holdem.IsFatal(err) {
			s.logger.Error("engine halted", "err", err)
			return true
		}
		// A sanitized decision should always be legal; a rejection here
		// is a bug worth surfacing, recovered by folding.
		s.logger.Error("AI action rejected, folding", "seat", seat, "err", err)
		settle, err = s.game.Act(seat, holdem.Fold())
		if err != nil {
			s.logger.Error("fallback fold rejected", "seat", seat, "err", err)
			return true
		}
	}

	if settle != nil {
		s.finishHandLocked(settle)
		return true
	}
	return false
}

func (s *Session) buildViewLocked(seat uint16) (ai.View, error) {
	snap := s.game.Snapshot()
	legal, minTo, err := s.game.LegalActions(seat)
	if err != nil {
		return ai.View{}, err
	}

	var me *holdem.PlayerSnapshot
	active := 0
	for i := range snap.Players {
		p := &snap.Players[i]
		if !p.Folded && len(p.HoleCards) == 2 {
			active++
		}
		if p.Seat == seat {
			me = p
		}
	}
	if me == nil {
		return ai.View{}, fmt.Errorf("seat %d not in snapshot", seat)
	}

	return ai.View{
		Street:       snap.Street,
		Position:     me.Position,
		HoleCards:    card.CardList(me.HoleCards),
		Community:    card.CardList(snap.CommunityCards),
		Pot:          snap.LivePot(),
		CurrentBet:   snap.CurBet,
		MyBet:        me.Bet,
		MyStack:      me.Stack,
		ToCall:       snap.ToCall(seat),
		MinRaiseTo:   minTo,
		BigBlind:     snap.BigBlind,
		FacingRaise:  snap.Street == holdem.StreetPreflop && snap.CurBet > snap.BigBlind,
		ActiveCount:  active,
		LegalActions: legal,
	}, nil
}

func (s *Session) finishHandLocked(settle *holdem.SettlementResult) {
	s.lastSettlement = settle

	var rec *handhistory.Record
	if s.recorder != nil {
		rec = s.recorder.Finish(s.game.Snapshot(), settle)
		s.recorder = nil
	}

	s.logger.Info("hand finished", "hand", s.handID, "pots", len(settle.PotResults))

	if rec != nil && s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := s.store.Append(ctx, rec); err != nil {
			s.logger.Error("persist hand record", "hand", rec.ID, "err", err)
		}
		cancel()
	}

	for _, hook := range s.hooks {
		hook(rec, settle)
	}
}

// invalidatePendingLocked cancels any scheduled AI decision; the bumped
// generation makes an already-fired callback a no-op.
func (s *Session) invalidatePendingLocked() {
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
