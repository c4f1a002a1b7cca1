package ai

import (
	"fmt"
	"math/rand"

	"holdem-trainer/card"
	"holdem-trainer/holdem"
)

// View is the read-only slice of table state an opponent is allowed to
// see when deciding. The session layer builds it from a snapshot.
type View struct {
	Street       holdem.Street
	Position     holdem.Position
	HoleCards    card.CardList
	Community    card.CardList
	Pot          int64 // contested total including live street bets
	CurrentBet   int64
	MyBet        int64
	MyStack      int64
	ToCall       int64
	MinRaiseTo   int64
	BigBlind     int64
	FacingRaise  bool // preflop: the current bet exceeds the big blind
	ActiveCount  int
	LegalActions []holdem.ActionType
}

// Decision is the engine's answer. Confidence and Reasoning are
// diagnostics for the trainer UI and never affect control flow.
type Decision struct {
	Action     holdem.Action
	Confidence float64
	Reasoning  string
}

// Decide maps a game view and a profile to a single decision. It is a
// pure function of its inputs plus the supplied random source, so a
// fixed seed replays identical decisions.
func Decide(view View, p Profile, rng *rand.Rand) Decision {
	if len(view.LegalActions) == 0 {
		return Decision{Action: holdem.Fold(), Reasoning: "no legal actions"}
	}

	var d Decision
	if view.Street == holdem.StreetPreflop {
		d = decidePreflop(view, p, rng)
	} else {
		d = decidePostflop(view, p, rng)
	}
	return sanitize(d, view)
}

func decidePreflop(view View, p Profile, rng *rand.Rand) Decision {
	score := preflopScore(view.HoleCards)

	if view.FacingRaise {
		return decideVsRaise(view, p, rng, score)
	}

	// Unraised pot: open, limp, or get out.
	if !inOpeningRange(score, view.Position, p, rng.Float64()) {
		if view.ToCall == 0 {
			return Decision{
				Action:     holdem.Check(),
				Confidence: 0.8,
				Reasoning:  fmt.Sprintf("%s below opening range for %s, free look", handLabel(view.HoleCards), view.Position),
			}
		}
		return Decision{
			Action:     holdem.Fold(),
			Confidence: 0.8,
			Reasoning:  fmt.Sprintf("%s below opening range for %s", handLabel(view.HoleCards), view.Position),
		}
	}

	// In range: PFR decides raise-first-in vs limp.
	raiseFirst := rng.Float64() < raiseFirstProb(p, score)
	if raiseFirst && canDo(view, holdem.ActionBet, holdem.ActionRaise) {
		to := openRaiseTo(view)
		return Decision{
			Action:     raiseOrBet(view, to),
			Confidence: 0.6 + 0.4*score,
			Reasoning:  fmt.Sprintf("%s opens from %s", handLabel(view.HoleCards), view.Position),
		}
	}
	if view.ToCall > 0 && canDo(view, holdem.ActionCall) {
		return Decision{
			Action:     holdem.Call(),
			Confidence: 0.5,
			Reasoning:  fmt.Sprintf("%s limps in", handLabel(view.HoleCards)),
		}
	}
	return Decision{
		Action:     holdem.Check(),
		Confidence: 0.5,
		Reasoning:  "taking the option",
	}
}

// decideVsRaise is the preflop 3-bet / call / fold trichotomy.
func decideVsRaise(view View, p Profile, rng *rand.Rand, score float64) Decision {
	switch {
	case score >= premiumScore:
		// Premiums 3-bet at a rate driven by ThreeBetFrequency, with a
		// floor so monsters do not always flat.
		threeBetProb := 0.5 + 0.5*clamp01(p.ThreeBetFrequency*5)
		if rng.Float64() < threeBetProb && canDo(view, holdem.ActionRaise) {
			to := threeBetTo(view)
			return Decision{
				Action:     holdem.Raise(to),
				Confidence: 0.9,
				Reasoning:  fmt.Sprintf("%s 3-bets for value", handLabel(view.HoleCards)),
			}
		}
		return callOrShove(view, 0.85, fmt.Sprintf("%s traps behind the raise", handLabel(view.HoleCards)))

	case score >= strongScore:
		if rng.Float64() < p.ThreeBetFrequency && canDo(view, holdem.ActionRaise) {
			return Decision{
				Action:     holdem.Raise(threeBetTo(view)),
				Confidence: 0.6,
				Reasoning:  fmt.Sprintf("%s mixes in a 3-bet", handLabel(view.HoleCards)),
			}
		}
		return callOrShove(view, 0.65, fmt.Sprintf("%s calls the raise", handLabel(view.HoleCards)))

	default:
		// Below the playability threshold: fold at the profile's rate,
		// defend the rest when the price is tolerable.
		if rng.Float64() < 0.4+0.6*p.FoldToBet {
			return Decision{
				Action:     holdem.Fold(),
				Confidence: 0.7,
				Reasoning:  fmt.Sprintf("%s folds to the raise", handLabel(view.HoleCards)),
			}
		}
		if view.ToCall <= view.MyStack/10 && canDo(view, holdem.ActionCall) {
			return Decision{
				Action:     holdem.Call(),
				Confidence: 0.4,
				Reasoning:  "peeling light for the price",
			}
		}
		return Decision{
			Action:     holdem.Fold(),
			Confidence: 0.6,
			Reasoning:  "too expensive out of range",
		}
	}
}

func decidePostflop(view View, p Profile, rng *rand.Rand) Decision {
	strength := postflopStrength(view.HoleCards, view.Community)

	if view.ToCall == 0 {
		return decideUnopposed(view, p, rng, strength)
	}
	return decideFacingBet(view, p, rng, strength)
}

func decideUnopposed(view View, p Profile, rng *rand.Rand, strength float64) Decision {
	valueThreshold := 0.62 - 0.1*p.Aggression

	switch {
	case strength >= valueThreshold && canDo(view, holdem.ActionBet, holdem.ActionRaise):
		to := potFractionTo(view, 0.4+0.5*p.Aggression)
		return Decision{
			Action:     raiseOrBet(view, to),
			Confidence: strength,
			Reasoning:  fmt.Sprintf("value bet, strength %.2f on %s street", strength, view.Street),
		}
	case strength >= 0.45 && rng.Float64() < 0.3+0.4*p.Aggression && canDo(view, holdem.ActionBet, holdem.ActionRaise):
		return Decision{
			Action:     raiseOrBet(view, potFractionTo(view, 0.35)),
			Confidence: 0.5,
			Reasoning:  "probing with a medium-strength hand",
		}
	case strength < 0.35 && rng.Float64() < p.BluffFrequency && canDo(view, holdem.ActionBet, holdem.ActionRaise):
		return Decision{
			Action:     raiseOrBet(view, potFractionTo(view, 0.55)),
			Confidence: 0.3,
			Reasoning:  "bluffing at the pot",
		}
	default:
		return Decision{
			Action:     holdem.Check(),
			Confidence: 0.6,
			Reasoning:  fmt.Sprintf("checking, strength %.2f", strength),
		}
	}
}

func decideFacingBet(view View, p Profile, rng *rand.Rand, strength float64) Decision {
	// Pot odds: the continue price relative to the final pot, shaded by
	// how readily this profile gives up.
	price := float64(view.ToCall) / float64(view.Pot+view.ToCall)
	required := price * (0.8 + 0.6*p.FoldToBet)

	switch {
	case strength >= 0.8:
		if rng.Float64() < 0.35+0.6*p.Aggression && canDo(view, holdem.ActionRaise) {
			return Decision{
				Action:     holdem.Raise(raiseOverTo(view, 2.5)),
				Confidence: strength,
				Reasoning:  fmt.Sprintf("raising for value, strength %.2f", strength),
			}
		}
		return callOrShove(view, strength, "slow-playing a monster")

	case strength >= required && strength >= 0.4:
		return callOrShove(view, 0.55, fmt.Sprintf("calling with equity, strength %.2f vs price %.2f", strength, price))

	default:
		// Calling stations hate folding even without the odds.
		if p.Aggression < 0.3 && p.FoldToBet < 0.25 && view.ToCall <= view.MyStack/4 && canDo(view, holdem.ActionCall) {
			return Decision{
				Action:     holdem.Call(),
				Confidence: 0.3,
				Reasoning:  "station call",
			}
		}
		if rng.Float64() < p.BluffFrequency*0.25 && canDo(view, holdem.ActionRaise) {
			return Decision{
				Action:     holdem.Raise(raiseOverTo(view, 2.2)),
				Confidence: 0.2,
				Reasoning:  "bluff-raising the bet",
			}
		}
		return Decision{
			Action:     holdem.Fold(),
			Confidence: 0.7,
			Reasoning:  fmt.Sprintf("folding, strength %.2f below price %.2f", strength, required),
		}
	}
}

// postflopStrength scores the made hand plus board texture in [0,1].
func postflopStrength(hole, community card.CardList) float64 {
	eval, err := holdem.Evaluate(hole, community)
	if err != nil {
		return 0.2
	}

	// Made-hand baseline by category.
	var strength float64
	switch eval.Category {
	case holdem.HandHighCard:
		strength = 0.15
		if len(eval.Kickers) > 0 && eval.Kickers[0] == 14 {
			strength = 0.25
		}
	case holdem.HandOnePair:
		strength = 0.4
		if topPair(eval, community) {
			strength = 0.55
		}
		if pocketOverpair(eval, hole, community) {
			strength = 0.62
		}
	case holdem.HandTwoPair:
		strength = 0.7
	case holdem.HandThreeOfKind:
		strength = 0.8
	case holdem.HandStraight:
		strength = 0.85
	case holdem.HandFlush:
		strength = 0.9
	default:
		strength = 0.97
	}

	// Draw potential nudges weak hands up, a wet board shades made
	// hands down.
	wet := boardWetness(community)
	draw := drawPotential(hole, community)
	strength += draw * 0.15
	if strength > 0.6 {
		strength -= wet * 0.1
	}

	return clamp01(strength)
}

// boardWetness rates how coordinated the community cards are in [0,1].
func boardWetness(community card.CardList) float64 {
	if len(community) < 3 {
		return 0
	}
	suits := make(map[card.Suit]int)
	ranks := make([]int, 0, len(community))
	rankSeen := make(map[int]bool)
	for _, c := range community {
		suits[c.Suit()]++
		r := c.HighRank()
		ranks = append(ranks, r)
		rankSeen[r] = true
	}

	wet := 0.0
	for _, n := range suits {
		if n >= 4 {
			wet += 0.5
		} else if n == 3 {
			wet += 0.3
		}
	}
	if len(rankSeen) < len(community) {
		wet += 0.2 // paired board
	}
	// Connected ranks within a 4-gap window enable straights.
	connected := 0
	for _, a := range ranks {
		for _, b := range ranks {
			if a != b && a-b > 0 && a-b <= 4 {
				connected++
			}
		}
	}
	if connected >= 3 {
		wet += 0.3
	} else if connected >= 1 {
		wet += 0.1
	}
	return clamp01(wet)
}

// drawPotential rates flush/straight draw equity of the combined cards.
func drawPotential(hole, community card.CardList) float64 {
	if len(community) >= 5 {
		return 0 // no cards to come
	}
	all := make(card.CardList, 0, 7)
	all = append(all, hole...)
	all = append(all, community...)

	suits := make(map[card.Suit]int)
	rankSeen := make(map[int]bool)
	for _, c := range all {
		suits[c.Suit()]++
		rankSeen[c.HighRank()] = true
		if c.HighRank() == 14 {
			rankSeen[1] = true // wheel draws
		}
	}

	potential := 0.0
	for _, n := range suits {
		if n == 4 {
			potential += 0.6 // flush draw
		}
	}
	// Open-ended / gutshot detection over rank windows.
	best := 0
	for low := 1; low <= 10; low++ {
		count := 0
		for r := low; r < low+5; r++ {
			if rankSeen[r] {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	if best == 4 {
		potential += 0.4
	}
	return clamp01(potential)
}

func topPair(eval holdem.HandEvaluation, community card.CardList) bool {
	if eval.Category != holdem.HandOnePair || len(eval.Kickers) == 0 || len(community) == 0 {
		return false
	}
	top := 0
	for _, c := range community {
		if c.HighRank() > top {
			top = c.HighRank()
		}
	}
	return eval.Kickers[0] >= top
}

func pocketOverpair(eval holdem.HandEvaluation, hole, community card.CardList) bool {
	if eval.Category != holdem.HandOnePair || len(hole) != 2 || len(community) == 0 {
		return false
	}
	if hole[0].HighRank() != hole[1].HighRank() {
		return false
	}
	for _, c := range community {
		if c.HighRank() >= hole[0].HighRank() {
			return false
		}
	}
	return true
}

// raiseFirstProb converts PFR into a raise-vs-limp probability for an
// in-range hand; stronger hands raise more of the time.
func raiseFirstProb(p Profile, score float64) float64 {
	if p.VPIP <= 0 {
		return 1
	}
	base := clamp01(p.PFR / p.VPIP)
	return clamp01(base + 0.3*(score-0.6))
}

// sizing helpers ------------------------------------------------------

func openRaiseTo(view View) int64 {
	to := view.BigBlind * 5 / 2 // standard 2.5bb open
	if to < view.MinRaiseTo {
		to = view.MinRaiseTo
	}
	return capToStack(view, to)
}

func threeBetTo(view View) int64 {
	to := view.CurrentBet * 3
	if to < view.MinRaiseTo {
		to = view.MinRaiseTo
	}
	return capToStack(view, to)
}

func raiseOverTo(view View, multiplier float64) int64 {
	to := int64(float64(view.CurrentBet) * multiplier)
	if to < view.MinRaiseTo {
		to = view.MinRaiseTo
	}
	return capToStack(view, to)
}

func potFractionTo(view View, fraction float64) int64 {
	to := int64(float64(view.Pot) * fraction)
	if to < view.MinRaiseTo {
		to = view.MinRaiseTo
	}
	if to < view.BigBlind {
		to = view.BigBlind
	}
	return capToStack(view, to)
}

func capToStack(view View, to int64) int64 {
	max := view.MyStack + view.MyBet
	if to > max {
		to = max
	}
	return to
}

// raiseOrBet picks the concrete aggressive action the rules allow; a
// sizing that consumes the whole stack becomes an explicit all-in.
func raiseOrBet(view View, to int64) holdem.Action {
	if to >= view.MyStack+view.MyBet {
		return holdem.AllIn()
	}
	if contains(view.LegalActions, holdem.ActionBet) {
		return holdem.Bet(to)
	}
	if contains(view.LegalActions, holdem.ActionRaise) {
		return holdem.Raise(to)
	}
	if contains(view.LegalActions, holdem.ActionCall) {
		return holdem.Call()
	}
	return holdem.Check()
}

// callOrShove calls when possible; a call that is effectively the whole
// stack goes in explicitly.
func callOrShove(view View, confidence float64, reason string) Decision {
	if view.ToCall >= view.MyStack {
		return Decision{Action: holdem.AllIn(), Confidence: confidence, Reasoning: reason}
	}
	if contains(view.LegalActions, holdem.ActionCall) {
		return Decision{Action: holdem.Call(), Confidence: confidence, Reasoning: reason}
	}
	return Decision{Action: holdem.Check(), Confidence: confidence, Reasoning: reason}
}

// sanitize clamps the decision to the legal action set so a profile can
// never emit an impossible move.
func sanitize(d Decision, view View) Decision {
	if contains(view.LegalActions, d.Action.Type) {
		return d
	}
	for _, fallback := range []holdem.ActionType{holdem.ActionCheck, holdem.ActionCall, holdem.ActionFold, holdem.ActionAllIn} {
		if contains(view.LegalActions, fallback) {
			d.Action = holdem.Action{Type: fallback}
			return d
		}
	}
	d.Action = holdem.Fold()
	return d
}

func canDo(view View, types ...holdem.ActionType) bool {
	for _, t := range types {
		if contains(view.LegalActions, t) {
			return true
		}
	}
	return false
}

func contains(actions []holdem.ActionType, target holdem.ActionType) bool {
	for _, a := range actions {
		if a == target {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func handLabel(hole card.CardList) string {
	if len(hole) != 2 {
		return "incomplete hand"
	}
	return hole[0].Short() + hole[1].Short()
}
