package ai

import (
	"holdem-trainer/card"
	"holdem-trainer/holdem"
)

// preflopScore rates two hole cards in [0,1]. The scale is a smoothed
// Chen-style heuristic: high cards, pairs, suitedness and connectivity
// all add value. 1.0 ≈ AA, ~0.5 ≈ the middle of a button opening range.
func preflopScore(hole card.CardList) float64 {
	if len(hole) != 2 {
		return 0
	}
	hi, lo := hole[0].HighRank(), hole[1].HighRank()
	if lo > hi {
		hi, lo = lo, hi
	}

	// Unpaired hands top out below the big pairs even after the bonuses,
	// so AKs stays under QQ instead of clamping into AA territory.
	score := float64(hi+lo) / 36.0

	if hi == lo {
		// Pairs: 22 already plays better than most unpaired hands.
		score = 0.5 + float64(hi)/28.0
	}

	suited := hole[0].Suit() == hole[1].Suit()
	if suited {
		score += 0.04
	}

	gap := hi - lo
	switch {
	case hi != lo && gap == 1:
		score += 0.04
	case gap == 2:
		score += 0.02
	case gap > 4:
		score -= 0.03
	}

	// Two broadways carry showdown value even offsuit.
	if lo >= 10 {
		score += 0.05
	}

	return clamp01(score)
}

// openThresholds is the baseline opening range per position, expressed as
// the minimum preflopScore that opens. Earlier positions are tighter.
var openThresholds = map[holdem.Position]float64{
	holdem.PositionUTG: 0.62,
	holdem.PositionHJ:  0.58,
	holdem.PositionCO:  0.52,
	holdem.PositionBTN: 0.44,
	holdem.PositionSB:  0.50,
	holdem.PositionBB:  0.40,
}

const (
	// borderlineBand is the score window around the threshold where VPIP
	// decides whether a hand opens.
	borderlineBand = 0.08

	premiumScore = 0.85
	strongScore  = 0.70
)

// inOpeningRange decides whether a hand opens from the given position.
// Borderline hands flip a VPIP-weighted coin, so loose profiles widen
// the baseline set and tight profiles shrink it.
func inOpeningRange(score float64, pos holdem.Position, p Profile, roll float64) bool {
	threshold, ok := openThresholds[pos]
	if !ok {
		threshold = 0.55
	}
	switch {
	case score >= threshold+borderlineBand:
		return true
	case score <= threshold-borderlineBand:
		return false
	default:
		return roll < p.VPIP
	}
}
