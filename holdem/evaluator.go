package holdem

import (
	"sort"

	"holdem-trainer/card"
)

// 手牌常量定义
type HandCategory byte

const (
	HandHighCard      HandCategory = iota + 1 // 高牌
	HandOnePair                               // 一对
	HandTwoPair                               // 两对
	HandThreeOfKind                           // 三条
	HandStraight                              // 顺子
	HandFlush                                 // 同花
	HandFullHouse                             // 葫芦
	HandFourOfKind                            // 四条
	HandStraightFlush                         // 同花顺
	HandRoyalFlush                            // 皇家同花顺
)

var HandCategoryDictionary = map[HandCategory]string{
	HandHighCard:      "High Card",
	HandOnePair:       "Pair",
	HandTwoPair:       "Two Pair",
	HandThreeOfKind:   "Three of a Kind",
	HandStraight:      "Straight",
	HandFlush:         "Flush",
	HandFullHouse:     "Full House",
	HandFourOfKind:    "Four of a Kind",
	HandStraightFlush: "Straight Flush",
	HandRoyalFlush:    "Royal Flush",
}

func (c HandCategory) String() string {
	if name, ok := HandCategoryDictionary[c]; ok {
		return name
	}
	return "Unknown"
}

// HandEvaluation is the comparable result of scoring a hand: category for
// cross-category ordering, kickers (descending, ace high = 14) for ties
// within a category. Two evaluations are a chop only when category and
// every kicker match exactly.
type HandEvaluation struct {
	Category HandCategory
	Kickers  []int
}

// CategoryRank is the integer used for cross-category comparison.
func (e HandEvaluation) CategoryRank() int { return int(e.Category) }

// Compare orders two evaluations: >0 when a wins, <0 when b wins, 0 chop.
func Compare(a, b HandEvaluation) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] != b.Kickers[i] {
			return a.Kickers[i] - b.Kickers[i]
		}
	}
	return len(a.Kickers) - len(b.Kickers)
}

// HandResult couples an evaluation with the five cards that produced it.
type HandResult struct {
	Eval HandEvaluation
	Best card.CardList
}

// Evaluate scores the best hand available from 2 hole cards plus 0..5
// community cards. With 5+ total cards every 5-card subset is searched;
// before that only rank multiplicity can score (pairs, high cards).
func Evaluate(hole card.CardList, community card.CardList) (HandEvaluation, error) {
	if len(hole) != 2 {
		return HandEvaluation{}, ErrInvalidState("need exactly 2 hole cards")
	}
	if len(community) > 5 {
		return HandEvaluation{}, ErrInvalidState("too many community cards")
	}
	all := make(card.CardList, 0, 7)
	all = append(all, hole...)
	all = append(all, community...)

	res := evalBest(all)
	if res == nil {
		return HandEvaluation{}, ErrInvalidState("evaluation failed")
	}
	return res.Eval, nil
}

// evalBest picks the strongest 5-card subset of 5..7 cards, or scores the
// partial hand directly when fewer than 5 cards exist.
func evalBest(all card.CardList) *HandResult {
	n := len(all)
	if n < 5 {
		return evalPartial(all)
	}

	var best *HandResult
	idx := make([]int, 5)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			eval := eval5(all[idx[0]], all[idx[1]], all[idx[2]], all[idx[3]], all[idx[4]])
			if best == nil || Compare(eval, best.Eval) > 0 {
				five := card.CardList{all[idx[0]], all[idx[1]], all[idx[2]], all[idx[3]], all[idx[4]]}
				best = &HandResult{Eval: eval, Best: five}
			}
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			idx[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return best
}

// eval5 classifies exactly five cards.
func eval5(a, b, c, d, e card.Card) HandEvaluation {
	cards := [5]card.Card{a, b, c, d, e}

	flush := true
	suit0 := cards[0].Suit()
	ranks := make([]int, 0, 5)
	counts := make(map[int]int, 5)
	for _, cc := range cards {
		if cc.Suit() != suit0 {
			flush = false
		}
		r := cc.HighRank()
		ranks = append(ranks, r)
		counts[r]++
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	straightHigh := straightHighCard(ranks)

	if flush && straightHigh > 0 {
		if straightHigh == 14 {
			return HandEvaluation{Category: HandRoyalFlush}
		}
		return HandEvaluation{Category: HandStraightFlush, Kickers: []int{straightHigh}}
	}

	// Group ranks by multiplicity: quads > trips > pairs > singles,
	// same multiplicity ordered by rank descending.
	type group struct{ rank, count int }
	groups := make([]group, 0, 5)
	for r, cnt := range counts {
		groups = append(groups, group{rank: r, count: cnt})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickersOf := func() []int {
		out := make([]int, 0, 5)
		for _, g := range groups {
			out = append(out, g.rank)
		}
		return out
	}

	switch {
	case groups[0].count == 4:
		return HandEvaluation{Category: HandFourOfKind, Kickers: kickersOf()}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandEvaluation{Category: HandFullHouse, Kickers: []int{groups[0].rank, groups[1].rank}}
	case flush:
		return HandEvaluation{Category: HandFlush, Kickers: ranks}
	case straightHigh > 0:
		return HandEvaluation{Category: HandStraight, Kickers: []int{straightHigh}}
	case groups[0].count == 3:
		return HandEvaluation{Category: HandThreeOfKind, Kickers: kickersOf()}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandEvaluation{Category: HandTwoPair, Kickers: kickersOf()}
	case groups[0].count == 2:
		return HandEvaluation{Category: HandOnePair, Kickers: kickersOf()}
	default:
		return HandEvaluation{Category: HandHighCard, Kickers: ranks}
	}
}

// straightHighCard 返回顺子顶张（wheel A-2-3-4-5 记为 5），非顺子返回 0。
// ranks must be sorted descending.
func straightHighCard(ranks []int) int {
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return 0 // paired board cannot be a straight
		}
	}
	if ranks[0]-ranks[4] == 4 {
		return ranks[0]
	}
	// Wheel: A,5,4,3,2
	if ranks[0] == 14 && ranks[1] == 5 && ranks[1]-ranks[4] == 3 {
		return 5
	}
	return 0
}

// evalPartial scores 2..4 cards by rank multiplicity only. Straights and
// flushes need five cards and cannot exist yet.
func evalPartial(all card.CardList) *HandResult {
	counts := make(map[int]int, len(all))
	for _, cc := range all {
		counts[cc.HighRank()]++
	}
	type group struct{ rank, count int }
	groups := make([]group, 0, len(counts))
	for r, cnt := range counts {
		groups = append(groups, group{rank: r, count: cnt})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	kickers := make([]int, 0, len(groups))
	for _, g := range groups {
		kickers = append(kickers, g.rank)
	}

	category := HandHighCard
	switch {
	case groups[0].count == 4:
		category = HandFourOfKind
	case groups[0].count == 3:
		category = HandThreeOfKind
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		category = HandTwoPair
	case groups[0].count == 2:
		category = HandOnePair
	}

	return &HandResult{
		Eval: HandEvaluation{Category: category, Kickers: kickers},
		Best: append(card.CardList{}, all...),
	}
}

// RankWinners evaluates each seat's 7 cards against the board and returns
// the seats holding the single best hand; ties yield multiple seats.
func RankWinners(holes map[uint16]card.CardList, community card.CardList) ([]uint16, error) {
	if len(holes) == 0 {
		return nil, ErrInvalidState("no hands to rank")
	}

	seats := make([]uint16, 0, len(holes))
	for seat := range holes {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })

	var winners []uint16
	var bestEval HandEvaluation
	for _, seat := range seats {
		eval, err := Evaluate(holes[seat], community)
		if err != nil {
			return nil, err
		}
		if len(winners) == 0 {
			winners = []uint16{seat}
			bestEval = eval
			continue
		}
		switch cmp := Compare(eval, bestEval); {
		case cmp > 0:
			winners = []uint16{seat}
			bestEval = eval
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners, nil
}
