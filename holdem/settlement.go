package holdem

import (
	"sort"

	"holdem-trainer/card"
)

type ShowdownPlayerResult struct {
	Seat          uint16
	Position      Position
	Category      HandCategory
	Kickers       []int
	HoleCards     []card.Card
	BestFiveCards []card.Card
	IsWinner      bool
	WinAmount     int64
}

type PotResult struct {
	Amount     int64
	Winners    []uint16
	WinAmounts []int64
}

type SettlementResult struct {
	PlayerResults []ShowdownPlayerResult
	PotResults    []PotResult
	ExcessSeat    uint16
	ExcessAmount  int64
}

// settleLocked ends the hand: by evaluation at showdown, or by awarding
// the pot to the last player standing after a fold-out.
func (g *Game) settleLocked() (*SettlementResult, error) {
	if g.noShowdown {
		return g.settleNoShowdown()
	}
	return g.settleByEval()
}

func (g *Game) settleByEval() (*SettlementResult, error) {
	if len(g.communityCards) != 5 {
		return nil, ErrInvariant("showdown without a complete board")
	}

	// Evaluate all live hands
	results := make(map[uint16]*ShowdownPlayerResult, g.cfg.MaxPlayers)
	for seat, p := range g.playersBySeat {
		// Only players who were actually dealt this hand can reach showdown.
		if p == nil || p.folded || len(p.HoleCards()) != 2 {
			continue
		}
		all := make(card.CardList, 0, 7)
		all = append(all, p.HoleCards()...)
		all = append(all, g.communityCards...)
		res := evalBest(all)
		if res == nil {
			return nil, ErrInvariant("hand evaluation failed at showdown")
		}
		p.setEvalResult(res)
		results[seat] = &ShowdownPlayerResult{
			Seat:          seat,
			Position:      p.Position(),
			Category:      res.Eval.Category,
			Kickers:       append([]int{}, res.Eval.Kickers...),
			HoleCards:     append([]card.Card{}, p.HoleCards()...),
			BestFiveCards: append([]card.Card{}, res.Best...),
		}
	}

	// Determine winners per pot
	potWinners := make([][]uint16, 0, len(g.potManager.pots))
	for _, pot := range g.potManager.pots {
		group := make([]uint16, 0, len(pot.eligibleSeats))
		for seat := range pot.eligibleSeats {
			if results[seat] != nil {
				group = append(group, seat)
			}
		}
		if len(group) == 0 {
			potWinners = append(potWinners, nil)
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })

		winners := []uint16{group[0]}
		best := HandEvaluation{Category: results[group[0]].Category, Kickers: results[group[0]].Kickers}
		for _, seat := range group[1:] {
			cur := HandEvaluation{Category: results[seat].Category, Kickers: results[seat].Kickers}
			switch cmp := Compare(cur, best); {
			case cmp > 0:
				winners = []uint16{seat}
				best = cur
			case cmp == 0:
				winners = append(winners, seat)
			}
		}
		potWinners = append(potWinners, winners)
	}

	out := &SettlementResult{
		PotResults:   make([]PotResult, 0, len(g.potManager.pots)),
		ExcessSeat:   g.potManager.excessSeat,
		ExcessAmount: g.potManager.excessAmount,
	}

	buttonOrder := g.seatsClockwiseFromButton()

	for potIdx, pot := range g.potManager.pots {
		winners := potWinners[potIdx]
		if len(winners) == 0 || pot.amount <= 0 {
			out.PotResults = append(out.PotResults, PotResult{Amount: pot.amount})
			continue
		}

		// 平分彩池；不可整除的零头按钮左侧顺时针逐一分配
		winners = sortSeatsByOrder(winners, buttonOrder)
		share := pot.amount / int64(len(winners))
		remainder := pot.amount % int64(len(winners))

		pr := PotResult{
			Amount:  pot.amount,
			Winners: append([]uint16{}, winners...),
		}

		for i, w := range winners {
			amt := share
			if int64(i) < remainder {
				amt++
			}
			pr.WinAmounts = append(pr.WinAmounts, amt)

			if p := g.playersBySeat[w]; p != nil {
				p.addStack(amt)
			}
			if r := results[w]; r != nil {
				r.IsWinner = true
				r.WinAmount += amt
			}
		}
		out.PotResults = append(out.PotResults, pr)
	}

	// Pots are fully distributed; drop them so conservation holds.
	g.potManager.resetPots()

	for _, r := range results {
		out.PlayerResults = append(out.PlayerResults, *r)
	}
	sort.Slice(out.PlayerResults, func(i, j int) bool { return out.PlayerResults[i].Seat < out.PlayerResults[j].Seat })
	return out, nil
}

func (g *Game) settleNoShowdown() (*SettlementResult, error) {
	// winner = only player not folded
	var winner *Player
	for _, p := range g.playersBySeat {
		if p == nil {
			continue
		}
		if !p.folded && len(p.HoleCards()) == 2 {
			winner = p
			break
		}
	}
	if winner == nil {
		return nil, ErrInvariant("no winner in fold-out state")
	}

	// Refund the unmatched portion of the winner's live bet, if any.
	var maxBet, secondMax int64
	for _, p := range g.playersBySeat {
		if p == nil {
			continue
		}
		b := p.Bet()
		if b > maxBet {
			secondMax = maxBet
			maxBet = b
		} else if b > secondMax {
			secondMax = b
		}
	}

	excess := int64(0)
	if winner.Bet() == maxBet && maxBet > secondMax {
		excess = maxBet - secondMax
		winner.addStack(excess)
		winner.addBet(-excess)
	}

	total := int64(0)
	for _, p := range g.playersBySeat {
		if p == nil {
			continue
		}
		total += p.Bet()
	}
	total += g.potManager.total()

	winner.addStack(total)
	for _, p := range g.playersBySeat {
		if p != nil {
			p.resetBet()
		}
	}
	g.potManager.resetPots()

	return &SettlementResult{
		PlayerResults: []ShowdownPlayerResult{
			{
				Seat:      winner.SeatID(),
				Position:  winner.Position(),
				HoleCards: append([]card.Card{}, winner.HoleCards()...),
				IsWinner:  true,
				WinAmount: total,
			},
		},
		PotResults: []PotResult{
			{
				Amount:     total,
				Winners:    []uint16{winner.SeatID()},
				WinAmounts: []int64{total},
			},
		},
		ExcessSeat:   winner.SeatID(),
		ExcessAmount: excess,
	}, nil
}

// seatsClockwiseFromButton returns every dealt seat in action order
// starting one seat left of the dealer.
func (g *Game) seatsClockwiseFromButton() []uint16 {
	order := make([]uint16, 0, len(g.seatNodes))
	if g.dealerNode == nil || g.dealerNode.Next == nil {
		for seat := range g.seatNodes {
			order = append(order, seat)
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
		return order
	}
	g.dealerNode.Next.WalkAll(func(cur *PlayerNode) {
		order = append(order, cur.Seat)
	})
	return order
}

// sortSeatsByOrder reorders seats to match the given seat ordering.
func sortSeatsByOrder(seats []uint16, order []uint16) []uint16 {
	rank := make(map[uint16]int, len(order))
	for i, seat := range order {
		rank[seat] = i
	}
	out := append([]uint16{}, seats...)
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}
