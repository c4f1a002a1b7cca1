package holdem

import "holdem-trainer/card"

type PlayerSnapshot struct {
	ID         uint64
	Seat       uint16
	Name       string
	Hero       bool
	Position   Position
	Stack      int64
	Bet        int64
	Invested   int64
	Folded     bool
	AllIn      bool
	LastAction ActionType
	HoleCards  []card.Card
}

type PotSnapshot struct {
	Amount        int64
	EligibleSeats []uint16
}

// Snapshot is an immutable projection of the full table state. Readers
// (UI, AI engine, hand-history recorder) never see the live structures.
type Snapshot struct {
	Round  uint16
	Street Street
	Ended  bool

	DealerSeat     uint16
	SmallBlindSeat uint16
	BigBlindSeat   uint16
	ActionSeat     uint16

	SmallBlind int64
	BigBlind   int64
	Ante       int64

	CurBet          int64
	MinRaiseDelta   int64
	NeedActionCount int
	LastAggressor   uint16

	CommunityCards []card.Card
	Pots           []PotSnapshot
	PotTotal       int64
	Players        []PlayerSnapshot
	ActionLog      []ActionRecord

	ExcessSeat   uint16
	ExcessAmount int64
}

// ToCall reports the amount the seat owes to continue.
func (s Snapshot) ToCall(seat uint16) int64 {
	for _, p := range s.Players {
		if p.Seat == seat {
			owed := s.CurBet - p.Bet
			if owed < 0 {
				return 0
			}
			return owed
		}
	}
	return 0
}

// LivePot is the contested total: collected pots plus live street bets.
func (s Snapshot) LivePot() int64 {
	total := s.PotTotal
	for _, p := range s.Players {
		total += p.Bet
	}
	return total
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		Round:           g.round,
		Street:          g.street,
		Ended:           g.ended,
		DealerSeat:      InvalidSeat,
		SmallBlindSeat:  InvalidSeat,
		BigBlindSeat:    InvalidSeat,
		ActionSeat:      InvalidSeat,
		SmallBlind:      g.cfg.SmallBlind,
		BigBlind:        g.cfg.BigBlind,
		Ante:            g.cfg.Ante,
		CurBet:          g.curBet,
		MinRaiseDelta:   g.minRaise,
		NeedActionCount: g.needActionCount,
		LastAggressor:   g.lastAggressor,
		CommunityCards:  append([]card.Card{}, g.communityCards...),
		PotTotal:        g.potManager.total(),
		ActionLog:       append([]ActionRecord{}, g.actionLog...),
		ExcessSeat:      g.potManager.excessSeat,
		ExcessAmount:    g.potManager.excessAmount,
	}
	if g.dealerNode != nil {
		s.DealerSeat = g.dealerNode.Seat
	}
	if g.smallBlindNode != nil {
		s.SmallBlindSeat = g.smallBlindNode.Seat
	}
	if g.bigBlindNode != nil {
		s.BigBlindSeat = g.bigBlindNode.Seat
	}
	if g.curNode != nil {
		s.ActionSeat = g.curNode.Seat
	}

	for seat := uint16(0); seat < uint16(g.cfg.MaxPlayers); seat++ {
		p := g.playersBySeat[seat]
		if p == nil {
			continue
		}
		s.Players = append(s.Players, PlayerSnapshot{
			ID:         p.ID,
			Seat:       p.Seat,
			Name:       p.Name,
			Hero:       p.Hero,
			Position:   p.position,
			Stack:      p.stack,
			Bet:        p.bet,
			Invested:   p.invested,
			Folded:     p.folded,
			AllIn:      p.allIn,
			LastAction: p.lastAction,
			HoleCards:  append([]card.Card{}, p.holeCards...),
		})
	}

	for _, pot := range g.potManager.pots {
		ps := PotSnapshot{
			Amount: pot.amount,
		}
		for seat := range pot.eligibleSeats {
			ps.EligibleSeats = append(ps.EligibleSeats, seat)
		}
		s.Pots = append(s.Pots, ps)
	}

	return s
}
