package session

import (
	"context"
	"errors"

	"holdem-trainer/holdem"
)

// ErrNoAdvisor is returned when advice is requested on a session built
// without one.
var ErrNoAdvisor = errors.New("session: no advisor configured")

// Query describes the hero's current spot in solver terms. It carries
// no hidden opponent information.
type Query struct {
	Street    holdem.Street
	Position  holdem.Position
	HoleCards []string
	Board     []string

	PotBB    float64
	ToCallBB float64
	StackBB  float64

	FacingBet   bool
	ActiveCount int
}

// Advice is a recommended action-frequency mix for the spot, the way a
// solver chart expresses it. Frequencies sum to 1 over the offered keys.
type Advice struct {
	Frequencies map[holdem.ActionType]float64
	Note        string
}

// Advisor looks up a strategy recommendation for a spot. The lookup is
// external to the engine: implementations may call a solver service,
// read precomputed charts, or answer heuristically.
type Advisor interface {
	Recommend(ctx context.Context, q Query) (Advice, error)
}

// QueryFromSnapshot projects the hero-visible part of a snapshot into a
// solver query.
func QueryFromSnapshot(snap holdem.Snapshot, heroSeat uint16) Query {
	q := Query{
		Street:   snap.Street,
		Position: holdem.PositionNone,
	}
	bb := float64(snap.BigBlind)
	if bb <= 0 {
		bb = 1
	}

	for _, p := range snap.Players {
		if !p.Folded && len(p.HoleCards) == 2 {
			q.ActiveCount++
		}
		if p.Seat != heroSeat {
			continue
		}
		q.Position = p.Position
		q.StackBB = float64(p.Stack) / bb
		for _, c := range p.HoleCards {
			q.HoleCards = append(q.HoleCards, c.Short())
		}
	}
	for _, c := range snap.CommunityCards {
		q.Board = append(q.Board, c.Short())
	}

	q.PotBB = float64(snap.LivePot()) / bb
	q.ToCallBB = float64(snap.ToCall(heroSeat)) / bb
	q.FacingBet = snap.ToCall(heroSeat) > 0
	return q
}

// ChartAdvisor is the built-in offline advisor. It answers from a small
// fixed frequency table keyed on street and whether the hero faces a
// bet; good enough for the trainer UI until a solver backend is wired.
type ChartAdvisor struct{}

func (ChartAdvisor) Recommend(_ context.Context, q Query) (Advice, error) {
	if q.FacingBet {
		if q.Street == holdem.StreetPreflop {
			return Advice{
				Frequencies: map[holdem.ActionType]float64{
					holdem.ActionFold:  0.55,
					holdem.ActionCall:  0.30,
					holdem.ActionRaise: 0.15,
				},
				Note: "baseline defend mix vs a preflop raise",
			}, nil
		}
		return Advice{
			Frequencies: map[holdem.ActionType]float64{
				holdem.ActionFold:  0.45,
				holdem.ActionCall:  0.40,
				holdem.ActionRaise: 0.15,
			},
			Note: "baseline continue mix vs a bet",
		}, nil
	}

	if q.Street == holdem.StreetPreflop {
		return Advice{
			Frequencies: map[holdem.ActionType]float64{
				holdem.ActionFold:  0.70,
				holdem.ActionRaise: 0.30,
			},
			Note: "baseline open mix, unopened pot",
		}, nil
	}
	return Advice{
		Frequencies: map[holdem.ActionType]float64{
			holdem.ActionCheck: 0.60,
			holdem.ActionBet:   0.40,
		},
		Note: "baseline stab mix, checked to hero",
	}, nil
}
