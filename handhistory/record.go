// Package handhistory captures finished hands as structured records and
// exports them to a plain-text poker log for downstream analysis tools.
package handhistory

import (
	"fmt"
	"time"

	"holdem-trainer/holdem"
)

type SeatInfo struct {
	Seat           uint16   `json:"seat"`
	Name           string   `json:"name"`
	Position       string   `json:"position"`
	Hero           bool     `json:"hero,omitempty"`
	StartingStack  int64    `json:"startingStack"`
	FinishingStack int64    `json:"finishingStack"`
	HoleCards      []string `json:"holeCards,omitempty"`
}

type ActionEntry struct {
	Street string `json:"street"`
	Seat   uint16 `json:"seat"`
	Name   string `json:"name"`
	Action string `json:"action"`
	// Amount is the street-total the action set, 0 for check/fold.
	Amount int64 `json:"amount,omitempty"`
}

type PotOutcome struct {
	Amount     int64    `json:"amount"`
	Winners    []string `json:"winners"`
	WinAmounts []int64  `json:"winAmounts"`
}

// Record is the per-hand snapshot: seats, blinds, board, chronological
// actions grouped by street, and the result.
type Record struct {
	ID       string    `json:"id"`
	PlayedAt time.Time `json:"playedAt"`
	Round    uint16    `json:"round"`

	SmallBlind int64 `json:"smallBlind"`
	BigBlind   int64 `json:"bigBlind"`
	Ante       int64 `json:"ante,omitempty"`

	ButtonSeat     uint16 `json:"buttonSeat"`
	SmallBlindSeat uint16 `json:"smallBlindSeat"`
	BigBlindSeat   uint16 `json:"bigBlindSeat"`

	Seats   []SeatInfo    `json:"seats"`
	Board   []string      `json:"board,omitempty"`
	Actions []ActionEntry `json:"actions"`
	Pots    []PotOutcome  `json:"pots"`

	TotalPot int64 `json:"totalPot"`
}

// Recorder assembles one Record across a hand's lifetime: opened from
// the post-deal snapshot, closed with the settlement.
type Recorder struct {
	rec            Record
	startingStacks map[uint16]int64
	names          map[uint16]string
}

// Begin opens a record from the snapshot taken right after StartHand.
func Begin(id string, snap holdem.Snapshot) *Recorder {
	r := &Recorder{
		rec: Record{
			ID:             id,
			PlayedAt:       time.Now().UTC(),
			Round:          snap.Round,
			SmallBlind:     snap.SmallBlind,
			BigBlind:       snap.BigBlind,
			Ante:           snap.Ante,
			ButtonSeat:     snap.DealerSeat,
			SmallBlindSeat: snap.SmallBlindSeat,
			BigBlindSeat:   snap.BigBlindSeat,
		},
		startingStacks: make(map[uint16]int64),
		names:          make(map[uint16]string),
	}
	for _, p := range snap.Players {
		if len(p.HoleCards) == 0 {
			continue // not dealt in
		}
		// Stack() already had blinds/antes deducted; reconstruct the
		// pre-deal stack so net results balance.
		r.startingStacks[p.Seat] = p.Stack + p.Invested
		r.names[p.Seat] = p.Name
		seat := SeatInfo{
			Seat:          p.Seat,
			Name:          p.Name,
			Position:      p.Position.String(),
			Hero:          p.Hero,
			StartingStack: p.Stack + p.Invested,
		}
		if p.Hero {
			for _, c := range p.HoleCards {
				seat.HoleCards = append(seat.HoleCards, c.Short())
			}
		}
		r.rec.Seats = append(r.rec.Seats, seat)
	}
	return r
}

// Finish closes the record from the terminal snapshot and settlement.
func (r *Recorder) Finish(snap holdem.Snapshot, settle *holdem.SettlementResult) *Record {
	for _, c := range snap.CommunityCards {
		r.rec.Board = append(r.rec.Board, c.Short())
	}
	for _, a := range snap.ActionLog {
		r.rec.Actions = append(r.rec.Actions, ActionEntry{
			Street: a.Street.String(),
			Seat:   a.Seat,
			Name:   r.names[a.Seat],
			Action: a.Action.String(),
			Amount: a.Amount,
		})
	}
	for i := range r.rec.Seats {
		seat := &r.rec.Seats[i]
		for _, p := range snap.Players {
			if p.Seat == seat.Seat {
				seat.FinishingStack = p.Stack
			}
		}
	}

	if settle != nil {
		for _, pr := range settle.PotResults {
			out := PotOutcome{Amount: pr.Amount}
			for _, w := range pr.Winners {
				out.Winners = append(out.Winners, r.names[w])
			}
			out.WinAmounts = append(out.WinAmounts, pr.WinAmounts...)
			r.rec.Pots = append(r.rec.Pots, out)
			r.rec.TotalPot += pr.Amount
		}
		// Shown-down hands become public record; a fold-out win stays
		// mucked (no Category means no showdown happened).
		for _, pres := range settle.PlayerResults {
			if len(pres.HoleCards) != 2 || pres.Category == 0 {
				continue
			}
			for i := range r.rec.Seats {
				if r.rec.Seats[i].Seat == pres.Seat && len(r.rec.Seats[i].HoleCards) == 0 {
					for _, c := range pres.HoleCards {
						r.rec.Seats[i].HoleCards = append(r.rec.Seats[i].HoleCards, c.Short())
					}
				}
			}
		}
	}

	return &r.rec
}

// NetResult reports a seat's chip delta for the hand.
func (rec *Record) NetResult(seat uint16) (int64, error) {
	for _, s := range rec.Seats {
		if s.Seat == seat {
			return s.FinishingStack - s.StartingStack, nil
		}
	}
	return 0, fmt.Errorf("seat %d not in record", seat)
}
