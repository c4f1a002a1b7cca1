package handhistory

import (
	"fmt"
	"io"
	"strings"
)

// WriteText renders a record in the conventional plain-text poker log
// layout: header, seat listing, blind posts, per-street action lines
// and a summary block.
func WriteText(w io.Writer, rec *Record) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Hand #%s - Hold'em No Limit (%d/%d) - %s\n",
		rec.ID, rec.SmallBlind, rec.BigBlind, rec.PlayedAt.Format("2006/01/02 15:04:05 MST"))
	fmt.Fprintf(&b, "Table 'trainer' 6-max Seat #%d is the button\n", rec.ButtonSeat+1)

	for _, s := range rec.Seats {
		fmt.Fprintf(&b, "Seat %d: %s (%d in chips)\n", s.Seat+1, s.Name, s.StartingStack)
	}

	if name := rec.seatName(rec.SmallBlindSeat); name != "" && rec.SmallBlind > 0 {
		fmt.Fprintf(&b, "%s: posts small blind %d\n", name, rec.SmallBlind)
	}
	if name := rec.seatName(rec.BigBlindSeat); name != "" {
		fmt.Fprintf(&b, "%s: posts big blind %d\n", name, rec.BigBlind)
	}
	if rec.Ante > 0 {
		for _, s := range rec.Seats {
			fmt.Fprintf(&b, "%s: posts the ante %d\n", s.Name, rec.Ante)
		}
	}

	b.WriteString("*** HOLE CARDS ***\n")
	for _, s := range rec.Seats {
		if s.Hero && len(s.HoleCards) == 2 {
			fmt.Fprintf(&b, "Dealt to %s [%s]\n", s.Name, strings.Join(s.HoleCards, " "))
		}
	}

	street := "preflop"
	for _, a := range rec.Actions {
		if a.Street != street {
			street = a.Street
			writeStreetHeader(&b, street, rec.Board)
		}
		writeActionLine(&b, a)
	}

	b.WriteString("*** SUMMARY ***\n")
	fmt.Fprintf(&b, "Total pot %d\n", rec.TotalPot)
	if len(rec.Board) > 0 {
		fmt.Fprintf(&b, "Board [%s]\n", strings.Join(rec.Board, " "))
	}
	for _, pot := range rec.Pots {
		for i, winner := range pot.Winners {
			amount := int64(0)
			if i < len(pot.WinAmounts) {
				amount = pot.WinAmounts[i]
			}
			fmt.Fprintf(&b, "%s collected %d from pot\n", winner, amount)
		}
	}
	for _, s := range rec.Seats {
		if !s.Hero && len(s.HoleCards) == 2 {
			fmt.Fprintf(&b, "Seat %d: %s showed [%s]\n", s.Seat+1, s.Name, strings.Join(s.HoleCards, " "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeStreetHeader(b *strings.Builder, street string, board []string) {
	switch street {
	case "flop":
		if len(board) >= 3 {
			fmt.Fprintf(b, "*** FLOP *** [%s]\n", strings.Join(board[:3], " "))
		}
	case "turn":
		if len(board) >= 4 {
			fmt.Fprintf(b, "*** TURN *** [%s] [%s]\n", strings.Join(board[:3], " "), board[3])
		}
	case "river":
		if len(board) >= 5 {
			fmt.Fprintf(b, "*** RIVER *** [%s] [%s]\n", strings.Join(board[:4], " "), board[4])
		}
	}
}

func writeActionLine(b *strings.Builder, a ActionEntry) {
	switch a.Action {
	case "FOLD":
		fmt.Fprintf(b, "%s: folds\n", a.Name)
	case "CHECK":
		fmt.Fprintf(b, "%s: checks\n", a.Name)
	case "CALL":
		fmt.Fprintf(b, "%s: calls %d\n", a.Name, a.Amount)
	case "BET":
		fmt.Fprintf(b, "%s: bets %d\n", a.Name, a.Amount)
	case "RAISE":
		fmt.Fprintf(b, "%s: raises to %d\n", a.Name, a.Amount)
	case "ALLIN":
		fmt.Fprintf(b, "%s: goes all-in for %d\n", a.Name, a.Amount)
	default:
		fmt.Fprintf(b, "%s: %s %d\n", a.Name, strings.ToLower(a.Action), a.Amount)
	}
}

func (rec *Record) seatName(seat uint16) string {
	for _, s := range rec.Seats {
		if s.Seat == seat {
			return s.Name
		}
	}
	return ""
}
