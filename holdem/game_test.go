package holdem

import (
	"math/rand"
	"reflect"
	"testing"

	"holdem-trainer/card"
)

// riggedDeck builds a 52-card override: the named cards in deal order,
// then the rest of the pack in canonical order.
func riggedDeck(t *testing.T, first ...string) []card.Card {
	t.Helper()
	used := make(map[card.Card]bool, len(first))
	out := make([]card.Card, 0, 52)
	for _, s := range first {
		c, err := card.Parse(s)
		if err != nil {
			t.Fatalf("bad card %q: %v", s, err)
		}
		if used[c] {
			t.Fatalf("card %q rigged twice", s)
		}
		used[c] = true
		out = append(out, c)
	}
	for _, c := range card.FullDeck {
		if !used[c] {
			out = append(out, c)
		}
	}
	return out
}

func forcedDealer(seat uint16) *uint16 { return &seat }

func newTestGame(t *testing.T, cfg Config, stacks map[uint16]int64) *Game {
	t.Helper()
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for seat, stack := range stacks {
		if err := g.SitDown(seat, uint64(seat)+1, "p", stack, seat == 0); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func threeHandedConfig() Config {
	return Config{
		MaxPlayers:       6,
		MinPlayers:       2,
		SmallBlind:       50,
		BigBlind:         100,
		Seed:             1,
		ForcedDealerSeat: forcedDealer(0),
	}
}

func mustAct(t *testing.T, g *Game, seat uint16, a Action) *SettlementResult {
	t.Helper()
	settle, err := g.Act(seat, a)
	if err != nil {
		t.Fatalf("seat %d %s: %v", seat, a.Type, err)
	}
	return settle
}

func stacksTotal(snap Snapshot) int64 {
	var sum int64
	for _, p := range snap.Players {
		sum += p.Stack + p.Bet
	}
	return sum + snap.PotTotal
}

func TestStartHandPostsBlindsAndDeals(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	snap := g.Snapshot()
	if snap.Street != StreetPreflop {
		t.Fatalf("street = %s, want %s", snap.Street, StreetPreflop)
	}
	if snap.DealerSeat != 0 || snap.SmallBlindSeat != 1 || snap.BigBlindSeat != 2 {
		t.Fatalf("button/blinds = %d/%d/%d, want 0/1/2", snap.DealerSeat, snap.SmallBlindSeat, snap.BigBlindSeat)
	}
	// Three-handed: the button acts first preflop.
	if snap.ActionSeat != 0 {
		t.Fatalf("first actor = %d, want 0", snap.ActionSeat)
	}
	if snap.CurBet != 100 {
		t.Fatalf("curBet = %d, want 100", snap.CurBet)
	}

	seen := make(map[card.Card]bool)
	for _, p := range snap.Players {
		if len(p.HoleCards) != 2 {
			t.Fatalf("seat %d dealt %d cards", p.Seat, len(p.HoleCards))
		}
		for _, c := range p.HoleCards {
			if seen[c] {
				t.Fatalf("duplicate card %s dealt", c)
			}
			seen[c] = true
		}
	}

	wantPos := map[uint16]Position{0: PositionBTN, 1: PositionSB, 2: PositionBB}
	for _, p := range snap.Players {
		if p.Position != wantPos[p.Seat] {
			t.Fatalf("seat %d position = %s, want %s", p.Seat, p.Position, wantPos[p.Seat])
		}
	}

	if got := stacksTotal(snap); got != 3000 {
		t.Fatalf("chips in play = %d, want 3000", got)
	}
}

func TestStreetProgressionSingleTransition(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	// Preflop: call, call, check closes the round exactly once.
	mustAct(t, g, 0, Call())
	mustAct(t, g, 1, Call())
	if snap := g.Snapshot(); snap.Street != StreetPreflop {
		t.Fatalf("street advanced early to %s", snap.Street)
	}
	mustAct(t, g, 2, Check())

	snap := g.Snapshot()
	if snap.Street != StreetFlop {
		t.Fatalf("street = %s, want %s", snap.Street, StreetFlop)
	}
	if len(snap.CommunityCards) != 3 {
		t.Fatalf("flop dealt %d cards", len(snap.CommunityCards))
	}
	if snap.PotTotal != 300 {
		t.Fatalf("pot = %d, want 300", snap.PotTotal)
	}
	// Postflop action starts left of the button.
	if snap.ActionSeat != 1 {
		t.Fatalf("flop first actor = %d, want 1", snap.ActionSeat)
	}
	if snap.CurBet != 0 {
		t.Fatalf("flop curBet = %d, want 0", snap.CurBet)
	}

	// Check the flop and turn around; river checks end the hand.
	for _, street := range []Street{StreetTurn, StreetRiver} {
		mustAct(t, g, 1, Check())
		mustAct(t, g, 2, Check())
		mustAct(t, g, 0, Check())
		if street == StreetRiver {
			break
		}
		if got := g.Snapshot().Street; got != street {
			t.Fatalf("street = %s, want %s", got, street)
		}
	}
	mustAct(t, g, 1, Check())
	mustAct(t, g, 2, Check())
	settle := mustAct(t, g, 0, Check())
	if settle == nil {
		t.Fatal("river check-around did not settle the hand")
	}

	final := g.Snapshot()
	if !final.Ended || final.Street != StreetResult {
		t.Fatalf("hand not finished: ended=%v street=%s", final.Ended, final.Street)
	}
	if got := stacksTotal(final); got != 3000 {
		t.Fatalf("chips in play = %d, want 3000", got)
	}
}

func TestFoldOutAwardsWithoutShowdown(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	mustAct(t, g, 0, Fold())
	settle := mustAct(t, g, 1, Fold())
	if settle == nil {
		t.Fatal("second fold should end the hand")
	}

	// BB keeps the blind and wins the SB's dead 50; the unmatched 50 of
	// the blind comes back as a refund, not a win.
	if len(settle.PotResults) != 1 {
		t.Fatalf("pot results = %d, want 1", len(settle.PotResults))
	}
	pr := settle.PotResults[0]
	if pr.Amount != 100 || len(pr.Winners) != 1 || pr.Winners[0] != 2 {
		t.Fatalf("pot result = %+v, want 100 to seat 2", pr)
	}
	if settle.ExcessSeat != 2 || settle.ExcessAmount != 50 {
		t.Fatalf("excess = seat %d amount %d, want seat 2 amount 50", settle.ExcessSeat, settle.ExcessAmount)
	}

	snap := g.Snapshot()
	for _, p := range snap.Players {
		want := map[uint16]int64{0: 1000, 1: 950, 2: 1050}[p.Seat]
		if p.Stack != want {
			t.Fatalf("seat %d stack = %d, want %d", p.Seat, p.Stack, want)
		}
	}
}

func TestIllegalActionsLeaveStateUntouched(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}
	before := g.Snapshot()

	cases := []struct {
		name string
		seat uint16
		act  Action
	}{
		{"out of turn", 1, Call()},
		{"check facing a bet", 0, Check()},
		{"bet when betting is open", 0, Bet(300)},
		{"undersized raise", 0, Raise(150)},
		{"raise below current bet", 0, Raise(80)},
	}
	for _, tc := range cases {
		if _, err := g.Act(tc.seat, tc.act); err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
		after := g.Snapshot()
		if !reflect.DeepEqual(before, after) {
			t.Fatalf("%s: state changed after rejected action", tc.name)
		}
	}

	// The hand continues normally afterwards.
	mustAct(t, g, 0, Call())
}

func TestHeadsUpButtonIsSmallBlindActsFirst(t *testing.T) {
	cfg := Config{
		MaxPlayers:       6,
		MinPlayers:       2,
		SmallBlind:       50,
		BigBlind:         100,
		Seed:             3,
		ForcedDealerSeat: forcedDealer(0),
	}
	g := newTestGame(t, cfg, map[uint16]int64{0: 1000, 1: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	snap := g.Snapshot()
	if snap.SmallBlindSeat != 0 || snap.BigBlindSeat != 1 {
		t.Fatalf("HU blinds = %d/%d, want button 0 posting small", snap.SmallBlindSeat, snap.BigBlindSeat)
	}
	if snap.ActionSeat != 0 {
		t.Fatalf("HU preflop first actor = %d, want the button", snap.ActionSeat)
	}

	mustAct(t, g, 0, Call())
	mustAct(t, g, 1, Check())
	snap = g.Snapshot()
	if snap.Street != StreetFlop {
		t.Fatalf("street = %s, want flop", snap.Street)
	}
	// Postflop the big blind acts first.
	if snap.ActionSeat != 1 {
		t.Fatalf("HU flop first actor = %d, want 1", snap.ActionSeat)
	}
}

func TestUnderRaiseAllInDoesNotReopenAction(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 350})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	mustAct(t, g, 0, Raise(300))
	mustAct(t, g, 1, Fold())
	// BB's shove to 350 is 50 over the bet, short of the 200 minimum.
	mustAct(t, g, 2, AllIn())

	legal, _, err := g.LegalActions(0)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range legal {
		if a == ActionRaise {
			t.Fatalf("under-raise all-in reopened raising: %v", legal)
		}
	}
	hasCall := false
	for _, a := range legal {
		if a == ActionCall {
			hasCall = true
		}
	}
	if !hasCall {
		t.Fatalf("raiser must still be allowed to call: %v", legal)
	}

	settle := mustAct(t, g, 0, Call())
	if settle == nil {
		t.Fatal("calling the short all-in should run the hand out")
	}
	if got := stacksTotal(g.Snapshot()); got != 2350 {
		t.Fatalf("chips in play = %d, want 2350", got)
	}
}

func TestFullRaiseReopensAction(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	mustAct(t, g, 0, Raise(300))
	mustAct(t, g, 1, Fold())
	mustAct(t, g, 2, Raise(600))

	legal, minTo, err := g.LegalActions(0)
	if err != nil {
		t.Fatal(err)
	}
	hasRaise := false
	for _, a := range legal {
		if a == ActionRaise {
			hasRaise = true
		}
	}
	if !hasRaise {
		t.Fatalf("full raise should reopen action: %v", legal)
	}
	if minTo != 900 {
		t.Fatalf("min re-raise = %d, want 900", minTo)
	}
}

func TestSidePotsThreeWayAllIn(t *testing.T) {
	cfg := threeHandedConfig()
	cfg.DeckOverride = riggedDeck(t,
		"As", "Ks", "2h", // first hole card: SB, BB, BTN
		"Ah", "Kh", "3d", // second pass
		"4c", // burn
		"4s", "7h", "9c", // flop
		"5c",       // burn
		"Jd",       // turn
		"6c", "Qh", // burn, river
	)
	g := newTestGame(t, cfg, map[uint16]int64{0: 1000, 1: 200, 2: 500})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	mustAct(t, g, 0, AllIn())
	mustAct(t, g, 1, AllIn())
	settle := mustAct(t, g, 2, AllIn())
	if settle == nil {
		t.Fatal("three-way all-in should settle immediately")
	}

	// Unmatched 500 of the big stack's shove comes back.
	if settle.ExcessSeat != 0 || settle.ExcessAmount != 500 {
		t.Fatalf("excess = seat %d amount %d, want seat 0 amount 500", settle.ExcessSeat, settle.ExcessAmount)
	}

	if len(settle.PotResults) != 2 {
		t.Fatalf("pots = %d, want main + one side pot", len(settle.PotResults))
	}
	main, side := settle.PotResults[0], settle.PotResults[1]
	if main.Amount != 600 || len(main.Winners) != 1 || main.Winners[0] != 1 {
		t.Fatalf("main pot = %+v, want 600 to seat 1 (aces)", main)
	}
	if side.Amount != 600 || len(side.Winners) != 1 || side.Winners[0] != 2 {
		t.Fatalf("side pot = %+v, want 600 to seat 2 (kings)", side)
	}

	snap := g.Snapshot()
	want := map[uint16]int64{0: 500, 1: 600, 2: 600}
	for _, p := range snap.Players {
		if p.Stack != want[p.Seat] {
			t.Fatalf("seat %d stack = %d, want %d", p.Seat, p.Stack, want[p.Seat])
		}
	}
	if got := stacksTotal(snap); got != 1700 {
		t.Fatalf("chips in play = %d, want 1700", got)
	}
}

func TestOddChipGoesClockwiseFromButton(t *testing.T) {
	cfg := threeHandedConfig()
	cfg.Ante = 1
	cfg.DeckOverride = riggedDeck(t,
		"As", "Ad", "Qs", // first hole card: SB, BB, BTN
		"4c", "4h", "3c", // second pass
		"2c",             // burn
		"2s", "7d", "9h", // flop
		"5h",       // burn
		"Jc",       // turn
		"6h", "Kd", // burn, river
	)
	g := newTestGame(t, cfg, map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	mustAct(t, g, 0, Call())
	mustAct(t, g, 1, Call())
	mustAct(t, g, 2, Check())
	for i := 0; i < 2; i++ {
		mustAct(t, g, 1, Check())
		mustAct(t, g, 2, Check())
		mustAct(t, g, 0, Check())
	}
	mustAct(t, g, 1, Check())
	mustAct(t, g, 2, Check())
	settle := mustAct(t, g, 0, Check())
	if settle == nil {
		t.Fatal("river check-around did not settle")
	}

	// 303 chips, two chopping aces: 152 to the first winner clockwise
	// from the button (the small blind), 151 to the other.
	if len(settle.PotResults) != 1 {
		t.Fatalf("pots = %d, want 1", len(settle.PotResults))
	}
	pr := settle.PotResults[0]
	if pr.Amount != 303 {
		t.Fatalf("pot = %d, want 303", pr.Amount)
	}
	if len(pr.Winners) != 2 || pr.Winners[0] != 1 || pr.Winners[1] != 2 {
		t.Fatalf("winners = %v, want [1 2] in button order", pr.Winners)
	}
	if pr.WinAmounts[0] != 152 || pr.WinAmounts[1] != 151 {
		t.Fatalf("win amounts = %v, want [152 151]", pr.WinAmounts)
	}

	if got := stacksTotal(g.Snapshot()); got != 3000 {
		t.Fatalf("chips in play = %d, want 3000", got)
	}
}

func TestActAfterHandEndedFails(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}
	mustAct(t, g, 0, Fold())
	mustAct(t, g, 1, Fold())

	if _, err := g.Act(2, Check()); err != ErrHandEnded {
		t.Fatalf("err = %v, want ErrHandEnded", err)
	}
	if _, _, err := g.LegalActions(2); err != ErrHandEnded {
		t.Fatalf("legal actions err = %v, want ErrHandEnded", err)
	}
}

func TestStartHandWhileInProgressFails(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}
	if err := g.StartHand(); err != ErrHandInProgress {
		t.Fatalf("err = %v, want ErrHandInProgress", err)
	}
}

func TestStandUpDuringHandFails(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}
	if err := g.StandUp(1); err != ErrHandInProgress {
		t.Fatalf("err = %v, want ErrHandInProgress", err)
	}
	mustAct(t, g, 0, Fold())
	mustAct(t, g, 1, Fold())
	if err := g.StandUp(1); err != nil {
		t.Fatalf("stand up between hands: %v", err)
	}
}

func TestBetClampedToAllIn(t *testing.T) {
	g := newTestGame(t, threeHandedConfig(), map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	// A raise beyond the stack is an all-in, not an error.
	mustAct(t, g, 0, Raise(5000))
	snap := g.Snapshot()
	for _, p := range snap.Players {
		if p.Seat == 0 {
			if !p.AllIn || p.Stack != 0 || p.Bet != 1000 {
				t.Fatalf("seat 0 after oversized raise: allin=%v stack=%d bet=%d", p.AllIn, p.Stack, p.Bet)
			}
			if p.LastAction != ActionAllIn {
				t.Fatalf("last action = %s, want %s", p.LastAction, ActionAllIn)
			}
		}
	}
}

func TestBlindsAllInRunsOutImmediately(t *testing.T) {
	cfg := Config{
		MaxPlayers:       6,
		MinPlayers:       2,
		SmallBlind:       50,
		BigBlind:         100,
		Seed:             8,
		ForcedDealerSeat: forcedDealer(0),
	}
	// Both stacks are consumed by the blind posts.
	g := newTestGame(t, cfg, map[uint16]int64{0: 30, 1: 80})
	if err := g.StartHand(); err != nil {
		t.Fatal(err)
	}

	snap := g.Snapshot()
	if !snap.Ended || snap.Street != StreetResult {
		t.Fatalf("blind all-in hand not settled: ended=%v street=%s", snap.Ended, snap.Street)
	}
	if len(snap.CommunityCards) != 5 {
		t.Fatalf("board = %d cards, want full runout", len(snap.CommunityCards))
	}
	if got := stacksTotal(snap); got != 110 {
		t.Fatalf("chips in play = %d, want 110", got)
	}
}

func TestChipConservationAcrossRandomHands(t *testing.T) {
	cfg := Config{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
		Seed:       11,
	}
	g := newTestGame(t, cfg, map[uint16]int64{0: 2000, 1: 2000, 2: 2000, 3: 2000})
	rng := rand.New(rand.NewSource(99))

	const total = int64(8000)
	for hand := 0; hand < 40; hand++ {
		if err := g.StartHand(); err != nil {
			break // players busted below the minimum
		}
		for steps := 0; steps < 200; steps++ {
			snap := g.Snapshot()
			if snap.Ended {
				break
			}
			seat := snap.ActionSeat
			legal, minTo, err := g.LegalActions(seat)
			if err != nil {
				t.Fatalf("hand %d: legal actions: %v", hand, err)
			}

			action := pickRandomAction(rng, legal, minTo)
			if _, err := g.Act(seat, action); err != nil {
				t.Fatalf("hand %d: seat %d %s: %v", hand, seat, action.Type, err)
			}
		}
		if got := stacksTotal(g.Snapshot()); got != total {
			t.Fatalf("hand %d: chips in play = %d, want %d", hand, got, total)
		}
	}
}

// pickRandomAction chooses a legal action, weighted toward passive lines
// so hands usually reach showdown.
func pickRandomAction(rng *rand.Rand, legal []ActionType, minTo int64) Action {
	has := func(target ActionType) bool {
		for _, a := range legal {
			if a == target {
				return true
			}
		}
		return false
	}

	roll := rng.Float64()
	switch {
	case roll < 0.10 && has(ActionFold):
		return Fold()
	case roll < 0.20 && has(ActionBet):
		return Bet(minTo)
	case roll < 0.25 && has(ActionRaise):
		return Raise(minTo)
	case roll < 0.28 && has(ActionAllIn):
		return AllIn()
	case has(ActionCheck):
		return Check()
	case has(ActionCall):
		return Call()
	case has(ActionFold):
		return Fold()
	default:
		return AllIn()
	}
}

func TestSameSeedSameDeal(t *testing.T) {
	cfg := Config{
		MaxPlayers: 6,
		MinPlayers: 2,
		SmallBlind: 50,
		BigBlind:   100,
		Seed:       1234,
	}
	run := func() Snapshot {
		g := newTestGame(t, cfg, map[uint16]int64{0: 1000, 1: 1000, 2: 1000})
		if err := g.StartHand(); err != nil {
			t.Fatal(err)
		}
		for !g.Snapshot().Ended {
			snap := g.Snapshot()
			legal, _, err := g.LegalActions(snap.ActionSeat)
			if err != nil {
				t.Fatal(err)
			}
			action := Fold()
			for _, a := range legal {
				if a == ActionCheck {
					action = Check()
					break
				}
				if a == ActionCall {
					action = Call()
				}
			}
			if _, err := g.Act(snap.ActionSeat, action); err != nil {
				t.Fatal(err)
			}
		}
		return g.Snapshot()
	}

	a := run()
	b := run()
	if !reflect.DeepEqual(a.CommunityCards, b.CommunityCards) {
		t.Fatalf("boards diverged: %v vs %v", a.CommunityCards, b.CommunityCards)
	}
	for i := range a.Players {
		if !reflect.DeepEqual(a.Players[i].HoleCards, b.Players[i].HoleCards) {
			t.Fatalf("seat %d hole cards diverged", a.Players[i].Seat)
		}
	}
}
