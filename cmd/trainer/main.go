// Command trainer runs simulated training sessions from the terminal:
// it seats the hero against a table of AI personas, plays out hands,
// persists the histories and prints a session summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"holdem-trainer/ai"
	"holdem-trainer/handhistory"
	"holdem-trainer/holdem"
	"holdem-trainer/session"
)

func main() {
	var (
		hands     = flag.Int("hands", 20, "number of hands to play")
		seed      = flag.Int64("seed", 0, "deck and AI seed (0 = random)")
		seats     = flag.Int("seats", 6, "table size including hero (2-6)")
		stack     = flag.Int64("stack", 10000, "starting stack in chips")
		sb        = flag.Int64("sb", 50, "small blind")
		bb        = flag.Int64("bb", 100, "big blind")
		ante      = flag.Int64("ante", 0, "ante")
		dbPath    = flag.String("db", "trainer.db", "hand history database path (empty = no persistence)")
		export    = flag.Bool("export", false, "print the last hand as a text history")
		delay     = flag.Duration("delay", 0, "AI think delay per decision")
		verbosity = flag.String("log", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if lvl, err := log.ParseLevel(*verbosity); err == nil {
		logger.SetLevel(lvl)
	}

	if err := run(logger, *hands, *seed, *seats, *stack, *sb, *bb, *ante, *dbPath, *export, *delay); err != nil {
		logger.Fatal("trainer failed", "err", err)
	}
}

func run(logger *log.Logger, hands int, seed int64, seats int, stack, sb, bb, ante int64, dbPath string, export bool, delay time.Duration) error {
	if seats < 2 || seats > 6 {
		return fmt.Errorf("seats must be 2-6, got %d", seats)
	}

	var store *handhistory.Store
	if dbPath != "" {
		var err error
		store, err = handhistory.OpenStore(dbPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
	}

	registry := ai.NewRegistry()
	personas := registry.All()
	opponents := make([]session.Opponent, 0, seats-1)
	for i := 0; i < seats-1; i++ {
		opponents = append(opponents, session.Opponent{
			Seat:    uint16(i + 1),
			Persona: personas[i%len(personas)],
			Stack:   stack,
		})
	}

	sess, err := session.New(session.Options{
		Table: holdem.Config{
			MaxPlayers: seats,
			MinPlayers: 2,
			SmallBlind: sb,
			BigBlind:   bb,
			Ante:       ante,
			Seed:       seed,
		},
		HeroSeat:   0,
		HeroName:   "Hero",
		HeroStack:  stack,
		Opponents:  opponents,
		ThinkDelay: delay,
		Seed:       seed,
		Logger:     logger,
		Advisor:    session.ChartAdvisor{},
		Store:      store,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	var lastRecord *handhistory.Record
	heroNet := int64(0)
	sess.OnHandEnd(func(rec *handhistory.Record, _ *holdem.SettlementResult) {
		lastRecord = rec
		if rec == nil {
			return
		}
		if net, err := rec.NetResult(0); err == nil {
			heroNet += net
		}
	})

	for i := 0; i < hands; i++ {
		if err := sess.StartHand(); err != nil {
			// Busted stacks end the session early.
			logger.Warn("cannot start hand", "hand", i+1, "err", err)
			break
		}
		if err := playHeroUntilDone(sess); err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
	}

	logger.Info("session finished", "heroNet", heroNet)

	if export && lastRecord != nil {
		if err := handhistory.WriteText(os.Stdout, lastRecord); err != nil {
			return fmt.Errorf("export hand text: %w", err)
		}
	}
	return nil
}

// playHeroUntilDone runs a passive check/call hero line so unattended
// simulations always finish. Interactive play replaces this loop.
func playHeroUntilDone(sess *session.Session) error {
	for {
		snap := sess.Snapshot()
		if snap.Ended {
			return nil
		}
		if snap.ActionSeat != 0 {
			// AI still thinking (nonzero delay); yield briefly.
			time.Sleep(10 * time.Millisecond)
			continue
		}

		legal, _, err := sess.AvailableActions()
		if err != nil {
			return err
		}
		if _, err := sess.Advice(context.Background()); err != nil && err != session.ErrNoAdvisor {
			return err
		}

		action := holdem.Fold()
		for _, t := range legal {
			if t == holdem.ActionCheck {
				action = holdem.Check()
				break
			}
			if t == holdem.ActionCall {
				action = holdem.Call()
			}
		}
		if err := sess.Dispatch(action); err != nil {
			return err
		}
	}
}
