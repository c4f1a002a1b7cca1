package holdem

import (
	"fmt"

	"holdem-trainer/card"
)

type Config struct {
	// Table
	MaxPlayers int
	MinPlayers int

	// Blinds / Ante
	SmallBlind int64
	BigBlind   int64
	Ante       int64

	// RNG seed (0 => time-based)
	Seed int64

	// Scenario / replay support
	ForcedDealerSeat *uint16
	DeckOverride     []card.Card
}

func (c Config) validate() error {
	if c.MaxPlayers <= 0 || c.MaxPlayers > 6 {
		return fmt.Errorf("MaxPlayers must be in 1..6")
	}
	if c.MinPlayers <= 0 {
		return fmt.Errorf("MinPlayers must be > 0")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("MinPlayers must be <= MaxPlayers")
	}
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("invalid blinds: sb=%d bb=%d", c.SmallBlind, c.BigBlind)
	}
	if c.Ante < 0 {
		return fmt.Errorf("Ante must be >= 0")
	}
	if len(c.DeckOverride) > 0 && len(c.DeckOverride) != 52 {
		return fmt.Errorf("deck override must contain exactly 52 cards, got %d", len(c.DeckOverride))
	}
	return nil
}
