package card

import (
	"errors"
	"math/rand"
)

// ErrDeckExhausted indicates the deck ran out mid-hand. This is always an
// engine bug, never a normal game outcome.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is the live stock of undealt cards for one hand.
//
// The random source is injected so identical seeds reproduce identical
// deals; nothing here touches the global rand.
type Deck struct {
	cards CardList
	burnt CardList
	rng   *rand.Rand
}

// NewDeck builds a full 52-card deck in canonical order.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.cards.Init(FullDeck)
	return d
}

// NewDeckFromCards builds a deck with a forced order, used by replay and
// scenario tests. The order is dealt top-first without shuffling.
func NewDeckFromCards(cards []Card) *Deck {
	d := &Deck{}
	d.cards.Init(cards)
	return d
}

// Shuffle applies a Fisher-Yates permutation over the injected source.
func (d *Deck) Shuffle() {
	if d.rng == nil {
		return
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal pops n cards off the top. A card handed out once is never re-issued.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out, nil
}

// Burn discards the top card before a street deal.
func (d *Deck) Burn() error {
	c, err := d.Deal(1)
	if err != nil {
		return err
	}
	d.burnt = append(d.burnt, c...)
	return nil
}

// Remaining reports how many cards are still undealt.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Burnt returns the burn pile, in burn order.
func (d *Deck) Burnt() []Card {
	return append([]Card{}, d.burnt...)
}
