// Package icm converts tournament chip stacks into prize-pool equity
// under the Independent Chip Model. It is standalone: nothing here
// touches live table state.
package icm

import (
	"errors"
	"fmt"
)

// exactLimit is the largest field solved by full finish-order
// enumeration; the recursion is O(n!/(n-m)!) in the number of paid
// places m, fine for a single table and hopeless beyond it.
const exactLimit = 6

var (
	ErrNoPayouts      = errors.New("icm: payout schedule is empty")
	ErrNoStacks       = errors.New("icm: no stacks")
	ErrNegativeStack  = errors.New("icm: negative stack")
	ErrNegativePayout = errors.New("icm: negative payout")
	ErrNoChips        = errors.New("icm: total chips must be positive")
	ErrTooManyPayouts = errors.New("icm: more paid places than players")
)

// Equity returns each player's share of the prize pool, in the same
// units as payouts (typically percent of pool). The result is parallel
// to stacks and sums to the payout total.
//
// Fields up to six players are solved exactly by recursive finish-order
// enumeration; larger fields use a power-decay approximation that is
// renormalized so no equity is created or destroyed.
func Equity(stacks []float64, payouts []float64) ([]float64, error) {
	if err := validate(stacks, payouts); err != nil {
		return nil, err
	}

	if len(stacks) <= exactLimit {
		return exactEquity(stacks, payouts), nil
	}
	return approximateEquity(stacks, payouts), nil
}

func validate(stacks, payouts []float64) error {
	if len(stacks) == 0 {
		return ErrNoStacks
	}
	if len(payouts) == 0 {
		return ErrNoPayouts
	}
	if len(payouts) > len(stacks) {
		return ErrTooManyPayouts
	}
	total := 0.0
	for i, s := range stacks {
		if s < 0 {
			return fmt.Errorf("%w: stacks[%d] = %v", ErrNegativeStack, i, s)
		}
		total += s
	}
	if total <= 0 {
		return ErrNoChips
	}
	for i, p := range payouts {
		if p < 0 {
			return fmt.Errorf("%w: payouts[%d] = %v", ErrNegativePayout, i, p)
		}
	}
	return nil
}

// exactEquity enumerates finish orders recursively. The probability
// that a stack takes the next paid place is its share of the chips
// still in play among undecided players; conditioning on each possible
// next finisher and recursing covers every ordering exactly once.
func exactEquity(stacks, payouts []float64) []float64 {
	n := len(stacks)
	equities := make([]float64, n)
	taken := make([]bool, n)

	var place func(position int, prob float64)
	place = func(position int, prob float64) {
		if position >= len(payouts) {
			return
		}
		remaining := 0.0
		for i := 0; i < n; i++ {
			if !taken[i] {
				remaining += stacks[i]
			}
		}
		if remaining <= 0 {
			return
		}
		for i := 0; i < n; i++ {
			if taken[i] || stacks[i] <= 0 {
				continue
			}
			pFinish := prob * stacks[i] / remaining
			equities[i] += pFinish * payouts[position]
			taken[i] = true
			place(position+1, pFinish)
			taken[i] = false
		}
	}
	place(0, 1)

	return equities
}

// approximateEquity mimics the finish-order decay in closed form: the
// chance of taking the k-th paid place decays with the chip share
// raised to increasing powers. The raw weights are renormalized per
// place so the distributed total matches the payout total exactly.
func approximateEquity(stacks, payouts []float64) []float64 {
	n := len(stacks)
	totalChips := 0.0
	for _, s := range stacks {
		totalChips += s
	}

	equities := make([]float64, n)
	for k, payout := range payouts {
		weightSum := 0.0
		weights := make([]float64, n)
		for i, s := range stacks {
			if s <= 0 {
				continue
			}
			share := s / totalChips
			w := share
			for p := 0; p < k; p++ {
				w *= share // share^(k+1): decay for deeper places
			}
			weights[i] = w
			weightSum += w
		}
		if weightSum <= 0 {
			continue
		}
		for i := range weights {
			equities[i] += payout * weights[i] / weightSum
		}
	}

	return equities
}
