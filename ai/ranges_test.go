package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"holdem-trainer/holdem"
)

func TestPreflopScoreOrdering(t *testing.T) {
	aa := preflopScore(parseCards(t, "As Ad"))
	kk := preflopScore(parseCards(t, "Ks Kd"))
	aks := preflopScore(parseCards(t, "As Ks"))
	ako := preflopScore(parseCards(t, "As Kd"))
	t7o := preflopScore(parseCards(t, "Ts 7d"))
	junk := preflopScore(parseCards(t, "7s 2d"))

	assert.Greater(t, aa, kk, "AA over KK")
	assert.Greater(t, kk, aks, "KK over AKs")
	assert.Greater(t, aks, ako, "suited beats offsuit")
	assert.Greater(t, ako, t7o)
	assert.Greater(t, t7o, junk)
	assert.LessOrEqual(t, aa, 1.0)
	assert.GreaterOrEqual(t, junk, 0.0)
}

func TestPreflopScoreSuitedAndConnectedBonuses(t *testing.T) {
	suited := preflopScore(parseCards(t, "9h 8h"))
	offsuit := preflopScore(parseCards(t, "9h 8c"))
	gapped := preflopScore(parseCards(t, "9h 5c"))

	assert.Greater(t, suited, offsuit)
	assert.Greater(t, offsuit, gapped)
}

func TestOpeningRangeWidensByPosition(t *testing.T) {
	p := tagProfile
	// A hand clearly inside the button range but clearly outside UTG.
	score := 0.53

	assert.False(t, inOpeningRange(score, holdem.PositionUTG, p, 0.99))
	assert.True(t, inOpeningRange(score, holdem.PositionBTN, p, 0.99))
}

func TestBorderlineHandsFlipVPIPCoin(t *testing.T) {
	p := tagProfile // VPIP 0.22
	threshold := openThresholds[holdem.PositionCO]
	borderline := threshold + 0.01

	assert.True(t, inOpeningRange(borderline, holdem.PositionCO, p, 0.1), "roll under VPIP opens")
	assert.False(t, inOpeningRange(borderline, holdem.PositionCO, p, 0.9), "roll over VPIP folds")
}

func TestClearlyInAndOutIgnoreTheCoin(t *testing.T) {
	p := Profile{VPIP: 0} // never wins a coin flip
	assert.True(t, inOpeningRange(0.95, holdem.PositionUTG, p, 0.99), "premium opens regardless of VPIP")
	assert.False(t, inOpeningRange(0.1, holdem.PositionBTN, Profile{VPIP: 1}, 0.0), "junk folds regardless of VPIP")
}

func TestRegistrySeedsBuiltinsAndLoadsOverrides(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, len(builtinPersonas), r.Count())
	assert.NotNil(t, r.Get("tag"))
	assert.Nil(t, r.Get("unknown"))

	err := r.LoadFromJSON([]byte(`[
		{"id":"tag","name":"Custom Tina","stats":{"vpip":0.3,"pfr":0.25,"aggression":0.7,"bluffFrequency":0.3,"foldToBet":0.4,"threeBetFrequency":0.1}},
		{"id":"fish","name":"New Fish","stats":{"vpip":0.6,"pfr":0.05,"aggression":0.1,"bluffFrequency":0.05,"foldToBet":0.2,"threeBetFrequency":0.01}}
	]`))
	assert.NoError(t, err)
	assert.Equal(t, len(builtinPersonas)+1, r.Count())
	assert.Equal(t, "Custom Tina", r.Get("tag").Name)
	assert.Equal(t, 0.6, r.Get("fish").Stats.VPIP)
}

func TestRegistryRejectsOutOfRangeStats(t *testing.T) {
	r := NewRegistry()
	err := r.LoadFromJSON([]byte(`[{"id":"bad","stats":{"vpip":1.5}}]`))
	assert.Error(t, err)
}

func TestRegistryAllIsSortedByID(t *testing.T) {
	r := NewRegistry()
	all := r.All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}
