package ai

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Profile defines the tunable tendencies of one AI opponent. All values
// are frequencies in [0,1].
type Profile struct {
	VPIP              float64 `json:"vpip"`              // how often the player voluntarily enters a pot
	PFR               float64 `json:"pfr"`               // how often an entered pot is entered by raising
	Aggression        float64 `json:"aggression"`        // tendency to bet/raise vs check/call
	BluffFrequency    float64 `json:"bluffFrequency"`    // rate of betting air
	FoldToBet         float64 `json:"foldToBet"`         // tendency to give up facing aggression
	ThreeBetFrequency float64 `json:"threeBetFrequency"` // rate of re-raising preflop opens
}

func (p Profile) validate() error {
	for name, v := range map[string]float64{
		"vpip":              p.VPIP,
		"pfr":               p.PFR,
		"aggression":        p.Aggression,
		"bluffFrequency":    p.BluffFrequency,
		"foldToBet":         p.FoldToBet,
		"threeBetFrequency": p.ThreeBetFrequency,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("profile stat %s out of [0,1]: %v", name, v)
		}
	}
	return nil
}

// Persona is a named opponent definition for the trainer roster.
type Persona struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Tagline string  `json:"tagline"`
	Stats   Profile `json:"stats"`
}

// Registry holds all opponent persona definitions.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]*Persona
}

// NewRegistry creates a registry seeded with the built-in roster.
func NewRegistry() *Registry {
	r := &Registry{personas: make(map[string]*Persona)}
	for i := range builtinPersonas {
		p := builtinPersonas[i]
		r.personas[p.ID] = &p
	}
	return r
}

// LoadFromFile loads personas from a JSON file, overriding built-ins
// with matching IDs.
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read personas file: %w", err)
	}
	return r.LoadFromJSON(data)
}

// LoadFromJSON loads personas from raw JSON bytes.
func (r *Registry) LoadFromJSON(data []byte) error {
	var list []*Persona
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse personas JSON: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range list {
		if p.ID == "" {
			continue
		}
		if err := p.Stats.validate(); err != nil {
			return fmt.Errorf("persona %s: %w", p.ID, err)
		}
		r.personas[p.ID] = p
	}
	return nil
}

// Get returns a persona by ID, or nil.
func (r *Registry) Get(id string) *Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.personas[id]
}

// All returns a snapshot of all personas, ordered by ID so rosters
// built from it are stable across runs.
func (r *Registry) All() []*Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Persona, 0, len(r.personas))
	for _, p := range r.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

// builtinPersonas is the default trainer roster, spanning the common
// player archetypes.
var builtinPersonas = []Persona{
	{
		ID:      "nit",
		Name:    "Granite Gary",
		Tagline: "Waits for aces, then waits some more.",
		Stats:   Profile{VPIP: 0.12, PFR: 0.09, Aggression: 0.35, BluffFrequency: 0.05, FoldToBet: 0.75, ThreeBetFrequency: 0.03},
	},
	{
		ID:      "tag",
		Name:    "Textbook Tina",
		Tagline: "Solid ranges, solid pressure.",
		Stats:   Profile{VPIP: 0.22, PFR: 0.18, Aggression: 0.65, BluffFrequency: 0.25, FoldToBet: 0.45, ThreeBetFrequency: 0.08},
	},
	{
		ID:      "lag",
		Name:    "Whirlwind Wes",
		Tagline: "If in doubt, raise.",
		Stats:   Profile{VPIP: 0.34, PFR: 0.28, Aggression: 0.85, BluffFrequency: 0.45, FoldToBet: 0.3, ThreeBetFrequency: 0.14},
	},
	{
		ID:      "station",
		Name:    "Call-Me Cal",
		Tagline: "Never saw a bet he didn't like.",
		Stats:   Profile{VPIP: 0.45, PFR: 0.08, Aggression: 0.2, BluffFrequency: 0.1, FoldToBet: 0.1, ThreeBetFrequency: 0.02},
	},
	{
		ID:      "maniac",
		Name:    "Turbo Tom",
		Tagline: "Stack's there to be shoved.",
		Stats:   Profile{VPIP: 0.55, PFR: 0.45, Aggression: 0.95, BluffFrequency: 0.6, FoldToBet: 0.15, ThreeBetFrequency: 0.2},
	},
}
