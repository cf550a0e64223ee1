// Package dex holds the reference data a calculation resolves names against:
// species, moves, natures and the type chart.
package dex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/game/typechart"
)

// SpeciesLookup resolves species by id.
type SpeciesLookup interface {
	Species(id string) (Species, error)
}

// MoveLookup resolves moves by id.
type MoveLookup interface {
	Move(id string) (damage.Move, error)
}

// NatureLookup resolves natures by id.
type NatureLookup interface {
	Nature(id string) (stats.Nature, error)
}

// Provider is the full set of reference data.
type Provider interface {
	SpeciesLookup
	MoveLookup
	NatureLookup
	Chart() typechart.Lookup
}

// Registry is an in-memory Provider. It is safe for concurrent reads once loaded.
type Registry struct {
	mu      sync.RWMutex
	species map[string]Species
	moves   map[string]damage.Move
	natures map[string]stats.Nature
	chart   *typechart.Chart
}

// NewRegistry returns a Registry preloaded with the standard natures.
//
// Precondition: chart must be non-nil.
func NewRegistry(chart *typechart.Chart) *Registry {
	if chart == nil {
		panic("dex.NewRegistry: precondition violated: chart must be non-nil")
	}
	r := &Registry{
		species: make(map[string]Species),
		moves:   make(map[string]damage.Move),
		natures: make(map[string]stats.Nature),
		chart:   chart,
	}
	for _, n := range stats.StandardNatures() {
		r.natures[n.Name] = n
	}
	return r
}

// RegisterSpecies adds or replaces a species.
//
// Precondition: sp.ID must be non-empty.
func (r *Registry) RegisterSpecies(sp Species) {
	if sp.ID == "" {
		panic("dex.Registry.RegisterSpecies: precondition violated: id must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.species[stats.NormalizeName(sp.ID)] = sp
}

// RegisterMove adds or replaces a move.
//
// Precondition: m.Name must be non-empty.
func (r *Registry) RegisterMove(m damage.Move) {
	if m.Name == "" {
		panic("dex.Registry.RegisterMove: precondition violated: name must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves[stats.NormalizeName(m.Name)] = m
}

// RegisterNature adds or replaces a nature.
//
// Precondition: n.Name must be non-empty.
func (r *Registry) RegisterNature(n stats.Nature) {
	if n.Name == "" {
		panic("dex.Registry.RegisterNature: precondition violated: name must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.natures[stats.NormalizeName(n.Name)] = n
}

// Species implements SpeciesLookup.
func (r *Registry) Species(id string) (Species, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.species[stats.NormalizeName(id)]
	if !ok {
		return Species{}, &LookupError{Kind: ErrUnknownSpecies, ID: id}
	}
	return sp, nil
}

// Move implements MoveLookup.
func (r *Registry) Move(id string) (damage.Move, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.moves[stats.NormalizeName(id)]
	if !ok {
		return damage.Move{}, &LookupError{Kind: ErrUnknownMove, ID: id}
	}
	return m, nil
}

// Nature implements NatureLookup.
func (r *Registry) Nature(id string) (stats.Nature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.natures[stats.NormalizeName(id)]
	if !ok {
		return stats.Nature{}, &LookupError{Kind: ErrUnknownNature, ID: id}
	}
	return n, nil
}

// Chart implements Provider.
func (r *Registry) Chart() typechart.Lookup { return r.chart }

// TypeChart returns the concrete chart for persistence.
func (r *Registry) TypeChart() *typechart.Chart { return r.chart }

// AllSpecies returns every species sorted by id.
func (r *Registry) AllSpecies() []Species {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Species, 0, len(r.species))
	for _, sp := range r.species {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllMoves returns every move sorted by name.
func (r *Registry) AllMoves() []damage.Move {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]damage.Move, 0, len(r.moves))
	for _, m := range r.moves {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AllNatures returns every nature sorted by name.
func (r *Registry) AllNatures() []stats.Nature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]stats.Nature, 0, len(r.natures))
	for _, n := range r.natures {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate checks cross references: every species and move type must be in the chart.
//
// Postcondition: Returns nil or the first *typechart.UnknownTypeError found.
func (r *Registry) Validate() error {
	for _, sp := range r.AllSpecies() {
		for _, t := range sp.Types {
			if !r.chart.Has(t) {
				return fmt.Errorf("species %s: %w", sp.ID, &typechart.UnknownTypeError{Type: t})
			}
		}
	}
	for _, m := range r.AllMoves() {
		if !r.chart.Has(m.Type) {
			return fmt.Errorf("move %s: %w", m.Name, &typechart.UnknownTypeError{Type: m.Type})
		}
	}
	return nil
}

// LoadDir builds a Registry from a content directory laid out as
//
//	types.yaml      type chart
//	natures.yaml    optional; adds to or overrides the standard natures
//	species/*.yaml  species lists
//	moves/*.yaml    move lists
//
// Precondition: dir must be a readable directory containing types.yaml.
// Postcondition: Returns a validated Registry or a non-nil error.
func LoadDir(dir string) (*Registry, error) {
	chart, err := typechart.Load(filepath.Join(dir, "types.yaml"))
	if err != nil {
		return nil, err
	}
	r := NewRegistry(chart)

	naturePath := filepath.Join(dir, "natures.yaml")
	if _, err := os.Stat(naturePath); err == nil {
		natures, err := LoadNatures(naturePath)
		if err != nil {
			return nil, err
		}
		for _, n := range natures {
			r.RegisterNature(n)
		}
	}

	species, err := LoadSpecies(filepath.Join(dir, "species"))
	if err != nil {
		return nil, err
	}
	for _, sp := range species {
		r.RegisterSpecies(sp)
	}
	moves, err := LoadMoves(filepath.Join(dir, "moves"))
	if err != nil {
		return nil, err
	}
	for _, m := range moves {
		r.RegisterMove(m)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
