package dex

import (
	"fmt"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

const (
	defaultLevel  = 100
	defaultNature = "serious"
)

// CreatureSet is a named, unresolved creature as written in a request file.
// Missing IVs default to 31; missing level to 100; missing nature to serious.
type CreatureSet struct {
	Species string         `yaml:"species"`
	Level   int            `yaml:"level"`
	Nature  string         `yaml:"nature"`
	IVs     map[string]int `yaml:"ivs"`
	EVs     map[string]int `yaml:"evs"`
	Ability string         `yaml:"ability"`
	Item    string         `yaml:"item"`
	Status  string         `yaml:"status"`
	Moves   []string       `yaml:"moves"`
}

// Build resolves set against p and returns a validated stats.Model.
//
// Postcondition: Returns a Model or the first lookup or validation error.
func Build(p Provider, set CreatureSet) (*stats.Model, error) {
	sp, err := p.Species(set.Species)
	if err != nil {
		return nil, err
	}
	natureID := set.Nature
	if natureID == "" {
		natureID = defaultNature
	}
	nature, err := p.Nature(natureID)
	if err != nil {
		return nil, err
	}
	level := set.Level
	if level == 0 {
		level = defaultLevel
	}
	ivs, err := stats.SpreadFromMap(set.IVs, stats.MaxIV)
	if err != nil {
		return nil, fmt.Errorf("%s ivs: %w", sp.ID, err)
	}
	evs, err := stats.SpreadFromMap(set.EVs, 0)
	if err != nil {
		return nil, fmt.Errorf("%s evs: %w", sp.ID, err)
	}
	for _, mv := range set.Moves {
		if _, err := p.Move(mv); err != nil {
			return nil, err
		}
	}
	return stats.New(stats.Params{
		Species: sp.ID,
		Level:   level,
		Base:    sp.Base,
		IVs:     ivs,
		EVs:     evs,
		Nature:  nature,
		Ability: set.Ability,
		Item:    set.Item,
		Types:   sp.Types,
		Moves:   set.Moves,
		Status:  set.Status,
	})
}

// Moves resolves every move of m.
//
// Postcondition: Returns the moves in slot order or the first lookup error.
func Moves(p MoveLookup, m *stats.Model) ([]damage.Move, error) {
	out := make([]damage.Move, 0, len(m.Moves))
	for _, id := range m.Moves {
		mv, err := p.Move(id)
		if err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, nil
}
