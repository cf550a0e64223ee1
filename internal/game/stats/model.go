package stats

import (
	"fmt"
)

const (
	// MaxIV is the largest individual value.
	MaxIV = 31
	// MaxStatEV is the per-stat EV cap.
	MaxStatEV = 252
	// MaxTotalEV is the total EV budget.
	MaxTotalEV = 510
	// EVStep is the EV granularity; only every 4th point changes a final stat.
	EVStep = 4
	// MaxLevel is the highest creature level.
	MaxLevel = 100
	// MaxMoves is the number of move slots.
	MaxMoves = 4
)

// Model is one creature instance. Construct it with New; the zero value is not valid.
type Model struct {
	Species string
	Level   int
	Base    Spread
	IVs     Spread
	EVs     Spread
	Nature  Nature
	Ability string
	Item    string
	Types   []string
	Moves   []string
	// Status is an optional battle status such as "burn".
	Status string
}

// Params is the unvalidated input to New. Zero IVs are taken literally; use
// DefaultIVs for the usual all-31 spread.
type Params struct {
	Species string
	Level   int
	Base    Spread
	IVs     Spread
	EVs     Spread
	Nature  Nature
	Ability string
	Item    string
	Types   []string
	Moves   []string
	Status  string
}

// DefaultIVs returns the maximal IV spread.
func DefaultIVs() Spread { return Uniform(MaxIV) }

// New validates p and returns an immutable Model.
//
// Postcondition: Returns a Model satisfying every stat invariant, or an
// *InvalidStatsError.
func New(p Params) (*Model, error) {
	if p.Species == "" {
		return nil, &InvalidStatsError{Field: "species", Reason: "must not be empty"}
	}
	if p.Level < 1 || p.Level > MaxLevel {
		return nil, &InvalidStatsError{Field: "level", Reason: fmt.Sprintf("must be 1-%d, got %d", MaxLevel, p.Level)}
	}
	for _, s := range All {
		if p.Base[s] < 1 {
			return nil, &InvalidStatsError{Field: "base." + s.String(), Reason: fmt.Sprintf("must be >= 1, got %d", p.Base[s])}
		}
		if p.IVs[s] < 0 || p.IVs[s] > MaxIV {
			return nil, &InvalidStatsError{Field: "iv." + s.String(), Reason: fmt.Sprintf("must be 0-%d, got %d", MaxIV, p.IVs[s])}
		}
	}
	if err := ValidateEVs(p.EVs); err != nil {
		return nil, err
	}
	if len(p.Types) < 1 || len(p.Types) > 2 {
		return nil, &InvalidStatsError{Field: "types", Reason: fmt.Sprintf("must have 1 or 2 entries, got %d", len(p.Types))}
	}
	if len(p.Types) == 2 && NormalizeName(p.Types[0]) == NormalizeName(p.Types[1]) {
		return nil, &InvalidStatsError{Field: "types", Reason: "must not repeat a type"}
	}
	if len(p.Moves) > MaxMoves {
		return nil, &InvalidStatsError{Field: "moves", Reason: fmt.Sprintf("at most %d, got %d", MaxMoves, len(p.Moves))}
	}
	if !p.Nature.IsNeutral() && (p.Nature.Boosted == HP || p.Nature.Reduced == HP) {
		return nil, &InvalidStatsError{Field: "nature", Reason: "nature must not affect hp"}
	}

	types := make([]string, len(p.Types))
	for i, t := range p.Types {
		types[i] = NormalizeName(t)
	}
	moves := make([]string, len(p.Moves))
	for i, mv := range p.Moves {
		moves[i] = NormalizeName(mv)
	}
	return &Model{
		Species: p.Species,
		Level:   p.Level,
		Base:    p.Base,
		IVs:     p.IVs,
		EVs:     p.EVs,
		Nature:  p.Nature,
		Ability: NormalizeName(p.Ability),
		Item:    NormalizeName(p.Item),
		Types:   types,
		Moves:   moves,
		Status:  NormalizeName(p.Status),
	}, nil
}

// ValidateEVs checks the per-stat cap, the EVStep granularity and the total budget.
//
// Postcondition: Returns nil or an *InvalidStatsError.
func ValidateEVs(evs Spread) error {
	for _, s := range All {
		if evs[s] < 0 || evs[s] > MaxStatEV {
			return &InvalidStatsError{Field: "ev." + s.String(), Reason: fmt.Sprintf("must be 0-%d, got %d", MaxStatEV, evs[s])}
		}
		if evs[s]%EVStep != 0 {
			return &InvalidStatsError{Field: "ev." + s.String(), Reason: fmt.Sprintf("must be a multiple of %d, got %d", EVStep, evs[s])}
		}
	}
	if total := evs.Total(); total > MaxTotalEV {
		return &InvalidStatsError{Field: "ev", Reason: fmt.Sprintf("total must be <= %d, got %d", MaxTotalEV, total)}
	}
	return nil
}

// WithEVs returns a copy of m carrying evs.
//
// Postcondition: Returns a new Model or an *InvalidStatsError; m is unchanged.
func (m *Model) WithEVs(evs Spread) (*Model, error) {
	if err := ValidateEVs(evs); err != nil {
		return nil, err
	}
	cp := *m
	cp.EVs = evs
	return &cp, nil
}

// HasType reports whether t is one of the creature's types.
func (m *Model) HasType(t string) bool {
	t = NormalizeName(t)
	for _, own := range m.Types {
		if own == t {
			return true
		}
	}
	return false
}

// Compute returns the final value of stat s under the model's current EVs.
func (m *Model) Compute(s Stat) int {
	return m.ComputeWith(s, m.EVs[s])
}

// ComputeWith returns the final value of stat s as if ev were invested in it.
//
// Precondition: s is valid; ev >= 0.
// Postcondition: Returns a non-negative integer.
func (m *Model) ComputeWith(s Stat, ev int) int {
	return Calc(s, m.Base[s], m.IVs[s], ev, m.Level, m.Nature)
}

// Final returns all six final stats.
func (m *Model) Final() Spread {
	var out Spread
	for _, s := range All {
		out[s] = m.Compute(s)
	}
	return out
}

// Calc is the stat formula.
//
//	hp    = floor((2*base + iv + floor(ev/4)) * level / 100) + level + 10
//	other = floor((floor((2*base + iv + floor(ev/4)) * level / 100) + 5) * nature)
//
// A base HP of 1 always yields 1 HP. The nature multiplier is applied in
// tenths so no floating-point rounding is involved.
func Calc(s Stat, base, iv, ev, level int, nature Nature) int {
	core := (2*base + iv + ev/EVStep) * level / 100
	if s == HP {
		if base == 1 {
			return 1
		}
		return core + level + 10
	}
	return (core + 5) * nature.Multiplier(s) / 10
}
