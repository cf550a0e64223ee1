// Package typechart holds the attack-type versus defend-type damage multiplier table.
// The table is pure data; nothing about the canonical chart is hardcoded here.
package typechart

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// ErrUnknownType is the sentinel wrapped by UnknownTypeError.
var ErrUnknownType = errors.New("unknown type")

// UnknownTypeError reports a type identifier absent from the chart.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type %q", e.Type)
}

// Unwrap allows errors.Is(err, ErrUnknownType).
func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// Lookup is the read-only type-effectiveness contract consumed by the damage formula.
type Lookup interface {
	// Multiplier returns the attack-type vs defend-type multiplier.
	Multiplier(attack, defend string) (float64, error)
	// Has reports whether t is a known type.
	Has(t string) bool
}

// Chart is an in-memory Lookup. Pairs not listed default to 1.0 for known types.
//
// Chart is safe for concurrent reads once populated.
type Chart struct {
	types map[string]struct{}
	mult  map[string]map[string]float64
}

// New returns an empty Chart.
func New() *Chart {
	return &Chart{
		types: make(map[string]struct{}),
		mult:  make(map[string]map[string]float64),
	}
}

// AddType registers t as a known type.
//
// Precondition: t must be non-empty.
func (c *Chart) AddType(t string) {
	if t == "" {
		panic("typechart.AddType: precondition violated: type must be non-empty")
	}
	c.types[stats.NormalizeName(t)] = struct{}{}
}

// Set records the multiplier for attack vs defend, registering both types.
//
// Precondition: attack and defend non-empty; m >= 0.
func (c *Chart) Set(attack, defend string, m float64) {
	if m < 0 {
		panic("typechart.Set: precondition violated: multiplier must be >= 0")
	}
	c.AddType(attack)
	c.AddType(defend)
	a, d := stats.NormalizeName(attack), stats.NormalizeName(defend)
	row, ok := c.mult[a]
	if !ok {
		row = make(map[string]float64)
		c.mult[a] = row
	}
	row[d] = m
}

// Has reports whether t is a registered type.
func (c *Chart) Has(t string) bool {
	_, ok := c.types[stats.NormalizeName(t)]
	return ok
}

// Types returns the registered types in sorted order.
func (c *Chart) Types() []string {
	out := make([]string, 0, len(c.types))
	for t := range c.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Multiplier returns the multiplier for attack vs defend.
//
// Postcondition: Returns the recorded value, 1.0 for an unlisted pair of known
// types, or an *UnknownTypeError.
func (c *Chart) Multiplier(attack, defend string) (float64, error) {
	a, d := stats.NormalizeName(attack), stats.NormalizeName(defend)
	if !c.Has(a) {
		return 0, &UnknownTypeError{Type: attack}
	}
	if !c.Has(d) {
		return 0, &UnknownTypeError{Type: defend}
	}
	if m, ok := c.mult[a][d]; ok {
		return m, nil
	}
	return 1.0, nil
}

// Entries returns every explicitly recorded (attack, defend, multiplier) triple in sorted order.
func (c *Chart) Entries() []Entry {
	var out []Entry
	for a, row := range c.mult {
		for d, m := range row {
			out = append(out, Entry{Attack: a, Defend: d, Multiplier: m})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Attack != out[j].Attack {
			return out[i].Attack < out[j].Attack
		}
		return out[i].Defend < out[j].Defend
	})
	return out
}

// Effectiveness multiplies the chart lookup across every defender type.
//
// Postcondition: Returns the product or the first lookup error.
func Effectiveness(l Lookup, moveType string, defender []string) (float64, error) {
	eff := 1.0
	for _, d := range defender {
		m, err := l.Multiplier(moveType, d)
		if err != nil {
			return 0, err
		}
		eff *= m
	}
	return eff, nil
}

// Entry is one row of the chart file.
type Entry struct {
	Attack     string  `yaml:"attack"`
	Defend     string  `yaml:"defend"`
	Multiplier float64 `yaml:"multiplier"`
}

type chartFile struct {
	Types   []string `yaml:"types"`
	Entries []Entry  `yaml:"entries"`
}

// Parse decodes a YAML chart document.
//
// Postcondition: Returns a populated Chart or a non-nil error.
func Parse(data []byte) (*Chart, error) {
	var f chartFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing type chart: %w", err)
	}
	c := New()
	for _, t := range f.Types {
		if t == "" {
			return nil, errors.New("parsing type chart: empty type name")
		}
		c.AddType(t)
	}
	for i, e := range f.Entries {
		if e.Attack == "" || e.Defend == "" {
			return nil, fmt.Errorf("parsing type chart: entry %d: attack and defend must be set", i)
		}
		if e.Multiplier < 0 {
			return nil, fmt.Errorf("parsing type chart: entry %d: negative multiplier %v", i, e.Multiplier)
		}
		c.Set(e.Attack, e.Defend, e.Multiplier)
	}
	return c, nil
}

// Load reads and parses a YAML chart file.
//
// Precondition: path must name a readable file.
func Load(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}
