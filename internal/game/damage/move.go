package damage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// ErrInvalidMove is returned for a malformed move descriptor.
var ErrInvalidMove = errors.New("invalid move")

// Category selects which stat pair a move uses.
type Category int

const (
	Physical Category = iota
	Special
	// Status moves deal no damage.
	Status
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case Physical:
		return "physical"
	case Special:
		return "special"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "physical":
		return Physical, nil
	case "special":
		return Special, nil
	case "status":
		return Status, nil
	}
	return Status, fmt.Errorf("%w: unknown category %q", ErrInvalidMove, name)
}

// UnmarshalText decodes a category from YAML.
func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalText encodes the category name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Stats returns the attacking and defending stat for the category.
//
// Precondition: c is Physical or Special.
func (c Category) Stats() (attack, defense stats.Stat) {
	if c == Special {
		return stats.SpAtk, stats.SpDef
	}
	return stats.Atk, stats.Def
}

// Move is a resolved move descriptor. Callers resolve move metadata before
// invoking the formula; the calculator never performs lookups itself.
type Move struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Power    int      `yaml:"power"`
	Category Category `yaml:"category"`
	Accuracy int      `yaml:"accuracy"`
}

// Damaging reports whether the move can deal damage.
func (m Move) Damaging() bool {
	return m.Category != Status && m.Power > 0
}

// Validate checks the descriptor fields that do not depend on the type chart.
func (m Move) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidMove)
	}
	if m.Power < 0 {
		return fmt.Errorf("%w: %s: power must be >= 0, got %d", ErrInvalidMove, m.Name, m.Power)
	}
	if m.Accuracy < 0 || m.Accuracy > 100 {
		return fmt.Errorf("%w: %s: accuracy must be 0-100, got %d", ErrInvalidMove, m.Name, m.Accuracy)
	}
	if m.Category < Physical || m.Category > Status {
		return fmt.Errorf("%w: %s: unknown category %d", ErrInvalidMove, m.Name, m.Category)
	}
	return nil
}
