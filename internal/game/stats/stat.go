// Package stats implements the creature stat model: base stats, IVs, EVs,
// level and nature, and the final-stat formulas derived from them.
package stats

import (
	"fmt"
	"strings"
)

// Stat identifies one of the six core stats.
type Stat int

const (
	HP Stat = iota
	Atk
	Def
	SpAtk
	SpDef
	Speed
)

// None is the zero-value sentinel used by natures that do not boost or reduce a stat.
const None Stat = -1

// All lists the six stats in canonical order.
var All = [6]Stat{HP, Atk, Def, SpAtk, SpDef, Speed}

var statNames = [6]string{"hp", "atk", "def", "spa", "spd", "spe"}

// String returns the short stat key ("hp", "atk", "def", "spa", "spd", "spe").
func (s Stat) String() string {
	if s < HP || s > Speed {
		return "none"
	}
	return statNames[s]
}

// Valid reports whether s is one of the six core stats.
func (s Stat) Valid() bool { return s >= HP && s <= Speed }

// ParseStat resolves a stat key. Both short keys and long names are accepted.
//
// Postcondition: Returns a valid Stat or an error wrapping ErrInvalidStats.
func ParseStat(name string) (Stat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hp":
		return HP, nil
	case "atk", "attack":
		return Atk, nil
	case "def", "defense":
		return Def, nil
	case "spa", "spatk", "sp_atk", "special_attack":
		return SpAtk, nil
	case "spd", "spdef", "sp_def", "special_defense":
		return SpDef, nil
	case "spe", "speed":
		return Speed, nil
	}
	return None, &InvalidStatsError{Field: "stat", Reason: fmt.Sprintf("unknown stat %q", name)}
}

// UnmarshalText allows Stat to be decoded from YAML and config strings.
func (s *Stat) UnmarshalText(text []byte) error {
	if k := strings.ToLower(strings.TrimSpace(string(text))); k == "" || k == "none" {
		*s = None
		return nil
	}
	v, err := ParseStat(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText encodes the stat as its short key.
func (s Stat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Spread holds one integer per stat, indexed by Stat. It is used for base
// stats, IVs, EVs and computed final stats alike.
type Spread [6]int

// Get returns the value for stat s.
func (sp Spread) Get(s Stat) int { return sp[s] }

// With returns a copy of sp with stat s set to v.
func (sp Spread) With(s Stat, v int) Spread {
	sp[s] = v
	return sp
}

// Total returns the sum over all six stats.
func (sp Spread) Total() int {
	total := 0
	for _, v := range sp {
		total += v
	}
	return total
}

// Map returns the spread keyed by short stat name.
func (sp Spread) Map() map[string]int {
	out := make(map[string]int, len(sp))
	for _, s := range All {
		out[s.String()] = sp[s]
	}
	return out
}

// String renders the spread as "hp/atk/def/spa/spd/spe".
func (sp Spread) String() string {
	return fmt.Sprintf("%d/%d/%d/%d/%d/%d", sp[HP], sp[Atk], sp[Def], sp[SpAtk], sp[SpDef], sp[Speed])
}

// SpreadFromMap builds a Spread from a stat-keyed map, defaulting missing keys to def.
//
// Postcondition: Returns a Spread or an error wrapping ErrInvalidStats on an unknown key.
func SpreadFromMap(m map[string]int, def int) (Spread, error) {
	sp := Uniform(def)
	for k, v := range m {
		s, err := ParseStat(k)
		if err != nil {
			return Spread{}, err
		}
		sp[s] = v
	}
	return sp, nil
}

// Uniform returns a spread with every stat set to v.
func Uniform(v int) Spread {
	return Spread{v, v, v, v, v, v}
}
