package stats

import (
	"sort"
	"strings"
)

// Nature boosts at most one non-HP stat by 10% and reduces at most one by 10%.
// Natures whose Boosted and Reduced are both None (or equal) are neutral.
type Nature struct {
	Name    string `yaml:"name"`
	Boosted Stat   `yaml:"boosted"`
	Reduced Stat   `yaml:"reduced"`
}

// Neutral returns a nature with no effect.
func Neutral(name string) Nature {
	return Nature{Name: name, Boosted: None, Reduced: None}
}

// IsNeutral reports whether the nature leaves every stat unchanged.
func (n Nature) IsNeutral() bool {
	return n.Boosted == n.Reduced || (!n.Boosted.Valid() && !n.Reduced.Valid())
}

// Multiplier returns the nature multiplier for s expressed in tenths:
// 11 for a boosted stat, 9 for a reduced stat, 10 otherwise. HP always yields 10.
//
// Postcondition: Returns one of 9, 10, 11.
func (n Nature) Multiplier(s Stat) int {
	if s == HP || n.IsNeutral() {
		return 10
	}
	switch s {
	case n.Boosted:
		return 11
	case n.Reduced:
		return 9
	}
	return 10
}

// NormalizeName lowercases name and maps spaces and hyphens to underscores.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

var standardNatures = map[string]Nature{
	"adamant": {Name: "adamant", Boosted: Atk, Reduced: SpAtk},
	"bashful": Neutral("bashful"),
	"bold":    {Name: "bold", Boosted: Def, Reduced: Atk},
	"brave":   {Name: "brave", Boosted: Atk, Reduced: Speed},
	"calm":    {Name: "calm", Boosted: SpDef, Reduced: Atk},
	"careful": {Name: "careful", Boosted: SpDef, Reduced: SpAtk},
	"docile":  Neutral("docile"),
	"gentle":  {Name: "gentle", Boosted: SpDef, Reduced: Def},
	"hardy":   Neutral("hardy"),
	"hasty":   {Name: "hasty", Boosted: Speed, Reduced: Def},
	"impish":  {Name: "impish", Boosted: Def, Reduced: SpAtk},
	"jolly":   {Name: "jolly", Boosted: Speed, Reduced: SpAtk},
	"lax":     {Name: "lax", Boosted: Def, Reduced: SpDef},
	"lonely":  {Name: "lonely", Boosted: Atk, Reduced: Def},
	"mild":    {Name: "mild", Boosted: SpAtk, Reduced: Def},
	"modest":  {Name: "modest", Boosted: SpAtk, Reduced: Atk},
	"naive":   {Name: "naive", Boosted: Speed, Reduced: SpDef},
	"naughty": {Name: "naughty", Boosted: Atk, Reduced: SpDef},
	"quiet":   {Name: "quiet", Boosted: SpAtk, Reduced: Speed},
	"quirky":  Neutral("quirky"),
	"rash":    {Name: "rash", Boosted: SpAtk, Reduced: SpDef},
	"relaxed": {Name: "relaxed", Boosted: Def, Reduced: Speed},
	"sassy":   {Name: "sassy", Boosted: SpDef, Reduced: Speed},
	"serious": Neutral("serious"),
	"timid":   {Name: "timid", Boosted: Speed, Reduced: Atk},
}

// StandardNature returns one of the 25 canonical natures by name.
//
// Postcondition: Returns the nature and true, or a zero Nature and false.
func StandardNature(name string) (Nature, bool) {
	n, ok := standardNatures[NormalizeName(name)]
	return n, ok
}

// StandardNatures returns the 25 canonical natures sorted by name.
func StandardNatures() []Nature {
	out := make([]Nature, 0, len(standardNatures))
	for _, n := range standardNatures {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
