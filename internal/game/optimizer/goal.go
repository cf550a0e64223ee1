package optimizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// ErrInvalidGoal is returned when a goal cannot be evaluated at all.
var ErrInvalidGoal = errors.New("invalid goal")

// Kind identifies what a goal asks for.
type Kind int

const (
	// Survive: the creature must survive one hit from Opponent using Move.
	Survive Kind = iota
	// OneHitKO: the creature's Move must knock out Opponent in one hit.
	OneHitKO
	// TwoHitKO: the creature's Move must knock out Opponent in two hits.
	TwoHitKO
	// Outspeed: the creature's speed must exceed Value.
	Outspeed
	// CustomStat: the creature's Stat must reach at least Value.
	CustomStat
)

var kindNames = map[Kind]string{
	Survive:    "survive",
	OneHitKO:   "ohko",
	TwoHitKO:   "2hko",
	Outspeed:   "outspeed",
	CustomStat: "stat",
}

// String returns the request-file spelling of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name. Long forms such as "one_hit_ko" are accepted.
func ParseKind(name string) (Kind, error) {
	switch stats.NormalizeName(name) {
	case "survive":
		return Survive, nil
	case "ohko", "one_hit_ko":
		return OneHitKO, nil
	case "2hko", "two_hit_ko":
		return TwoHitKO, nil
	case "outspeed":
		return Outspeed, nil
	case "stat", "custom_stat":
		return CustomStat, nil
	}
	return Survive, fmt.Errorf("%w: unknown kind %q", ErrInvalidGoal, name)
}

// Goal is one allocation target. Build goals with the constructors below.
type Goal struct {
	Kind     Kind
	Priority int
	// Opponent is the attacker for Survive and the target for the KO kinds.
	Opponent   *stats.Model
	Move       damage.Move
	Conditions damage.Conditions
	Stat       stats.Stat
	Value      int
	// Label is a free-form name carried into results.
	Label string
}

// SurviveGoal asks the creature to survive attacker's move at the highest roll.
func SurviveGoal(attacker *stats.Model, move damage.Move, priority int) Goal {
	return Goal{Kind: Survive, Priority: priority, Opponent: attacker, Move: move, Stat: stats.None}
}

// OneHitKOGoal asks the creature's move to knock out target at the lowest roll.
func OneHitKOGoal(target *stats.Model, move damage.Move, priority int) Goal {
	return Goal{Kind: OneHitKO, Priority: priority, Opponent: target, Move: move, Stat: stats.None}
}

// TwoHitKOGoal asks two of the creature's hits to knock out target at the lowest roll.
func TwoHitKOGoal(target *stats.Model, move damage.Move, priority int) Goal {
	return Goal{Kind: TwoHitKO, Priority: priority, Opponent: target, Move: move, Stat: stats.None}
}

// OutspeedGoal asks the creature's speed to exceed speed.
func OutspeedGoal(speed, priority int) Goal {
	return Goal{Kind: Outspeed, Priority: priority, Stat: stats.Speed, Value: speed}
}

// OutspeedCreature asks the creature to outspeed target at target's current spread.
//
// Precondition: target must be non-nil.
func OutspeedCreature(target *stats.Model, priority int) Goal {
	if target == nil {
		panic("optimizer.OutspeedCreature: precondition violated: target must be non-nil")
	}
	g := OutspeedGoal(target.Compute(stats.Speed), priority)
	g.Label = "outspeed " + target.Species
	return g
}

// CustomStatGoal asks stat s to reach at least value.
func CustomStatGoal(s stats.Stat, value, priority int) Goal {
	return Goal{Kind: CustomStat, Priority: priority, Stat: s, Value: value}
}

// WithConditions returns a copy of g evaluated under cond. The roll in cond is
// ignored; guarantee goals always pin it.
func (g Goal) WithConditions(cond damage.Conditions) Goal {
	g.Conditions = cond
	return g
}

// WithLabel returns a copy of g carrying label.
func (g Goal) WithLabel(label string) Goal {
	g.Label = label
	return g
}

// Name returns the label, or a generated description.
func (g Goal) Name() string {
	if g.Label != "" {
		return g.Label
	}
	var b strings.Builder
	b.WriteString(g.Kind.String())
	switch g.Kind {
	case Survive, OneHitKO, TwoHitKO:
		if g.Opponent != nil {
			fmt.Fprintf(&b, " %s", g.Opponent.Species)
		}
		fmt.Fprintf(&b, " %s", g.Move.Name)
	case Outspeed:
		fmt.Fprintf(&b, " %d", g.Value)
	case CustomStat:
		fmt.Fprintf(&b, " %s>=%d", g.Stat, g.Value)
	}
	return b.String()
}

// hits is the number of hits a KO goal allows.
func (g Goal) hits() int {
	if g.Kind == TwoHitKO {
		return 2
	}
	return 1
}

func (g Goal) damaging() bool {
	return g.Kind == Survive || g.Kind == OneHitKO || g.Kind == TwoHitKO
}

func invalid(i int, g Goal, format string, args ...any) error {
	return fmt.Errorf("goal %d (%s): %w: %s", i, g.Kind, ErrInvalidGoal, fmt.Sprintf(format, args...))
}
