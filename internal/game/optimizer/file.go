package optimizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dex"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// File is a YAML request file: one or more creatures, each with goals.
type File struct {
	Requests []RequestSpec `yaml:"requests"`
}

// RequestSpec is one unresolved request.
type RequestSpec struct {
	Name     string          `yaml:"name"`
	Creature dex.CreatureSet `yaml:"creature"`
	Fixed    map[string]int  `yaml:"fixed"`
	Goals    []GoalSpec      `yaml:"goals"`
}

// GoalSpec is one unresolved goal.
type GoalSpec struct {
	Kind     string           `yaml:"kind"`
	Priority int              `yaml:"priority"`
	Label    string           `yaml:"label"`
	Opponent *dex.CreatureSet `yaml:"opponent"`
	Move     string           `yaml:"move"`
	Weather  string           `yaml:"weather"`
	Terrain  string           `yaml:"terrain"`
	Critical bool             `yaml:"critical"`
	Stat     string           `yaml:"stat"`
	Value    int              `yaml:"value"`
	// Speed is the outspeed threshold; Value is read when Speed is unset.
	Speed    int              `yaml:"speed"`
}

// LoadFile reads a request file.
//
// Precondition: path must name a readable file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing request file %s: %w", path, err)
	}
	if len(f.Requests) == 0 {
		return nil, fmt.Errorf("%s: %w: no requests", path, ErrInvalidGoal)
	}
	return &f, nil
}

// Resolve turns every RequestSpec into a Request, failing on the first lookup
// or validation error.
func (f *File) Resolve(p dex.Provider) ([]Request, error) {
	out := make([]Request, 0, len(f.Requests))
	for i, rs := range f.Requests {
		req, err := rs.Resolve(p)
		if err != nil {
			return nil, fmt.Errorf("request %d (%s): %w", i, rs.Name, err)
		}
		out = append(out, req)
	}
	return out, nil
}

// Resolve builds the creature, its fixed EVs and its goals.
func (rs RequestSpec) Resolve(p dex.Provider) (Request, error) {
	creature, err := dex.Build(p, rs.Creature)
	if err != nil {
		return Request{}, err
	}
	var fixed map[stats.Stat]int
	if len(rs.Fixed) > 0 {
		fixed = make(map[stats.Stat]int, len(rs.Fixed))
		for k, v := range rs.Fixed {
			st, err := stats.ParseStat(k)
			if err != nil {
				return Request{}, fmt.Errorf("fixed: %w", err)
			}
			fixed[st] = v
		}
	}
	name := rs.Name
	if name == "" {
		name = creature.Species
	}
	req := Request{Name: name, Creature: creature, Fixed: fixed}
	for i, gs := range rs.Goals {
		g, err := gs.Resolve(p)
		if err != nil {
			return Request{}, fmt.Errorf("goal %d: %w", i, err)
		}
		req.Goals = append(req.Goals, g)
	}
	return req, nil
}

// Resolve builds one goal.
func (gs GoalSpec) Resolve(p dex.Provider) (Goal, error) {
	kind, err := ParseKind(gs.Kind)
	if err != nil {
		return Goal{}, err
	}
	var opponent *stats.Model
	if gs.Opponent != nil {
		if opponent, err = dex.Build(p, *gs.Opponent); err != nil {
			return Goal{}, fmt.Errorf("opponent: %w", err)
		}
	}

	var g Goal
	switch kind {
	case Survive, OneHitKO, TwoHitKO:
		if opponent == nil {
			return Goal{}, fmt.Errorf("%w: %s needs an opponent", ErrInvalidGoal, kind)
		}
		move, err := p.Move(gs.Move)
		if err != nil {
			return Goal{}, err
		}
		switch kind {
		case Survive:
			g = SurviveGoal(opponent, move, gs.Priority)
		case OneHitKO:
			g = OneHitKOGoal(opponent, move, gs.Priority)
		default:
			g = TwoHitKOGoal(opponent, move, gs.Priority)
		}
		g = g.WithConditions(damage.Conditions{
			Weather:  damage.Weather(stats.NormalizeName(gs.Weather)),
			Terrain:  damage.Terrain(stats.NormalizeName(gs.Terrain)),
			Critical: gs.Critical,
		})
	case Outspeed:
		switch {
		case opponent != nil:
			g = OutspeedCreature(opponent, gs.Priority)
		case gs.Speed > 0:
			g = OutspeedGoal(gs.Speed, gs.Priority)
		case gs.Value > 0:
			g = OutspeedGoal(gs.Value, gs.Priority)
		default:
			return Goal{}, fmt.Errorf("%w: outspeed needs an opponent, speed or value", ErrInvalidGoal)
		}
	case CustomStat:
		st, err := stats.ParseStat(gs.Stat)
		if err != nil {
			return Goal{}, err
		}
		g = CustomStatGoal(st, gs.Value, gs.Priority)
	}
	if gs.Label != "" {
		g = g.WithLabel(gs.Label)
	}
	return g, nil
}
