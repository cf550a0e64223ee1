// Package damage implements the Gen-7 single-hit damage formula.
//
// The calculator is pure: it performs no lookups and holds no mutable state.
// Its only stochastic input is the damage roll, which is drawn from an
// injected dice.Variance and may be pinned per call through Conditions.
package damage

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/evspread/internal/game/dice"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/game/typechart"
)

// floorEpsilon absorbs binary rounding error before flooring products of
// decimal multipliers such as 1.5 * 1.2 * 0.85.
const floorEpsilon = 1e-9

// RetypeMode selects how type-changing abilities interact with type-dependent factors.
type RetypeMode int

const (
	// RetypeFull treats the retyped move as its new type for STAB, effectiveness,
	// weather, terrain and item checks.
	RetypeFull RetypeMode = iota
	// RetypeMultiplierOnly applies the ability's power bonus but keeps the
	// native type everywhere else.
	RetypeMultiplierOnly
)

// String returns the config spelling of the mode.
func (m RetypeMode) String() string {
	if m == RetypeMultiplierOnly {
		return "multiplier_only"
	}
	return "full"
}

// ParseRetypeMode resolves "full" or "multiplier_only".
func ParseRetypeMode(s string) (RetypeMode, error) {
	switch s {
	case "", "full":
		return RetypeFull, nil
	case "multiplier_only":
		return RetypeMultiplierOnly, nil
	}
	return RetypeFull, fmt.Errorf("unknown retype mode %q", s)
}

// Conditions carries the situational inputs of a single hit.
type Conditions struct {
	Weather  Weather
	Terrain  Terrain
	Critical bool
	// Variance overrides the calculator's roll source when non-nil.
	Variance dice.Variance
}

// HookInput is the context handed to a ModifierHook.
type HookInput struct {
	Ability       string
	Item          string
	MoveType      string
	Power         int
	Category      Category
	Effectiveness float64
}

// ModifierHook supplies multipliers for abilities and items absent from the
// fixed tables. ok=false means the hook does not know the name.
//
// Implementations MUST be safe for concurrent use.
type ModifierHook interface {
	AbilityModifier(in HookInput) (mult float64, ok bool)
	ItemModifier(in HookInput) (mult float64, ok bool)
}

// Calculator evaluates the damage formula against a type chart.
type Calculator struct {
	chart    typechart.Lookup
	variance dice.Variance
	retype   RetypeMode
	hook     ModifierHook
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithVariance sets the default roll source.
func WithVariance(v dice.Variance) Option {
	return func(c *Calculator) { c.variance = v }
}

// WithRetypeMode sets the retype interpretation.
func WithRetypeMode(m RetypeMode) Option {
	return func(c *Calculator) { c.retype = m }
}

// WithHook installs a ModifierHook for unknown abilities and items.
func WithHook(h ModifierHook) Option {
	return func(c *Calculator) { c.hook = h }
}

// NewCalculator builds a Calculator. Without WithVariance, rolls come from crypto/rand.
//
// Precondition: chart must be non-nil.
// Postcondition: Returns a ready Calculator.
func NewCalculator(chart typechart.Lookup, opts ...Option) *Calculator {
	if chart == nil {
		panic("damage.NewCalculator: precondition violated: chart must be non-nil")
	}
	c := &Calculator{chart: chart, retype: RetypeFull}
	for _, opt := range opts {
		opt(c)
	}
	if c.variance == nil {
		c.variance = dice.NewUniform(dice.NewCryptoSource())
	}
	return c
}

// RetypeMode returns the configured retype interpretation.
func (c *Calculator) RetypeMode() RetypeMode { return c.retype }

// Validate checks every input the formula would touch, before any evaluation.
//
// Postcondition: Returns nil, an error wrapping ErrInvalidMove, or an
// *typechart.UnknownTypeError.
func (c *Calculator) Validate(attacker, defender *stats.Model, move Move) error {
	if attacker == nil || defender == nil {
		return fmt.Errorf("%w: attacker and defender must be non-nil", ErrInvalidMove)
	}
	if err := move.Validate(); err != nil {
		return err
	}
	if !c.chart.Has(move.Type) {
		return &typechart.UnknownTypeError{Type: move.Type}
	}
	for _, t := range attacker.Types {
		if !c.chart.Has(t) {
			return &typechart.UnknownTypeError{Type: t}
		}
	}
	for _, t := range defender.Types {
		if !c.chart.Has(t) {
			return &typechart.UnknownTypeError{Type: t}
		}
	}
	if to, ok := retypers[attacker.Ability]; ok && !c.chart.Has(to) {
		return &typechart.UnknownTypeError{Type: to}
	}
	return nil
}

// Breakdown records every term of one evaluation.
type Breakdown struct {
	Level         int
	Power         int
	Attack        int
	Defense       int
	Base          int
	MoveType      string
	EffectiveType string
	STAB          float64
	Effectiveness float64
	Critical      float64
	Weather       float64
	Terrain       float64
	Ability       float64
	Item          float64
	Status        float64
	Roll          int
	Damage        int
}

// Modifier returns the product of every multiplicative factor except the roll.
func (b Breakdown) Modifier() float64 {
	return b.STAB * b.Effectiveness * b.Critical * b.Weather * b.Terrain * b.Ability * b.Item * b.Status
}

// Recompute evaluates the same hit with different attack and defense stats and roll.
//
// Precondition: defense > 0; roll in [dice.MinRoll, dice.MaxRoll].
// Postcondition: Returns damage >= 0.
func (b Breakdown) Recompute(attack, defense, roll int) int {
	if b.Power == 0 {
		return 0
	}
	return apply(BaseTerm(b.Level, b.Power, attack, defense), b.Modifier(), roll)
}

// BaseTerm is ((2*level/5 + 2) * power * attack / defense / 50) + 2 with every
// division floored in order.
//
// Precondition: defense > 0.
func BaseTerm(level, power, attack, defense int) int {
	return (2*level/5+2)*power*attack/defense/50 + 2
}

func apply(base int, modifier float64, roll int) int {
	v := math.Floor(float64(base)*modifier*float64(roll)/100 + floorEpsilon)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}

// Breakdown evaluates one hit and returns every term.
//
// Postcondition: Returns a Breakdown with Damage >= 0, or a validation error.
func (c *Calculator) Breakdown(attacker, defender *stats.Model, move Move, cond Conditions) (Breakdown, error) {
	if err := c.Validate(attacker, defender, move); err != nil {
		return Breakdown{}, err
	}
	if !cond.Weather.Valid() {
		return Breakdown{}, fmt.Errorf("unknown weather %q", cond.Weather)
	}
	if !cond.Terrain.Valid() {
		return Breakdown{}, fmt.Errorf("unknown terrain %q", cond.Terrain)
	}

	moveType := stats.NormalizeName(move.Type)
	b := Breakdown{
		Level:         attacker.Level,
		MoveType:      moveType,
		EffectiveType: moveType,
		STAB:          1, Effectiveness: 1, Critical: 1, Weather: 1,
		Terrain: 1, Ability: 1, Item: 1, Status: 1,
	}
	if !move.Damaging() {
		b.Effectiveness = 0
		return b, nil
	}
	b.Power = move.Power

	atkStat, defStat := move.Category.Stats()
	b.Attack = attacker.Compute(atkStat)
	b.Defense = defender.Compute(defStat)
	b.Base = BaseTerm(attacker.Level, move.Power, b.Attack, b.Defense)

	retypeTo, retyped := retypers[attacker.Ability]
	retyped = retyped && moveType == retypeTrigger
	typed := moveType
	if retyped {
		b.EffectiveType = retypeTo
		if c.retype == RetypeFull {
			typed = retypeTo
		}
	}

	if attacker.HasType(typed) {
		b.STAB = stabBonus
		if attacker.Ability == adaptability {
			b.STAB = stabAdapted
		}
	}
	eff, err := typechart.Effectiveness(c.chart, typed, defender.Types)
	if err != nil {
		return Breakdown{}, err
	}
	b.Effectiveness = eff
	if cond.Critical {
		b.Critical = critBonus
	}
	b.Weather = weatherFactor(cond.Weather, typed)
	b.Terrain = terrainFactor(cond.Terrain, typed)
	b.Ability = c.abilityModifier(attacker, move, typed, eff, retyped)
	b.Item = c.itemModifier(attacker, move, typed, eff)
	if isBurned(attacker.Status) && move.Category == Physical {
		b.Status = burnPenalty
	}

	variance := cond.Variance
	if variance == nil {
		variance = c.variance
	}
	b.Roll = variance.Roll()
	b.Damage = apply(b.Base, b.Modifier(), b.Roll)
	return b, nil
}

func (c *Calculator) abilityModifier(attacker *stats.Model, move Move, typed string, eff float64, retyped bool) float64 {
	if attacker.Ability == "" || knownAbility(attacker.Ability) {
		return abilityFactor(attacker.Ability, move.Power, eff, retyped)
	}
	if c.hook != nil {
		if m, ok := c.hook.AbilityModifier(c.hookInput(attacker, move, typed, eff)); ok && m >= 0 {
			return m
		}
	}
	return 1.0
}

func (c *Calculator) itemModifier(attacker *stats.Model, move Move, typed string, eff float64) float64 {
	if attacker.Item == "" {
		return 1.0
	}
	if f, ok := itemTable[attacker.Item]; ok {
		return f(move.Category, eff)
	}
	if c.hook != nil {
		if m, ok := c.hook.ItemModifier(c.hookInput(attacker, move, typed, eff)); ok && m >= 0 {
			return m
		}
	}
	return 1.0
}

func (c *Calculator) hookInput(attacker *stats.Model, move Move, typed string, eff float64) HookInput {
	return HookInput{
		Ability:       attacker.Ability,
		Item:          attacker.Item,
		MoveType:      typed,
		Power:         move.Power,
		Category:      move.Category,
		Effectiveness: eff,
	}
}

// Damage evaluates one hit.
//
// Postcondition: Returns damage >= 0 or a validation error.
func (c *Calculator) Damage(attacker, defender *stats.Model, move Move, cond Conditions) (int, error) {
	b, err := c.Breakdown(attacker, defender, move, cond)
	if err != nil {
		return 0, err
	}
	return b.Damage, nil
}

// Range returns the damage at the lowest and highest roll.
//
// Postcondition: min <= max.
func (c *Calculator) Range(attacker, defender *stats.Model, move Move, cond Conditions) (min, max int, err error) {
	cond.Variance = dice.Low
	if min, err = c.Damage(attacker, defender, move, cond); err != nil {
		return 0, 0, err
	}
	cond.Variance = dice.High
	if max, err = c.Damage(attacker, defender, move, cond); err != nil {
		return 0, 0, err
	}
	return min, max, nil
}
