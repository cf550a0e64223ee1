// Package optimizer allocates EVs across a prioritized list of goals.
//
// The solver is a greedy reduction: goals are processed in descending
// priority, each is solved against the allocation committed so far, and the
// result is committed before moving on. There is no backtracking.
package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dice"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// Request is the input to one Solve call.
type Request struct {
	// Name identifies the request in logs and reports.
	Name     string
	Creature *stats.Model
	Goals    []Goal
	// Fixed EVs are committed before solving and their stats are never touched.
	// A key present with value 0 locks that stat at 0.
	Fixed map[stats.Stat]int
}

// Solver runs allocation requests against a damage calculator.
type Solver struct {
	calc    *damage.Calculator
	logger  *zap.Logger
	workers int
}

// NewSolver builds a Solver. workers bounds SolveBatch parallelism; values < 1 mean 1.
//
// Precondition: calc and logger must be non-nil.
func NewSolver(calc *damage.Calculator, logger *zap.Logger, workers int) *Solver {
	if calc == nil {
		panic("optimizer.NewSolver: precondition violated: calc must be non-nil")
	}
	if logger == nil {
		panic("optimizer.NewSolver: precondition violated: logger must be non-nil")
	}
	if workers < 1 {
		workers = 1
	}
	return &Solver{calc: calc, logger: logger, workers: workers}
}

// Validate checks req completely before any goal is evaluated.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidGoal,
// stats.ErrInvalidStats, damage.ErrInvalidMove or typechart.ErrUnknownType.
func (s *Solver) Validate(req Request) error {
	if req.Creature == nil {
		return fmt.Errorf("%w: creature must be non-nil", ErrInvalidGoal)
	}
	if _, err := fixedSpread(req.Fixed); err != nil {
		return err
	}
	for i, g := range req.Goals {
		if err := s.validateGoal(req.Creature, i, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) validateGoal(creature *stats.Model, i int, g Goal) error {
	switch g.Kind {
	case Survive, OneHitKO, TwoHitKO:
		if g.Opponent == nil {
			return invalid(i, g, "opponent must be non-nil")
		}
		if !g.Conditions.Weather.Valid() {
			return invalid(i, g, "unknown weather %q", g.Conditions.Weather)
		}
		if !g.Conditions.Terrain.Valid() {
			return invalid(i, g, "unknown terrain %q", g.Conditions.Terrain)
		}
		attacker, defender := creature, g.Opponent
		if g.Kind == Survive {
			attacker, defender = g.Opponent, creature
		}
		if err := s.calc.Validate(attacker, defender, g.Move); err != nil {
			return fmt.Errorf("goal %d (%s): %w", i, g.Kind, err)
		}
	case Outspeed:
		if g.Value < 0 {
			return invalid(i, g, "speed must be >= 0, got %d", g.Value)
		}
	case CustomStat:
		if !g.Stat.Valid() {
			return invalid(i, g, "unknown stat %d", int(g.Stat))
		}
		if g.Value < 1 {
			return invalid(i, g, "value must be >= 1, got %d", g.Value)
		}
	default:
		return invalid(i, g, "unknown kind")
	}
	return nil
}

func fixedSpread(fixed map[stats.Stat]int) (stats.Spread, error) {
	var sp stats.Spread
	for st, v := range fixed {
		if !st.Valid() {
			return stats.Spread{}, &stats.InvalidStatsError{Field: "fixed", Reason: fmt.Sprintf("unknown stat %d", int(st))}
		}
		sp[st] = v
	}
	if err := stats.ValidateEVs(sp); err != nil {
		return stats.Spread{}, err
	}
	return sp, nil
}

// state is the allocation committed so far. Each step returns a new state.
type state struct {
	spread stats.Spread
	locked [6]bool
}

func (st state) remaining() int { return stats.MaxTotalEV - st.spread.Total() }

func (st state) add(cost stats.Spread) state {
	for _, s := range stats.All {
		st.spread[s] += cost[s]
	}
	return st
}

// Solve allocates EVs for req.
//
// Precondition: ctx must be non-nil.
// Postcondition: Returns a Result whose spread satisfies every EV invariant,
// or a validation error before any goal was evaluated. Infeasible goals are
// reported in the outcomes, never as errors.
func (s *Solver) Solve(ctx context.Context, req Request) (*Result, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	fixed, _ := fixedSpread(req.Fixed)
	st := state{spread: fixed}
	for stat := range req.Fixed {
		st.locked[stat] = true
	}

	order := make([]int, len(req.Goals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return req.Goals[order[a]].Priority > req.Goals[order[b]].Priority
	})

	runID := uuid.New()
	log := s.logger.With(zap.String("run_id", runID.String()), zap.String("species", req.Creature.Species))
	if req.Name != "" {
		log = log.With(zap.String("request", req.Name))
	}

	res := &Result{RunID: runID, Name: req.Name, Species: req.Creature.Species}
	for _, i := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g := req.Goals[i]
		out, next, err := s.step(req.Creature, st, g)
		if err != nil {
			return nil, fmt.Errorf("goal %d (%s): %w", i, g.Kind, err)
		}
		out.Index = i
		out.Goal = g
		st = next
		res.Outcomes = append(res.Outcomes, out)
		log.Debug("goal resolved",
			zap.Int("index", i),
			zap.String("goal", g.Name()),
			zap.Int("priority", g.Priority),
			zap.String("status", out.Status.String()),
			zap.Bool("already", out.Already),
			zap.String("cost", out.Cost.String()),
			zap.Int("remaining", st.remaining()),
		)
	}

	res.Spread = st.spread
	res.Remaining = st.remaining()
	final, err := req.Creature.WithEVs(st.spread)
	if err != nil {
		return nil, fmt.Errorf("committed spread %s: %w", st.spread, err)
	}
	res.Final = final.Final()
	log.Info("allocation solved",
		zap.String("spread", res.Spread.String()),
		zap.Int("remaining", res.Remaining),
		zap.Int("satisfied", res.Count(Satisfied)),
		zap.Int("partial", res.Count(Partial)),
		zap.Int("infeasible", res.Count(Infeasible)),
		zap.Int("skipped", res.Count(Skipped)),
	)
	return res, nil
}

// step resolves one goal against st.
func (s *Solver) step(creature *stats.Model, st state, g Goal) (Outcome, state, error) {
	model, err := creature.WithEVs(st.spread)
	if err != nil {
		return Outcome{}, st, err
	}
	var p plan
	switch g.Kind {
	case Survive:
		p, err = s.planSurvive(model, st, g)
	case OneHitKO, TwoHitKO:
		p, err = s.planKO(model, st, g)
	case Outspeed:
		p = planStat(model, st, stats.Speed, g.Value+1)
	case CustomStat:
		p = planStat(model, st, g.Stat, g.Value)
	}
	if err != nil {
		return Outcome{}, st, err
	}

	switch {
	case p.already:
		return Outcome{Status: Satisfied, Already: true}, st, nil
	case p.reason != "":
		return Outcome{Status: Infeasible, Reason: p.reason}, st, nil
	}
	budget := floorStep(st.remaining())
	if budget == 0 {
		return Outcome{Status: Skipped, Reason: "budget exhausted"}, st, nil
	}
	if p.cost.Total() <= budget {
		return Outcome{Status: Satisfied, Cost: p.cost}, st.add(p.cost), nil
	}
	partial := split(p.cost, budget)
	return Outcome{Status: Partial, Cost: partial, Reason: fmt.Sprintf("needs %d, %d left", p.cost.Total(), budget)}, st.add(partial), nil
}

// plan is the minimal extra cost for one goal. already and reason are exclusive.
type plan struct {
	already bool
	reason  string
	cost    stats.Spread
}

func infeasible(format string, args ...any) plan {
	return plan{reason: fmt.Sprintf(format, args...)}
}

// planStat finds the minimal EVs for stat s to reach target.
func planStat(model *stats.Model, st state, s stats.Stat, target int) plan {
	if model.Compute(s) >= target {
		return plan{already: true}
	}
	if st.locked[s] {
		return infeasible("%s is fixed", s)
	}
	ev, ok := model.RequiredEV(s, target)
	if !ok {
		return infeasible("%s cannot reach %d", s, target)
	}
	var cost stats.Spread
	cost[s] = ev - st.spread[s]
	return plan{cost: cost}
}

// planKO finds the minimal attacking stat for the creature's move to KO the
// opponent within g.hits() hits at the lowest roll.
func (s *Solver) planKO(model *stats.Model, st state, g Goal) (plan, error) {
	cond := g.Conditions
	cond.Variance = dice.Low
	b, err := s.calc.Breakdown(model, g.Opponent, g.Move, cond)
	if err != nil {
		return plan{}, err
	}
	hp := g.Opponent.Compute(stats.HP)
	hits := g.hits()
	knocksOut := func(attack int) bool {
		return hits*b.Recompute(attack, b.Defense, dice.Low.Roll()) >= hp
	}
	if knocksOut(b.Attack) {
		return plan{already: true}, nil
	}
	if !g.Move.Damaging() || b.Effectiveness == 0 {
		return infeasible("%s deals no damage to %s", g.Move.Name, g.Opponent.Species), nil
	}
	atkStat, _ := g.Move.Category.Stats()
	if st.locked[atkStat] {
		return infeasible("%s is fixed", atkStat), nil
	}
	top := model.ComputeWith(atkStat, stats.MaxStatEV)
	// Smallest attack value in (current, top] that knocks out.
	lo := b.Attack + 1
	n := sort.Search(top-lo+1, func(k int) bool { return knocksOut(lo + k) })
	if n > top-lo {
		return infeasible("%s cannot %s %s", g.Move.Name, g.Kind, g.Opponent.Species), nil
	}
	return planStat(model, st, atkStat, lo+n), nil
}

// planSurvive finds the cheapest HP and defense pair that survives the
// opponent's move at the highest roll. Ties prefer HP, which also helps
// against the other category.
func (s *Solver) planSurvive(model *stats.Model, st state, g Goal) (plan, error) {
	cond := g.Conditions
	cond.Variance = dice.High
	b, err := s.calc.Breakdown(g.Opponent, model, g.Move, cond)
	if err != nil {
		return plan{}, err
	}
	survives := func(hpEV, defEV int, def stats.Stat) bool {
		dmg := b.Recompute(b.Attack, model.ComputeWith(def, defEV), dice.High.Roll())
		return dmg < model.ComputeWith(stats.HP, hpEV)
	}
	_, defStat := g.Move.Category.Stats()
	curH, curD := st.spread[stats.HP], st.spread[defStat]
	if b.Damage == 0 || survives(curH, curD, defStat) {
		return plan{already: true}, nil
	}

	hpOpts := evOptions(curH, st.locked[stats.HP])
	defOpts := evOptions(curD, st.locked[defStat])
	best, bestH, bestD := -1, 0, 0
	for _, h := range hpOpts {
		k := sort.Search(len(defOpts), func(j int) bool { return survives(h, defOpts[j], defStat) })
		if k == len(defOpts) {
			continue
		}
		cost := (h - curH) + (defOpts[k] - curD)
		if best < 0 || cost <= best {
			best, bestH, bestD = cost, h, defOpts[k]
		}
	}
	if best < 0 {
		return infeasible("cannot survive %s %s", g.Opponent.Species, g.Move.Name), nil
	}
	var cost stats.Spread
	cost[stats.HP] = bestH - curH
	cost[defStat] = bestD - curD
	return plan{cost: cost}, nil
}

// evOptions lists the EV values a stat may take, ascending from cur.
func evOptions(cur int, locked bool) []int {
	if locked {
		return []int{cur}
	}
	out := []int{cur}
	for ev := stats.RoundUpEV(cur + 1); ev <= stats.MaxStatEV; ev += stats.EVStep {
		out = append(out, ev)
	}
	return out
}

func floorStep(n int) int {
	if n <= 0 {
		return 0
	}
	return n / stats.EVStep * stats.EVStep
}

// split divides budget across the stats of need in proportion to each stat's
// share, in multiples of EVStep. Leftover from flooring goes to the largest need.
//
// Precondition: need.Total() > budget > 0.
func split(need stats.Spread, budget int) stats.Spread {
	total := need.Total()
	var out stats.Spread
	used := 0
	largest := stats.HP
	for _, s := range stats.All {
		out[s] = floorStep(budget * need[s] / total)
		used += out[s]
		if need[s] > need[largest] {
			largest = s
		}
	}
	if spare := budget - used; spare > 0 {
		out[largest] += min(spare, need[largest]-out[largest])
	}
	return out
}
