package optimizer

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// Status is the terminal state of one goal.
type Status int

const (
	// Satisfied: the goal holds under the returned spread.
	Satisfied Status = iota
	// Partial: the budget ran short; some EVs were committed but the goal does not hold.
	Partial
	// Infeasible: the goal cannot hold even at the per-stat cap, or its stats are fixed.
	Infeasible
	// Skipped: the budget was exhausted before the goal was reached.
	Skipped
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Partial:
		return "partial"
	case Infeasible:
		return "infeasible"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome records how one goal was resolved.
type Outcome struct {
	// Index is the goal's position in the request.
	Index  int
	Goal   Goal
	Status Status
	// Already is true when the goal held before any EVs were committed for it.
	Already bool
	// Cost is the EVs committed for this goal.
	Cost   stats.Spread
	Reason string
}

// Result is the output of one Solve call.
type Result struct {
	RunID     uuid.UUID
	Name      string
	Species   string
	Spread    stats.Spread
	Final     stats.Spread
	Remaining int
	// Outcomes are in processing order: descending priority, stable for ties.
	Outcomes []Outcome
}

// Count returns the number of outcomes with status st.
func (r *Result) Count(st Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

// Outcome returns the outcome for the goal at request index i.
func (r *Result) Outcome(i int) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Index == i {
			return o, true
		}
	}
	return Outcome{}, false
}
