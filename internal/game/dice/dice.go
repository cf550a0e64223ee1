// Package dice provides the randomness abstraction behind the damage roll.
// Every stochastic input to the damage formula flows through a Variance so
// callers can pin it for deterministic evaluation.
package dice

import "fmt"

const (
	// MinRoll is the lowest damage roll, in percent.
	MinRoll = 85
	// MaxRoll is the highest damage roll, in percent.
	MaxRoll = 100
)

// Source is the randomness provider for damage rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Variance yields the damage roll percentage applied to a hit.
type Variance interface {
	// Roll returns a percentage in [MinRoll, MaxRoll].
	Roll() int
}

// Pinned is a Variance that always returns the same percentage.
type Pinned int

const (
	// Low pins the roll to its minimum; a goal evaluated here holds on every roll.
	Low Pinned = MinRoll
	// High pins the roll to its maximum; the worst case for the defender.
	High Pinned = MaxRoll
)

// Roll returns p.
func (p Pinned) Roll() int { return int(p) }

// String renders the pin as "85%".
func (p Pinned) String() string { return fmt.Sprintf("%d%%", int(p)) }

// uniform draws rolls uniformly from [MinRoll, MaxRoll] using a Source.
type uniform struct {
	src Source
}

// NewUniform returns a Variance sampling uniformly from src.
//
// Precondition: src must be non-nil.
// Postcondition: Every Roll is in [MinRoll, MaxRoll].
func NewUniform(src Source) Variance {
	if src == nil {
		panic("dice: NewUniform precondition violated: src must be non-nil")
	}
	return &uniform{src: src}
}

// Roll returns a uniformly sampled percentage.
func (u *uniform) Roll() int {
	return MinRoll + u.src.Intn(MaxRoll-MinRoll+1)
}
