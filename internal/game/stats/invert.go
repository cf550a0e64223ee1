package stats

// RoundUpEV rounds ev up to the next multiple of EVStep.
func RoundUpEV(ev int) int {
	if ev <= 0 {
		return 0
	}
	return (ev + EVStep - 1) / EVStep * EVStep
}

// RequiredEV inverts Calc: it returns the smallest EV, a multiple of EVStep,
// for which stat s reaches at least target. ok is false when even MaxStatEV
// falls short; ev is then MaxStatEV.
//
// Postcondition: ok implies m.ComputeWith(s, ev) >= target and ev%EVStep == 0.
func (m *Model) RequiredEV(s Stat, target int) (ev int, ok bool) {
	if m.ComputeWith(s, 0) >= target {
		return 0, true
	}
	if s == HP && m.Base[HP] == 1 {
		return MaxStatEV, false
	}

	// Minimal floored core term needed before the level/nature step.
	var core int
	if s == HP {
		core = target - m.Level - 10
	} else {
		n := m.Nature.Multiplier(s)
		core = ceilDiv(10*target, n) - 5
	}
	// (2*base + iv + q) * level >= 100 * core
	q := ceilDiv(100*core, m.Level) - 2*m.Base[s] - m.IVs[s]
	if q < 0 {
		q = 0
	}
	ev = q * EVStep
	if ev > MaxStatEV {
		return MaxStatEV, false
	}
	// The closed form is exact; this walk only guards the boundary.
	for ev <= MaxStatEV && m.ComputeWith(s, ev) < target {
		ev += EVStep
	}
	if ev > MaxStatEV {
		return MaxStatEV, false
	}
	return ev, true
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return -((-a) / b)
	}
	return (a + b - 1) / b
}
