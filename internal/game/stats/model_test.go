package stats_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

func pikachuParams() stats.Params {
	return stats.Params{
		Species: "pikachu",
		Level:   100,
		Base:    stats.Spread{35, 55, 40, 50, 50, 90},
		IVs:     stats.DefaultIVs(),
		Nature:  stats.Neutral("serious"),
		Types:   []string{"electric"},
	}
}

func TestModel_Final_NeutralLevel100(t *testing.T) {
	m, err := stats.New(pikachuParams())
	require.NoError(t, err)
	assert.Equal(t, stats.Spread{211, 146, 116, 136, 136, 216}, m.Final())
}

func TestModel_Final_BoostedAndReduced(t *testing.T) {
	p := pikachuParams()
	p.Nature, _ = stats.StandardNature("Timid")
	p.EVs = stats.Spread{0, 0, 0, 252, 4, 252}
	m, err := stats.New(p)
	require.NoError(t, err)

	final := m.Final()
	// atk: (141+5)*0.9 = 131.4 -> 131
	assert.Equal(t, 131, final[stats.Atk])
	// spe: ((180+31+63)*100/100 + 5) * 1.1 = 306.9 -> 306
	assert.Equal(t, 306, final[stats.Speed])
	// spa: 100+31+63 = 194 + 5
	assert.Equal(t, 199, final[stats.SpAtk])
	assert.Equal(t, 137, final[stats.SpDef])
}

func TestModel_Final_LowLevelFloors(t *testing.T) {
	p := pikachuParams()
	p.Level = 50
	m, err := stats.New(p)
	require.NoError(t, err)
	// hp: 101*50/100 = 50 (floor of 50.5) + 60
	assert.Equal(t, 110, m.Compute(stats.HP))
	// atk: 141*50/100 = 70 + 5
	assert.Equal(t, 75, m.Compute(stats.Atk))
}

func TestModel_SingleBaseHP_AlwaysOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := pikachuParams()
		p.Base[stats.HP] = 1
		p.Level = rapid.IntRange(1, 100).Draw(rt, "level")
		p.IVs[stats.HP] = rapid.IntRange(0, 31).Draw(rt, "iv")
		p.EVs[stats.HP] = stats.EVStep * rapid.IntRange(0, stats.MaxStatEV/stats.EVStep).Draw(rt, "ev")
		m, err := stats.New(p)
		require.NoError(rt, err)
		assert.Equal(rt, 1, m.Compute(stats.HP))
	})
}

func TestNew_RejectsInvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*stats.Params)
	}{
		{"iv above 31", func(p *stats.Params) { p.IVs[stats.Atk] = 32 }},
		{"negative iv", func(p *stats.Params) { p.IVs[stats.Def] = -1 }},
		{"ev above 252", func(p *stats.Params) { p.EVs[stats.SpAtk] = 256 }},
		{"negative ev", func(p *stats.Params) { p.EVs[stats.HP] = -4 }},
		{"ev not a multiple of 4", func(p *stats.Params) { p.EVs[stats.HP] = 3 }},
		{"ev 250 not a multiple of 4", func(p *stats.Params) { p.EVs[stats.Speed] = 250 }},
		{"ev total above 510", func(p *stats.Params) { p.EVs = stats.Spread{252, 252, 8, 0, 0, 0} }},
		{"level zero", func(p *stats.Params) { p.Level = 0 }},
		{"level above 100", func(p *stats.Params) { p.Level = 101 }},
		{"zero base", func(p *stats.Params) { p.Base[stats.Speed] = 0 }},
		{"no types", func(p *stats.Params) { p.Types = nil }},
		{"three types", func(p *stats.Params) { p.Types = []string{"fire", "water", "grass"} }},
		{"duplicate type", func(p *stats.Params) { p.Types = []string{"fire", "Fire"} }},
		{"five moves", func(p *stats.Params) { p.Moves = []string{"a", "b", "c", "d", "e"} }},
		{"empty species", func(p *stats.Params) { p.Species = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pikachuParams()
			tc.mutate(&p)
			_, err := stats.New(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, stats.ErrInvalidStats))
			var ise *stats.InvalidStatsError
			assert.True(t, errors.As(err, &ise))
		})
	}
}

func TestNew_NormalizesNames(t *testing.T) {
	p := pikachuParams()
	p.Ability = "Lightning Rod"
	p.Item = "Choice-Specs"
	p.Types = []string{"Electric"}
	m, err := stats.New(p)
	require.NoError(t, err)
	assert.Equal(t, "lightning_rod", m.Ability)
	assert.Equal(t, "choice_specs", m.Item)
	assert.True(t, m.HasType("ELECTRIC"))
}

func TestModel_WithEVs_DoesNotMutate(t *testing.T) {
	m, err := stats.New(pikachuParams())
	require.NoError(t, err)
	m2, err := m.WithEVs(stats.Spread{4, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, m.EVs[stats.HP])
	assert.Equal(t, 4, m2.EVs[stats.HP])
	_, err = m.WithEVs(stats.Spread{6, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, stats.ErrInvalidStats)
	_, err = m.WithEVs(stats.Spread{253, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, stats.ErrInvalidStats)
}

func genParams(rt *rapid.T) stats.Params {
	var base, ivs, evs stats.Spread
	budget := stats.MaxTotalEV
	for _, s := range stats.All {
		base[s] = rapid.IntRange(2, 255).Draw(rt, "base_"+s.String())
		ivs[s] = rapid.IntRange(0, 31).Draw(rt, "iv_"+s.String())
		hi := budget
		if hi > stats.MaxStatEV {
			hi = stats.MaxStatEV
		}
		evs[s] = stats.EVStep * rapid.IntRange(0, hi/stats.EVStep).Draw(rt, "ev_"+s.String())
		budget -= evs[s]
	}
	natures := stats.StandardNatures()
	return stats.Params{
		Species: "x",
		Level:   rapid.IntRange(1, 100).Draw(rt, "level"),
		Base:    base,
		IVs:     ivs,
		EVs:     evs,
		Nature:  natures[rapid.IntRange(0, len(natures)-1).Draw(rt, "nature")],
		Types:   []string{"normal"},
	}
}

func TestModel_Property_FinalStatsBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := genParams(rt)
		m, err := stats.New(p)
		require.NoError(rt, err)
		final := m.Final()
		for _, s := range stats.All {
			assert.GreaterOrEqual(rt, final[s], 0)
		}
		assert.GreaterOrEqual(rt, final[stats.HP], p.Level+10)
	})
}

func TestModel_Property_NatureSymmetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := genParams(rt)
		p.Nature = stats.Neutral("hardy")
		neutral, err := stats.New(p)
		require.NoError(rt, err)

		for _, n := range stats.StandardNatures() {
			p.Nature = n
			m, err := stats.New(p)
			require.NoError(rt, err)
			for _, s := range stats.All {
				switch n.Multiplier(s) {
				case 11:
					assert.GreaterOrEqual(rt, m.Compute(s), neutral.Compute(s), "%s boosts %s", n.Name, s)
				case 9:
					assert.LessOrEqual(rt, m.Compute(s), neutral.Compute(s), "%s reduces %s", n.Name, s)
				default:
					assert.Equal(rt, neutral.Compute(s), m.Compute(s))
				}
			}
		}
	})
}

func TestModel_Property_MonotonicInEV(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m, err := stats.New(genParams(rt))
		require.NoError(rt, err)
		s := stats.All[rapid.IntRange(0, 5).Draw(rt, "stat")]
		ev := rapid.IntRange(0, 248).Draw(rt, "ev")
		assert.LessOrEqual(rt, m.ComputeWith(s, ev), m.ComputeWith(s, ev+4))
	})
}

func TestStandardNatures_TwentyFive(t *testing.T) {
	natures := stats.StandardNatures()
	require.Len(t, natures, 25)
	neutral := 0
	for _, n := range natures {
		if n.IsNeutral() {
			neutral++
			continue
		}
		assert.NotEqual(t, stats.HP, n.Boosted)
		assert.NotEqual(t, stats.HP, n.Reduced)
	}
	assert.Equal(t, 5, neutral)
}

func TestParseStat(t *testing.T) {
	tests := map[string]stats.Stat{
		"hp": stats.HP, "Attack": stats.Atk, "def": stats.Def,
		"spa": stats.SpAtk, "special_defense": stats.SpDef, "Speed": stats.Speed,
	}
	for in, want := range tests {
		got, err := stats.ParseStat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := stats.ParseStat("luck")
	assert.ErrorIs(t, err, stats.ErrInvalidStats)
}

func TestSpreadFromMap(t *testing.T) {
	sp, err := stats.SpreadFromMap(map[string]int{"hp": 4, "spe": 252}, 0)
	require.NoError(t, err)
	assert.Equal(t, stats.Spread{4, 0, 0, 0, 0, 252}, sp)
	assert.Equal(t, 256, sp.Total())
	assert.Equal(t, "4/0/0/0/0/252", sp.String())

	_, err = stats.SpreadFromMap(map[string]int{"mana": 1}, 0)
	assert.Error(t, err)
}
