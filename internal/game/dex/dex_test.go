package dex_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dex"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/game/typechart"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const typesYAML = `
types: [normal, electric, water, ground, flying]
entries:
  - {attack: electric, defend: water, multiplier: 2}
  - {attack: electric, defend: ground, multiplier: 0}
  - {attack: electric, defend: flying, multiplier: 2}
  - {attack: ground, defend: electric, multiplier: 2}
`

const speciesYAML = `
- id: pikachu
  name: Pikachu
  base_stats: {hp: 35, atk: 55, def: 40, spa: 50, spd: 50, spe: 90}
  types: [electric]
- id: Mr Squirtle
  base_stats: {hp: 44, atk: 48, def: 65, spa: 50, spd: 64, spe: 43}
  types: [Water]
`

const movesYAML = `
- {name: Thunderbolt, type: electric, power: 90, category: special, accuracy: 100}
- {name: Earthquake, type: ground, power: 100, category: physical, accuracy: 100}
- {name: Growl, type: normal, power: 0, category: status, accuracy: 100}
`

func contentDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "types.yaml", typesYAML)
	writeFile(t, dir, "species/gen1.yaml", speciesYAML)
	writeFile(t, dir, "moves/moves.yml", movesYAML)
	writeFile(t, dir, "species/README.txt", "ignored")
	return dir
}

func TestLoadDir_Valid(t *testing.T) {
	r, err := dex.LoadDir(contentDir(t))
	require.NoError(t, err)

	pika, err := r.Species("Pikachu")
	require.NoError(t, err)
	assert.Equal(t, stats.Spread{35, 55, 40, 50, 50, 90}, pika.Base)
	assert.Equal(t, []string{"electric"}, pika.Types)

	sq, err := r.Species("mr-squirtle")
	require.NoError(t, err)
	assert.Equal(t, "mr_squirtle", sq.ID)
	assert.Equal(t, "Mr Squirtle", sq.Name)
	assert.Equal(t, []string{"water"}, sq.Types)

	tb, err := r.Move("thunderbolt")
	require.NoError(t, err)
	assert.Equal(t, damage.Special, tb.Category)
	assert.Equal(t, 90, tb.Power)

	m, err := r.Chart().Multiplier("electric", "ground")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	assert.Len(t, r.AllSpecies(), 2)
	assert.Len(t, r.AllMoves(), 3)
	assert.Len(t, r.AllNatures(), 25)
}

func TestLoadDir_NaturesFileOverrides(t *testing.T) {
	dir := contentDir(t)
	writeFile(t, dir, "natures.yaml", `
- {name: Stoic, boosted: def, reduced: spe}
- {name: serious}
`)
	r, err := dex.LoadDir(dir)
	require.NoError(t, err)

	n, err := r.Nature("stoic")
	require.NoError(t, err)
	assert.Equal(t, stats.Def, n.Boosted)
	assert.Equal(t, stats.Speed, n.Reduced)

	s, err := r.Nature("serious")
	require.NoError(t, err)
	assert.True(t, s.IsNeutral())
	assert.Len(t, r.AllNatures(), 26)
}

func TestLoadDir_Errors(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
	}{
		{"bad species yaml", "species/bad.yaml", "- id: [unclosed"},
		{"species missing id", "species/bad.yaml", "- {name: x, base_stats: {hp: 1}, types: [normal]}"},
		{"species zero base", "species/bad.yaml", "- {id: x, base_stats: {hp: 10}, types: [normal]}"},
		{"species three types", "species/bad.yaml", "- {id: x, base_stats: {hp: 1, atk: 1, def: 1, spa: 1, spd: 1, spe: 1}, types: [normal, water, ground]}"},
		{"species unknown stat key", "species/bad.yaml", "- {id: x, base_stats: {luck: 1}, types: [normal]}"},
		{"species unknown type", "species/bad.yaml", "- {id: x, base_stats: {hp: 1, atk: 1, def: 1, spa: 1, spd: 1, spe: 1}, types: [shadow]}"},
		{"move bad category", "moves/bad.yaml", "- {name: x, type: normal, power: 10, category: weird}"},
		{"move negative power", "moves/bad.yaml", "- {name: x, type: normal, power: -1, category: physical}"},
		{"move unknown type", "moves/bad.yaml", "- {name: x, type: shadow, power: 10, category: physical}"},
		{"nature touches hp", "natures.yaml", "- {name: x, boosted: atk}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := contentDir(t)
			writeFile(t, dir, tc.file, tc.body)
			_, err := dex.LoadDir(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadDir_MissingChart(t *testing.T) {
	dir := contentDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "types.yaml")))
	_, err := dex.LoadDir(dir)
	assert.Error(t, err)
}

func TestRegistry_LookupErrors(t *testing.T) {
	r := dex.NewRegistry(typechart.New())

	_, err := r.Species("missingno")
	assert.ErrorIs(t, err, dex.ErrUnknownSpecies)
	_, err = r.Move("splash")
	assert.ErrorIs(t, err, dex.ErrUnknownMove)
	_, err = r.Nature("grumpy")
	assert.ErrorIs(t, err, dex.ErrUnknownNature)

	var le *dex.LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "grumpy", le.ID)
}

func TestRegistry_PanicsOnPreconditions(t *testing.T) {
	assert.Panics(t, func() { dex.NewRegistry(nil) })
	r := dex.NewRegistry(typechart.New())
	assert.Panics(t, func() { r.RegisterSpecies(dex.Species{}) })
	assert.Panics(t, func() { r.RegisterMove(damage.Move{}) })
	assert.Panics(t, func() { r.RegisterNature(stats.Nature{}) })
}

func TestBuild_Defaults(t *testing.T) {
	r, err := dex.LoadDir(contentDir(t))
	require.NoError(t, err)

	m, err := dex.Build(r, dex.CreatureSet{Species: "pikachu"})
	require.NoError(t, err)
	assert.Equal(t, 100, m.Level)
	assert.Equal(t, "serious", m.Nature.Name)
	assert.Equal(t, stats.DefaultIVs(), m.IVs)
	assert.Equal(t, stats.Spread{}, m.EVs)
	assert.Equal(t, stats.Spread{211, 146, 116, 136, 136, 216}, m.Final())
}

func TestBuild_FullSet(t *testing.T) {
	r, err := dex.LoadDir(contentDir(t))
	require.NoError(t, err)

	m, err := dex.Build(r, dex.CreatureSet{
		Species: "Pikachu",
		Level:   50,
		Nature:  "Timid",
		IVs:     map[string]int{"atk": 0},
		EVs:     map[string]int{"spa": 252, "spe": 252, "hp": 4},
		Ability: "Lightning Rod",
		Item:    "Light Ball",
		Moves:   []string{"Thunderbolt", "growl"},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, m.Level)
	assert.Equal(t, 0, m.IVs[stats.Atk])
	assert.Equal(t, 252, m.EVs[stats.SpAtk])
	assert.Equal(t, "lightning_rod", m.Ability)
	assert.Equal(t, []string{"thunderbolt", "growl"}, m.Moves)

	moves, err := dex.Moves(r, m)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, damage.Status, moves[1].Category)
}

func TestBuild_Errors(t *testing.T) {
	r, err := dex.LoadDir(contentDir(t))
	require.NoError(t, err)

	_, err = dex.Build(r, dex.CreatureSet{Species: "missingno"})
	assert.ErrorIs(t, err, dex.ErrUnknownSpecies)

	_, err = dex.Build(r, dex.CreatureSet{Species: "pikachu", Nature: "grumpy"})
	assert.ErrorIs(t, err, dex.ErrUnknownNature)

	_, err = dex.Build(r, dex.CreatureSet{Species: "pikachu", Moves: []string{"splash"}})
	assert.ErrorIs(t, err, dex.ErrUnknownMove)

	_, err = dex.Build(r, dex.CreatureSet{Species: "pikachu", EVs: map[string]int{"hp": 300}})
	assert.ErrorIs(t, err, stats.ErrInvalidStats)

	_, err = dex.Build(r, dex.CreatureSet{Species: "pikachu", IVs: map[string]int{"luck": 3}})
	assert.ErrorIs(t, err, stats.ErrInvalidStats)
}
