package typechart_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evspread/internal/game/typechart"
)

const sampleChart = `
types: [normal, fire, water, grass, ghost]
entries:
  - {attack: fire, defend: grass, multiplier: 2}
  - {attack: fire, defend: water, multiplier: 0.5}
  - {attack: water, defend: fire, multiplier: 2}
  - {attack: normal, defend: ghost, multiplier: 0}
`

func TestParse_Lookups(t *testing.T) {
	c, err := typechart.Parse([]byte(sampleChart))
	require.NoError(t, err)

	m, err := c.Multiplier("Fire", "grass")
	require.NoError(t, err)
	assert.Equal(t, 2.0, m)

	m, err = c.Multiplier("fire", "fire")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m, "unlisted pairs default to neutral")

	m, err = c.Multiplier("normal", "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	assert.Equal(t, []string{"fire", "ghost", "grass", "normal", "water"}, c.Types())
	assert.Len(t, c.Entries(), 4)
}

func TestMultiplier_UnknownType(t *testing.T) {
	c, err := typechart.Parse([]byte(sampleChart))
	require.NoError(t, err)

	_, err = c.Multiplier("sound", "fire")
	require.ErrorIs(t, err, typechart.ErrUnknownType)
	var ute *typechart.UnknownTypeError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "sound", ute.Type)

	_, err = c.Multiplier("fire", "cosmic")
	assert.ErrorIs(t, err, typechart.ErrUnknownType)
}

func TestParse_RejectsBadEntries(t *testing.T) {
	_, err := typechart.Parse([]byte("entries:\n  - {attack: fire, multiplier: 2}\n"))
	assert.Error(t, err)
	_, err = typechart.Parse([]byte("entries:\n  - {attack: fire, defend: water, multiplier: -1}\n"))
	assert.Error(t, err)
	_, err = typechart.Parse([]byte("types: [\n"))
	assert.Error(t, err)
}

func TestEffectiveness_DualType(t *testing.T) {
	c := typechart.New()
	c.Set("ice", "dragon", 2)
	c.Set("ice", "flying", 2)
	c.Set("ice", "steel", 0.5)

	eff, err := typechart.Effectiveness(c, "ice", []string{"dragon", "flying"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, eff)

	eff, err = typechart.Effectiveness(c, "ice", []string{"dragon", "steel"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, eff)
}

func TestEffectiveness_Property_ProductOfSingles(t *testing.T) {
	values := []float64{0, 0.5, 1, 2}
	rapid.Check(t, func(rt *rapid.T) {
		c := typechart.New()
		a := values[rapid.IntRange(0, 3).Draw(rt, "a")]
		b := values[rapid.IntRange(0, 3).Draw(rt, "b")]
		c.Set("x", "p", a)
		c.Set("x", "q", b)
		dual, err := typechart.Effectiveness(c, "x", []string{"p", "q"})
		require.NoError(rt, err)
		p, _ := typechart.Effectiveness(c, "x", []string{"p"})
		q, _ := typechart.Effectiveness(c, "x", []string{"q"})
		assert.Equal(rt, p*q, dual)
	})
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleChart), 0644))
	c, err := typechart.Load(path)
	require.NoError(t, err)
	assert.True(t, c.Has("water"))

	_, err = typechart.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSet_PanicsOnNegative(t *testing.T) {
	c := typechart.New()
	assert.Panics(t, func() { c.Set("a", "b", -1) })
	assert.Panics(t, func() { c.AddType("") })
}
