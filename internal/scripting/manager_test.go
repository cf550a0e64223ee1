package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/dice"
	"github.com/cory-johannsen/evspread/internal/game/stats"
	"github.com/cory-johannsen/evspread/internal/game/typechart"
	"github.com/cory-johannsen/evspread/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

const modifierScript = `
function ability_modifier(ctx)
	if ctx.ability == "sheer_force" then
		return 1.3
	end
	if ctx.ability == "water_bubble" and ctx.move_type == "water" then
		return 2
	end
	if ctx.ability == "broken" then
		return "lots"
	end
	return nil
end

function item_modifier(ctx)
	if ctx.item == "charcoal" and ctx.move_type == "fire" then
		return 1.2
	end
	if ctx.item == "soul_dew" and ctx.category == engine.category.special then
		return 1.2
	end
	if ctx.item == "cursed" then
		return -1
	end
end
`

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_NothingLoaded(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook("some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)

	_, ok := mgr.AbilityModifier(damage.HookInput{Ability: "sheer_force"})
	assert.False(t, ok)
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len(), "expected Warn log for Lua runtime error")
}

func TestManager_CallHook_InstructionLimitPerCall(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin() while true do end end
		function cheap() return 1 end
	`)
	require.NoError(t, mgr.Load(dir, 50))

	ret, err := mgr.CallHook("spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())

	for i := 0; i < 10; i++ {
		ret, err = mgr.CallHook("cheap")
		require.NoError(t, err)
		assert.Equal(t, lua.LNumber(1), ret)
	}
}

func TestManager_Load_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(t.TempDir(), 0))
	ret, err := mgr.CallHook("anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_Load_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(writeTempLua(t, "bad.lua", `this is not valid lua @@@@`), 0))
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "missing"), 0))
	assert.Error(t, mgr.Load(writeTempLua(t, "io.lua", `io.write("x")`), 0), "io must not be available")
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_Load_ReplacesPrevious(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "one.lua", `function v() return 1 end`), 0))
	require.NoError(t, mgr.Load(writeTempLua(t, "two.lua", `function v() return 2 end`), 0))
	ret, err := mgr.CallHook("v")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestEngineLog_WritesToLogger(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "log.lua", `
		function do_log()
			engine.log.info("hello from lua")
			engine.log.debug("detail")
		end
	`), 0))
	_, err := mgr.CallHook("do_log")
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("lua: hello from lua").Len())
	assert.Equal(t, 1, logs.FilterMessage("lua: detail").Len())
}

func TestManager_Modifiers(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "mods.lua", modifierScript), 0))

	m, ok := mgr.AbilityModifier(damage.HookInput{Ability: "sheer_force"})
	require.True(t, ok)
	assert.InDelta(t, 1.3, m, 1e-12)

	m, ok = mgr.AbilityModifier(damage.HookInput{Ability: "water_bubble", MoveType: "water"})
	require.True(t, ok)
	assert.Equal(t, 2.0, m)

	_, ok = mgr.AbilityModifier(damage.HookInput{Ability: "water_bubble", MoveType: "fire"})
	assert.False(t, ok)

	m, ok = mgr.ItemModifier(damage.HookInput{Item: "soul_dew", Category: damage.Special})
	require.True(t, ok)
	assert.InDelta(t, 1.2, m, 1e-12)

	_, ok = mgr.ItemModifier(damage.HookInput{Item: "soul_dew", Category: damage.Physical})
	assert.False(t, ok)

	_, ok = mgr.AbilityModifier(damage.HookInput{Ability: "broken"})
	assert.False(t, ok)
	_, ok = mgr.ItemModifier(damage.HookInput{Item: "cursed"})
	assert.False(t, ok)
	assert.Equal(t, 2, logs.FilterMessage("scripting: modifier hook returned a non-multiplier").Len())
}

func TestManager_Modifiers_GoThroughCallHook(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "mods.lua", `
		function ability_modifier(ctx)
			if ctx.ability == "boom" then error("bad ability") end
			if ctx.ability == "spin" then while true do end end
			return ctx.power / 100
		end
	`)
	require.NoError(t, mgr.Load(dir, 200))

	m, ok := mgr.AbilityModifier(damage.HookInput{Ability: "technician", Power: 60})
	require.True(t, ok)
	assert.InDelta(t, 0.6, m, 1e-12)

	L := scripting.NewSandboxedState(0)
	defer L.Close()
	ctx := L.NewTable()
	ctx.RawSetString("power", lua.LNumber(60))
	ret, err := mgr.CallHook(scripting.AbilityHook, ctx)
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(m), ret)

	_, ok = mgr.AbilityModifier(damage.HookInput{Ability: "boom"})
	assert.False(t, ok)
	_, ok = mgr.AbilityModifier(damage.HookInput{Ability: "spin"})
	assert.False(t, ok)
	errs := logs.FilterMessage("scripting: Lua runtime error")
	require.Equal(t, 2, errs.Len())
	for _, e := range errs.All() {
		assert.Equal(t, scripting.AbilityHook, e.ContextMap()["hook"])
	}

	m, ok = mgr.AbilityModifier(damage.HookInput{Power: 120})
	require.True(t, ok)
	assert.InDelta(t, 1.2, m, 1e-12)
}

func TestManager_HookDrivesCalculator(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "mods.lua", modifierScript), 0))

	chart := typechart.New()
	chart.AddType("normal")
	calc := damage.NewCalculator(chart, damage.WithHook(mgr), damage.WithVariance(dice.High))

	mk := func(ability string) *stats.Model {
		m, err := stats.New(stats.Params{
			Species: "tauros", Level: 100,
			Base:    stats.Spread{75, 100, 95, 40, 70, 110},
			IVs:     stats.DefaultIVs(),
			Nature:  stats.Neutral("serious"),
			Ability: ability,
			Types:   []string{"normal"},
		})
		require.NoError(t, err)
		return m
	}
	move := damage.Move{Name: "body_slam", Type: "normal", Power: 85, Category: damage.Physical, Accuracy: 100}

	plain, err := calc.Breakdown(mk("intimidate"), mk(""), move, damage.Conditions{})
	require.NoError(t, err)
	boosted, err := calc.Breakdown(mk("sheer_force"), mk(""), move, damage.Conditions{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, plain.Ability)
	assert.InDelta(t, 1.3, boosted.Ability, 1e-12)
	assert.Greater(t, boosted.Damage, plain.Damage)
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil)
	})
}

func TestManager_Close_Releases(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "init.lua", `function get_x() return 1 end`), 0))
	mgr.Close()
	ret, err := mgr.CallHook("get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestProperty_CallHookUnknownNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "mods.lua", modifierScript), 0))
	rapid.Check(t, func(rt *rapid.T) {
		hook := rapid.StringMatching(`[a-z_]{1,12}`).Draw(rt, "hook")
		_, err := mgr.CallHook(hook)
		assert.NoError(rt, err)
		ability := rapid.StringMatching(`[a-z_]{0,12}`).Draw(rt, "ability")
		if m, ok := mgr.AbilityModifier(damage.HookInput{Ability: ability}); ok {
			assert.GreaterOrEqual(rt, m, 0.0)
		}
	})
}

func TestManager_ConcurrentModifiers_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "mods.lua", modifierScript), 0))

	const goroutines = 10
	const callsEach = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				m, ok := mgr.ItemModifier(damage.HookInput{Item: "charcoal", MoveType: "fire"})
				assert.True(t, ok)
				assert.InDelta(t, 1.2, m, 1e-12)
			}
		}()
	}
	wg.Wait()
}

func TestManager_ShippedScripts(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(filepath.Join("..", "..", "content", "scripts"), 0))

	m, ok := mgr.AbilityModifier(damage.HookInput{Ability: "steelworker", MoveType: "steel"})
	require.True(t, ok)
	assert.Equal(t, 1.5, m)

	m, ok = mgr.ItemModifier(damage.HookInput{Item: "charcoal", MoveType: "fire"})
	require.True(t, ok)
	assert.InDelta(t, 1.2, m, 1e-12)

	m, ok = mgr.ItemModifier(damage.HookInput{Item: "charcoal", MoveType: "water"})
	require.True(t, ok)
	assert.Equal(t, 1.0, m)

	_, ok = mgr.ItemModifier(damage.HookInput{Item: "leftovers"})
	assert.False(t, ok)
	_, ok = mgr.AbilityModifier(damage.HookInput{Ability: "rough_skin"})
	assert.False(t, ok)
	assert.Zero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
}
