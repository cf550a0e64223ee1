package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/evspread/internal/game/damage"
)

// Hook names a script may define.
const (
	AbilityHook = "ability_modifier"
	ItemHook    = "item_modifier"
)

// Manager owns one sandboxed LState loaded from a script directory and
// dispatches modifier hooks into it.
//
// An LState is single-threaded, so every call takes the mutex. Manager is
// safe for concurrent use and implements damage.ModifierHook.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	logger *zap.Logger
}

var _ damage.ModifierHook = (*Manager)(nil)

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; hooks report unknown until Load succeeds.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: precondition violated: logger must be non-nil")
	}
	return &Manager{logger: logger}
}

// Load creates a sandboxed VM, registers the engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A previous VM is closed.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: The VM is registered; returns error on Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		ResetLimit(L, instLimit)
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()
	m.logger.Info("scripting: loaded", zap.String("dir", scriptDir), zap.Int("files", len(luaFiles)))
	return nil
}

// Close releases the VM. Later calls behave as if nothing was loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the hook
// is not defined or nothing is loaded. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	L := m.state
	if L == nil {
		m.logger.Debug("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	ResetLimit(L, m.limit)
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// AbilityModifier implements damage.ModifierHook via the ability_modifier hook.
func (m *Manager) AbilityModifier(in damage.HookInput) (float64, bool) {
	return m.modifier(AbilityHook, in)
}

// ItemModifier implements damage.ModifierHook via the item_modifier hook.
func (m *Manager) ItemModifier(in damage.HookInput) (float64, bool) {
	return m.modifier(ItemHook, in)
}

// modifier calls hook with a context table and expects a non-negative number
// or nil back. Anything else is logged and treated as unknown.
func (m *Manager) modifier(hook string, in damage.HookInput) (float64, bool) {
	ctx := m.hookContext(in)
	if ctx == nil {
		return 0, false
	}
	ret, err := m.CallHook(hook, ctx)
	if err != nil || ret == lua.LNil {
		return 0, false
	}
	n, ok := ret.(lua.LNumber)
	if !ok || n < 0 {
		m.logger.Warn("scripting: modifier hook returned a non-multiplier",
			zap.String("hook", hook),
			zap.String("value", ret.String()),
		)
		return 0, false
	}
	return float64(n), true
}

// hookContext builds the table passed to modifier hooks, or nil when no VM is
// loaded. The table holds only plain values so it outlives a reload.
func (m *Manager) hookContext(in damage.HookInput) *lua.LTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	ctx := m.state.NewTable()
	ctx.RawSetString("ability", lua.LString(in.Ability))
	ctx.RawSetString("item", lua.LString(in.Item))
	ctx.RawSetString("move_type", lua.LString(in.MoveType))
	ctx.RawSetString("power", lua.LNumber(in.Power))
	ctx.RawSetString("category", lua.LString(in.Category.String()))
	ctx.RawSetString("effectiveness", lua.LNumber(in.Effectiveness))
	return ctx
}
