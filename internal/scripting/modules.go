package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L:
//
//	engine.log.debug(msg) / info(msg) / warn(msg)
//	engine.category.physical / special
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
	} {
		emit := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			emit("lua: " + L.CheckString(1))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	cat := L.NewTable()
	L.SetField(cat, "physical", lua.LString("physical"))
	L.SetField(cat, "special", lua.LString("special"))
	L.SetField(engine, "category", cat)

	L.SetGlobal("engine", engine)
}
