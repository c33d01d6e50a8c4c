package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.log.debug/info/warn(msg)  structured log lines tagged with the scope
//	engine.dice.roll(n)              uniform integer in [1, n]
//	engine.dice.chance(p)            true with probability p
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	logFn := func(write func(string, ...zap.Field)) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			write(L.CheckString(1), zap.String("scope", scope))
			return 0
		})
	}
	L.SetField(logTbl, "debug", logFn(m.logger.Debug))
	L.SetField(logTbl, "info", logFn(m.logger.Info))
	L.SetField(logTbl, "warn", logFn(m.logger.Warn))
	L.SetField(engine, "log", logTbl)

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n < 1 {
			L.ArgError(1, "sides must be >= 1")
			return 0
		}
		L.Push(lua.LNumber(m.src.Intn(n) + 1))
		return 1
	}))
	L.SetField(diceTbl, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(m.src.Float64() < p))
		return 1
	}))
	L.SetField(engine, "dice", diceTbl)

	L.SetGlobal("engine", engine)
}
