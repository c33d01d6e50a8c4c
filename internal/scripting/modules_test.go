package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tithe/internal/game/dice"
	"github.com/cory-johannsen/tithe/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...any) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	scope := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadScope(scope, dir, 0))
	ret, err := mgr.CallHook(scope, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_WritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(dice.NewSeededSource(7), zap.New(core))

	runScript(t, mgr, `
		function do_log()
			engine.log.info("hello from lua")
			engine.log.warn("careful")
			engine.log.debug("detail")
		end
	`, "do_log")

	info := logs.FilterMessage("hello from lua").All()
	require.Len(t, info, 1)
	assert.Equal(t, zap.InfoLevel, info[0].Level)
	assert.Equal(t, "modtest_TestEngineLog_WritesToLogger", info[0].ContextMap()["scope"])
	assert.Equal(t, 1, logs.FilterMessage("careful").FilterField(zap.String("scope", "modtest_TestEngineLog_WritesToLogger")).Len())
	assert.Equal(t, 1, logs.FilterMessage("detail").Len())
}

func TestEngineDice_RollInRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function roll_many()
			for i = 1, 200 do
				local r = engine.dice.roll(6)
				if r < 1 or r > 6 then return false end
			end
			return true
		end
	`, "roll_many")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineDice_RollRejectsZeroSides(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret := runScript(t, mgr, `
		function bad_roll() return engine.dice.roll(0) end
	`, "bad_roll")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestEngineDice_ChanceExtremes(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function extremes()
			for i = 1, 50 do
				if engine.dice.chance(0) then return "zero hit" end
				if not engine.dice.chance(1.01) then return "one missed" end
			end
			return "ok"
		end
	`, "extremes")
	assert.Equal(t, lua.LString("ok"), ret)
}

func TestProperty_EngineDice_RollMatchesSides(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "roll.lua", `function roll(n) return engine.dice.roll(n) end`)
	require.NoError(t, mgr.LoadScope("roll", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.IntRange(1, 100).Draw(rt, "sides")
		ret, err := mgr.CallHook("roll", "roll", sides)
		if err != nil {
			rt.Fatalf("CallHook: %v", err)
		}
		n, ok := ret.(lua.LNumber)
		if !ok || int(n) < 1 || int(n) > sides {
			rt.Fatalf("roll(%d) = %v", sides, ret)
		}
	})
}
