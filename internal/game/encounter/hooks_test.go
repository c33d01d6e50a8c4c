package encounter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/dice"
	"github.com/cory-johannsen/tithe/internal/game/encounter"
	"github.com/cory-johannsen/tithe/internal/scripting"
)

const hookScript = `
begun = 0
last_end = ""

function on_encounter_begin(info)
	begun = begun + 1
	engine.log.info("encounter " .. info.id .. " with " .. #info.enemies .. " enemies")
end

function enemy_intro(e)
	if e.boss then
		return e.name .. " looms over you"
	end
	if e.index == 1 then
		return "A " .. e.name .. " appears"
	end
	return nil
end

function on_encounter_end(rec)
	last_end = rec.outcome .. "/" .. rec.event .. "/" .. rec.reward
end

function report()
	return begun .. ":" .. last_end
end
`

func loadHookScripts(t *testing.T) *scripting.Manager {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hooks.lua"), []byte(hookScript), 0o644))
	mgr := scripting.NewManager(dice.NewSeededSource(3), zap.NewNop())
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	t.Cleanup(mgr.Close)
	return mgr
}

func TestLuaHooks_RegularEncounter(t *testing.T) {
	scripts := loadHookScripts(t)
	f := newFixture(t, func(cfg *encounter.Config) {
		cfg.Hooks = encounter.LuaHooks{Scripts: scripts}
	})
	_, err := f.mgr.BeginRegular([]*content.Enemy{weakling("Rat"), weakling("Bat")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A Rat appears"}, f.pres.lines)

	require.NoError(t, f.mgr.SubmitMove(0, 0))
	require.NoError(t, f.mgr.SubmitMove(0, 1))

	ret, err := scripts.CallHook(scripting.GlobalScope, "report")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("1:victory/combat_won/"), ret)
}

func TestLuaHooks_BossEncounter(t *testing.T) {
	scripts := loadHookScripts(t)
	f := newFixture(t, func(cfg *encounter.Config) {
		cfg.Hooks = encounter.LuaHooks{Scripts: scripts}
	})
	_, err := f.mgr.BeginBoss(bossMask())
	require.NoError(t, err)
	assert.Equal(t, []string{"Ember Mask looms over you"}, f.pres.lines)

	require.NoError(t, f.mgr.SubmitMove(0, 0))
	ret, err := scripts.CallHook(scripting.GlobalScope, "report")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("1:victory/boss_defeated/ember_mask"), ret)
}

func TestLuaHooks_ShippedScripts(t *testing.T) {
	const dir = "../../../content/scripts"
	scripts := scripting.NewManager(dice.NewSeededSource(1), zap.NewNop())
	t.Cleanup(scripts.Close)
	require.NoError(t, scripts.LoadGlobal(dir, 0))
	require.NoError(t, scripts.LoadScope("floor_3", filepath.Join(dir, "floor_3"), 0))
	hooks := encounter.LuaHooks{Scripts: scripts}

	boss := []combat.Combatant{{Name: "Inferno Mask", MaxHP: 100, CurrentHP: 100, IsBoss: true}}
	lines := hooks.Begin(encounter.Briefing{ID: "e1", Scope: "floor_1", Boss: true, Roster: boss})
	assert.Equal(t, []string{"The air thickens. Inferno Mask turns its hollow gaze on you."}, lines)

	small := []combat.Combatant{{Name: "Ember Wraith", MaxHP: 30, CurrentHP: 30}}
	assert.Empty(t, hooks.Begin(encounter.Briefing{ID: "e2", Scope: "floor_1", Roster: small}))

	lines = hooks.Begin(encounter.Briefing{ID: "e3", Scope: "floor_3", Roster: small})
	assert.Equal(t, []string{"Something moves just outside your lantern's reach."}, lines)

	assert.NotPanics(t, func() {
		hooks.End(encounter.Record{ID: "e3", Scope: "floor_3", Outcome: combat.Victory, Event: encounter.EventCombatWon})
	})
}
