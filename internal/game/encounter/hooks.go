package encounter

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/scripting"
)

// Lua hook names.
const (
	HookEncounterBegin = "on_encounter_begin"
	HookEncounterEnd   = "on_encounter_end"
	HookEnemyIntro     = "enemy_intro"
)

// LuaHooks dispatches encounter boundaries to Lua scripts. enemy_intro is
// called once per roster entry; any string it returns is narrated.
type LuaHooks struct {
	Scripts *scripting.Manager
	Logger  *zap.Logger
}

// Begin calls on_encounter_begin with the briefing, then enemy_intro per enemy.
func (h LuaHooks) Begin(b Briefing) []string {
	roster := make([]map[string]any, len(b.Roster))
	for i, c := range b.Roster {
		roster[i] = combatantTable(i, c)
	}
	if _, err := h.Scripts.CallHook(b.Scope, HookEncounterBegin, map[string]any{
		"id":      b.ID,
		"scope":   b.Scope,
		"boss":    b.Boss,
		"enemies": roster,
	}); err != nil {
		h.logger().Warn("encounter begin hook", zap.Error(err))
	}

	var lines []string
	for _, e := range roster {
		ret, err := h.Scripts.CallHook(b.Scope, HookEnemyIntro, e)
		if err != nil {
			h.logger().Warn("enemy intro hook", zap.Error(err))
			continue
		}
		if s, ok := ret.(lua.LString); ok && s != "" {
			lines = append(lines, string(s))
		}
	}
	return lines
}

// End calls on_encounter_end with the finished record.
func (h LuaHooks) End(rec Record) {
	reward := ""
	if rec.Reward != nil {
		reward = rec.Reward.ID
	}
	if _, err := h.Scripts.CallHook(rec.Scope, HookEncounterEnd, map[string]any{
		"id":      rec.ID,
		"scope":   rec.Scope,
		"boss":    rec.Boss,
		"outcome": rec.Outcome.String(),
		"event":   string(rec.Event),
		"reward":  reward,
		"healed":  rec.Healed,
		"rounds":  rec.Rounds,
	}); err != nil {
		h.logger().Warn("encounter end hook", zap.Error(err))
	}
}

func (h LuaHooks) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func combatantTable(index int, c combat.Combatant) map[string]any {
	return map[string]any{
		"index":   index + 1,
		"name":    c.Name,
		"element": c.Element.String(),
		"hp":      c.CurrentHP,
		"max_hp":  c.MaxHP,
		"attack":  c.Attack,
		"defense": c.Defense,
		"speed":   c.Speed,
		"boss":    c.IsBoss,
	}
}
