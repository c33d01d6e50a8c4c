// Package encounter owns the begin/exit contract around a combat: at most one
// active encounter, the victory heal, reward and progression hand-off, Lua
// lifecycle hooks, and a bounded outcome history.
package encounter

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
)

var (
	// ErrEncounterActive is returned when an encounter begins while another is live.
	ErrEncounterActive = errors.New("encounter: an encounter is already active")
	// ErrNoEnemies is returned when a regular encounter is requested with no enemies.
	ErrNoEnemies = errors.New("encounter: no enemies supplied")
	// ErrNoBoss is returned when a boss encounter is requested without a usable boss.
	ErrNoBoss = errors.New("encounter: no boss supplied")
	// ErrNoActiveEncounter is returned when an action arrives with no live encounter.
	ErrNoActiveEncounter = errors.New("encounter: no active encounter")
)

// VictoryHealFraction is the share of max HP restored after a victory.
const VictoryHealFraction = 0.25

// VictoryHeal returns round(VictoryHealFraction * maxHP), rounding half to even.
func VictoryHeal(maxHP int) int {
	return int(math.RoundToEven(VictoryHealFraction * float64(maxHP)))
}

// Event is the notification emitted to the surrounding game when an encounter ends.
type Event string

const (
	EventCombatWon      Event = "combat_won"
	EventBossDefeated   Event = "boss_defeated"
	EventPlayerDefeated Event = "player_defeated"
	EventFled           Event = "combat_fled"
)

// EventFor maps a terminal result to its exit event. A victory that drops a
// reward mask is a boss defeat; any other victory is a plain win.
func EventFor(outcome combat.Outcome, reward *content.Mask) Event {
	switch outcome {
	case combat.Victory:
		if reward != nil {
			return EventBossDefeated
		}
		return EventCombatWon
	case combat.Defeat:
		return EventPlayerDefeated
	default:
		return EventFled
	}
}

// Player is the session-owned player state an encounter reads and mutates.
type Player interface {
	combat.Player
	// Heal restores up to amount HP, capped at MaxHP, and returns the HP restored.
	Heal(amount int) int
}

// InventorySink receives reward masks.
type InventorySink interface {
	GrantMask(m *content.Mask) error
}

// ProgressionSink is told when a boss falls so the floor exit can unlock.
type ProgressionSink interface {
	BossDefeated(m *content.Mask) error
}

// Recorder persists finished encounters.
type Recorder interface {
	RecordEncounter(ctx context.Context, rec Record) error
}

// Narrator is an optional Presenter extension that receives flavor lines
// produced by lifecycle hooks.
type Narrator interface {
	Narrate(line string)
}

// Record summarizes one finished encounter.
type Record struct {
	ID      string
	Scope   string
	Boss    bool
	Enemies []string
	Outcome combat.Outcome
	Event   Event
	// Reward is the mask granted for a boss defeat; nil otherwise.
	Reward *content.Mask
	// Healed is the HP actually restored by the victory heal.
	Healed    int
	Rounds    int
	StartedAt time.Time
	EndedAt   time.Time
}

// Briefing describes an encounter that is about to start.
type Briefing struct {
	ID     string
	Scope  string
	Boss   bool
	Roster []combat.Combatant
}

// Hooks observe encounter boundaries. Begin may return flavor lines to narrate.
type Hooks interface {
	Begin(b Briefing) []string
	End(rec Record)
}
