package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

func TestFleeChance(t *testing.T) {
	assert.InDelta(t, 0.5, combat.FleeChance(10, 10), 1e-9)
	assert.InDelta(t, 0.6, combat.FleeChance(15, 10), 1e-9)
	assert.InDelta(t, 0.4, combat.FleeChance(10, 15), 1e-9)
	assert.InDelta(t, 0.9, combat.FleeChance(40, 0), 1e-9)
	assert.InDelta(t, 0.9, combat.FleeChance(100, 0), 1e-9)
	assert.InDelta(t, 0.3, combat.FleeChance(0, 100), 1e-9)
}

func TestProperty_FleeChance_Bounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.IntRange(0, 500).Draw(rt, "player")
		e := rapid.IntRange(0, 500).Draw(rt, "enemy")
		c := combat.FleeChance(p, e)
		if c < combat.FleeMinChance || c > combat.FleeMaxChance {
			rt.Fatalf("chance %v out of bounds", c)
		}
	})
}

func TestMaxLivingSpeed_IgnoresDead(t *testing.T) {
	fast := enemy("Fast", 10, 1, 1, 30, element.None).Spawn()
	slow := enemy("Slow", 10, 1, 1, 7, element.None).Spawn()
	fast.ApplyDamage(10)
	assert.Equal(t, 7, combat.MaxLivingSpeed([]*combat.Combatant{fast, slow}))

	slow.ApplyDamage(10)
	assert.Equal(t, 0, combat.MaxLivingSpeed([]*combat.Combatant{fast, slow}))
}
