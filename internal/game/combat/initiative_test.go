package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

func TestTurnOrder_FastestFirstStableOnTies(t *testing.T) {
	roster := []*combat.Combatant{
		enemy("A", 10, 1, 1, 5, element.None).Spawn(),
		enemy("B", 10, 1, 1, 20, element.None).Spawn(),
		enemy("C", 10, 1, 1, 20, element.None).Spawn(),
		enemy("D", 10, 1, 1, 12, element.None).Spawn(),
	}
	assert.Equal(t, []int{1, 2, 3, 0}, combat.TurnOrder(roster))
}

func TestTurnOrder_SkipsDead(t *testing.T) {
	roster := []*combat.Combatant{
		enemy("A", 10, 1, 1, 5, element.None).Spawn(),
		enemy("B", 10, 1, 1, 20, element.None).Spawn(),
	}
	roster[1].ApplyDamage(10)
	assert.Equal(t, []int{0}, combat.TurnOrder(roster))
}

func TestProperty_TurnOrder_NonIncreasingSpeed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		speeds := rapid.SliceOfN(rapid.IntRange(0, 30), 1, 6).Draw(rt, "speeds")
		roster := make([]*combat.Combatant, len(speeds))
		for i, s := range speeds {
			roster[i] = enemy("e", 10, 1, 1, s, element.None).Spawn()
		}
		order := combat.TurnOrder(roster)
		if len(order) != len(roster) {
			rt.Fatalf("order has %d entries, want %d", len(order), len(roster))
		}
		for i := 1; i < len(order); i++ {
			prev, cur := roster[order[i-1]], roster[order[i]]
			if prev.Speed < cur.Speed {
				rt.Fatalf("speed increased at %d", i)
			}
			if prev.Speed == cur.Speed && order[i-1] > order[i] {
				rt.Fatalf("tie not stable at %d", i)
			}
		}
	})
}
