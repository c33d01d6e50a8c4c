package combat

import "sort"

// TurnOrder returns the roster indexes of living combatants, fastest first.
// Combatants with equal Speed keep their roster order.
//
// Postcondition: Every returned index refers to a living combatant; Speed is
// non-increasing along the result.
func TurnOrder(roster []*Combatant) []int {
	order := make([]int, 0, len(roster))
	for i, c := range roster {
		if !c.IsDead() {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return roster[order[a]].Speed > roster[order[b]].Speed
	})
	return order
}
