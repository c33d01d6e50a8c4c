package combat

// Flee odds tuning.
const (
	FleeBaseChance  = 0.5
	FleeSpeedFactor = 0.02
	FleeMinChance   = 0.3
	FleeMaxChance   = 0.9
)

// FleeChance returns the probability that a flee attempt succeeds.
//
//	clamp(0.5 + (playerSpeed - maxEnemySpeed) * 0.02, 0.3, 0.9)
//
// Postcondition: Returns a value in [FleeMinChance, FleeMaxChance].
func FleeChance(playerSpeed, maxEnemySpeed int) float64 {
	chance := FleeBaseChance + float64(playerSpeed-maxEnemySpeed)*FleeSpeedFactor
	if chance < FleeMinChance {
		return FleeMinChance
	}
	if chance > FleeMaxChance {
		return FleeMaxChance
	}
	return chance
}

// MaxLivingSpeed returns the highest Speed among living combatants, or 0 if none are alive.
func MaxLivingSpeed(roster []*Combatant) int {
	fastest := 0
	for _, c := range roster {
		if !c.IsDead() && c.Speed > fastest {
			fastest = c.Speed
		}
	}
	return fastest
}
