package combat

import (
	"math"

	"github.com/cory-johannsen/tithe/internal/game/content"
)

// MultiplierClass buckets an effectiveness multiplier for display.
type MultiplierClass int

const (
	Neutral MultiplierClass = iota
	// Weak means the defender is weak to the attack (multiplier > 1).
	Weak
	// Resist means the defender resists the attack (multiplier < 1).
	Resist
)

// String returns "weak", "resist", or "neutral".
func (m MultiplierClass) String() string {
	switch m {
	case Weak:
		return "weak"
	case Resist:
		return "resist"
	default:
		return "neutral"
	}
}

// Classify maps a multiplier to its display class.
//
// Postcondition: > 1.0 is Weak, < 1.0 is Resist, exactly 1.0 is Neutral.
func Classify(multiplier float64) MultiplierClass {
	switch {
	case multiplier > 1.0:
		return Weak
	case multiplier < 1.0:
		return Resist
	default:
		return Neutral
	}
}

// ResolveDamage computes one hit's damage:
//
//	max(1, round((attack + power - defense) * multiplier))
//
// Rounding is half-to-even, so 2.5 rounds to 2 and 3.5 rounds to 4.
//
// Postcondition: Returns >= 1.
func ResolveDamage(attack, power, defense int, multiplier float64) int {
	raw := math.RoundToEven(float64(attack+power-defense) * multiplier)
	if raw < 1 {
		return 1
	}
	return int(raw)
}

// Hit describes one resolved player attack against one enemy.
type Hit struct {
	// Target is the enemy's roster index.
	Target     int
	Move       *content.Move
	Amount     int
	Multiplier float64
	Class      MultiplierClass
	// RemainingHP is the target's HP after the hit.
	RemainingHP int
}

// EnemyAttack describes one resolved enemy attack against the player.
type EnemyAttack struct {
	// Enemy is the attacker's roster index.
	Enemy      int
	EnemyName  string
	MoveName   string
	Amount     int
	Multiplier float64
	Class      MultiplierClass
	// PlayerHP is the player's HP after the hit.
	PlayerHP int
}
