// Package session holds the player's state that outlives a single encounter:
// derived combat stats, the shared HP cell, collected masks, and floor
// progression.
package session

import (
	"math"
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

// BaseStats are the player's stats before any mask bonus.
type BaseStats struct {
	MaxHP   int
	Attack  int
	Defense int
	Speed   int
}

// DefaultBaseStats are the stats of a fresh character.
var DefaultBaseStats = BaseStats{MaxHP: 100, Attack: 10, Defense: 10, Speed: 10}

// Player is the player's combat state. Attack, Defense, Speed, and MaxHP are
// derived from the base stats plus the equipped mask's bonus; current HP is
// the only independently mutated value. All methods are safe for concurrent use.
//
// Invariant: 0 <= CurrentHP() <= MaxHP().
type Player struct {
	mu   sync.RWMutex
	base BaseStats
	mask *content.Mask
	hp   int
}

// NewPlayer creates an unmasked player at full HP.
//
// Precondition: base.MaxHP must be > 0.
func NewPlayer(base BaseStats) *Player {
	return &Player{base: base, hp: base.MaxHP}
}

func (p *Player) bonus() content.Bonus {
	if p.mask == nil {
		return content.Bonus{}
	}
	return p.mask.Bonus
}

func (p *Player) maxHP() int { return p.base.MaxHP + p.bonus().HP }

// MaxHP returns base HP plus the equipped mask's HP bonus.
func (p *Player) MaxHP() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxHP()
}

// Attack returns base attack plus the equipped mask's bonus.
func (p *Player) Attack() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base.Attack + p.bonus().Attack
}

// Defense returns base defense plus the equipped mask's bonus.
func (p *Player) Defense() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base.Defense + p.bonus().Defense
}

// Speed returns base speed plus the equipped mask's bonus.
func (p *Player) Speed() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base.Speed + p.bonus().Speed
}

// CurrentHP returns the player's current hit points.
func (p *Player) CurrentHP() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hp
}

// IsDead reports whether current HP is zero.
func (p *Player) IsDead() bool { return p.CurrentHP() <= 0 }

// Element returns the equipped mask's element, or element.None.
func (p *Player) Element() element.Kind {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mask == nil {
		return element.None
	}
	return p.mask.Element
}

// Moves returns the equipped mask's moves, or nil without a mask.
func (p *Player) Moves() []*content.Move {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.mask == nil {
		return nil
	}
	return p.mask.Moves
}

// Mask returns the equipped mask, or nil.
func (p *Player) Mask() *content.Mask {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mask
}

// TakeDamage reduces current HP by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
func (p *Player) TakeDamage(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hp -= amount
	if p.hp < 0 {
		p.hp = 0
	}
}

// Heal restores amount HP, capped at MaxHP, and returns the HP actually restored.
//
// Precondition: amount must be >= 0.
func (p *Player) Heal(amount int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.hp
	p.hp += amount
	if limit := p.maxHP(); p.hp > limit {
		p.hp = limit
	}
	return p.hp - before
}

// FullHeal restores HP to MaxHP.
func (p *Player) FullHeal() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hp = p.maxHP()
}

// SetCurrentHP overwrites current HP, clamped to [0, MaxHP]. Used when
// restoring a saved session.
func (p *Player) SetCurrentHP(hp int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hp = clamp(hp, 0, p.maxHP())
}

// EquipMask swaps the equipped mask and rescales current HP so the player
// keeps the same fraction of MaxHP. A nil mask unequips.
//
// Postcondition: CurrentHP() == clamp(round(cur/oldMax*newMax), 1, newMax),
// or newMax when oldMax was 0.
func (p *Player) EquipMask(m *content.Mask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	oldMax := p.maxHP()
	p.mask = m
	newMax := p.maxHP()
	if oldMax <= 0 {
		p.hp = newMax
		return
	}
	ratio := float64(p.hp) / float64(oldMax)
	p.hp = clamp(int(math.RoundToEven(ratio*float64(newMax))), 1, newMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
