// Package combat implements the turn-based battle resolver: the combatant
// model, the damage formula, flee odds, turn order, and the per-encounter
// state machine that sequences player and enemy turns.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

// Outcome is the terminal result of an encounter.
type Outcome int

const (
	// OutcomeNone means the encounter has not reached a terminal state.
	OutcomeNone Outcome = iota
	Victory
	Defeat
	Fled
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Fled:
		return "fled"
	default:
		return "none"
	}
}

// Template is the unified shape of everything that can be fought: regular
// enemies and boss masks both reduce to a Template before a roster is built.
type Template struct {
	Name    string
	Element element.Kind
	MaxHP   int
	Attack  int
	Defense int
	Speed   int
	Moves   []*content.Move
	IsBoss  bool
	// RewardMask is the mask dropped when this boss is killed; nil for regular enemies.
	RewardMask *content.Mask
}

// EnemyTemplate builds a Template from a regular enemy definition.
//
// Precondition: e must be non-nil and resolved.
// Postcondition: IsBoss is false and RewardMask is nil.
func EnemyTemplate(e *content.Enemy) Template {
	return Template{
		Name:    e.Name,
		Element: e.Element,
		MaxHP:   e.MaxHP,
		Attack:  e.Attack,
		Defense: e.Defense,
		Speed:   e.Speed,
		Moves:   e.Moves,
	}
}

// BossTemplate builds a Template from a boss mask. The mask itself is the reward.
//
// Precondition: m must be non-nil and resolved.
// Postcondition: Returns a Template with IsBoss true and RewardMask == m, or an
// error if m carries no boss stats.
func BossTemplate(m *content.Mask) (Template, error) {
	if m.Boss == nil {
		return Template{}, fmt.Errorf("combat: mask %q has no boss stats", m.ID)
	}
	return Template{
		Name:       m.Name,
		Element:    m.Element,
		MaxHP:      m.Boss.MaxHP,
		Attack:     m.Boss.Attack,
		Defense:    m.Boss.Defense,
		Speed:      m.Boss.Speed,
		Moves:      m.Moves,
		IsBoss:     true,
		RewardMask: m,
	}, nil
}

// Combatant is a live enemy instance for the duration of one encounter.
// Invariant: 0 <= CurrentHP <= MaxHP.
type Combatant struct {
	Name       string
	Element    element.Kind
	MaxHP      int
	CurrentHP  int
	Attack     int
	Defense    int
	Speed      int
	Moves      []*content.Move
	IsBoss     bool
	RewardMask *content.Mask
}

// Spawn creates a live Combatant at full HP from t.
//
// Postcondition: CurrentHP == MaxHP; Moves is a copy of t.Moves sharing the
// underlying move definitions.
func (t Template) Spawn() *Combatant {
	moves := make([]*content.Move, len(t.Moves))
	copy(moves, t.Moves)
	return &Combatant{
		Name:       t.Name,
		Element:    t.Element,
		MaxHP:      t.MaxHP,
		CurrentHP:  t.MaxHP,
		Attack:     t.Attack,
		Defense:    t.Defense,
		Speed:      t.Speed,
		Moves:      moves,
		IsBoss:     t.IsBoss,
		RewardMask: t.RewardMask,
	}
}

// IsDead reports whether the combatant has no hit points left.
func (c *Combatant) IsDead() bool { return c.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
// Precondition: amount must be >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// Player is the view of the player's persistent combat stats the resolver
// needs. CurrentHP is owned by the surrounding session and shared by
// reference for the duration of the encounter.
type Player interface {
	Attack() int
	Defense() int
	Speed() int
	MaxHP() int
	CurrentHP() int
	// TakeDamage reduces current HP by amount, flooring at zero.
	TakeDamage(amount int)
	// Element is the equipped mask's element, or element.None without a mask.
	Element() element.Kind
	// Moves is the equipped mask's move list, or empty without a mask.
	Moves() []*content.Move
}
