// Package content provides the static game data catalog: moves, enemy
// templates, masks, and dungeon floors, loaded from YAML and cross-linked
// by ID. Everything in a loaded Registry is read-only.
package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tithe/internal/game/element"
)

// TargetMode selects how many enemies a move hits.
type TargetMode int

const (
	// TargetSingle hits the one enemy chosen by the player.
	TargetSingle TargetMode = iota
	// TargetAll hits every living enemy in roster order.
	TargetAll
)

// String returns "single" or "all".
func (m TargetMode) String() string {
	switch m {
	case TargetSingle:
		return "single"
	case TargetAll:
		return "all"
	default:
		return "unknown"
	}
}

// UnmarshalYAML decodes "single" or "all"; an empty value means single.
func (m *TargetMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("target mode: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single":
		*m = TargetSingle
	case "all", "all_enemies":
		*m = TargetAll
	default:
		return fmt.Errorf("target mode: unknown value %q", s)
	}
	return nil
}

// Move is a named attack definition.
type Move struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Power       int          `yaml:"power"`
	Element     element.Kind `yaml:"element"`
	Target      TargetMode   `yaml:"target"`
	Description string       `yaml:"description"`
}

// Validate checks the move's invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty and Power >= 0.
func (m *Move) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("move: id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("move %q: name must not be empty", m.ID)
	}
	if m.Power < 0 {
		return fmt.Errorf("move %q: power must be >= 0, got %d", m.ID, m.Power)
	}
	return nil
}

// Enemy is a regular enemy template.
type Enemy struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Element element.Kind `yaml:"element"`
	MaxHP   int          `yaml:"max_hp"`
	Attack  int          `yaml:"attack"`
	Defense int          `yaml:"defense"`
	Speed   int          `yaml:"speed"`
	MoveIDs []string     `yaml:"moves"`

	// Moves is populated from MoveIDs when the registry is resolved.
	Moves []*Move `yaml:"-"`
}

// Validate checks the enemy's stat invariants. Move references are checked
// separately during registry resolution. An empty move list is accepted;
// such an enemy simply never acts.
func (e *Enemy) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("enemy: id must not be empty")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", e.ID)
	}
	return validateStats("enemy", e.ID, e.MaxHP, e.Attack, e.Defense, e.Speed)
}

// BossStats are the combat stats a mask uses when it is fought as a boss.
type BossStats struct {
	MaxHP   int `yaml:"max_hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
}

// Bonus holds the stat bonuses a mask grants while equipped.
type Bonus struct {
	HP      int `yaml:"hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
}

// Mask is an equippable elemental mask. A mask with Boss stats can also be
// fought as a boss, and is dropped as the reward for defeating it.
type Mask struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Element     element.Kind `yaml:"element"`
	MoveIDs     []string     `yaml:"moves"`
	Bonus       Bonus        `yaml:"bonus"`
	Boss        *BossStats   `yaml:"boss"`

	Moves []*Move `yaml:"-"`
}

// IsBoss reports whether the mask carries boss combat stats.
func (m *Mask) IsBoss() bool { return m.Boss != nil }

// Validate checks the mask's invariants.
func (m *Mask) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mask: id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("mask %q: name must not be empty", m.ID)
	}
	if m.Bonus.HP < 0 {
		return fmt.Errorf("mask %q: bonus.hp must be >= 0, got %d", m.ID, m.Bonus.HP)
	}
	if m.Boss != nil {
		return validateStats("mask", m.ID, m.Boss.MaxHP, m.Boss.Attack, m.Boss.Defense, m.Boss.Speed)
	}
	return nil
}

// Floor is one dungeon level: its random-encounter table and its boss.
type Floor struct {
	Number        int      `yaml:"number"`
	Name          string   `yaml:"name"`
	EncounterRate float64  `yaml:"encounter_rate"`
	EnemyIDs      []string `yaml:"enemies"`
	BossID        string   `yaml:"boss"`

	Enemies []*Enemy `yaml:"-"`
	Boss    *Mask    `yaml:"-"`
}

// Validate checks the floor's invariants.
func (f *Floor) Validate() error {
	if f.Number < 1 {
		return fmt.Errorf("floor: number must be >= 1, got %d", f.Number)
	}
	if f.Name == "" {
		return fmt.Errorf("floor %d: name must not be empty", f.Number)
	}
	if f.EncounterRate < 0 || f.EncounterRate > 1 {
		return fmt.Errorf("floor %d: encounter_rate must be in [0, 1], got %v", f.Number, f.EncounterRate)
	}
	if f.BossID == "" {
		return fmt.Errorf("floor %d: boss must not be empty", f.Number)
	}
	return nil
}

func validateStats(kind, id string, maxHP, attack, defense, speed int) error {
	var errs []string
	if maxHP < 1 {
		errs = append(errs, fmt.Sprintf("max_hp must be >= 1, got %d", maxHP))
	}
	if attack < 0 {
		errs = append(errs, fmt.Sprintf("attack must be >= 0, got %d", attack))
	}
	if defense < 0 {
		errs = append(errs, fmt.Sprintf("defense must be >= 0, got %d", defense))
	}
	if speed < 0 {
		errs = append(errs, fmt.Sprintf("speed must be >= 0, got %d", speed))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s %q: %s", kind, id, strings.Join(errs, "; "))
	}
	return nil
}
