package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/content"
)

var (
	// ErrFloorLocked is returned when descending before the floor boss is defeated.
	ErrFloorLocked = errors.New("session: floor exit is locked")
	// ErrGameComplete is returned when descending after the final boss.
	ErrGameComplete = errors.New("session: game already complete")
)

// Progression tracks which floor the player is on, whether its exit is
// unlocked, and whether the final boss has fallen.
type Progression struct {
	mu       sync.RWMutex
	reg      *content.Registry
	floor    int
	unlocked bool
	complete bool
}

// NewProgression starts progression on floor.
//
// Precondition: reg must be resolved and contain floor.
func NewProgression(reg *content.Registry, floor int) (*Progression, error) {
	if reg.Floor(floor) == nil {
		return nil, fmt.Errorf("session: floor %d not defined", floor)
	}
	return &Progression{reg: reg, floor: floor}, nil
}

// Floor returns the current floor definition.
func (p *Progression) Floor() *content.Floor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reg.Floor(p.floor)
}

// FloorNumber returns the current floor number.
func (p *Progression) FloorNumber() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.floor
}

// Unlocked reports whether the current floor's exit is open.
func (p *Progression) Unlocked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.unlocked
}

// Complete reports whether the final floor's boss has been defeated.
func (p *Progression) Complete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.complete
}

// BossDefeated records the defeat of the boss that drops mask. Defeating the
// current floor's boss unlocks its exit; on the last floor it completes the game.
//
// Postcondition: Returns true when the game became complete.
func (p *Progression) BossDefeated(mask *content.Mask) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.reg.Floor(p.floor)
	if f == nil || f.Boss == nil || mask == nil || f.Boss.ID != mask.ID {
		return false
	}
	p.unlocked = true
	if p.reg.LastFloor(p.floor) {
		p.complete = true
	}
	return p.complete
}

// Descend moves to the next floor and fully heals player.
//
// Postcondition: Returns ErrFloorLocked or ErrGameComplete without moving;
// otherwise the floor number increases and the new exit is locked.
func (p *Progression) Descend(player *Player) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.complete {
		return ErrGameComplete
	}
	if !p.unlocked {
		return ErrFloorLocked
	}
	next := p.floor + 1
	if p.reg.Floor(next) == nil {
		return fmt.Errorf("session: floor %d not defined", next)
	}
	p.floor = next
	p.unlocked = false
	player.FullHeal()
	return nil
}

// Restore sets progression state from a saved snapshot.
func (p *Progression) Restore(floor int, unlocked, complete bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reg.Floor(floor) == nil {
		return fmt.Errorf("session: floor %d not defined", floor)
	}
	p.floor = floor
	p.unlocked = unlocked
	p.complete = complete
	return nil
}
