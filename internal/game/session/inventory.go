package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/content"
)

// MaskInventory is the ordered set of masks the player has collected.
// The first mask collected is equipped automatically.
type MaskInventory struct {
	mu     sync.RWMutex
	player *Player
	masks  []*content.Mask
}

// NewMaskInventory creates an empty inventory that equips onto player.
//
// Precondition: player must be non-nil.
func NewMaskInventory(player *Player) *MaskInventory {
	return &MaskInventory{player: player}
}

// Collect adds m unless a mask with the same ID is already held.
//
// Postcondition: Returns true if m was added. If it is the first mask, it is equipped.
func (inv *MaskInventory) Collect(m *content.Mask) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for _, held := range inv.masks {
		if held.ID == m.ID {
			return false
		}
	}
	inv.masks = append(inv.masks, m)
	if len(inv.masks) == 1 {
		inv.player.EquipMask(m)
	}
	return true
}

// Has reports whether a mask with id has been collected.
func (inv *MaskInventory) Has(id string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, held := range inv.masks {
		if held.ID == id {
			return true
		}
	}
	return false
}

// Masks returns the collected masks in collection order.
func (inv *MaskInventory) Masks() []*content.Mask {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*content.Mask, len(inv.masks))
	copy(out, inv.masks)
	return out
}

// Len returns the number of collected masks.
func (inv *MaskInventory) Len() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.masks)
}

// Equip equips the collected mask at index.
//
// Postcondition: Returns an error if index is out of range; otherwise the mask is equipped.
func (inv *MaskInventory) Equip(index int) error {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	if index < 0 || index >= len(inv.masks) {
		return fmt.Errorf("mask index %d out of range [0,%d)", index, len(inv.masks))
	}
	inv.player.EquipMask(inv.masks[index])
	return nil
}

// EquipByID equips a collected mask by ID.
//
// Postcondition: Returns an error if no collected mask has id.
func (inv *MaskInventory) EquipByID(id string) error {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, held := range inv.masks {
		if held.ID == id {
			inv.player.EquipMask(held)
			return nil
		}
	}
	return fmt.Errorf("mask %q not collected", id)
}
