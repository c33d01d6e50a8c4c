package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/content"
)

// PlayerSession is one player's persistent game state.
type PlayerSession struct {
	// UID is the unique player identifier.
	UID string
	// Name is the display name shown by hosts.
	Name string
	// Player holds derived stats and the shared HP cell.
	Player *Player
	// Masks is the player's collected mask inventory.
	Masks *MaskInventory
	// Progress tracks floor progression.
	Progress *Progression
}

// GrantMask adds a reward mask to the inventory. Already-held masks are ignored.
func (s *PlayerSession) GrantMask(m *content.Mask) error {
	if m == nil {
		return fmt.Errorf("session %s: nil mask", s.UID)
	}
	s.Masks.Collect(m)
	return nil
}

// BossDefeated forwards a boss kill to floor progression.
func (s *PlayerSession) BossDefeated(m *content.Mask) error {
	s.Progress.BossDefeated(m)
	return nil
}

// Options configures a new PlayerSession.
type Options struct {
	Base BaseStats
	// StartFloor is the floor the session begins on; zero means the lowest defined floor.
	StartFloor int
	// GrantStarter collects the registry's starter mask, which auto-equips it.
	GrantStarter bool
}

// Manager tracks all active player sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	reg     *content.Registry
	players map[string]*PlayerSession
}

// NewManager creates an empty session Manager backed by reg.
//
// Precondition: reg must be resolved.
func NewManager(reg *content.Registry) *Manager {
	return &Manager{
		reg:     reg,
		players: make(map[string]*PlayerSession),
	}
}

// AddPlayer registers a new player session.
//
// Precondition: uid must be non-empty.
// Postcondition: Returns the created PlayerSession, or an error if the UID is
// already registered or the start floor is undefined.
func (m *Manager) AddPlayer(uid, name string, opts Options) (*PlayerSession, error) {
	if uid == "" {
		return nil, fmt.Errorf("player uid must not be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[uid]; exists {
		return nil, fmt.Errorf("player %q already registered", uid)
	}

	floor := opts.StartFloor
	if floor == 0 {
		floors := m.reg.Floors()
		if len(floors) == 0 {
			return nil, fmt.Errorf("no floors defined")
		}
		floor = floors[0].Number
	}
	progress, err := NewProgression(m.reg, floor)
	if err != nil {
		return nil, err
	}

	player := NewPlayer(opts.Base)
	sess := &PlayerSession{
		UID:      uid,
		Name:     name,
		Player:   player,
		Masks:    NewMaskInventory(player),
		Progress: progress,
	}
	if opts.GrantStarter {
		if starter := m.reg.StarterMask(); starter != nil {
			sess.Masks.Collect(starter)
			player.FullHeal()
		}
	}

	m.players[uid] = sess
	return sess, nil
}

// RemovePlayer removes a player session.
//
// Postcondition: Returns an error if uid is not registered.
func (m *Manager) RemovePlayer(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.players[uid]; !exists {
		return fmt.Errorf("player %q not found", uid)
	}
	delete(m.players, uid)
	return nil
}

// GetPlayer returns the session for the given UID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) GetPlayer(uid string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.players[uid]
	return sess, ok
}

// PlayerCount returns the number of registered sessions.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
