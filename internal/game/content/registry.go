package content

import (
	"fmt"
	"sort"
)

// Registry holds all loaded content indexed by ID.
//
// A Registry is mutable only while loading; after Resolve succeeds it is
// treated as read-only and may be shared freely.
type Registry struct {
	moves       map[string]*Move
	enemies     map[string]*Enemy
	masks       map[string]*Mask
	floors      map[int]*Floor
	starterMask string
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		moves:   make(map[string]*Move),
		enemies: make(map[string]*Enemy),
		masks:   make(map[string]*Mask),
		floors:  make(map[int]*Floor),
	}
}

// RegisterMove validates and adds m.
//
// Postcondition: Move(m.ID) returns m; returns error if invalid or already registered.
func (r *Registry) RegisterMove(m *Move) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, exists := r.moves[m.ID]; exists {
		return fmt.Errorf("content: move ID %q already registered", m.ID)
	}
	r.moves[m.ID] = m
	return nil
}

// RegisterEnemy validates and adds e.
func (r *Registry) RegisterEnemy(e *Enemy) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, exists := r.enemies[e.ID]; exists {
		return fmt.Errorf("content: enemy ID %q already registered", e.ID)
	}
	r.enemies[e.ID] = e
	return nil
}

// RegisterMask validates and adds m.
func (r *Registry) RegisterMask(m *Mask) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, exists := r.masks[m.ID]; exists {
		return fmt.Errorf("content: mask ID %q already registered", m.ID)
	}
	r.masks[m.ID] = m
	return nil
}

// RegisterFloor validates and adds f.
func (r *Registry) RegisterFloor(f *Floor) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if _, exists := r.floors[f.Number]; exists {
		return fmt.Errorf("content: floor %d already registered", f.Number)
	}
	r.floors[f.Number] = f
	return nil
}

// SetStarterMask records the ID of the mask every new player begins with.
func (r *Registry) SetStarterMask(id string) error {
	if r.starterMask != "" && r.starterMask != id {
		return fmt.Errorf("content: starter mask already set to %q", r.starterMask)
	}
	r.starterMask = id
	return nil
}

// Resolve links every ID reference to its definition.
//
// Postcondition: Returns nil iff every referenced move, enemy, and mask exists
// and every floor boss is a mask with boss stats; on success all Moves,
// Enemies, and Boss fields are populated.
func (r *Registry) Resolve() error {
	for _, e := range r.enemies {
		moves, err := r.lookupMoves(e.MoveIDs)
		if err != nil {
			return fmt.Errorf("content: enemy %q: %w", e.ID, err)
		}
		e.Moves = moves
	}
	for _, m := range r.masks {
		moves, err := r.lookupMoves(m.MoveIDs)
		if err != nil {
			return fmt.Errorf("content: mask %q: %w", m.ID, err)
		}
		m.Moves = moves
	}
	for _, f := range r.floors {
		enemies := make([]*Enemy, 0, len(f.EnemyIDs))
		for _, id := range f.EnemyIDs {
			e, ok := r.enemies[id]
			if !ok {
				return fmt.Errorf("content: floor %d: unknown enemy %q", f.Number, id)
			}
			enemies = append(enemies, e)
		}
		f.Enemies = enemies
		boss, ok := r.masks[f.BossID]
		if !ok {
			return fmt.Errorf("content: floor %d: unknown boss mask %q", f.Number, f.BossID)
		}
		if !boss.IsBoss() {
			return fmt.Errorf("content: floor %d: mask %q has no boss stats", f.Number, f.BossID)
		}
		f.Boss = boss
	}
	if r.starterMask != "" {
		if _, ok := r.masks[r.starterMask]; !ok {
			return fmt.Errorf("content: unknown starter mask %q", r.starterMask)
		}
	}
	return nil
}

func (r *Registry) lookupMoves(ids []string) ([]*Move, error) {
	moves := make([]*Move, 0, len(ids))
	for _, id := range ids {
		m, ok := r.moves[id]
		if !ok {
			return nil, fmt.Errorf("unknown move %q", id)
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// Move returns the move with the given ID, or nil.
func (r *Registry) Move(id string) *Move { return r.moves[id] }

// Enemy returns the enemy template with the given ID, or nil.
func (r *Registry) Enemy(id string) *Enemy { return r.enemies[id] }

// Mask returns the mask with the given ID, or nil.
func (r *Registry) Mask(id string) *Mask { return r.masks[id] }

// Floor returns the floor with the given number, or nil.
func (r *Registry) Floor(number int) *Floor { return r.floors[number] }

// StarterMask returns the starter mask, or nil if none is configured.
func (r *Registry) StarterMask() *Mask {
	if r.starterMask == "" {
		return nil
	}
	return r.masks[r.starterMask]
}

// Floors returns all floors ordered by Number ascending.
func (r *Registry) Floors() []*Floor {
	out := make([]*Floor, 0, len(r.floors))
	for _, f := range r.floors {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// LastFloor reports whether number is the deepest registered floor.
func (r *Registry) LastFloor(number int) bool {
	for n := range r.floors {
		if n > number {
			return false
		}
	}
	return len(r.floors) > 0
}

// Counts returns the number of moves, enemies, masks, and floors registered.
func (r *Registry) Counts() (moves, enemies, masks, floors int) {
	return len(r.moves), len(r.enemies), len(r.masks), len(r.floors)
}
