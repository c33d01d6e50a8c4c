package combat_test

import (
	"sync"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

type fakePlayer struct {
	attack, defense, speed int
	maxHP, hp              int
	elem                   element.Kind
	moves                  []*content.Move
}

func (p *fakePlayer) Attack() int            { return p.attack }
func (p *fakePlayer) Defense() int           { return p.defense }
func (p *fakePlayer) Speed() int             { return p.speed }
func (p *fakePlayer) MaxHP() int             { return p.maxHP }
func (p *fakePlayer) CurrentHP() int         { return p.hp }
func (p *fakePlayer) Element() element.Kind  { return p.elem }
func (p *fakePlayer) Moves() []*content.Move { return p.moves }
func (p *fakePlayer) TakeDamage(n int) {
	p.hp -= n
	if p.hp < 0 {
		p.hp = 0
	}
}

// scriptedSource replays fixed draws. An empty int queue yields 0; an empty
// float queue panics so tests notice an unexpected flee roll.
type scriptedSource struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
	floatN int
}

func (s *scriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floatN++
	if len(s.floats) == 0 {
		panic("scriptedSource: unexpected Float64 draw")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

type recorder struct {
	mu      sync.Mutex
	events  []string
	hits    []combat.Hit
	deaths  []int
	attacks []combat.EnemyAttack
	flees   []string
	rejects []string
	roster  []combat.Combatant
	menus   int
	outcome combat.Outcome
	reward  *content.Mask
}

func (r *recorder) add(ev string) { r.events = append(r.events, ev) }

func (r *recorder) RosterShown(roster []combat.Combatant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("roster")
	r.roster = roster
}

func (r *recorder) ActionMenuReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("menu")
	r.menus++
}

func (r *recorder) Hit(h combat.Hit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("hit")
	r.hits = append(r.hits, h)
}

func (r *recorder) Death(target int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("death")
	r.deaths = append(r.deaths, target)
}

func (r *recorder) EnemyAttack(a combat.EnemyAttack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("enemy_attack")
	r.attacks = append(r.attacks, a)
}

func (r *recorder) FleeRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("flee_rejected")
	r.flees = append(r.flees, reason)
}

func (r *recorder) ActionRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("rejected")
	r.rejects = append(r.rejects, reason)
}

func (r *recorder) EncounterEnded(o combat.Outcome, reward *content.Mask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add("ended")
	r.outcome = o
	r.reward = reward
}

func (r *recorder) menuCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.menus
}

func move(id string, power int, elem element.Kind, target content.TargetMode) *content.Move {
	return &content.Move{ID: id, Name: id, Power: power, Element: elem, Target: target}
}

func enemy(name string, hp, atk, def, spd int, elem element.Kind, moves ...*content.Move) combat.Template {
	return combat.Template{Name: name, Element: elem, MaxHP: hp, Attack: atk, Defense: def, Speed: spd, Moves: moves}
}
