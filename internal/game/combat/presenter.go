package combat

import "github.com/cory-johannsen/tithe/internal/game/content"

// Presenter receives the outbound notifications of an encounter. The
// resolver never blocks on presentation.
//
// Methods are invoked while the combat lock is held and must not call back
// into the Combat that issued them.
type Presenter interface {
	// RosterShown announces the enemy roster at encounter start.
	RosterShown(roster []Combatant)
	// ActionMenuReady signals that the player may submit an action.
	ActionMenuReady()
	// Hit reports one resolved player attack.
	Hit(h Hit)
	// Death reports that the enemy at roster index target died.
	Death(target int)
	// EnemyAttack reports one resolved enemy attack.
	EnemyAttack(a EnemyAttack)
	// FleeRejected reports a flee attempt that did not succeed.
	FleeRejected(reason string)
	// ActionRejected reports a submitted action refused by the resolver.
	ActionRejected(reason string)
	// EncounterEnded reports the terminal outcome and any dropped reward mask.
	EncounterEnded(outcome Outcome, reward *content.Mask)
}

// NopPresenter discards every notification.
type NopPresenter struct{}

func (NopPresenter) RosterShown([]Combatant)               {}
func (NopPresenter) ActionMenuReady()                      {}
func (NopPresenter) Hit(Hit)                               {}
func (NopPresenter) Death(int)                             {}
func (NopPresenter) EnemyAttack(EnemyAttack)               {}
func (NopPresenter) FleeRejected(string)                   {}
func (NopPresenter) ActionRejected(string)                 {}
func (NopPresenter) EncounterEnded(Outcome, *content.Mask) {}
