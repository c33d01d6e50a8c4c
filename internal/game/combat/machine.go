package combat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/dice"
	"github.com/cory-johannsen/tithe/internal/game/element"
)

// State is a phase of the encounter state machine.
type State string

const (
	StateStart        State = "start"
	StatePlayerTurn   State = "player_turn"
	StatePlayerAttack State = "player_attack"
	StateEnemyTurn    State = "enemy_turn"
	StateVictory      State = "victory"
	StateDefeat       State = "defeat"
	StateFled         State = "fled"
	StateAborted      State = "aborted"
)

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	switch s {
	case StateVictory, StateDefeat, StateFled, StateAborted:
		return true
	}
	return false
}

const (
	evReady     = "ready"
	evAttack    = "attack"
	evWin       = "win"
	evEnemyTurn = "enemy_turn"
	evLose      = "lose"
	evNextRound = "next_round"
	evFlee      = "flee"
	evAbort     = "abort"
)

func newMachine(logger *zap.Logger) *fsm.FSM {
	live := []string{
		string(StateStart), string(StatePlayerTurn),
		string(StatePlayerAttack), string(StateEnemyTurn),
	}
	return fsm.NewFSM(
		string(StateStart),
		fsm.Events{
			{Name: evReady, Src: []string{string(StateStart)}, Dst: string(StatePlayerTurn)},
			{Name: evAttack, Src: []string{string(StatePlayerTurn)}, Dst: string(StatePlayerAttack)},
			{Name: evWin, Src: []string{string(StatePlayerAttack)}, Dst: string(StateVictory)},
			{Name: evEnemyTurn, Src: []string{string(StatePlayerAttack)}, Dst: string(StateEnemyTurn)},
			{Name: evLose, Src: []string{string(StateEnemyTurn)}, Dst: string(StateDefeat)},
			{Name: evNextRound, Src: []string{string(StateEnemyTurn)}, Dst: string(StatePlayerTurn)},
			{Name: evFlee, Src: []string{string(StatePlayerTurn)}, Dst: string(StateFled)},
			{Name: evAbort, Src: live, Dst: string(StateAborted)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Debug("combat state",
					zap.String("event", e.Event),
					zap.String("from", e.Src),
					zap.String("to", e.Dst),
				)
			},
		},
	)
}

// Result is handed to the encounter owner once the end delay elapses.
type Result struct {
	ID      string
	Outcome Outcome
	// Rounds is the number of player turns that were opened.
	Rounds int
	// Reward is the mask dropped by a defeated boss; nil otherwise.
	Reward *content.Mask
}

// Params configures a new Combat.
type Params struct {
	ID        string
	Player    Player
	Roster    []Template
	Source    dice.Source
	Presenter Presenter
	Logger    *zap.Logger
	Pacing    Pacing
	// OnEnd is called once, outside the combat lock, after a terminal
	// outcome and the end delay. It is not called for aborted encounters.
	OnEnd func(Result)
}

// Combat is the live state of one encounter: the roster, the shared player,
// and the state machine sequencing turns. All methods are safe for
// concurrent use.
type Combat struct {
	mu sync.Mutex

	id        string
	player    Player
	enemies   []*Combatant
	src       dice.Source
	presenter Presenter
	logger    *zap.Logger
	pacing    Pacing
	onEnd     func(Result)

	machine    *fsm.FSM
	started    bool
	round      int
	outcome    Outcome
	startTimer *DelayTimer
	endTimer   *DelayTimer
}

// New builds a Combat in StateStart. Nothing is announced until Start.
//
// Precondition: p.Player and p.Source must be non-nil; p.Roster must be non-empty.
// Postcondition: Returns a Combat whose roster holds one full-HP Combatant per
// template, in template order, or an error.
func New(p Params) (*Combat, error) {
	if p.Player == nil {
		return nil, ErrNilPlayer
	}
	if len(p.Roster) == 0 {
		return nil, ErrNoEnemies
	}
	if p.Source == nil {
		return nil, errors.New("combat: dice source is nil")
	}
	presenter := p.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("combat_id", p.ID))

	enemies := make([]*Combatant, len(p.Roster))
	for i, t := range p.Roster {
		enemies[i] = t.Spawn()
	}
	return &Combat{
		id:        p.ID,
		player:    p.Player,
		enemies:   enemies,
		src:       p.Source,
		presenter: presenter,
		logger:    logger,
		pacing:    p.Pacing,
		onEnd:     p.OnEnd,
		machine:   newMachine(logger),
	}, nil
}

// ID returns the encounter identifier.
func (c *Combat) ID() string { return c.id }

// State returns the current phase.
func (c *Combat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

// Outcome returns the terminal outcome, or OutcomeNone while live or after abort.
func (c *Combat) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Round returns the number of player turns opened so far.
func (c *Combat) Round() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round
}

// Roster returns a snapshot of the enemies in roster order.
func (c *Combat) Roster() []Combatant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// HasBoss reports whether any roster entry is a boss.
func (c *Combat) HasBoss() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasBoss()
}

// Start announces the roster and, after the start delay, opens the first player turn.
//
// Postcondition: Returns ErrAlreadyStarted on a second call.
func (c *Combat) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.logger.Info("combat started",
		zap.Int("enemies", len(c.enemies)),
		zap.Bool("boss", c.hasBoss()),
	)
	c.presenter.RosterShown(c.snapshot())
	c.mu.Unlock()

	t := After(c.pacing.StartDelay, c.openFirstTurn)
	c.mu.Lock()
	c.startTimer = t
	c.mu.Unlock()
	return nil
}

func (c *Combat) openFirstTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state() != StateStart {
		return
	}
	if err := c.fire(evReady); err != nil {
		return
	}
	c.round = 1
	c.presenter.ActionMenuReady()
}

// SubmitMove resolves the player's move against the roster and, unless the
// roster is wiped, runs the enemy turn.
//
// Precondition: moveIndex indexes the player's move list; for single-target
// moves targetIndex must name a living enemy. targetIndex is ignored for
// moves that hit all enemies.
// Postcondition: Returns ErrNotPlayerTurn, ErrInvalidMove, or ErrInvalidTarget
// on misuse with no state change; otherwise the machine has advanced to
// PlayerTurn, Victory, or Defeat.
func (c *Combat) SubmitMove(moveIndex, targetIndex int) error {
	c.mu.Lock()
	res, ended, err := c.playerMove(moveIndex, targetIndex)
	c.mu.Unlock()
	if ended {
		c.scheduleEnd(res)
	}
	return err
}

// SubmitFlee attempts to escape. Encounters containing a boss always refuse.
//
// Postcondition: Returns (true, nil) when the machine moved to StateFled;
// (false, nil) on a refused or failed attempt, which leaves the player's turn
// open; (false, ErrNotPlayerTurn) outside the player's turn.
func (c *Combat) SubmitFlee() (bool, error) {
	c.mu.Lock()
	res, fled, err := c.flee()
	c.mu.Unlock()
	if fled {
		c.scheduleEnd(res)
	}
	return fled, err
}

// Abort tears the encounter down. A live encounter moves to StateAborted
// without an outcome. Pending timers are cancelled, so OnEnd does not run
// unless it already has.
func (c *Combat) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTimer.Stop()
	c.endTimer.Stop()
	if c.state().Terminal() {
		return
	}
	if err := c.fire(evAbort); err == nil {
		c.logger.Info("combat aborted", zap.Int("round", c.round))
	}
}

func (c *Combat) state() State { return State(c.machine.Current()) }

func (c *Combat) fire(event string) error {
	if err := c.machine.Event(context.Background(), event); err != nil {
		c.logger.Error("combat transition failed", zap.String("event", event), zap.Error(err))
		return fmt.Errorf("combat: event %q: %w", event, err)
	}
	return nil
}

func (c *Combat) reject(err error, reason string) error {
	c.logger.Warn("action rejected", zap.String("reason", reason), zap.String("state", string(c.state())))
	c.presenter.ActionRejected(reason)
	return err
}

func (c *Combat) snapshot() []Combatant {
	out := make([]Combatant, len(c.enemies))
	for i, e := range c.enemies {
		out[i] = *e
	}
	return out
}

func (c *Combat) hasBoss() bool {
	for _, e := range c.enemies {
		if e.IsBoss {
			return true
		}
	}
	return false
}

func (c *Combat) allDead() bool {
	for _, e := range c.enemies {
		if !e.IsDead() {
			return false
		}
	}
	return true
}

func (c *Combat) targets(move *content.Move, targetIndex int) ([]int, error) {
	if move.Target == content.TargetAll {
		out := make([]int, 0, len(c.enemies))
		for i, e := range c.enemies {
			if !e.IsDead() {
				out = append(out, i)
			}
		}
		return out, nil
	}
	if targetIndex < 0 || targetIndex >= len(c.enemies) {
		return nil, c.reject(fmt.Errorf("%w: index %d out of range", ErrInvalidTarget, targetIndex), "no such target")
	}
	if c.enemies[targetIndex].IsDead() {
		return nil, c.reject(fmt.Errorf("%w: index %d is dead", ErrInvalidTarget, targetIndex), "that enemy is already down")
	}
	return []int{targetIndex}, nil
}

func (c *Combat) playerMove(moveIndex, targetIndex int) (Result, bool, error) {
	if c.state() != StatePlayerTurn {
		return Result{}, false, c.reject(ErrNotPlayerTurn, "wait for your turn")
	}
	moves := c.player.Moves()
	if moveIndex < 0 || moveIndex >= len(moves) {
		return Result{}, false, c.reject(fmt.Errorf("%w: index %d of %d", ErrInvalidMove, moveIndex, len(moves)), "no such move")
	}
	move := moves[moveIndex]
	hits, err := c.targets(move, targetIndex)
	if err != nil {
		return Result{}, false, err
	}

	if err := c.fire(evAttack); err != nil {
		return Result{}, false, err
	}
	for _, idx := range hits {
		c.strike(move, idx)
	}

	if c.allDead() {
		if err := c.fire(evWin); err != nil {
			return Result{}, false, err
		}
		return c.finish(Victory), true, nil
	}

	if err := c.fire(evEnemyTurn); err != nil {
		return Result{}, false, err
	}
	c.enemyTurn()

	if c.player.CurrentHP() <= 0 {
		if err := c.fire(evLose); err != nil {
			return Result{}, false, err
		}
		return c.finish(Defeat), true, nil
	}

	if err := c.fire(evNextRound); err != nil {
		return Result{}, false, err
	}
	c.round++
	c.presenter.ActionMenuReady()
	return Result{}, false, nil
}

func (c *Combat) strike(move *content.Move, idx int) {
	target := c.enemies[idx]
	mult := element.Multiplier(move.Element, target.Element)
	dmg := ResolveDamage(c.player.Attack(), move.Power, target.Defense, mult)
	target.ApplyDamage(dmg)
	c.logger.Debug("player hit",
		zap.String("move", move.ID),
		zap.String("target", target.Name),
		zap.Int("damage", dmg),
		zap.Float64("multiplier", mult),
	)
	c.presenter.Hit(Hit{
		Target:      idx,
		Move:        move,
		Amount:      dmg,
		Multiplier:  mult,
		Class:       Classify(mult),
		RemainingHP: target.CurrentHP,
	})
	if target.IsDead() {
		c.presenter.Death(idx)
	}
}

func (c *Combat) enemyTurn() {
	defElem := c.player.Element()
	for _, idx := range TurnOrder(c.enemies) {
		e := c.enemies[idx]
		if len(e.Moves) == 0 {
			c.logger.Warn("enemy has no moves; skipping", zap.String("enemy", e.Name), zap.Int("index", idx))
			continue
		}
		move := e.Moves[c.src.Intn(len(e.Moves))]
		mult := element.Multiplier(move.Element, defElem)
		dmg := ResolveDamage(e.Attack, move.Power, c.player.Defense(), mult)
		c.player.TakeDamage(dmg)
		c.logger.Debug("enemy hit",
			zap.String("enemy", e.Name),
			zap.String("move", move.ID),
			zap.Int("damage", dmg),
			zap.Int("player_hp", c.player.CurrentHP()),
		)
		c.presenter.EnemyAttack(EnemyAttack{
			Enemy:      idx,
			EnemyName:  e.Name,
			MoveName:   move.Name,
			Amount:     dmg,
			Multiplier: mult,
			Class:      Classify(mult),
			PlayerHP:   c.player.CurrentHP(),
		})
		if c.player.CurrentHP() <= 0 {
			return
		}
	}
}

func (c *Combat) flee() (Result, bool, error) {
	if c.state() != StatePlayerTurn {
		return Result{}, false, c.reject(ErrNotPlayerTurn, "wait for your turn")
	}
	if c.hasBoss() {
		c.logger.Info("flee refused: boss encounter")
		c.presenter.FleeRejected("there is no escape from a boss")
		c.presenter.ActionMenuReady()
		return Result{}, false, nil
	}
	chance := FleeChance(c.player.Speed(), MaxLivingSpeed(c.enemies))
	roll := c.src.Float64()
	c.logger.Debug("flee attempt", zap.Float64("chance", chance), zap.Float64("roll", roll))
	if roll > chance {
		c.presenter.FleeRejected("couldn't get away")
		c.presenter.ActionMenuReady()
		return Result{}, false, nil
	}
	if err := c.fire(evFlee); err != nil {
		return Result{}, false, err
	}
	return c.finish(Fled), true, nil
}

func (c *Combat) finish(o Outcome) Result {
	c.outcome = o
	res := Result{ID: c.id, Outcome: o, Rounds: c.round}
	if o == Victory {
		for _, e := range c.enemies {
			if e.IsBoss && e.RewardMask != nil {
				res.Reward = e.RewardMask
				break
			}
		}
	}
	c.logger.Info("combat finished", zap.Stringer("outcome", o), zap.Int("rounds", c.round))
	return res
}

func (c *Combat) scheduleEnd(res Result) {
	t := After(c.pacing.EndDelay, func() {
		if c.onEnd != nil {
			c.onEnd(res)
		}
	})
	c.mu.Lock()
	c.endTimer = t
	c.mu.Unlock()
}
