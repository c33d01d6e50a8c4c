package encounter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/dice"
)

// DefaultHistorySize is the number of finished encounters kept when Config.HistorySize is 0.
const DefaultHistorySize = 32

const recordTimeout = 5 * time.Second

// Config wires a Manager to the surrounding session.
type Config struct {
	Player      Player
	Inventory   InventorySink
	Progression ProgressionSink
	Source      dice.Source
	// Presenter receives combat notifications; nil discards them.
	Presenter combat.Presenter
	Logger    *zap.Logger
	Pacing    combat.Pacing
	// Hooks, Recorder, and OnEnded are optional.
	Hooks       Hooks
	Recorder    Recorder
	OnEnded     func(Record)
	HistorySize int
	// NewID generates encounter IDs; defaults to random UUIDs.
	NewID func() string
}

// Manager runs at most one encounter at a time. All methods are safe for
// concurrent use.
type Manager struct {
	cfg       Config
	presenter combat.Presenter
	logger    *zap.Logger

	mu      sync.Mutex
	active  *combat.Combat
	scope   string
	history []Record
}

// NewManager validates cfg and returns an idle Manager.
//
// Precondition: cfg.Player, cfg.Inventory, cfg.Progression, and cfg.Source must be non-nil.
func NewManager(cfg Config) (*Manager, error) {
	switch {
	case cfg.Player == nil:
		return nil, errors.New("encounter: player is required")
	case cfg.Inventory == nil:
		return nil, errors.New("encounter: inventory sink is required")
	case cfg.Progression == nil:
		return nil, errors.New("encounter: progression sink is required")
	case cfg.Source == nil:
		return nil, errors.New("encounter: dice source is required")
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	m := &Manager{cfg: cfg, presenter: cfg.Presenter, logger: cfg.Logger}
	if m.presenter == nil {
		m.presenter = combat.NopPresenter{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m, nil
}

// SetScope names the script scope (typically the current floor) passed to hooks.
func (m *Manager) SetScope(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scope = scope
}

// Active returns the live encounter, or nil.
func (m *Manager) Active() *combat.Combat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// BeginRegular starts an encounter against enemies, in the given order.
//
// Postcondition: Returns ErrNoEnemies for an empty or nil-containing list and
// ErrEncounterActive while another encounter is live; otherwise the encounter
// has been started.
func (m *Manager) BeginRegular(enemies []*content.Enemy) (*combat.Combat, error) {
	if len(enemies) == 0 {
		m.logger.Warn("encounter refused: empty enemy list")
		return nil, ErrNoEnemies
	}
	roster := make([]combat.Template, len(enemies))
	for i, e := range enemies {
		if e == nil {
			return nil, fmt.Errorf("%w: enemy %d is nil", ErrNoEnemies, i)
		}
		roster[i] = combat.EnemyTemplate(e)
	}
	return m.begin(roster)
}

// BeginBoss starts an encounter against the boss form of mask.
//
// Postcondition: Returns ErrNoBoss if mask is nil or has no boss stats, and
// ErrEncounterActive while another encounter is live.
func (m *Manager) BeginBoss(mask *content.Mask) (*combat.Combat, error) {
	if mask == nil {
		m.logger.Warn("encounter refused: no boss")
		return nil, ErrNoBoss
	}
	tmpl, err := combat.BossTemplate(mask)
	if err != nil {
		m.logger.Warn("encounter refused: mask is not a boss", zap.String("mask", mask.ID))
		return nil, fmt.Errorf("%w: %v", ErrNoBoss, err)
	}
	return m.begin([]combat.Template{tmpl})
}

// Begin starts an encounter from prebuilt combat templates. Only templates
// that carry a RewardMask hand out a reward on victory.
//
// Postcondition: Returns ErrNoEnemies for an empty roster and
// ErrEncounterActive while another encounter is live.
func (m *Manager) Begin(roster []combat.Template) (*combat.Combat, error) {
	if len(roster) == 0 {
		m.logger.Warn("encounter refused: empty roster")
		return nil, ErrNoEnemies
	}
	return m.begin(roster)
}

func (m *Manager) begin(roster []combat.Template) (*combat.Combat, error) {
	m.mu.Lock()
	if m.active != nil {
		activeID := m.active.ID()
		m.mu.Unlock()
		m.logger.Warn("encounter refused: already active", zap.String("active_id", activeID))
		return nil, ErrEncounterActive
	}

	id := m.cfg.NewID()
	scope := m.scope
	started := time.Now()
	var c *combat.Combat
	c, err := combat.New(combat.Params{
		ID:        id,
		Player:    m.cfg.Player,
		Roster:    roster,
		Source:    m.cfg.Source,
		Presenter: m.presenter,
		Logger:    m.logger,
		Pacing:    m.cfg.Pacing,
		OnEnd: func(res combat.Result) {
			m.finish(c, scope, started, res)
		},
	})
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("encounter: building combat: %w", err)
	}
	m.active = c
	m.mu.Unlock()

	briefing := Briefing{ID: id, Scope: scope, Boss: c.HasBoss(), Roster: c.Roster()}
	m.logger.Info("encounter begun",
		zap.String("encounter_id", id),
		zap.String("scope", scope),
		zap.Bool("boss", briefing.Boss),
		zap.Strings("enemies", names(briefing.Roster)),
	)
	if m.cfg.Hooks != nil {
		lines := m.cfg.Hooks.Begin(briefing)
		if n, ok := m.presenter.(Narrator); ok {
			for _, line := range lines {
				n.Narrate(line)
			}
		}
	}
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("encounter: starting combat: %w", err)
	}
	return c, nil
}

// SubmitMove forwards a move to the active encounter.
func (m *Manager) SubmitMove(moveIndex, targetIndex int) error {
	c := m.Active()
	if c == nil {
		return ErrNoActiveEncounter
	}
	return c.SubmitMove(moveIndex, targetIndex)
}

// SubmitFlee forwards a flee attempt to the active encounter.
func (m *Manager) SubmitFlee() (bool, error) {
	c := m.Active()
	if c == nil {
		return false, ErrNoActiveEncounter
	}
	return c.SubmitFlee()
}

// Abort tears down the active encounter without an outcome, sinks, or history entry.
//
// Postcondition: Returns false when nothing was active.
func (m *Manager) Abort() bool {
	m.mu.Lock()
	c := m.active
	m.active = nil
	m.mu.Unlock()
	if c == nil {
		return false
	}
	c.Abort()
	m.logger.Info("encounter aborted", zap.String("encounter_id", c.ID()))
	return true
}

// History returns finished encounters, oldest first.
func (m *Manager) History() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) finish(c *combat.Combat, scope string, started time.Time, res combat.Result) {
	roster := c.Roster()
	rec := Record{
		ID:        res.ID,
		Scope:     scope,
		Boss:      c.HasBoss(),
		Enemies:   names(roster),
		Outcome:   res.Outcome,
		Event:     EventFor(res.Outcome, res.Reward),
		Rounds:    res.Rounds,
		StartedAt: started,
		EndedAt:   time.Now(),
	}
	log := m.logger.With(zap.String("encounter_id", res.ID))

	if res.Outcome == combat.Victory {
		rec.Healed = m.cfg.Player.Heal(VictoryHeal(m.cfg.Player.MaxHP()))
		if res.Reward != nil {
			rec.Reward = res.Reward
			if err := m.cfg.Inventory.GrantMask(res.Reward); err != nil {
				log.Error("granting reward mask", zap.String("mask", res.Reward.ID), zap.Error(err))
			}
			if err := m.cfg.Progression.BossDefeated(res.Reward); err != nil {
				log.Error("recording boss defeat", zap.String("mask", res.Reward.ID), zap.Error(err))
			}
		}
	}

	m.mu.Lock()
	if m.active == c {
		m.active = nil
	}
	m.history = append(m.history, rec)
	if over := len(m.history) - m.cfg.HistorySize; over > 0 {
		m.history = append([]Record(nil), m.history[over:]...)
	}
	m.mu.Unlock()

	log.Info("encounter ended",
		zap.Stringer("outcome", rec.Outcome),
		zap.String("event", string(rec.Event)),
		zap.Int("rounds", rec.Rounds),
		zap.Int("healed", rec.Healed),
	)
	m.presenter.EncounterEnded(rec.Outcome, rec.Reward)

	if m.cfg.Hooks != nil {
		m.cfg.Hooks.End(rec)
	}
	if m.cfg.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := m.cfg.Recorder.RecordEncounter(ctx, rec); err != nil {
			log.Error("recording encounter", zap.Error(err))
		}
		cancel()
	}
	if m.cfg.OnEnded != nil {
		m.cfg.OnEnded(rec)
	}
}

func names(roster []combat.Combatant) []string {
	out := make([]string, len(roster))
	for i, c := range roster {
		out[i] = c.Name
	}
	return out
}
