package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/session"
)

// saveTimeout bounds each progress write triggered by an encounter outcome.
const saveTimeout = 5 * time.Second

// PersistentSession forwards reward and progression events to a PlayerSession
// and saves a fresh snapshot after each one. It satisfies the encounter
// InventorySink and ProgressionSink contracts.
type PersistentSession struct {
	Session *session.PlayerSession
	Repo    *ProgressRepository
	Logger  *zap.Logger
}

// GrantMask collects m and persists the session.
func (s *PersistentSession) GrantMask(m *content.Mask) error {
	if err := s.Session.GrantMask(m); err != nil {
		return err
	}
	return s.Save(context.Background())
}

// BossDefeated records the boss kill and persists the session.
func (s *PersistentSession) BossDefeated(m *content.Mask) error {
	if err := s.Session.BossDefeated(m); err != nil {
		return err
	}
	return s.Save(context.Background())
}

// Save writes the current session snapshot.
func (s *PersistentSession) Save(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	snap := Snapshot(s.Session)
	if err := s.Repo.Save(ctx, snap); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Debug("progress saved",
			zap.String("uid", snap.UID),
			zap.Int("floor", snap.Floor),
			zap.Int("masks", len(snap.Masks)),
		)
	}
	return nil
}
