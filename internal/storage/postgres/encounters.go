package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tithe/internal/game/encounter"
)

// EncounterRow is one stored encounter outcome.
type EncounterRow struct {
	ID        string
	PlayerUID string
	Scope     string
	Boss      bool
	Enemies   []string
	Outcome   string
	Event     string
	// RewardMask is the granted mask ID, empty when nothing dropped.
	RewardMask string
	Healed     int
	Rounds     int
	StartedAt  time.Time
	EndedAt    time.Time
}

// EncounterRepository stores finished encounters.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// Insert stores rec for playerUID. Re-inserting the same ID is a no-op.
//
// Precondition: rec.ID must be non-empty.
func (r *EncounterRepository) Insert(ctx context.Context, playerUID string, rec encounter.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("inserting encounter: empty id")
	}
	var reward *string
	if rec.Reward != nil {
		reward = &rec.Reward.ID
	}
	enemies := rec.Enemies
	if enemies == nil {
		enemies = []string{}
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO encounters
			(id, player_uid, scope, boss, enemies, outcome, event, reward_mask, healed, rounds, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, playerUID, rec.Scope, rec.Boss, enemies, rec.Outcome.String(), string(rec.Event),
		reward, rec.Healed, rec.Rounds, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit encounters for playerUID, newest first.
//
// Precondition: limit must be > 0.
func (r *EncounterRepository) Recent(ctx context.Context, playerUID string, limit int) ([]EncounterRow, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("listing encounters: limit must be > 0, got %d", limit)
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, player_uid, scope, boss, enemies, outcome, event, COALESCE(reward_mask, ''),
		       healed, rounds, started_at, ended_at
		FROM encounters WHERE player_uid = $1
		ORDER BY ended_at DESC, id DESC
		LIMIT $2`,
		playerUID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters for %s: %w", playerUID, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EncounterRow, error) {
		var e EncounterRow
		err := row.Scan(&e.ID, &e.PlayerUID, &e.Scope, &e.Boss, &e.Enemies, &e.Outcome, &e.Event,
			&e.RewardMask, &e.Healed, &e.Rounds, &e.StartedAt, &e.EndedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounters for %s: %w", playerUID, err)
	}
	return out, nil
}

// ForPlayer returns an encounter.Recorder that stores records under playerUID.
func (r *EncounterRepository) ForPlayer(playerUID string) encounter.Recorder {
	return playerRecorder{repo: r, uid: playerUID}
}

type playerRecorder struct {
	repo *EncounterRepository
	uid  string
}

func (p playerRecorder) RecordEncounter(ctx context.Context, rec encounter.Record) error {
	return p.repo.Insert(ctx, p.uid, rec)
}
