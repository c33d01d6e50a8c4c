package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/session"
)

// ErrProgressNotFound is returned when no saved progress exists for a player.
var ErrProgressNotFound = errors.New("progress not found")

// Progress is the persisted snapshot of one player session.
type Progress struct {
	UID       string
	Name      string
	Floor     int
	Unlocked  bool
	Complete  bool
	CurrentHP int
	// EquippedMask is the equipped mask ID, empty when unmasked.
	EquippedMask string
	// Masks lists collected mask IDs in collection order.
	Masks     []string
	UpdatedAt time.Time
}

// Snapshot captures the persistable state of sess.
//
// Precondition: sess must be non-nil.
func Snapshot(sess *session.PlayerSession) Progress {
	p := Progress{
		UID:       sess.UID,
		Name:      sess.Name,
		Floor:     sess.Progress.FloorNumber(),
		Unlocked:  sess.Progress.Unlocked(),
		Complete:  sess.Progress.Complete(),
		CurrentHP: sess.Player.CurrentHP(),
	}
	if m := sess.Player.Mask(); m != nil {
		p.EquippedMask = m.ID
	}
	for _, m := range sess.Masks.Masks() {
		p.Masks = append(p.Masks, m.ID)
	}
	return p
}

// Apply restores p onto sess, resolving mask IDs through reg.
//
// Precondition: sess must be freshly created with an empty inventory or hold a
// subset of p.Masks.
// Postcondition: Inventory, equipped mask, floor state, and HP match p, or an
// error names the first mask ID reg does not define.
func Apply(reg *content.Registry, sess *session.PlayerSession, p Progress) error {
	for _, id := range p.Masks {
		m := reg.Mask(id)
		if m == nil {
			return fmt.Errorf("restoring %s: unknown mask %q", p.UID, id)
		}
		sess.Masks.Collect(m)
	}
	if p.EquippedMask != "" {
		if err := sess.Masks.EquipByID(p.EquippedMask); err != nil {
			return fmt.Errorf("restoring %s: %w", p.UID, err)
		}
	} else {
		sess.Player.EquipMask(nil)
	}
	if err := sess.Progress.Restore(p.Floor, p.Unlocked, p.Complete); err != nil {
		return fmt.Errorf("restoring %s: %w", p.UID, err)
	}
	sess.Player.SetCurrentHP(p.CurrentHP)
	return nil
}

// ProgressRepository provides player progress persistence operations.
type ProgressRepository struct {
	db *pgxpool.Pool
}

// NewProgressRepository creates a ProgressRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProgressRepository(db *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Save upserts p. Masks already stored are kept; new ones are appended in order.
//
// Precondition: p.UID must be non-empty and p.Floor > 0.
func (r *ProgressRepository) Save(ctx context.Context, p Progress) error {
	if p.UID == "" {
		return fmt.Errorf("saving progress: empty uid")
	}
	var equipped *string
	if p.EquippedMask != "" {
		equipped = &p.EquippedMask
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO players (uid, name, floor, floor_unlocked, game_complete, current_hp, equipped_mask)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (uid) DO UPDATE SET
			name           = EXCLUDED.name,
			floor          = EXCLUDED.floor,
			floor_unlocked = EXCLUDED.floor_unlocked,
			game_complete  = EXCLUDED.game_complete,
			current_hp     = EXCLUDED.current_hp,
			equipped_mask  = EXCLUDED.equipped_mask,
			updated_at     = NOW()`,
		p.UID, p.Name, p.Floor, p.Unlocked, p.Complete, p.CurrentHP, equipped,
	)
	if err != nil {
		return fmt.Errorf("upserting player %s: %w", p.UID, err)
	}

	for _, id := range p.Masks {
		if _, err := tx.Exec(ctx, `
			INSERT INTO player_masks (player_uid, mask_id) VALUES ($1, $2)
			ON CONFLICT (player_uid, mask_id) DO NOTHING`,
			p.UID, id,
		); err != nil {
			return fmt.Errorf("inserting mask %s for %s: %w", id, p.UID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing progress: %w", err)
	}
	return nil
}

// Load returns the saved progress for uid.
//
// Postcondition: Returns ErrProgressNotFound if uid has never been saved.
func (r *ProgressRepository) Load(ctx context.Context, uid string) (*Progress, error) {
	var (
		p        Progress
		equipped *string
	)
	err := r.db.QueryRow(ctx, `
		SELECT uid, name, floor, floor_unlocked, game_complete, current_hp, equipped_mask, updated_at
		FROM players WHERE uid = $1`,
		uid,
	).Scan(&p.UID, &p.Name, &p.Floor, &p.Unlocked, &p.Complete, &p.CurrentHP, &equipped, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("loading progress %s: %w", uid, err)
	}
	if equipped != nil {
		p.EquippedMask = *equipped
	}

	rows, err := r.db.Query(ctx, `
		SELECT mask_id FROM player_masks WHERE player_uid = $1 ORDER BY seq ASC`,
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("loading masks for %s: %w", uid, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning masks for %s: %w", uid, err)
	}
	p.Masks = ids
	return &p, nil
}

// Delete removes all saved progress for uid.
//
// Postcondition: Returns ErrProgressNotFound if nothing was stored.
func (r *ProgressRepository) Delete(ctx context.Context, uid string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM players WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("deleting progress %s: %w", uid, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProgressNotFound
	}
	return nil
}
