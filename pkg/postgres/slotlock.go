package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/db"
)

// WithSlotLock runs fn inside a transaction holding row locks on the person and then the slot.
// The transaction commits only if fn returns nil.
func (d *DB) WithSlotLock(ctx context.Context, pool model.Pool, slotID int64, personID string, fn func(tx db.SlotTx) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int
	err = tx.QueryRow(ctx, `SELECT 1 FROM person WHERE id = $1 FOR UPDATE`, personID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("person %s: %w", personID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock person: %w", err)
	}

	row := tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM slot WHERE id = $1 AND pool = $2 FOR UPDATE`, slotID, string(pool))
	slot, err := scanSlot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("slot %d in pool %s: %w", slotID, pool, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock slot: %w", err)
	}

	if err := fn(&slotTx{tx: tx, slot: &slot}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type slotTx struct {
	tx   pgx.Tx
	slot *model.Slot
}

func (s *slotTx) Slot() *model.Slot {
	return s.slot
}

func (s *slotTx) CountAccepted(ctx context.Context) (int, error) {
	taken, err := countAccepted(ctx, s.tx, []int64{s.slot.ID})
	if err != nil {
		return 0, err
	}
	return taken[s.slot.ID], nil
}

func (s *slotTx) GetPersonAssignments(ctx context.Context, personID string) ([]model.Assignment, error) {
	return queryAssignments(ctx, s.tx, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE pool = $1 AND person_id = $2
		ORDER BY day
	`, string(s.slot.Pool), personID)
}

func (s *slotTx) InsertAssignment(ctx context.Context, assignment *model.Assignment) error {
	return insertAssignment(ctx, s.tx, assignment)
}
