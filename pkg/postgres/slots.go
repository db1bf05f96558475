package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/db"
)

const slotColumns = `id, pool, name, description, day, capacity, category, priority,
	language_restricted, older_participants, theme`

func scanSlot(row pgx.Row) (model.Slot, error) {
	var s model.Slot
	var pool string
	var capacity, priority int32
	var category *int32
	err := row.Scan(&s.ID, &pool, &s.Name, &s.Description, &s.Day, &capacity, &category, &priority,
		&s.LanguageRestricted, &s.OlderParticipants, &s.Theme)
	if err != nil {
		return s, err
	}
	s.Pool = model.Pool(pool)
	s.Capacity = int(capacity)
	s.Priority = int(priority)
	if category != nil {
		v := int(*category)
		s.Category = &v
	}
	return s, nil
}

// GetSlot retrieves a slot of a pool by id
func (d *DB) GetSlot(ctx context.Context, pool model.Pool, id int64) (*model.Slot, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+slotColumns+` FROM slot WHERE id = $1 AND pool = $2`, id, string(pool))
	s, err := scanSlot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("slot %d in pool %s: %w", id, pool, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &s, nil
}

// GetSlots retrieves the slots of a pool ordered by id
func (d *DB) GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slot
		WHERE pool = $1
		ORDER BY id
	`, string(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []model.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slots: %w", err)
	}

	return slots, nil
}
