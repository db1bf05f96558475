package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/db"
)

const assignmentColumns = `id::text, person_id::text, pool, day, slot_id, status, created_at`

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryAssignments(ctx context.Context, q querier, query string, args ...any) ([]model.Assignment, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var pool, status string
		if err := rows.Scan(&a.ID, &a.PersonID, &pool, &a.Day, &a.SlotID, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Pool = model.Pool(pool)
		a.Status = model.Status(status)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// GetAssignments retrieves the assignments of a pool in creation order
func (d *DB) GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error) {
	return queryAssignments(ctx, d.pool, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE pool = $1
		ORDER BY created_at, id
	`, string(pool))
}

// GetPersonAssignments retrieves one person's assignments in a pool
func (d *DB) GetPersonAssignments(ctx context.Context, pool model.Pool, personID string) ([]model.Assignment, error) {
	return queryAssignments(ctx, d.pool, `
		SELECT `+assignmentColumns+`
		FROM assignment
		WHERE pool = $1 AND person_id = $2
		ORDER BY day
	`, string(pool), personID)
}

// InsertAssignments commits a batch in one transaction. The touched person rows and then the
// touched slot rows are locked in ascending id order, and capacity and category history are
// re-read before any insert.
func (d *DB) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	added := make(map[int64]int)
	var slotIDs []int64
	var personIDs []string
	for _, a := range assignments {
		if added[a.SlotID] == 0 {
			slotIDs = append(slotIDs, a.SlotID)
		}
		added[a.SlotID]++
		if !slices.Contains(personIDs, a.PersonID) {
			personIDs = append(personIDs, a.PersonID)
		}
	}
	slices.Sort(slotIDs)
	slices.Sort(personIDs)

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		SELECT id
		FROM person
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE
	`, personIDs); err != nil {
		return fmt.Errorf("failed to lock persons: %w", err)
	}

	capacities := make(map[int64]int, len(slotIDs))
	categories := make(map[int64]*int, len(slotIDs))
	rows, err := tx.Query(ctx, `
		SELECT id, capacity, category
		FROM slot
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, slotIDs)
	if err != nil {
		return fmt.Errorf("failed to lock slots: %w", err)
	}
	for rows.Next() {
		var id int64
		var capacity int32
		var category *int32
		if err := rows.Scan(&id, &capacity, &category); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan slot capacity: %w", err)
		}
		capacities[id] = int(capacity)
		if category != nil {
			c := int(*category)
			categories[id] = &c
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating slot capacities: %w", err)
	}

	taken, err := countAccepted(ctx, tx, slotIDs)
	if err != nil {
		return err
	}

	for _, id := range slotIDs {
		capacity, ok := capacities[id]
		if !ok {
			return fmt.Errorf("slot %d: %w", id, db.ErrNotFound)
		}
		if taken[id]+added[id] > capacity {
			return fmt.Errorf("slot %d: %w", id, db.ErrCapacityExceeded)
		}
	}

	history, err := categoryHistory(ctx, tx, personIDs)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if !history.Add(a.Pool, a.PersonID, categories[a.SlotID]) {
			return fmt.Errorf("person %s, slot %d: %w", a.PersonID, a.SlotID, db.ErrCategoryRepeated)
		}
	}

	for _, a := range assignments {
		if err := insertAssignment(ctx, tx, &a); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// categoryHistory reads the categories the given persons already hold
func categoryHistory(ctx context.Context, q querier, personIDs []string) (db.CategoryHistory, error) {
	rows, err := q.Query(ctx, `
		SELECT a.pool, a.person_id::text, s.category
		FROM assignment a
		JOIN slot s ON s.id = a.slot_id
		WHERE a.person_id = ANY($1::uuid[]) AND s.category IS NOT NULL
	`, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query category history: %w", err)
	}
	defer rows.Close()

	history := make(db.CategoryHistory)
	for rows.Next() {
		var pool, personID string
		var category int32
		if err := rows.Scan(&pool, &personID, &category); err != nil {
			return nil, fmt.Errorf("failed to scan category history: %w", err)
		}
		c := int(category)
		history.Add(model.Pool(pool), personID, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category history: %w", err)
	}

	return history, nil
}

func countAccepted(ctx context.Context, q querier, slotIDs []int64) (map[int64]int, error) {
	rows, err := q.Query(ctx, `
		SELECT slot_id, COUNT(*)
		FROM assignment
		WHERE slot_id = ANY($1) AND status = 'accepted'
		GROUP BY slot_id
	`, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	defer rows.Close()

	taken := make(map[int64]int)
	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan assignment count: %w", err)
		}
		taken[id] = int(count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment counts: %w", err)
	}

	return taken, nil
}

func insertAssignment(ctx context.Context, tx pgx.Tx, a *model.Assignment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO assignment (id, person_id, pool, day, slot_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.PersonID, string(a.Pool), a.Day, a.SlotID, string(a.Status), a.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("person %s on %q: %w", a.PersonID, a.Day, db.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// DeleteAssignment removes a person's assignment for a pool and day
func (d *DB) DeleteAssignment(ctx context.Context, pool model.Pool, personID string, day string) error {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM assignment WHERE pool = $1 AND person_id = $2 AND day = $3
	`, string(pool), personID, day)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment for person %s on %q: %w", personID, day, db.ErrNotFound)
	}
	return nil
}
