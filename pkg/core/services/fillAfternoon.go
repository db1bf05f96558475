package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// BatchStore defines the database operations needed by the batch triggers
type BatchStore interface {
	GetPersons(ctx context.Context) ([]model.Person, error)
	GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error)
	GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error)
	GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error)
	InsertAssignments(ctx context.Context, assignments []model.Assignment) error
}

// BatchResult summarises a batch trigger
type BatchResult struct {
	Pool             model.Pool
	Seed             int64
	DryRun           bool
	Success          bool
	Committed        bool
	Created          []model.Assignment
	Skipped          int // visits or persons left without an assignment
	ValidationErrors []allocator.ValidationError
}

// FillAfternoonOptions tunes one afternoon pass
type FillAfternoonOptions struct {
	// MaxPerPerson overrides the configured quota when set
	MaxPerPerson *int

	// Seed overrides the configured seed when set
	Seed *int64

	DryRun bool
}

// FillAfternoon assigns non-leaders to afternoon slots in one greedy pass and commits the
// new assignments atomically. Persons and days already covered are skipped, so re-running is a no-op.
func FillAfternoon(
	ctx context.Context,
	store BatchStore,
	logger *zap.Logger,
	cfg *config.Config,
	opts FillAfternoonOptions,
) (*BatchResult, error) {
	maxPerPerson := cfg.MaxPerPerson()
	if opts.MaxPerPerson != nil {
		maxPerPerson = *opts.MaxPerPerson
	}
	seed := cfg.Seed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	logger.Debug("Starting fillAfternoon",
		zap.Int("max_per_person", maxPerPerson),
		zap.Int64("seed", seed),
		zap.Bool("dry_run", opts.DryRun))

	persons, slots, existing, overrides, err := loadPool(ctx, store, logger, model.PoolAfternoon)
	if err != nil {
		return nil, err
	}

	logger.Info("Running afternoon allocation",
		zap.Int("persons", len(persons)),
		zap.Int("slots", len(slots)),
		zap.Int("existing", len(existing)))

	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Pool:             model.PoolAfternoon,
		Persons:          persons,
		Slots:            slots,
		Existing:         existing,
		SeasideOverrides: overrides,
		DayOrder:         cfg.Camp.Days,
		MaxPerPerson:     maxPerPerson,
		Policy:           cfg.Policy(),
		Chooser:          allocator.NewChooser(seed),
	})
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	for _, u := range outcome.Unplaced {
		logger.Debug("No candidate slot", zap.String("person_id", u.PersonID), zap.String("day", u.Day))
	}

	result := &BatchResult{
		Pool:             model.PoolAfternoon,
		Seed:             seed,
		DryRun:           opts.DryRun,
		Created:          outcome.Assignments,
		Skipped:          len(outcome.Unplaced),
		ValidationErrors: outcome.ValidationErrors,
	}

	if err := commitBatch(ctx, store, logger, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadPool fetches the eligible persons and the pool state
func loadPool(
	ctx context.Context,
	store BatchStore,
	logger *zap.Logger,
	pool model.Pool,
) ([]model.Person, []model.Slot, []model.Assignment, []model.SeasideOverride, error) {
	allPersons, err := store.GetPersons(ctx)
	if err != nil {
		return nil, nil, nil, nil, translateStoreError("fetch persons", err)
	}
	var persons []model.Person
	for _, p := range allPersons {
		if pool.Admits(&p) {
			persons = append(persons, p)
		}
	}

	slots, err := store.GetSlots(ctx, pool)
	if err != nil {
		return nil, nil, nil, nil, translateStoreError("fetch slots", err)
	}

	existing, err := store.GetAssignments(ctx, pool)
	if err != nil {
		return nil, nil, nil, nil, translateStoreError("fetch assignments", err)
	}

	overrides, err := store.GetSeasideOverrides(ctx)
	if err != nil {
		return nil, nil, nil, nil, translateStoreError("fetch seaside overrides", err)
	}

	logger.Debug("Loaded pool",
		zap.String("pool", string(pool)),
		zap.Int("persons", len(persons)),
		zap.Int("slots", len(slots)),
		zap.Int("existing", len(existing)),
		zap.Int("seaside_overrides", len(overrides)))

	return persons, slots, existing, overrides, nil
}

// commitBatch stamps ids and writes the batch unless it is a dry run or the pass itself broke
// an invariant. Violations among already stored assignments are logged but don't block the pass.
func commitBatch(ctx context.Context, store BatchStore, logger *zap.Logger, result *BatchResult) error {
	blocking := allocator.BlockingErrors(result.ValidationErrors)
	result.Success = len(blocking) == 0

	logger.Info("Allocation completed",
		zap.String("pool", string(result.Pool)),
		zap.Bool("success", result.Success),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped),
		zap.Int("validation_errors", len(blocking)),
		zap.Int("existing_violations", len(result.ValidationErrors)-len(blocking)))

	for _, verr := range result.ValidationErrors {
		msg := "Validation error"
		if verr.PreExisting {
			msg = "Stored assignments violate invariant"
		}
		logger.Warn(msg,
			zap.String("invariant", verr.Invariant),
			zap.String("person_id", verr.PersonID),
			zap.Int64("slot_id", verr.SlotID),
			zap.String("day", verr.Day),
			zap.String("description", verr.Description))
	}

	now := time.Now().UTC()
	for i := range result.Created {
		result.Created[i].ID = uuid.New().String()
		result.Created[i].CreatedAt = now
	}

	switch {
	case result.DryRun:
		logger.Info("Dry run mode - assignments not saved")
		return nil
	case !result.Success:
		logger.Warn("Allocation failed validation - not saving to database")
		return nil
	case len(result.Created) == 0:
		logger.Info("Nothing to save")
		return nil
	}

	if err := store.InsertAssignments(ctx, result.Created); err != nil {
		logger.Error("Failed to save assignments", zap.Error(err))
		return fmt.Errorf("%w: failed to save assignments: %w", ErrPersistence, err)
	}
	result.Committed = true
	logger.Info("Assignments saved", zap.Int("count", len(result.Created)))
	return nil
}
