package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// BackfillTrailsOptions tunes one trail backfill
type BackfillTrailsOptions struct {
	Seed   *int64
	DryRun bool
}

// BackfillTrails places every leader without a trail into a random free trail unit
func BackfillTrails(
	ctx context.Context,
	store BatchStore,
	logger *zap.Logger,
	cfg *config.Config,
	opts BackfillTrailsOptions,
) (*BatchResult, error) {
	seed := cfg.Seed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	logger.Debug("Starting backfillTrails", zap.Int64("seed", seed), zap.Bool("dry_run", opts.DryRun))

	persons, slots, existing, _, err := loadPool(ctx, store, logger, model.PoolTrail)
	if err != nil {
		return nil, err
	}

	outcome, err := allocator.Backfill(allocator.BackfillConfig{
		Pool:     model.PoolTrail,
		Persons:  persons,
		Slots:    slots,
		Existing: existing,
		Chooser:  allocator.NewChooser(seed),
	})
	if err != nil {
		return nil, fmt.Errorf("backfill failed: %w", err)
	}

	for _, personID := range outcome.Unplaced {
		logger.Debug("No trail capacity left", zap.String("person_id", personID))
	}

	result := &BatchResult{
		Pool:    model.PoolTrail,
		Seed:    seed,
		DryRun:  opts.DryRun,
		Created: outcome.Assignments,
		Skipped: len(outcome.Unplaced),
		ValidationErrors: allocator.ValidateAssignments(allocator.ValidationInput{
			Slots:          slots,
			Persons:        persons,
			Existing:       existing,
			New:            outcome.Assignments,
			IgnorePriority: true,
		}),
	}

	if err := commitBatch(ctx, store, logger, result); err != nil {
		return nil, err
	}
	return result, nil
}
