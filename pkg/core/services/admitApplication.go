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
	"github.com/jakechorley/camp-signup/pkg/db"
)

// AdmissionStore defines the database operations needed to admit an application
type AdmissionStore interface {
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error)
	GetPersonAssignments(ctx context.Context, pool model.Pool, personID string) ([]model.Assignment, error)
	GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error)
	WithSlotLock(ctx context.Context, pool model.Pool, slotID int64, personID string, fn func(tx db.SlotTx) error) error
}

// AdmissionRequest is one interactive application for a slot
type AdmissionRequest struct {
	PersonID string
	Pool     model.Pool
	Day      string // Ignored for trail
	SlotID   int64
}

// AdmitApplication admits a person into a slot if it still has capacity.
// Checks run in order: already applied, seaside, slot exists, then under the person and slot
// locks the accepted count is re-read and the slot rejected when full. With strict rules enabled
// the exclusion rules are re-checked against the person's history under the same locks.
func AdmitApplication(
	ctx context.Context,
	store AdmissionStore,
	logger *zap.Logger,
	cfg *config.Config,
	req AdmissionRequest,
) (*model.Assignment, error) {
	if !req.Pool.IsValid() {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrWrongPool, req.Pool)
	}
	if !req.Pool.HasDays() {
		req.Day = ""
	}

	logger.Debug("Admitting application",
		zap.String("person_id", req.PersonID),
		zap.String("pool", string(req.Pool)),
		zap.String("day", req.Day),
		zap.Int64("slot_id", req.SlotID))

	person, err := store.GetPerson(ctx, req.PersonID)
	if err != nil {
		return nil, translateStoreError("get person", err)
	}
	if !req.Pool.Admits(person) {
		return nil, fmt.Errorf("%w: %s", ErrWrongPool, req.Pool)
	}

	held, err := store.GetPersonAssignments(ctx, req.Pool, person.ID)
	if err != nil {
		return nil, translateStoreError("get assignments", err)
	}
	for _, a := range held {
		if a.Day == req.Day {
			return nil, ErrAlreadyApplied
		}
	}

	if req.Pool.HasDays() && person.Group != "" {
		overrides, err := store.GetSeasideOverrides(ctx)
		if err != nil {
			return nil, translateStoreError("get seaside overrides", err)
		}
		if allocator.NewSeasideIndex(overrides).Applies(person, req.Day) {
			return nil, ErrSeasideConflict
		}
	}

	var registry *allocator.SlotRegistry
	if cfg.StrictRules() {
		slots, err := store.GetSlots(ctx, req.Pool)
		if err != nil {
			return nil, translateStoreError("get slots", err)
		}
		registry = allocator.NewSlotRegistry(slots, cfg.Camp.Days)
	}

	var assignment *model.Assignment
	err = store.WithSlotLock(ctx, req.Pool, req.SlotID, person.ID, func(tx db.SlotTx) error {
		slot := tx.Slot()

		taken, err := tx.CountAccepted(ctx)
		if err != nil {
			return translateStoreError("count assignments", err)
		}
		if allocator.FreeCapacity(slot.Capacity, taken) <= 0 {
			return ErrSlotFull
		}

		if registry != nil {
			current, err := tx.GetPersonAssignments(ctx, person.ID)
			if err != nil {
				return translateStoreError("get assignments", err)
			}
			occupancy := allocator.NewOccupancy(nil)
			occupancy.Set(slot.ID, taken)
			state := allocator.NewState(registry, occupancy, cfg.Policy())
			ps := allocator.NewPersonState(person, registry, current)
			if rule := allocator.FirstViolation(state, ps, slot, req.Day, allocator.AdmissionRules()); rule != nil {
				return &RuleViolationError{Rule: rule.Name()}
			}
		}

		assignment = &model.Assignment{
			ID:        uuid.New().String(),
			PersonID:  person.ID,
			Pool:      req.Pool,
			Day:       req.Day,
			SlotID:    slot.ID,
			Status:    model.StatusAccepted,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.InsertAssignment(ctx, assignment); err != nil {
			return translateStoreError("insert assignment", err)
		}
		return nil
	})
	if err != nil {
		logger.Debug("Application rejected",
			zap.String("person_id", req.PersonID),
			zap.Int64("slot_id", req.SlotID),
			zap.Error(err))
		return nil, translateStoreError("lock slot", err)
	}

	logger.Info("Application admitted",
		zap.String("assignment_id", assignment.ID),
		zap.String("person_id", assignment.PersonID),
		zap.String("pool", string(assignment.Pool)),
		zap.String("day", assignment.Day),
		zap.Int64("slot_id", assignment.SlotID))

	return assignment, nil
}
