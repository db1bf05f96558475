package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// CancelStore defines the database operations needed to cancel an application
type CancelStore interface {
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	DeleteAssignment(ctx context.Context, pool model.Pool, personID string, day string) error
}

// CancelApplication removes the person's assignment for a pool and day, freeing its capacity
func CancelApplication(
	ctx context.Context,
	store CancelStore,
	logger *zap.Logger,
	personID string,
	pool model.Pool,
	day string,
) error {
	if !pool.IsValid() {
		return fmt.Errorf("%w: unknown pool %q", ErrWrongPool, pool)
	}
	if !pool.HasDays() {
		day = ""
	}

	person, err := store.GetPerson(ctx, personID)
	if err != nil {
		return translateStoreError("get person", err)
	}
	if !pool.Admits(person) {
		return fmt.Errorf("%w: %s", ErrWrongPool, pool)
	}

	if err := store.DeleteAssignment(ctx, pool, person.ID, day); err != nil {
		return translateStoreError("delete assignment", err)
	}

	logger.Info("Application cancelled",
		zap.String("person_id", person.ID),
		zap.String("pool", string(pool)),
		zap.String("day", day))
	return nil
}
