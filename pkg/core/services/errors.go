package services

import (
	"errors"
	"fmt"

	"github.com/jakechorley/camp-signup/pkg/db"
)

var (
	// ErrAlreadyApplied is returned when the person already holds an assignment for the day
	ErrAlreadyApplied = errors.New("already applied for this day")

	// ErrSeasideConflict is returned when the person's group is at the seaside on the day
	ErrSeasideConflict = errors.New("group has a seaside excursion on this day")

	// ErrSlotFull is returned when the slot has no free capacity
	ErrSlotFull = errors.New("slot is full")

	// ErrNotFound is returned when the person, slot or assignment does not exist
	ErrNotFound = errors.New("not found")

	// ErrPersistence wraps storage failures. Nothing is retried.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotEligible is returned when an exclusion rule rejects the slot
	ErrNotEligible = errors.New("not eligible for slot")

	// ErrWrongPool is returned when the person's role does not allow the pool
	ErrWrongPool = errors.New("pool not available for this person")

	// ErrNoGroup is returned when a leader without a group asks for the group view
	ErrNoGroup = errors.New("person is not assigned to a group")
)

// RuleViolationError names the exclusion rule that rejected an admission
type RuleViolationError struct {
	Rule string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("%s: %s rule", ErrNotEligible, e.Rule)
}

func (e *RuleViolationError) Unwrap() error {
	return ErrNotEligible
}

// isDomainError reports whether err already belongs to the service taxonomy
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrAlreadyApplied, ErrSeasideConflict, ErrSlotFull, ErrNotFound,
		ErrPersistence, ErrNotEligible, ErrWrongPool, ErrNoGroup,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// translateStoreError maps store sentinels onto the service taxonomy
func translateStoreError(action string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDomainError(err):
		return err
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, action, err)
	case errors.Is(err, db.ErrDuplicate):
		return fmt.Errorf("%w: %s: %w", ErrAlreadyApplied, action, err)
	}
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, action, err)
}
