package db

import (
	"context"
	"errors"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

var (
	// ErrNotFound is returned when a person or slot does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a person already holds an assignment for the (pool, day)
	ErrDuplicate = errors.New("assignment already exists for person, pool and day")

	// ErrCapacityExceeded is returned when a batch commit would oversell a slot
	ErrCapacityExceeded = errors.New("slot capacity exceeded")

	// ErrCategoryRepeated is returned when a batch commit would give a person a category twice
	ErrCategoryRepeated = errors.New("category already held by person")
)

// PersonStore defines the interface for person lookups
type PersonStore interface {
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	GetPersons(ctx context.Context) ([]model.Person, error)
	GetGroupMembers(ctx context.Context, group string) ([]model.Person, error)
}

// SlotStore defines the interface for slot lookups
type SlotStore interface {
	GetSlot(ctx context.Context, pool model.Pool, id int64) (*model.Slot, error)
	GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error)
}

// AssignmentStore defines the interface for assignment reads and writes
type AssignmentStore interface {
	GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error)
	GetPersonAssignments(ctx context.Context, pool model.Pool, personID string) ([]model.Assignment, error)

	// InsertAssignments commits a batch atomically. Every touched person and then every touched
	// slot is locked in ascending id order, capacity and category history are re-read, and the
	// whole batch is rejected with ErrCapacityExceeded, ErrCategoryRepeated or ErrDuplicate.
	InsertAssignments(ctx context.Context, assignments []model.Assignment) error

	DeleteAssignment(ctx context.Context, pool model.Pool, personID string, day string) error
}

// SeasideStore defines the interface for seaside override lookups
type SeasideStore interface {
	GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error)
}

// SlotLocker serialises admissions per person and per slot
type SlotLocker interface {
	// WithSlotLock runs fn while holding an exclusive lock on the person and then on the slot.
	// Admissions by other persons for other slots are not blocked. Writes made through tx are
	// discarded if fn returns an error. Returns ErrNotFound if the person or the slot is missing.
	WithSlotLock(ctx context.Context, pool model.Pool, slotID int64, personID string, fn func(tx SlotTx) error) error
}

// SlotTx is the view of a locked slot
type SlotTx interface {
	Slot() *model.Slot
	CountAccepted(ctx context.Context) (int, error)
	GetPersonAssignments(ctx context.Context, personID string) ([]model.Assignment, error)
	InsertAssignment(ctx context.Context, assignment *model.Assignment) error
}

// Database defines the interface for all database operations.
// Both the in-memory MemoryDB and postgres.DB implement this interface.
type Database interface {
	PersonStore
	SlotStore
	AssignmentStore
	SeasideStore
	SlotLocker
}

// CategoryHistory records the slot categories each person holds per pool
type CategoryHistory map[string]map[int]bool

// Add records a category for the person and reports false if it was already held.
// Slots without a category always succeed.
func (h CategoryHistory) Add(pool model.Pool, personID string, category *int) bool {
	if category == nil {
		return true
	}
	key := string(pool) + "|" + personID
	if h[key] == nil {
		h[key] = make(map[int]bool)
	}
	if h[key][*category] {
		return false
	}
	h[key][*category] = true
	return true
}
