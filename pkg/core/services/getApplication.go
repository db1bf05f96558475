package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// ApplicationStore defines the database operations needed to read applications
type ApplicationStore interface {
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	GetSlot(ctx context.Context, pool model.Pool, id int64) (*model.Slot, error)
	GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error)
	GetPersonAssignments(ctx context.Context, pool model.Pool, personID string) ([]model.Assignment, error)
	GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error)
}

// ApplicationView is a person's assignment for one day joined with its slot.
// Status is empty when the person holds nothing for the day.
type ApplicationView struct {
	PersonID    string       `json:"person_id"`
	FirstName   string       `json:"first_name,omitempty"`
	Surname     string       `json:"surname,omitempty"`
	Pool        model.Pool   `json:"pool"`
	Day         string       `json:"day"`
	Status      model.Status `json:"status,omitempty"`
	SlotID      int64        `json:"slot_id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Capacity    int          `json:"capacity"`
	FreeSpots   int          `json:"free_spots"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
}

// seasideView is the synthetic assignment shown for a seaside day
func seasideView(cfg *config.Config, person *model.Person, pool model.Pool, day string) *ApplicationView {
	return &ApplicationView{
		PersonID:    person.ID,
		FirstName:   person.Name,
		Surname:     person.Surname,
		Pool:        pool,
		Day:         day,
		Status:      model.StatusSeaside,
		Name:        cfg.SeasideTitle(),
		Description: cfg.Seaside.Description,
	}
}

// GetApplication returns the person's application for a pool and day. On a seaside day the
// synthetic seaside view is returned instead of any stored assignment.
func GetApplication(
	ctx context.Context,
	store ApplicationStore,
	logger *zap.Logger,
	cfg *config.Config,
	personID string,
	pool model.Pool,
	day string,
) (*ApplicationView, error) {
	if !pool.IsValid() {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrWrongPool, pool)
	}
	if !pool.HasDays() {
		day = ""
	}

	person, err := store.GetPerson(ctx, personID)
	if err != nil {
		return nil, translateStoreError("get person", err)
	}
	if !pool.Admits(person) {
		return nil, fmt.Errorf("%w: %s", ErrWrongPool, pool)
	}

	if pool.HasDays() && person.Group != "" {
		overrides, err := store.GetSeasideOverrides(ctx)
		if err != nil {
			return nil, translateStoreError("get seaside overrides", err)
		}
		if allocator.NewSeasideIndex(overrides).Applies(person, day) {
			logger.Debug("Seaside day", zap.String("person_id", person.ID), zap.String("day", day))
			return seasideView(cfg, person, pool, day), nil
		}
	}

	view, err := applicationView(ctx, store, person, pool, day)
	if err != nil {
		return nil, err
	}
	if view.Status == "" {
		return nil, fmt.Errorf("%w: no %s application on %q", ErrNotFound, pool, day)
	}
	return view, nil
}

// applicationView joins the person's assignment for the day with its slot
func applicationView(
	ctx context.Context,
	store ApplicationStore,
	person *model.Person,
	pool model.Pool,
	day string,
) (*ApplicationView, error) {
	view := &ApplicationView{
		PersonID:  person.ID,
		FirstName: person.Name,
		Surname:   person.Surname,
		Pool:      pool,
		Day:       day,
	}

	held, err := store.GetPersonAssignments(ctx, pool, person.ID)
	if err != nil {
		return nil, translateStoreError("get assignments", err)
	}

	var assignment *model.Assignment
	for i := range held {
		if held[i].Day == day {
			assignment = &held[i]
			break
		}
	}
	if assignment == nil {
		return view, nil
	}

	view.Status = assignment.Status
	view.SlotID = assignment.SlotID
	createdAt := assignment.CreatedAt
	view.CreatedAt = &createdAt

	slot, err := store.GetSlot(ctx, pool, assignment.SlotID)
	if err != nil {
		return nil, translateStoreError("get slot", err)
	}
	all, err := store.GetAssignments(ctx, pool)
	if err != nil {
		return nil, translateStoreError("get assignments", err)
	}

	view.Name = slot.Name
	view.Description = slot.Description
	view.Capacity = slot.Capacity
	view.FreeSpots = allocator.NewOccupancy(all).FreeCapacity(slot)
	return view, nil
}

// ListAppliedDays returns the days a person holds in a pool, in calendar order
func ListAppliedDays(
	ctx context.Context,
	store ApplicationStore,
	cfg *config.Config,
	personID string,
	pool model.Pool,
) ([]string, error) {
	if !pool.IsValid() {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrWrongPool, pool)
	}

	held, err := store.GetPersonAssignments(ctx, pool, personID)
	if err != nil {
		return nil, translateStoreError("get assignments", err)
	}

	days := make(map[string]bool, len(held))
	for _, a := range held {
		days[a.Day] = true
	}
	return allocator.OrderDays(days, cfg.Camp.Days), nil
}
