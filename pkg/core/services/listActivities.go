package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// ListingStore defines the database operations needed to list activities
type ListingStore interface {
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error)
	GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error)
}

// ActivityView is a slot as offered to a person
type ActivityView struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Day                string `json:"day"`
	Capacity           int    `json:"capacity"`
	FreeSpots          int    `json:"free_spots"`
	Category           *int   `json:"category,omitempty"`
	LanguageRestricted bool   `json:"language_restricted"`
	OlderParticipants  bool   `json:"older_participants"`
	Theme              string `json:"theme,omitempty"`
}

func newActivityView(slot *model.Slot, free int) ActivityView {
	return ActivityView{
		ID:                 slot.ID,
		Name:               slot.Name,
		Description:        slot.Description,
		Day:                slot.Day,
		Capacity:           slot.Capacity,
		FreeSpots:          free,
		Category:           slot.Category,
		LanguageRestricted: slot.LanguageRestricted,
		OlderParticipants:  slot.OlderParticipants,
		Theme:              slot.Theme,
	}
}

// ListActivities returns the slots a person can still pick in a pool, optionally for one day.
// Minors don't see slots for older participants, and slots without free capacity or with the
// name of a slot the person already holds are hidden. In the morning pool slots sharing a theme
// with a held slot are hidden as well, unless that would leave nothing to pick.
func ListActivities(
	ctx context.Context,
	store ListingStore,
	logger *zap.Logger,
	cfg *config.Config,
	personID string,
	pool model.Pool,
	day string,
) ([]ActivityView, error) {
	if !pool.IsValid() {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrWrongPool, pool)
	}

	person, err := store.GetPerson(ctx, personID)
	if err != nil {
		return nil, translateStoreError("get person", err)
	}
	if !pool.Admits(person) {
		return nil, fmt.Errorf("%w: %s", ErrWrongPool, pool)
	}

	slots, err := store.GetSlots(ctx, pool)
	if err != nil {
		return nil, translateStoreError("get slots", err)
	}
	assignments, err := store.GetAssignments(ctx, pool)
	if err != nil {
		return nil, translateStoreError("get assignments", err)
	}

	occupancy := allocator.NewOccupancy(assignments)
	registry := allocator.NewSlotRegistry(slots, cfg.Camp.Days)

	heldNames := make(map[string]bool)
	heldThemes := make(map[string]bool)
	for _, a := range assignments {
		if a.PersonID != person.ID {
			continue
		}
		if slot, ok := registry.Slot(a.SlotID); ok {
			heldNames[slot.Name] = true
			if slot.Theme != "" {
				heldThemes[slot.Theme] = true
			}
		}
	}

	minor := person.Age != nil && *person.Age < cfg.Policy().MinorAgeThreshold

	var base []*model.Slot
	for _, slot := range registry.Slots() {
		if day != "" && slot.Day != day {
			continue
		}
		if minor && slot.OlderParticipants {
			continue
		}
		if occupancy.FreeCapacity(slot) <= 0 {
			continue
		}
		if heldNames[slot.Name] {
			continue
		}
		base = append(base, slot)
	}

	offered := base
	if pool == model.PoolMorning {
		var themed []*model.Slot
		for _, slot := range base {
			if !heldThemes[slot.Theme] {
				themed = append(themed, slot)
			}
		}
		if len(themed) > 0 {
			offered = themed
		}
	}

	views := make([]ActivityView, 0, len(offered))
	for _, slot := range offered {
		views = append(views, newActivityView(slot, occupancy.FreeCapacity(slot)))
	}

	logger.Debug("Listed activities",
		zap.String("person_id", person.ID),
		zap.String("pool", string(pool)),
		zap.String("day", day),
		zap.Int("count", len(views)))

	return views, nil
}
