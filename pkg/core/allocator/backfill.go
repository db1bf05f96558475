package allocator

import (
	"errors"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// BackfillConfig contains the inputs of a random backfill over a dayless pool
type BackfillConfig struct {
	Pool model.Pool

	// Persons eligible for the pool, in store order. Anyone already holding an
	// assignment in Existing is skipped.
	Persons []model.Person

	Slots    []model.Slot
	Existing []model.Assignment
	Chooser  Chooser
}

// BackfillOutcome represents the result of a backfill
type BackfillOutcome struct {
	Assignments []model.Assignment

	// Unplaced are the person ids left over once capacity ran out
	Unplaced []string
}

// Backfill expands every free capacity unit into one entry, shuffles the entries and pairs them
// with the unassigned persons in order. No priority, category or day logic applies; each person
// receives at most one assignment and the excess stays unassigned.
func Backfill(config BackfillConfig) (*BackfillOutcome, error) {
	if config.Chooser == nil {
		return nil, errors.New("backfill requires a chooser")
	}

	holders := make(map[string]bool)
	for _, a := range config.Existing {
		holders[a.PersonID] = true
	}

	var pending []*model.Person
	for i := range config.Persons {
		if !holders[config.Persons[i].ID] {
			pending = append(pending, &config.Persons[i])
		}
	}

	occupancy := NewOccupancy(config.Existing)
	var units []*model.Slot
	for i := range config.Slots {
		slot := &config.Slots[i]
		for range occupancy.FreeCapacity(slot) {
			units = append(units, slot)
		}
	}

	config.Chooser.Shuffle(len(units), func(i, j int) {
		units[i], units[j] = units[j], units[i]
	})

	outcome := &BackfillOutcome{
		Assignments: []model.Assignment{},
		Unplaced:    []string{},
	}
	for i, person := range pending {
		if i >= len(units) {
			outcome.Unplaced = append(outcome.Unplaced, person.ID)
			continue
		}
		outcome.Assignments = append(outcome.Assignments, model.Assignment{
			PersonID: person.ID,
			Pool:     config.Pool,
			Day:      units[i].Day,
			SlotID:   units[i].ID,
			Status:   model.StatusAccepted,
		})
	}

	return outcome, nil
}
