package allocator

import (
	"errors"
	"fmt"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// AllocationConfig contains the inputs of one batch pass over a pool
type AllocationConfig struct {
	// Pool stamped on the produced assignments
	Pool model.Pool

	// Persons to fill, visited in this order on every day
	Persons []model.Person

	// Slots of the pool
	Slots []model.Slot

	// Existing assignments of the pool (consume capacity, days, categories and quota)
	Existing []model.Assignment

	// SeasideOverrides remove whole days for a group
	SeasideOverrides []model.SeasideOverride

	// DayOrder is the camp calendar used to order the pass
	DayOrder []string

	// MaxPerPerson is the per-period quota including existing assignments
	MaxPerPerson int

	// Policy configures the language and age rules
	Policy Policy

	// Rules override DefaultRules when set
	Rules []Rule

	// Chooser breaks ties between equally ranked slots
	Chooser Chooser
}

// Unplaced is a (person, day) visit that found no candidate slot
type Unplaced struct {
	PersonID string
	Day      string
}

// AllocationOutcome represents the result of a batch pass
type AllocationOutcome struct {
	// Assignments created by this pass, in commit order. IDs are left for the caller.
	Assignments []model.Assignment

	// Unplaced lists the visits that had no eligible candidate
	Unplaced []Unplaced

	// ValidationErrors from checking existing plus new assignments
	ValidationErrors []ValidationError
}

// Allocate runs a single greedy pass: for each day in calendar order and each person in input
// order, skip the person if their quota is used, they already hold that day, or their group is at
// the seaside; otherwise pick the best eligible slot and commit it to the running state.
// Under-allocation is an accepted outcome, not an error.
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	if config.Chooser == nil {
		return nil, errors.New("allocation requires a chooser")
	}
	if config.MaxPerPerson < 0 {
		return nil, fmt.Errorf("max per person must not be negative, got %d", config.MaxPerPerson)
	}

	rules := config.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	registry := NewSlotRegistry(config.Slots, config.DayOrder)
	occupancy := NewOccupancy(config.Existing)
	state := NewState(registry, occupancy, config.Policy)
	seaside := NewSeasideIndex(config.SeasideOverrides)

	existingByPerson := groupAssignments(config.Existing)
	people := make([]*PersonState, len(config.Persons))
	for i := range config.Persons {
		person := &config.Persons[i]
		people[i] = NewPersonState(person, registry, existingByPerson[person.ID])
	}

	outcome := &AllocationOutcome{
		Assignments:      []model.Assignment{},
		Unplaced:         []Unplaced{},
		ValidationErrors: []ValidationError{},
	}

	for _, day := range registry.Days() {
		for _, ps := range people {
			if ps.Count >= config.MaxPerPerson {
				continue
			}
			if ps.HasDay(day) {
				continue
			}
			if seaside.Applies(ps.Person, day) {
				continue
			}

			var candidates []*model.Slot
			for _, slot := range registry.SlotsOn(day) {
				if IsEligible(state, ps, slot, day, rules) {
					candidates = append(candidates, slot)
				}
			}

			chosen := SelectSlot(candidates, occupancy, config.Chooser)
			if chosen == nil {
				outcome.Unplaced = append(outcome.Unplaced, Unplaced{PersonID: ps.Person.ID, Day: day})
				continue
			}

			outcome.Assignments = append(outcome.Assignments, model.Assignment{
				PersonID: ps.Person.ID,
				Pool:     config.Pool,
				Day:      day,
				SlotID:   chosen.ID,
				Status:   model.StatusAccepted,
			})
			occupancy.Reserve(chosen.ID)
			ps.Record(chosen, day)
		}
	}

	outcome.ValidationErrors = ValidateAssignments(ValidationInput{
		Slots:            config.Slots,
		Persons:          config.Persons,
		Existing:         config.Existing,
		New:              outcome.Assignments,
		SeasideOverrides: config.SeasideOverrides,
	})

	return outcome, nil
}
