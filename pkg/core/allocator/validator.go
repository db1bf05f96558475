package allocator

import (
	"fmt"
	"sort"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// ValidationError describes one invariant violation in a set of assignments
type ValidationError struct {
	Invariant   string `json:"invariant"`
	PersonID    string `json:"person_id,omitempty"`
	SlotID      int64  `json:"slot_id,omitempty"`
	Day         string `json:"day,omitempty"`
	Description string `json:"description"`

	// PreExisting marks violations found only among assignments that were already stored
	PreExisting bool `json:"pre_existing,omitempty"`
}

// BlockingErrors returns the violations a pass introduced itself
func BlockingErrors(errs []ValidationError) []ValidationError {
	var blocking []ValidationError
	for _, e := range errs {
		if !e.PreExisting {
			blocking = append(blocking, e)
		}
	}
	return blocking
}

// ValidationInput is the full picture of a pool after a pass
type ValidationInput struct {
	Slots            []model.Slot
	Persons          []model.Person
	Existing         []model.Assignment
	New              []model.Assignment
	SeasideOverrides []model.SeasideOverride

	// IgnorePriority skips the never-auto-assign check for passes that don't rank by priority
	IgnorePriority bool
}

// ValidateAssignments checks the allocation invariants over existing plus new assignments:
// capacity, one assignment per person and day, no repeated category, no seaside-day assignment.
// The never-auto-assign priority is only enforced on New, since interactive admissions may
// legitimately hold such slots. Violations that involve no New assignment are marked PreExisting.
// An empty slice means the state is valid.
func ValidateAssignments(input ValidationInput) []ValidationError {
	errs := []ValidationError{}

	slots := make(map[int64]*model.Slot, len(input.Slots))
	for i := range input.Slots {
		slots[input.Slots[i].ID] = &input.Slots[i]
	}
	persons := make(map[string]*model.Person, len(input.Persons))
	for i := range input.Persons {
		persons[input.Persons[i].ID] = &input.Persons[i]
	}
	seaside := NewSeasideIndex(input.SeasideOverrides)

	all := make([]model.Assignment, 0, len(input.Existing)+len(input.New))
	all = append(all, input.Existing...)
	all = append(all, input.New...)

	taken := make(map[int64]int)
	added := make(map[int64]int)
	perDay := make(map[string]map[string]int)
	categories := make(map[string]map[int]int64)

	// Existing rows come first, so a repeat reported on an existing row involves only existing rows
	for i, a := range all {
		if a.Status != model.StatusAccepted {
			continue
		}
		stored := i < len(input.Existing)
		slot, ok := slots[a.SlotID]
		if !ok {
			errs = append(errs, ValidationError{
				Invariant:   "UnknownSlot",
				PersonID:    a.PersonID,
				SlotID:      a.SlotID,
				Day:         a.Day,
				Description: fmt.Sprintf("assignment references unknown slot %d", a.SlotID),
				PreExisting: stored,
			})
			continue
		}

		taken[a.SlotID]++
		if !stored {
			added[a.SlotID]++
		}

		if perDay[a.PersonID] == nil {
			perDay[a.PersonID] = make(map[string]int)
		}
		perDay[a.PersonID][a.Day]++
		if perDay[a.PersonID][a.Day] == 2 {
			errs = append(errs, ValidationError{
				Invariant:   "OnePerDay",
				PersonID:    a.PersonID,
				SlotID:      a.SlotID,
				Day:         a.Day,
				Description: fmt.Sprintf("person holds more than one assignment on %q", a.Day),
				PreExisting: stored,
			})
		}

		if slot.Category != nil {
			if categories[a.PersonID] == nil {
				categories[a.PersonID] = make(map[int]int64)
			}
			if other, seen := categories[a.PersonID][*slot.Category]; seen {
				errs = append(errs, ValidationError{
					Invariant:   "Category",
					PersonID:    a.PersonID,
					SlotID:      a.SlotID,
					Day:         a.Day,
					Description: fmt.Sprintf("category %d already held through slot %d", *slot.Category, other),
					PreExisting: stored,
				})
			} else {
				categories[a.PersonID][*slot.Category] = a.SlotID
			}
		}

		if person, ok := persons[a.PersonID]; ok && seaside.Applies(person, a.Day) {
			errs = append(errs, ValidationError{
				Invariant:   "Seaside",
				PersonID:    a.PersonID,
				SlotID:      a.SlotID,
				Day:         a.Day,
				Description: fmt.Sprintf("group %q is at the seaside on %q", person.Group, a.Day),
				PreExisting: stored,
			})
		}
	}

	for _, a := range input.New {
		if input.IgnorePriority {
			break
		}
		slot, ok := slots[a.SlotID]
		if !ok || slot.Priority != model.NeverAutoAssign {
			continue
		}
		errs = append(errs, ValidationError{
			Invariant:   "Priority",
			PersonID:    a.PersonID,
			SlotID:      a.SlotID,
			Day:         a.Day,
			Description: "slot is never auto-assigned",
		})
	}

	ids := make([]int64, 0, len(taken))
	for id := range taken {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		slot := slots[id]
		if taken[id] > slot.Capacity {
			errs = append(errs, ValidationError{
				Invariant:   "Capacity",
				SlotID:      id,
				Day:         slot.Day,
				Description: fmt.Sprintf("slot has %d accepted assignments but capacity is %d", taken[id], slot.Capacity),
				PreExisting: added[id] == 0,
			})
		}
	}

	return errs
}
