package allocator

import "github.com/jakechorley/camp-signup/pkg/core/model"

// Rule is a hard constraint on assigning a person to a slot on a day.
// Rules act as a veto: if ANY rule rejects, the slot is not a candidate.
type Rule interface {
	// Name returns a human-readable identifier for this rule
	Name() string

	// IsSlotValid returns false if assigning the slot would violate the rule
	IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool
}

// DefaultRules returns the batch exclusion rules in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		DayRule{},
		CapacityRule{},
		PriorityRule{},
		LanguageRule{},
		AgeRule{},
		CategoryRule{},
	}
}

// AdmissionRules returns the rules re-checked by a strict interactive admission.
// Capacity is checked separately under the slot lock, and priority only governs batch runs.
func AdmissionRules() []Rule {
	return []Rule{
		DayRule{},
		LanguageRule{},
		AgeRule{},
		CategoryRule{},
	}
}

// FirstViolation returns the first rule rejecting the slot, or nil if the slot is eligible
func FirstViolation(state *State, person *PersonState, slot *model.Slot, day string, rules []Rule) Rule {
	for _, rule := range rules {
		if !rule.IsSlotValid(state, person, slot, day) {
			return rule
		}
	}
	return nil
}

// IsEligible reports whether every rule accepts the slot
func IsEligible(state *State, person *PersonState, slot *model.Slot, day string, rules []Rule) bool {
	return FirstViolation(state, person, slot, day, rules) == nil
}

// DayRule requires the slot to belong to the day under consideration
type DayRule struct{}

func (DayRule) Name() string { return "Day" }

func (DayRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	return slot.Day == day
}

// CapacityRule requires at least one free capacity unit
type CapacityRule struct{}

func (CapacityRule) Name() string { return "Capacity" }

func (CapacityRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	return state.Occupancy.FreeCapacity(slot) > 0
}

// PriorityRule rejects slots flagged as never auto-assigned
type PriorityRule struct{}

func (PriorityRule) Name() string { return "Priority" }

func (PriorityRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	return slot.Priority != model.NeverAutoAssign
}

// LanguageRule limits language-restricted groups to language-flagged slots
type LanguageRule struct{}

func (LanguageRule) Name() string { return "Language" }

func (LanguageRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	if !state.IsLanguageRestricted(person.Person.Group) {
		return true
	}
	return slot.LanguageRestricted
}

// AgeRule keeps minors out of slots for older participants. Unknown ages pass.
type AgeRule struct{}

func (AgeRule) Name() string { return "Age" }

func (AgeRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	age := person.Person.Age
	if age == nil || !slot.OlderParticipants {
		return true
	}
	return *age >= state.Policy.MinorAgeThreshold
}

// CategoryRule forbids a second slot from an already consumed category
type CategoryRule struct{}

func (CategoryRule) Name() string { return "Category" }

func (CategoryRule) IsSlotValid(state *State, person *PersonState, slot *model.Slot, day string) bool {
	if slot.Category == nil {
		return true
	}
	return !person.HasCategory(*slot.Category)
}
