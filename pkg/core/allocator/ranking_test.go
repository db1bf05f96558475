package allocator

import (
	"testing"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/stretchr/testify/assert"
)

func TestSelectSlot_Empty(t *testing.T) {
	assert.Nil(t, SelectSlot(nil, NewOccupancy(nil), &scriptedChooser{}))
}

func TestSelectSlot_TieBreakUsesChooser(t *testing.T) {
	a := &model.Slot{ID: 1, Capacity: 3, Priority: 1}
	b := &model.Slot{ID: 2, Capacity: 3, Priority: 1}
	c := &model.Slot{ID: 3, Capacity: 3, Priority: 0}

	chooser := &scriptedChooser{picks: []int{1}}
	assert.Equal(t, b, SelectSlot([]*model.Slot{a, b, c}, NewOccupancy(nil), chooser))
	assert.Equal(t, 1, chooser.calls)
}

func TestSelectSlot_SingleSurvivorSkipsChooser(t *testing.T) {
	a := &model.Slot{ID: 1, Capacity: 3}
	b := &model.Slot{ID: 2, Capacity: 3}
	occupancy := NewOccupancy([]model.Assignment{
		{SlotID: 2, Status: model.StatusAccepted},
	})

	chooser := &scriptedChooser{}
	assert.Equal(t, a, SelectSlot([]*model.Slot{a, b}, occupancy, chooser))
	assert.Equal(t, 0, chooser.calls)
}

func TestFreeCapacity_NeverNegative(t *testing.T) {
	assert.Equal(t, 0, FreeCapacity(2, 5))
	assert.Equal(t, 3, FreeCapacity(5, 2))
}

func TestOrderDays_CalendarThenLexical(t *testing.T) {
	days := map[string]bool{"Wed": true, "Mon": true, "Extra": true, "Bonus": true}
	assert.Equal(t, []string{"Mon", "Wed", "Bonus", "Extra"}, OrderDays(days, []string{"Mon", "Tue", "Wed"}))
}

func TestSlotRegistry_IgnoresEmptyDays(t *testing.T) {
	registry := NewSlotRegistry([]model.Slot{
		{ID: 1, Day: ""},
		{ID: 2, Day: "Tue", Category: intPtr(4)},
	}, nil)

	assert.Equal(t, []string{"Tue"}, registry.Days())
	assert.Equal(t, 4, *registry.Category(2))
	assert.Nil(t, registry.Category(1))
	assert.Nil(t, registry.Category(99))
}

func TestRules_AgeThreshold(t *testing.T) {
	state := NewState(NewSlotRegistry(nil, nil), NewOccupancy(nil), Policy{MinorAgeThreshold: 18})
	slot := &model.Slot{ID: 1, Day: "Mon", Capacity: 1, OlderParticipants: true}

	seventeen := &model.Person{ID: "a", Age: intPtr(17)}
	eighteen := &model.Person{ID: "b", Age: intPtr(18)}

	assert.False(t, AgeRule{}.IsSlotValid(state, &PersonState{Person: seventeen}, slot, "Mon"))
	assert.True(t, AgeRule{}.IsSlotValid(state, &PersonState{Person: eighteen}, slot, "Mon"))
}

func TestFirstViolation_ReportsRule(t *testing.T) {
	state := NewState(NewSlotRegistry(nil, nil), NewOccupancy(nil), DefaultPolicy())
	person := &PersonState{Person: &model.Person{ID: "a"}, Days: map[string]bool{}, Categories: map[int]bool{}}
	slot := &model.Slot{ID: 1, Day: "Mon", Capacity: 0}

	violation := FirstViolation(state, person, slot, "Mon", DefaultRules())
	if assert.NotNil(t, violation) {
		assert.Equal(t, "Capacity", violation.Name())
	}
	assert.Nil(t, FirstViolation(state, person, slot, "Mon", AdmissionRules()))
}
