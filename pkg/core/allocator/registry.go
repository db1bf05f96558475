package allocator

import (
	"slices"
	"sort"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// SlotRegistry is a read-only view of the slots of one pool
type SlotRegistry struct {
	slots []*model.Slot
	byID  map[int64]*model.Slot
	byDay map[string][]*model.Slot
	days  []string
}

// NewSlotRegistry indexes the given slots. dayOrder is the camp calendar; days it doesn't
// mention are ordered lexically after the known ones.
func NewSlotRegistry(slots []model.Slot, dayOrder []string) *SlotRegistry {
	r := &SlotRegistry{
		slots: make([]*model.Slot, 0, len(slots)),
		byID:  make(map[int64]*model.Slot, len(slots)),
		byDay: make(map[string][]*model.Slot),
	}

	daySet := make(map[string]bool)
	for i := range slots {
		slot := slots[i] // copy so the registry never aliases the caller's slice
		r.slots = append(r.slots, &slot)
		r.byID[slot.ID] = &slot
		r.byDay[slot.Day] = append(r.byDay[slot.Day], &slot)
		if slot.Day != "" {
			daySet[slot.Day] = true
		}
	}

	r.days = OrderDays(daySet, dayOrder)
	return r
}

// OrderDays returns the days in calendar order, unknown labels last in lexical order
func OrderDays(days map[string]bool, dayOrder []string) []string {
	ordered := make([]string, 0, len(days))
	for _, day := range dayOrder {
		if days[day] && !slices.Contains(ordered, day) {
			ordered = append(ordered, day)
		}
	}

	var rest []string
	for day := range days {
		if !slices.Contains(dayOrder, day) {
			rest = append(rest, day)
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

// Slot looks up a slot by id
func (r *SlotRegistry) Slot(id int64) (*model.Slot, bool) {
	slot, ok := r.byID[id]
	return slot, ok
}

// Slots returns every slot in load order
func (r *SlotRegistry) Slots() []*model.Slot {
	return r.slots
}

// SlotsOn returns the slots belonging to the given day
func (r *SlotRegistry) SlotsOn(day string) []*model.Slot {
	return r.byDay[day]
}

// Days returns the distinct non-empty days in calendar order
func (r *SlotRegistry) Days() []string {
	return r.days
}

// Category returns the category of a slot, or nil if the slot is unknown or uncategorised
func (r *SlotRegistry) Category(id int64) *int {
	slot, ok := r.byID[id]
	if !ok {
		return nil
	}
	return slot.Category
}
