package allocator

import "github.com/jakechorley/camp-signup/pkg/core/model"

// FreeCapacity is capacity minus accepted assignments, never negative
func FreeCapacity(capacity, accepted int) int {
	return max(capacity-accepted, 0)
}

// Occupancy counts accepted assignments per slot.
// The batch pass mutates it as it commits so later iterations see earlier reservations.
type Occupancy struct {
	taken map[int64]int
}

// NewOccupancy counts the accepted assignments. Other statuses never consume capacity.
func NewOccupancy(assignments []model.Assignment) *Occupancy {
	o := &Occupancy{taken: make(map[int64]int)}
	for _, a := range assignments {
		if a.Status == model.StatusAccepted {
			o.taken[a.SlotID]++
		}
	}
	return o
}

// Taken returns the number of accepted assignments for a slot
func (o *Occupancy) Taken(slotID int64) int {
	return o.taken[slotID]
}

// Set overrides the accepted count for a slot with a freshly read value
func (o *Occupancy) Set(slotID int64, accepted int) {
	o.taken[slotID] = accepted
}

// FreeCapacity returns the remaining capacity of a slot
func (o *Occupancy) FreeCapacity(slot *model.Slot) int {
	return FreeCapacity(slot.Capacity, o.taken[slot.ID])
}

// Reserve consumes one capacity unit
func (o *Occupancy) Reserve(slotID int64) {
	o.taken[slotID]++
}
