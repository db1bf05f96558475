package allocator

import "github.com/jakechorley/camp-signup/pkg/core/model"

// SelectSlot picks one candidate: the highest priority first, then the most free capacity,
// then uniformly at random among whatever is still tied. Returns nil for no candidates.
func SelectSlot(candidates []*model.Slot, occupancy *Occupancy, chooser Chooser) *model.Slot {
	if len(candidates) == 0 {
		return nil
	}

	topPriority := candidates[0].Priority
	for _, slot := range candidates[1:] {
		topPriority = max(topPriority, slot.Priority)
	}

	var prioritised []*model.Slot
	for _, slot := range candidates {
		if slot.Priority == topPriority {
			prioritised = append(prioritised, slot)
		}
	}

	mostFree := occupancy.FreeCapacity(prioritised[0])
	for _, slot := range prioritised[1:] {
		mostFree = max(mostFree, occupancy.FreeCapacity(slot))
	}

	var tied []*model.Slot
	for _, slot := range prioritised {
		if occupancy.FreeCapacity(slot) == mostFree {
			tied = append(tied, slot)
		}
	}

	if len(tied) == 1 {
		return tied[0]
	}
	return tied[chooser.Intn(len(tied))]
}
