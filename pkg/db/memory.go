package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// MemoryDB is an in-process Database. Admissions serialise on a per-person and then a
// per-slot mutex; the record maps are guarded by a separate RWMutex.
type MemoryDB struct {
	locksMu     sync.Mutex
	locks       map[int64]*sync.Mutex
	personLocks map[string]*sync.Mutex

	mu          sync.RWMutex
	persons     []model.Person
	slots       []model.Slot
	assignments []model.Assignment
	overrides   []model.SeasideOverride
}

// NewMemoryDB creates an empty in-memory database
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		locks:       make(map[int64]*sync.Mutex),
		personLocks: make(map[string]*sync.Mutex),
	}
}

// AddPersons appends person records in the given order
func (m *MemoryDB) AddPersons(persons ...model.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons = append(m.persons, persons...)
}

// AddSlots appends slot records
func (m *MemoryDB) AddSlots(slots ...model.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = append(m.slots, slots...)
}

// AddSeasideOverrides appends seaside overrides
func (m *MemoryDB) AddSeasideOverrides(overrides ...model.SeasideOverride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides = append(m.overrides, overrides...)
}

// GetPerson retrieves a person by id
func (m *MemoryDB) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.persons {
		if p.ID == id {
			person := p
			return &person, nil
		}
	}
	return nil, fmt.Errorf("person %s: %w", id, ErrNotFound)
}

// GetPersons retrieves every person in insertion order
func (m *MemoryDB) GetPersons(ctx context.Context) ([]model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.persons), nil
}

// GetGroupMembers retrieves the persons of a group in insertion order
func (m *MemoryDB) GetGroupMembers(ctx context.Context, group string) ([]model.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var members []model.Person
	for _, p := range m.persons {
		if group != "" && p.Group == group {
			members = append(members, p)
		}
	}
	return members, nil
}

// GetSlot retrieves a slot of a pool by id
func (m *MemoryDB) GetSlot(ctx context.Context, pool model.Pool, id int64) (*model.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findSlot(pool, id)
}

func (m *MemoryDB) findSlot(pool model.Pool, id int64) (*model.Slot, error) {
	for _, s := range m.slots {
		if s.ID == id && s.Pool == pool {
			slot := s
			return &slot, nil
		}
	}
	return nil, fmt.Errorf("slot %d in pool %s: %w", id, pool, ErrNotFound)
}

// GetSlots retrieves the slots of a pool ordered by id
func (m *MemoryDB) GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var slots []model.Slot
	for _, s := range m.slots {
		if s.Pool == pool {
			slots = append(slots, s)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

// GetAssignments retrieves the assignments of a pool in insertion order
func (m *MemoryDB) GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var assignments []model.Assignment
	for _, a := range m.assignments {
		if a.Pool == pool {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

// GetPersonAssignments retrieves one person's assignments in a pool
func (m *MemoryDB) GetPersonAssignments(ctx context.Context, pool model.Pool, personID string) ([]model.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.personAssignments(pool, personID), nil
}

func (m *MemoryDB) personAssignments(pool model.Pool, personID string) []model.Assignment {
	var assignments []model.Assignment
	for _, a := range m.assignments {
		if a.Pool == pool && a.PersonID == personID {
			assignments = append(assignments, a)
		}
	}
	return assignments
}

// InsertAssignments commits a batch of assignments atomically
func (m *MemoryDB) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	// Persons first, then slots, each in ascending order, matching WithSlotLock
	var personIDs []string
	var slotIDs []int64
	for _, a := range assignments {
		if !slices.Contains(personIDs, a.PersonID) {
			personIDs = append(personIDs, a.PersonID)
		}
		if !slices.Contains(slotIDs, a.SlotID) {
			slotIDs = append(slotIDs, a.SlotID)
		}
	}
	slices.Sort(personIDs)
	slices.Sort(slotIDs)
	for _, id := range personIDs {
		lock := m.personLock(id)
		lock.Lock()
		defer lock.Unlock()
	}
	for _, id := range slotIDs {
		lock := m.slotLock(id)
		lock.Lock()
		defer lock.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	added := make(map[int64]int)
	for _, a := range assignments {
		slot, err := m.findSlot(a.Pool, a.SlotID)
		if err != nil {
			return err
		}
		added[a.SlotID]++
		if m.countAccepted(a.SlotID)+added[a.SlotID] > slot.Capacity {
			return fmt.Errorf("slot %d: %w", a.SlotID, ErrCapacityExceeded)
		}
	}

	seen := make(map[string]bool)
	for _, a := range assignments {
		key := fmt.Sprintf("%s|%s|%s", a.PersonID, a.Pool, a.Day)
		if seen[key] || m.hasAssignment(a.Pool, a.PersonID, a.Day) {
			return fmt.Errorf("person %s on %q: %w", a.PersonID, a.Day, ErrDuplicate)
		}
		seen[key] = true
	}

	history := make(CategoryHistory)
	for _, a := range m.assignments {
		if !slices.Contains(personIDs, a.PersonID) {
			continue
		}
		if slot, err := m.findSlot(a.Pool, a.SlotID); err == nil {
			history.Add(a.Pool, a.PersonID, slot.Category)
		}
	}
	for _, a := range assignments {
		slot, _ := m.findSlot(a.Pool, a.SlotID)
		if !history.Add(a.Pool, a.PersonID, slot.Category) {
			return fmt.Errorf("person %s, slot %d: %w", a.PersonID, a.SlotID, ErrCategoryRepeated)
		}
	}

	m.assignments = append(m.assignments, assignments...)
	return nil
}

// DeleteAssignment removes a person's assignment for a pool and day
func (m *MemoryDB) DeleteAssignment(ctx context.Context, pool model.Pool, personID string, day string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.assignments {
		if a.Pool == pool && a.PersonID == personID && a.Day == day {
			m.assignments = slices.Delete(m.assignments, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("assignment for person %s on %q: %w", personID, day, ErrNotFound)
}

// GetSeasideOverrides retrieves every seaside override
func (m *MemoryDB) GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.overrides), nil
}

// WithSlotLock runs fn while holding the person's mutex and then the slot's mutex
func (m *MemoryDB) WithSlotLock(ctx context.Context, pool model.Pool, slotID int64, personID string, fn func(tx SlotTx) error) error {
	if _, err := m.GetPerson(ctx, personID); err != nil {
		return err
	}
	slot, err := m.GetSlot(ctx, pool, slotID)
	if err != nil {
		return err
	}

	personLock := m.personLock(personID)
	personLock.Lock()
	defer personLock.Unlock()

	lock := m.slotLock(slotID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{db: m, slot: slot}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (m *MemoryDB) slotLock(slotID int64) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	lock, ok := m.locks[slotID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[slotID] = lock
	}
	return lock
}

func (m *MemoryDB) personLock(personID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	lock, ok := m.personLocks[personID]
	if !ok {
		lock = &sync.Mutex{}
		m.personLocks[personID] = lock
	}
	return lock
}

func (m *MemoryDB) countAccepted(slotID int64) int {
	count := 0
	for _, a := range m.assignments {
		if a.SlotID == slotID && a.Status == model.StatusAccepted {
			count++
		}
	}
	return count
}

func (m *MemoryDB) hasAssignment(pool model.Pool, personID, day string) bool {
	for _, a := range m.assignments {
		if a.Pool == pool && a.PersonID == personID && a.Day == day {
			return true
		}
	}
	return false
}

// memoryTx writes straight through and undoes its inserts on rollback
type memoryTx struct {
	db       *MemoryDB
	slot     *model.Slot
	inserted []string
}

func (tx *memoryTx) Slot() *model.Slot {
	return tx.slot
}

func (tx *memoryTx) CountAccepted(ctx context.Context) (int, error) {
	tx.db.mu.RLock()
	defer tx.db.mu.RUnlock()
	return tx.db.countAccepted(tx.slot.ID), nil
}

func (tx *memoryTx) GetPersonAssignments(ctx context.Context, personID string) ([]model.Assignment, error) {
	tx.db.mu.RLock()
	defer tx.db.mu.RUnlock()
	return tx.db.personAssignments(tx.slot.Pool, personID), nil
}

func (tx *memoryTx) InsertAssignment(ctx context.Context, assignment *model.Assignment) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	if tx.db.hasAssignment(assignment.Pool, assignment.PersonID, assignment.Day) {
		return fmt.Errorf("person %s on %q: %w", assignment.PersonID, assignment.Day, ErrDuplicate)
	}
	tx.db.assignments = append(tx.db.assignments, *assignment)
	tx.inserted = append(tx.inserted, assignment.ID)
	return nil
}

func (tx *memoryTx) rollback() {
	if len(tx.inserted) == 0 {
		return
	}
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.assignments = slices.DeleteFunc(tx.db.assignments, func(a model.Assignment) bool {
		return slices.Contains(tx.inserted, a.ID)
	})
}
