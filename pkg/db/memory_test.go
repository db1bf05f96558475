package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryDB() *MemoryDB {
	m := NewMemoryDB()
	m.AddPersons(
		model.Person{ID: "p1", Group: "blue"},
		model.Person{ID: "p2", Group: "blue"},
		model.Person{ID: "p3", Group: "red"},
	)
	m.AddSlots(
		model.Slot{ID: 2, Pool: model.PoolAfternoon, Day: "Mon", Capacity: 1},
		model.Slot{ID: 1, Pool: model.PoolAfternoon, Day: "Mon", Capacity: 2},
		model.Slot{ID: 3, Pool: model.PoolTrail, Capacity: 5},
	)
	return m
}

func TestMemoryDB_GetSlotsFiltersAndSorts(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	slots, err := m.GetSlots(ctx, model.PoolAfternoon)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, int64(1), slots[0].ID)
	assert.Equal(t, int64(2), slots[1].ID)

	_, err = m.GetSlot(ctx, model.PoolTrail, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDB_GetGroupMembers(t *testing.T) {
	m := newTestMemoryDB()

	members, err := m.GetGroupMembers(context.Background(), "blue")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	members, err = m.GetGroupMembers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMemoryDB_InsertAssignmentsIsAllOrNothing(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	err := m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a1", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 2, Status: model.StatusAccepted},
		{ID: "a2", PersonID: "p2", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 2, Status: model.StatusAccepted},
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	assignments, err := m.GetAssignments(ctx, model.PoolAfternoon)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestMemoryDB_InsertAssignmentsRejectsDuplicateDay(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	require.NoError(t, m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a1", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 1, Status: model.StatusAccepted},
	}))

	err := m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a2", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 2, Status: model.StatusAccepted},
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryDB_WithSlotLockRollsBackOnError(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.WithSlotLock(ctx, model.PoolAfternoon, 1, "p1", func(tx SlotTx) error {
		require.NoError(t, tx.InsertAssignment(ctx, &model.Assignment{
			ID: "a1", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 1, Status: model.StatusAccepted,
		}))
		count, err := tx.CountAccepted(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assignments, err := m.GetAssignments(ctx, model.PoolAfternoon)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestMemoryDB_WithSlotLockUnknownSlot(t *testing.T) {
	m := newTestMemoryDB()

	called := false
	err := m.WithSlotLock(context.Background(), model.PoolAfternoon, 42, "p1", func(tx SlotTx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestMemoryDB_WithSlotLockUnknownPerson(t *testing.T) {
	m := newTestMemoryDB()

	called := false
	err := m.WithSlotLock(context.Background(), model.PoolAfternoon, 1, "nobody", func(tx SlotTx) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
}

func TestMemoryDB_WithSlotLockSerialisesPerSlot(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0

	var wg sync.WaitGroup
	persons := []string{"p1", "p2", "p3"}
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithSlotLock(ctx, model.PoolTrail, 3, persons[i%len(persons)], func(tx SlotTx) error {
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()

				_, _ = tx.CountAccepted(ctx)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestMemoryDB_DeleteAssignment(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	require.NoError(t, m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a1", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 1, Status: model.StatusAccepted},
	}))

	require.NoError(t, m.DeleteAssignment(ctx, model.PoolAfternoon, "p1", "Mon"))
	assert.ErrorIs(t, m.DeleteAssignment(ctx, model.PoolAfternoon, "p1", "Mon"), ErrNotFound)
}

func TestMemoryDB_WithSlotLockSerialisesPerPerson(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0

	var wg sync.WaitGroup
	for _, slotID := range []int64{1, 2, 1, 2, 1, 2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithSlotLock(ctx, model.PoolAfternoon, slotID, "p1", func(tx SlotTx) error {
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()

				_, _ = tx.GetPersonAssignments(ctx, "p1")

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "one person's admissions never overlap, even across slots")
}

func TestMemoryDB_InsertAssignmentsRejectsRepeatedCategory(t *testing.T) {
	m := newTestMemoryDB()
	ctx := context.Background()
	category := 7
	m.AddSlots(
		model.Slot{ID: 10, Pool: model.PoolAfternoon, Day: "Mon", Capacity: 5, Category: &category},
		model.Slot{ID: 11, Pool: model.PoolAfternoon, Day: "Tue", Capacity: 5, Category: &category},
	)

	require.NoError(t, m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a1", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Mon", SlotID: 10, Status: model.StatusAccepted},
	}))

	err := m.InsertAssignments(ctx, []model.Assignment{
		{ID: "a2", PersonID: "p2", Pool: model.PoolAfternoon, Day: "Tue", SlotID: 11, Status: model.StatusAccepted},
		{ID: "a3", PersonID: "p1", Pool: model.PoolAfternoon, Day: "Tue", SlotID: 11, Status: model.StatusAccepted},
	})
	assert.ErrorIs(t, err, ErrCategoryRepeated)

	assignments, err := m.GetAssignments(ctx, model.PoolAfternoon)
	require.NoError(t, err)
	assert.Len(t, assignments, 1, "the whole batch is rejected")
}

func TestCategoryHistory_Add(t *testing.T) {
	history := make(CategoryHistory)
	category := 3

	assert.True(t, history.Add(model.PoolAfternoon, "p1", &category))
	assert.False(t, history.Add(model.PoolAfternoon, "p1", &category))
	assert.True(t, history.Add(model.PoolMorning, "p1", &category), "pools are tracked separately")
	assert.True(t, history.Add(model.PoolAfternoon, "p2", &category))
	assert.True(t, history.Add(model.PoolAfternoon, "p1", nil))
	assert.True(t, history.Add(model.PoolAfternoon, "p1", nil))
}
