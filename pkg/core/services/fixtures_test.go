package services

import (
	"context"
	"errors"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/model"
	"github.com/jakechorley/camp-signup/pkg/db"
)

var errStoreDown = errors.New("connection refused")

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL: "postgres://localhost/camp_test",
		Camp: config.CampConfig{
			Days: []string{"mon", "tue", "wed"},
		},
		Allocation: config.AllocationConfig{
			Seed:                     int64Ptr(42),
			LanguageRestrictedGroups: []string{"bears"},
		},
	}
}

// Persons
var (
	leaderWolves = model.Person{ID: "leader-wolves", Email: "lw@camp.test", Name: "Lena", Surname: "Wolf", Group: "wolves", Age: intPtr(34), IsLeader: true}
	leaderSolo   = model.Person{ID: "leader-solo", Email: "ls@camp.test", Name: "Sam", Surname: "Solo", Age: intPtr(41), IsLeader: true}
	kidWolves    = model.Person{ID: "kid-wolves", Email: "kw@camp.test", Name: "Kai", Surname: "Wolf", Group: "wolves", Age: intPtr(12)}
	teenWolves   = model.Person{ID: "teen-wolves", Email: "tw@camp.test", Name: "Tia", Surname: "Wolf", Group: "wolves", Age: intPtr(17)}
	kidBears     = model.Person{ID: "kid-bears", Email: "kb@camp.test", Name: "Ben", Surname: "Bear", Group: "bears", Age: intPtr(13)}
	kidNoGroup   = model.Person{ID: "kid-nogroup", Email: "kn@camp.test", Name: "Noa"}
)

// Afternoon slots
var (
	archeryMon  = model.Slot{ID: 1, Pool: model.PoolAfternoon, Name: "Archery", Day: "mon", Capacity: 2, Category: intPtr(1)}
	potteryMon  = model.Slot{ID: 2, Pool: model.PoolAfternoon, Name: "Pottery", Day: "mon", Capacity: 3, OlderParticipants: true}
	canoeMon    = model.Slot{ID: 3, Pool: model.PoolAfternoon, Name: "Canoe", Day: "mon", Capacity: 1}
	archeryTue  = model.Slot{ID: 4, Pool: model.PoolAfternoon, Name: "Archery", Day: "tue", Capacity: 2, Category: intPtr(1)}
	languageTue = model.Slot{ID: 5, Pool: model.PoolAfternoon, Name: "Storytelling", Day: "tue", Capacity: 4, LanguageRestricted: true}
)

// Trail and morning slots
var (
	forestTrail = model.Slot{ID: 10, Pool: model.PoolTrail, Name: "Forest trail", Capacity: 2}
	riverTrail  = model.Slot{ID: 11, Pool: model.PoolTrail, Name: "River trail", Capacity: 1, Priority: model.NeverAutoAssign}
	knotsMon    = model.Slot{ID: 20, Pool: model.PoolMorning, Name: "Knots", Day: "mon", Capacity: 2, Theme: "craft"}
	weavingMon  = model.Slot{ID: 21, Pool: model.PoolMorning, Name: "Weaving", Day: "mon", Capacity: 2, Theme: "craft"}
	knotsTue    = model.Slot{ID: 22, Pool: model.PoolMorning, Name: "Knots", Day: "tue", Capacity: 2, Theme: "craft"}
	hikeTue     = model.Slot{ID: 23, Pool: model.PoolMorning, Name: "Hike", Day: "tue", Capacity: 2, Theme: "outdoor"}
)

func newTestStore() *db.MemoryDB {
	store := db.NewMemoryDB()
	store.AddPersons(leaderWolves, leaderSolo, kidWolves, teenWolves, kidBears, kidNoGroup)
	store.AddSlots(
		archeryMon, potteryMon, canoeMon, archeryTue, languageTue,
		forestTrail, riverTrail,
		knotsMon, weavingMon, knotsTue, hikeTue,
	)
	return store
}

// failingStore implements every store interface and fails the configured calls
type failingStore struct {
	*db.MemoryDB
	getPersonErr   error
	getSlotsErr    error
	getAssignErr   error
	insertErr      error
	deleteErr      error
	slotLockErr    error
	getPersonsErr  error
	getSeasideErr  error
	insertedCalled bool
}

func (f *failingStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	if f.getPersonErr != nil {
		return nil, f.getPersonErr
	}
	return f.MemoryDB.GetPerson(ctx, id)
}

func (f *failingStore) GetPersons(ctx context.Context) ([]model.Person, error) {
	if f.getPersonsErr != nil {
		return nil, f.getPersonsErr
	}
	return f.MemoryDB.GetPersons(ctx)
}

func (f *failingStore) GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error) {
	if f.getSlotsErr != nil {
		return nil, f.getSlotsErr
	}
	return f.MemoryDB.GetSlots(ctx, pool)
}

func (f *failingStore) GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error) {
	if f.getAssignErr != nil {
		return nil, f.getAssignErr
	}
	return f.MemoryDB.GetAssignments(ctx, pool)
}

func (f *failingStore) GetSeasideOverrides(ctx context.Context) ([]model.SeasideOverride, error) {
	if f.getSeasideErr != nil {
		return nil, f.getSeasideErr
	}
	return f.MemoryDB.GetSeasideOverrides(ctx)
}

func (f *failingStore) InsertAssignments(ctx context.Context, assignments []model.Assignment) error {
	f.insertedCalled = true
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.MemoryDB.InsertAssignments(ctx, assignments)
}

func (f *failingStore) DeleteAssignment(ctx context.Context, pool model.Pool, personID string, day string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryDB.DeleteAssignment(ctx, pool, personID, day)
}

func (f *failingStore) WithSlotLock(ctx context.Context, pool model.Pool, slotID int64, personID string, fn func(tx db.SlotTx) error) error {
	if f.slotLockErr != nil {
		return f.slotLockErr
	}
	return f.MemoryDB.WithSlotLock(ctx, pool, slotID, personID, fn)
}
