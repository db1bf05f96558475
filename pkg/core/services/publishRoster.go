package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/internal/config"
	"github.com/jakechorley/camp-signup/pkg/core/allocator"
	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// RosterStore defines the database operations needed to build a roster
type RosterStore interface {
	GetPersons(ctx context.Context) ([]model.Person, error)
	GetSlots(ctx context.Context, pool model.Pool) ([]model.Slot, error)
	GetAssignments(ctx context.Context, pool model.Pool) ([]model.Assignment, error)
}

// RosterWriter publishes a roster to a spreadsheet
type RosterWriter interface {
	WriteRoster(ctx context.Context, spreadsheetID string, roster *model.Roster) error
}

// BuildRoster groups the accepted assignments of a pool by day and slot.
// Days follow the camp calendar, slots keep id order and participants are sorted by name.
func BuildRoster(
	ctx context.Context,
	store RosterStore,
	logger *zap.Logger,
	cfg *config.Config,
	pool model.Pool,
) (*model.Roster, error) {
	if !pool.IsValid() {
		return nil, fmt.Errorf("%w: unknown pool %q", ErrWrongPool, pool)
	}

	persons, err := store.GetPersons(ctx)
	if err != nil {
		return nil, translateStoreError("fetch persons", err)
	}
	slots, err := store.GetSlots(ctx, pool)
	if err != nil {
		return nil, translateStoreError("fetch slots", err)
	}
	assignments, err := store.GetAssignments(ctx, pool)
	if err != nil {
		return nil, translateStoreError("fetch assignments", err)
	}

	personsByID := make(map[string]model.Person, len(persons))
	for _, p := range persons {
		personsByID[p.ID] = p
	}

	participants := make(map[int64][]model.Person)
	for _, a := range assignments {
		if a.Status != model.StatusAccepted {
			continue
		}
		person, ok := personsByID[a.PersonID]
		if !ok {
			logger.Warn("Assignment for unknown person",
				zap.String("assignment_id", a.ID),
				zap.String("person_id", a.PersonID))
			person = model.Person{ID: a.PersonID, Email: a.PersonID}
		}
		participants[a.SlotID] = append(participants[a.SlotID], person)
	}

	registry := allocator.NewSlotRegistry(slots, cfg.Camp.Days)
	days := registry.Days()
	if !pool.HasDays() {
		days = []string{""}
	}

	roster := &model.Roster{Pool: pool}
	for _, day := range days {
		rosterDay := model.RosterDay{Day: day}
		for _, slot := range registry.SlotsOn(day) {
			members := participants[slot.ID]
			sort.Slice(members, func(i, j int) bool {
				return members[i].FullName() < members[j].FullName()
			})
			rosterDay.Entries = append(rosterDay.Entries, model.RosterEntry{
				Slot:         *slot,
				Taken:        len(members),
				Participants: members,
			})
		}
		roster.Days = append(roster.Days, rosterDay)
	}

	logger.Debug("Built roster",
		zap.String("pool", string(pool)),
		zap.Int("days", len(roster.Days)),
		zap.Int("assignments", len(assignments)))

	return roster, nil
}

// PublishRoster builds the roster of a pool and writes it to the configured roster sheet
func PublishRoster(
	ctx context.Context,
	store RosterStore,
	writer RosterWriter,
	logger *zap.Logger,
	cfg *config.Config,
	pool model.Pool,
) (*model.Roster, error) {
	if cfg.Sheets.RosterSheetID == "" {
		return nil, errors.New("roster sheet is not configured")
	}

	roster, err := BuildRoster(ctx, store, logger, cfg, pool)
	if err != nil {
		return nil, err
	}

	logger.Info("Publishing roster",
		zap.String("pool", string(pool)),
		zap.String("sheet_id", cfg.Sheets.RosterSheetID),
		zap.Int("days", len(roster.Days)))

	if err := writer.WriteRoster(ctx, cfg.Sheets.RosterSheetID, roster); err != nil {
		return nil, fmt.Errorf("failed to publish roster: %w", err)
	}

	logger.Info("Roster published", zap.String("pool", string(pool)))
	return roster, nil
}
