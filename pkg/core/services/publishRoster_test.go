package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// mockRosterWriter implements RosterWriter for testing
type mockRosterWriter struct {
	sheetID  string
	written  *model.Roster
	writeErr error
}

func (m *mockRosterWriter) WriteRoster(ctx context.Context, spreadsheetID string, roster *model.Roster) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sheetID = spreadsheetID
	m.written = roster
	return nil
}

func TestBuildRoster_Afternoon(t *testing.T) {
	store := newTestStore()
	for _, req := range []struct {
		personID string
		slot     model.Slot
	}{
		{teenWolves.ID, archeryMon},
		{kidWolves.ID, archeryMon},
		{kidNoGroup.ID, canoeMon},
	} {
		_, err := apply(store, req.personID, model.PoolAfternoon, req.slot.Day, req.slot.ID)
		require.NoError(t, err)
	}

	roster, err := BuildRoster(context.Background(), store, zap.NewNop(), testConfig(), model.PoolAfternoon)

	require.NoError(t, err)
	assert.Equal(t, model.PoolAfternoon, roster.Pool)
	require.Len(t, roster.Days, 2)
	assert.Equal(t, "mon", roster.Days[0].Day)
	assert.Equal(t, "tue", roster.Days[1].Day)

	mon := roster.Days[0]
	require.Len(t, mon.Entries, 3)
	assert.Equal(t, archeryMon.ID, mon.Entries[0].Slot.ID)
	assert.Equal(t, 2, mon.Entries[0].Taken)
	require.Len(t, mon.Entries[0].Participants, 2)
	assert.Equal(t, "Kai Wolf", mon.Entries[0].Participants[0].FullName())
	assert.Equal(t, "Tia Wolf", mon.Entries[0].Participants[1].FullName())
	assert.Equal(t, 0, mon.Entries[1].Taken)
	assert.Equal(t, 1, mon.Entries[2].Taken)

	for _, entry := range roster.Days[1].Entries {
		assert.Zero(t, entry.Taken)
	}
}

func TestBuildRoster_TrailHasSingleDay(t *testing.T) {
	store := newTestStore()
	_, err := apply(store, leaderWolves.ID, model.PoolTrail, "", forestTrail.ID)
	require.NoError(t, err)

	roster, err := BuildRoster(context.Background(), store, zap.NewNop(), testConfig(), model.PoolTrail)

	require.NoError(t, err)
	require.Len(t, roster.Days, 1)
	assert.Equal(t, "trail", roster.Days[0].Title(model.PoolTrail))
	require.Len(t, roster.Days[0].Entries, 2)
	assert.Equal(t, 1, roster.Days[0].Entries[0].Taken)
}

func TestPublishRoster(t *testing.T) {
	store := newTestStore()
	cfg := testConfig()
	cfg.Sheets.RosterSheetID = "sheet-123"
	writer := &mockRosterWriter{}

	roster, err := PublishRoster(context.Background(), store, writer, zap.NewNop(), cfg, model.PoolMorning)

	require.NoError(t, err)
	assert.Equal(t, "sheet-123", writer.sheetID)
	assert.Same(t, roster, writer.written)
	assert.Equal(t, "morning mon", roster.Days[0].Title(roster.Pool))
}

func TestPublishRoster_Errors(t *testing.T) {
	store := newTestStore()

	_, err := PublishRoster(context.Background(), store, &mockRosterWriter{}, zap.NewNop(), testConfig(), model.PoolMorning)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Sheets.RosterSheetID = "sheet-123"
	_, err = PublishRoster(context.Background(), store, &mockRosterWriter{writeErr: errStoreDown}, zap.NewNop(), cfg, model.PoolMorning)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = PublishRoster(context.Background(), &failingStore{MemoryDB: store, getSlotsErr: errStoreDown}, &mockRosterWriter{}, zap.NewNop(), cfg, model.PoolMorning)
	assert.ErrorIs(t, err, ErrPersistence)
}
