package mirror

import (
	"testing"

	"gymdesk/pkg/dates"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestMirror(t *testing.T) *Mirror {
	t.Helper()
	m, err := Open(InMemoryConfig(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestLoadEmptyMirror(t *testing.T) {
	_, err := openTestMirror(t).Load()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSaveThenLoad(t *testing.T) {
	m := openTestMirror(t)

	snap := model.NewSnapshot()
	snap.Greeting = "즐거운 체육시간"
	snap.BaseSchedule = append(snap.BaseSchedule, model.BaseScheduleEntry{
		Day: model.Monday, Period: model.Period1, Location: model.Gymnasium, Class: "2-3",
	})
	snap.Inventory = append(snap.Inventory, model.InventoryItem{
		ID: "i-1", Name: "농구공", Location: "체육전담실", Quantity: 10,
		Rentals: []model.Rental{{ID: "r-1", ItemID: "i-1", Class: "3-1", Count: 4, Date: dates.MustParse("2026-03-02")}},
	})
	snap.ActivityLogs = append(snap.ActivityLogs, model.ActivityLog{Timestamp: "2026-03-02 09:00:00", Message: "hello"})

	require.NoError(t, m.Save(snap))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Greeting, loaded.Greeting)
	assert.Equal(t, snap.BaseSchedule, loaded.BaseSchedule)
	assert.Equal(t, snap.Inventory[0].Rentals, loaded.Inventory[0].Rentals)
	assert.Equal(t, 6, loaded.Inventory[0].Available())
	assert.Equal(t, snap.ActivityLogs, loaded.ActivityLogs)
	assert.Equal(t, model.DefaultLocations, loaded.Locations)
}

func TestSaveOverwrites(t *testing.T) {
	m := openTestMirror(t)

	first := model.NewSnapshot()
	first.Greeting = "old"
	require.NoError(t, m.Save(first))

	second := model.NewSnapshot()
	second.Greeting = "new"
	second.Locations = []string{"창고"}
	require.NoError(t, m.Save(second))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", loaded.Greeting)
	assert.Equal(t, []string{"창고"}, loaded.Locations)
}
