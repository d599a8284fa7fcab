package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(t *testing.T, start, end string) TimeSlot {
	t.Helper()
	s, err := ParseClockTime(start)
	require.NoError(t, err)
	e, err := ParseClockTime(end)
	require.NoError(t, err)
	return TimeSlot{Start: s, End: e}
}

func TestNewTimeGridCatalogRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		slots   []TimeSlot
		days    []Weekday
		wantErr string
	}{
		{name: "missing name", catalog: " ", slots: []TimeSlot{slot(t, "08:30", "10:00")}, days: AllWeekdays(), wantErr: "catalog name is required"},
		{name: "no slots", catalog: "x", days: AllWeekdays(), wantErr: "at least one slot"},
		{name: "no days", catalog: "x", slots: []TimeSlot{slot(t, "08:30", "10:00")}, wantErr: "at least one schedulable day"},
		{name: "empty slot", catalog: "x", slots: []TimeSlot{slot(t, "10:00", "10:00")}, days: AllWeekdays(), wantErr: "start not before end"},
		{
			name:    "overlapping slots",
			catalog: "x",
			slots:   []TimeSlot{slot(t, "08:30", "10:00"), slot(t, "09:30", "11:00")},
			days:    AllWeekdays(),
			wantErr: "overlaps or precedes",
		},
		{
			name:    "unordered slots",
			catalog: "x",
			slots:   []TimeSlot{slot(t, "10:10", "11:40"), slot(t, "08:30", "10:00")},
			days:    AllWeekdays(),
			wantErr: "overlaps or precedes",
		},
		{name: "sunday", catalog: "x", slots: []TimeSlot{slot(t, "08:30", "10:00")}, days: []Weekday{Weekday(0)}, wantErr: "is not schedulable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTimeGridCatalog(tc.catalog, tc.slots, tc.days)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewTimeGridCatalogNormalizes(t *testing.T) {
	c, err := NewTimeGridCatalog(" lab ", []TimeSlot{
		{Index: 7, Start: NewClockTime(8, 0), End: NewClockTime(9, 30)},
		{Index: 3, Start: NewClockTime(9, 30), End: NewClockTime(11, 0)},
	}, []Weekday{Friday, Monday, Friday})
	require.NoError(t, err)

	assert.Equal(t, "lab", c.Name())
	assert.Equal(t, []Weekday{Monday, Friday}, c.Days())
	slots := c.Slots()
	require.Len(t, slots, 2)
	assert.Equal(t, 0, slots[0].Index)
	assert.Equal(t, 1, slots[1].Index)
	assert.Equal(t, 2, c.SlotCount())
	assert.Equal(t, 2, c.DayCount())
	assert.Equal(t, 4, c.CellCount())
	assert.False(t, c.Schedulable(Wednesday))

	idx, ok := c.SlotIndexForStart(NewClockTime(9, 30))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = c.SlotFor(NewClockTime(9, 30), NewClockTime(10, 30))
	assert.False(t, ok)
	_, ok = c.SlotIndexForStart(NewClockTime(9, 0))
	assert.False(t, ok)
}

func TestParseSlotList(t *testing.T) {
	slots, err := ParseSlotList(" 08:30-10:00 | 10:10-11:40 ||")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "08:30-10:00", slots[0].Label())
	assert.Equal(t, "10:10-11:40", slots[1].Label())
	assert.Equal(t, 1, slots[1].Index)

	empty, err := ParseSlotList("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, raw := range []string{"08:30", "08:30-10:00-11:00", "8:xx-10:00", "08:30-24:00", "08:75-09:00"} {
		_, err := ParseSlotList(raw)
		assert.Error(t, err, raw)
	}
}

func TestBuildCatalogRegistryDefaults(t *testing.T) {
	reg, err := BuildCatalogRegistry("", "", nil)
	require.NoError(t, err)

	def := reg.Default()
	assert.Equal(t, CatalogStandard, def.Name())
	assert.Equal(t, 30, def.CellCount())
	ext, ok := reg.Resolve(CatalogExtended)
	require.True(t, ok)
	assert.Equal(t, "08:10-09:40", ext.Slots()[0].Label())
	_, ok = reg.Resolve("missing")
	assert.False(t, ok)
}

func TestBuildCatalogRegistryCustomDefinitions(t *testing.T) {
	reg, err := BuildCatalogRegistry("lab", "standard=09:00-10:30|10:45-12:15; lab=13:00-16:00", []string{"MONDAY", "tue", "3"})
	require.NoError(t, err)

	def, ok := reg.Resolve("")
	require.True(t, ok)
	assert.Equal(t, "lab", def.Name())
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday}, def.Days())

	standard, ok := reg.Resolve(CatalogStandard)
	require.True(t, ok)
	require.Equal(t, 2, standard.SlotCount())
	assert.Equal(t, "09:00-10:30", standard.Slots()[0].Label())
	assert.Equal(t, 6, standard.CellCount())

	views := reg.Views()
	require.Len(t, views, 3)
	names := []string{views[0].Name, views[1].Name, views[2].Name}
	assert.Equal(t, []string{CatalogExtended, "lab", CatalogStandard}, names)
	assert.False(t, views[0].Default)
	assert.True(t, views[1].Default)
	assert.False(t, views[2].Default)
}

func TestBuildCatalogRegistryErrors(t *testing.T) {
	tests := []struct {
		name        string
		defaultName string
		definitions string
		days        []string
		wantErr     string
	}{
		{name: "unknown default", defaultName: "nope", wantErr: `default catalog "nope" is not defined`},
		{name: "missing equals", definitions: "broken", wantErr: "invalid catalog definition"},
		{name: "malformed slots", definitions: "lab=08:30", wantErr: "catalog lab"},
		{name: "overlapping slots", definitions: "lab=08:30-10:00|09:00-10:30", wantErr: "overlaps or precedes"},
		{name: "sunday", days: []string{"SUNDAY"}, wantErr: "unknown weekday"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildCatalogRegistry(tc.defaultName, tc.definitions, tc.days)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
