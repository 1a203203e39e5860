package bucket

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTable() *Table {
	tbl := &Table{
		DayIDs:  make(map[int]int, 7),
		SlotIDs: make(map[string]int, 96),
	}
	for i := range SeedDays() {
		tbl.DayIDs[i+1] = i + 1
	}
	for i, slot := range SeedSlots() {
		tbl.SlotIDs[slot] = i + 1
	}
	return tbl
}

func TestPeriodBoundaries(t *testing.T) {
	cases := []struct {
		hour   int
		minute int
		want   string
	}{
		{3, 59, "overnight"},
		{4, 0, "dawn"},
		{7, 59, "dawn"},
		{8, 0, "morning"},
		{11, 59, "morning"},
		{12, 0, "afternoon"},
		{15, 59, "afternoon"},
		{16, 0, "evening"},
		{19, 59, "evening"},
		{20, 0, "night"},
		{23, 59, "night"},
		{0, 0, "overnight"},
	}

	for _, tc := range cases {
		ts := time.Date(2026, 3, 2, tc.hour, tc.minute, 0, 0, time.UTC)
		assert.Equal(t, tc.want, PeriodFor(ts.Hour()), "%02d:%02d", tc.hour, tc.minute)
	}
}

func TestSlotKeyFloorsToQuarterHour(t *testing.T) {
	cases := []struct {
		minute int
		want   string
	}{
		{0, "09_00"},
		{7, "09_00"},
		{14, "09_00"},
		{15, "09_15"},
		{29, "09_15"},
		{30, "09_30"},
		{44, "09_30"},
		{45, "09_45"},
		{59, "09_45"},
	}

	for _, tc := range cases {
		ts := time.Date(2026, 3, 2, 9, tc.minute, 13, 0, time.UTC)
		assert.Equal(t, tc.want, SlotKey(ts))
	}
}

func TestISOWeekday(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, ISOWeekday(monday.AddDate(0, 0, i)))
	}
}

func TestResolveTotalOverAllCombinations(t *testing.T) {
	tbl := seededTable()

	// Every (day, slot) combination must resolve, and resolve to the
	// same pair on repeated calls.
	seen := make(map[[2]int]bool)
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			for _, minute := range []int{0, 15, 30, 45} {
				ts := monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

				dayID, slotID, err := tbl.Resolve(ts)
				require.NoError(t, err)

				again, slotAgain, err := tbl.Resolve(ts)
				require.NoError(t, err)
				assert.Equal(t, dayID, again)
				assert.Equal(t, slotID, slotAgain)

				seen[[2]int{dayID, slotID}] = true
			}
		}
	}
	assert.Len(t, seen, 7*96)
}

func TestResolveKnownSlot(t *testing.T) {
	tbl := seededTable()

	// Monday 08:17 falls in slot 08_15_morning: hour 8 starts at slot
	// index 32, plus one quarter hour, 1-based.
	ts := time.Date(2026, 3, 2, 8, 17, 0, 0, time.UTC)
	dayID, slotID, err := tbl.Resolve(ts)
	require.NoError(t, err)
	assert.Equal(t, 1, dayID)
	assert.Equal(t, 8*4+1+1, slotID)
}

func TestResolveMissingReferenceRow(t *testing.T) {
	tbl := seededTable()
	delete(tbl.SlotIDs, "08_15_morning")

	_, _, err := tbl.Resolve(time.Date(2026, 3, 2, 8, 17, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBucketNotFound)

	tbl.DayIDs = map[int]int{}
	_, _, err = tbl.Resolve(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

func TestSeedSlotsShape(t *testing.T) {
	slots := SeedSlots()
	require.Len(t, slots, 96)
	assert.Equal(t, "00_00_overnight", slots[0])
	assert.Equal(t, "03_45_overnight", slots[15])
	assert.Equal(t, "04_00_dawn", slots[16])
	assert.Equal(t, "23_45_night", slots[95])

	// Slot names are unique.
	uniq := make(map[string]bool, len(slots))
	for _, s := range slots {
		uniq[s] = true
	}
	assert.Len(t, uniq, 96, fmt.Sprintf("expected 96 unique slots, got %d", len(uniq)))
}
