// Package bucket resolves a local timestamp to its temporal bucket:
// an ISO day-of-week and one of the 96 fifteen-minute slots of the
// day. Resolution is a pure lookup against the pre-seeded reference
// tables; a miss means the reference data was never seeded correctly
// and is treated as fatal by callers.
package bucket

import (
	"errors"
	"fmt"
	"time"
)

// ErrBucketNotFound marks a computed slot or day with no matching
// reference row. This is a seeding/migration defect, not a transient
// condition; runs abort on it.
var ErrBucketNotFound = errors.New("time bucket not found in reference data")

// Table holds the reference-dimension ids loaded from the store.
type Table struct {
	// DayIDs maps ISO weekday (Monday=1 .. Sunday=7) to days_of_week id.
	DayIDs map[int]int
	// SlotIDs maps the seeded slot name ("HH_MM_period") to time_slots id.
	SlotIDs map[string]int
}

// Period names and their half-open hour ranges [start, end).
var periods = []struct {
	name  string
	start int
	end   int
}{
	{"overnight", 0, 4},
	{"dawn", 4, 8},
	{"morning", 8, 12},
	{"afternoon", 12, 16},
	{"evening", 16, 20},
	{"night", 20, 24},
}

// PeriodFor returns the named day-period containing the given hour.
func PeriodFor(hour int) string {
	for _, p := range periods {
		if hour >= p.start && hour < p.end {
			return p.name
		}
	}
	return ""
}

// SlotKey returns the "HH_MM" key for a timestamp, with the minute
// floored to the nearest lower multiple of 15.
func SlotKey(t time.Time) string {
	return fmt.Sprintf("%02d_%02d", t.Hour(), (t.Minute()/15)*15)
}

// SlotName returns the full seeded slot name, "HH_MM_period".
func SlotName(t time.Time) string {
	return SlotKey(t) + "_" + PeriodFor(t.Hour())
}

// ISOWeekday returns the ISO-8601 weekday number (Monday=1, Sunday=7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Resolve maps a local timestamp to its (day_of_week_id, time_slot_id)
// pair. Deterministic and total over the 96x7 valid combinations when
// the table is fully seeded; returns ErrBucketNotFound otherwise.
func (tbl *Table) Resolve(local time.Time) (dayID, slotID int, err error) {
	dayID, ok := tbl.DayIDs[ISOWeekday(local)]
	if !ok {
		return 0, 0, fmt.Errorf("resolve bucket: day %d: %w", ISOWeekday(local), ErrBucketNotFound)
	}

	name := SlotName(local)
	slotID, ok = tbl.SlotIDs[name]
	if !ok {
		return 0, 0, fmt.Errorf("resolve bucket: slot %q: %w", name, ErrBucketNotFound)
	}

	return dayID, slotID, nil
}

// SeedDays lists the ISO weekday names in id order (Monday first),
// matching the days_of_week reference seeding.
func SeedDays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
}

// SeedSlots lists all 96 slot names in id order (00_00 first),
// matching the time_slots reference seeding.
func SeedSlots() []string {
	slots := make([]string, 0, 96)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 15, 30, 45} {
			slots = append(slots, fmt.Sprintf("%02d_%02d_%s", hour, minute, PeriodFor(hour)))
		}
	}
	return slots
}
