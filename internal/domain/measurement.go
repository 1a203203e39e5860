package domain

import (
	"encoding/json"
	"time"
)

// Measurement is the current travel-cost snapshot for one
// (journey, mode) pair. Re-measuring overwrites the existing row;
// at most one live row exists per pair.
type Measurement struct {
	JourneyID       int
	Mode            Mode
	Timestamp       time.Time // observation instant, UTC
	LocalTimestamp  time.Time // same instant in the journey's timezone
	DayOfWeekID     int
	TimeSlotID      int
	DurationSeconds int
	DistanceMeters  int
	SpeedKPH        float64
	RawResponse     json.RawMessage
	Legs            []Leg
}

// Leg is one hop of a measured route. Legs are replaced wholesale
// whenever their measurement is updated; sequence numbers are
// contiguous starting at 1.
type Leg struct {
	SequenceNumber  int
	StartWaypointID int
	EndWaypointID   int
	DurationSeconds int
	DistanceMeters  int
	SpeedKPH        float64
}
