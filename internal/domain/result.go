package domain

import (
	"encoding/json"
	"time"
)

// RouteMetrics are the aggregate travel costs of a full route.
type RouteMetrics struct {
	DurationSeconds int
	DistanceMeters  int
	SpeedKPH        float64
}

// LegMetrics are the travel costs of a single hop, with the provider's
// recorded endpoint addresses kept for waypoint resolution.
type LegMetrics struct {
	StartAddress    string
	EndAddress      string
	DurationSeconds int
	DistanceMeters  int
	SpeedKPH        float64
}

// ModeResult is the outcome of one mode task. Exactly one of the
// following holds: Err is non-empty (the provider call failed), or
// Metrics/Legs carry a measured route. Modes with no route at all
// never produce a ModeResult.
type ModeResult struct {
	Metrics RouteMetrics
	Legs    []LegMetrics
	Raw     json.RawMessage
	Err     string
}

// Failed reports whether this result is an error record rather than a
// measured route.
func (r *ModeResult) Failed() bool { return r.Err != "" }

// JourneyResult collects the per-mode outcomes of measuring one
// journey. A result with Err set represents a journey whose
// calculation or persistence failed; it still appears in the batch
// report.
type JourneyResult struct {
	JourneyID   int
	JourneyName string
	Description string
	Timestamp   time.Time
	Modes       map[Mode]*ModeResult
	Err         string
}

// Failed reports whether the journey as a whole failed.
func (r *JourneyResult) Failed() bool { return r.Err != "" }
