package ports

import (
	"context"
	"time"

	"journey-metrics-service/internal/bucket"
	"journey-metrics-service/internal/domain"
)

// ReferenceData bundles the static dimension ids a batch run needs:
// the transit_modes ids keyed by mode, and the day/slot bucket table.
type ReferenceData struct {
	ModeIDs map[domain.Mode]int
	Buckets *bucket.Table
}

// Port: the transactional boundary for journey measurement
// persistence.
type JourneyStore interface {
	// Return journeys with active status and at least one waypoint,
	// waypoints loaded in sequence order.
	ActiveJourneys(ctx context.Context) ([]*domain.Journey, error)

	// Load the static reference dimensions. Incomplete reference data
	// is a seeding defect and is surfaced as an error.
	ReferenceData(ctx context.Context) (*ReferenceData, error)

	// Return the creation instant of the newest measurement, or
	// ok=false when none exist. Used to gate batch runs.
	LastMeasurementAt(ctx context.Context) (t time.Time, ok bool, err error)

	// Persist all of a journey's measurements in one transaction:
	// upsert each on (journey_id, transit_mode_id) and replace its
	// legs wholesale. Rolls back the whole journey on any failure.
	SaveMeasurements(ctx context.Context, journeyID int, measurements []*domain.Measurement) error

	// Record a failure message on the journey. Status promotion to
	// the error state is an operator decision and not done here.
	SetJourneyError(ctx context.Context, journeyID int, message string) error
}
