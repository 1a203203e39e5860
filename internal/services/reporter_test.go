package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"journey-metrics-service/internal/domain"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 8m 20s", FormatDuration(500))
	assert.Equal(t, "1h 0m 0s", FormatDuration(3600))
	assert.Equal(t, "2h 30m 5s", FormatDuration(9005))
	assert.Equal(t, "0h 0m 0s", FormatDuration(0))
}

func TestPrintBatchSummaryEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	NewReporter(out).PrintBatchSummary(nil)

	assert.Contains(t, out.String(), "No journeys to summarize")
}

func TestPrintBatchSummarySuccessfulJourney(t *testing.T) {
	result := &domain.JourneyResult{
		JourneyID:   1,
		JourneyName: "commute",
		Description: "home to office",
		Timestamp:   time.Now().UTC(),
		Modes: map[domain.Mode]*domain.ModeResult{
			domain.DrivingDirect: {
				Metrics: domain.RouteMetrics{DurationSeconds: 500, DistanceMeters: 6000, SpeedKPH: 43.2},
			},
			domain.DrivingRouted: {
				Metrics: domain.RouteMetrics{DurationSeconds: 600, DistanceMeters: 6000, SpeedKPH: 36.0},
				Legs: []domain.LegMetrics{
					{StartAddress: "1 Origin St", EndAddress: "2 Middle Ave", DurationSeconds: 300, DistanceMeters: 3000, SpeedKPH: 36.0},
					{StartAddress: "2 Middle Ave", EndAddress: "3 End Rd", DurationSeconds: 300, DistanceMeters: 3000, SpeedKPH: 36.0},
				},
			},
			domain.Transit: {Err: "upstream timeout"},
		},
	}

	out := &bytes.Buffer{}
	NewReporter(out).PrintBatchSummary([]*domain.JourneyResult{result})
	text := out.String()

	assert.Contains(t, text, "Journey: commute")
	assert.Contains(t, text, "Description: home to office")
	assert.Contains(t, text, "DIRECT ROUTES:")
	assert.Contains(t, text, "DRIVING (ROUTED WITH WAYPOINTS):")
	assert.Contains(t, text, "Duration: 0h 8m 20s")
	assert.Contains(t, text, "6.0 km")
	assert.Contains(t, text, "43.2 kph")

	// The failed transit task shows its error inline.
	assert.Contains(t, text, "TRANSIT:")
	assert.Contains(t, text, "Error: upstream timeout")

	// Multi-leg routes get the per-leg breakdown.
	assert.Contains(t, text, "Detailed Leg Information:")
	assert.Contains(t, text, "From: 1 Origin St")
	assert.Contains(t, text, "To: 3 End Rd")
}

func TestPrintBatchSummaryFailedJourney(t *testing.T) {
	result := &domain.JourneyResult{
		JourneyID:   2,
		JourneyName: "broken",
		Err:         "invalid timezone",
	}

	out := &bytes.Buffer{}
	NewReporter(out).PrintBatchSummary([]*domain.JourneyResult{result})
	text := out.String()

	assert.Contains(t, text, "Journey: broken")
	assert.Contains(t, text, "STATUS: FAILED")
	assert.Contains(t, text, "Error: invalid timezone")
	assert.NotContains(t, text, "DIRECT ROUTES:")
}
