package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-metrics-service/internal/adapters/directions"
	"journey-metrics-service/internal/domain"
	"journey-metrics-service/internal/ports"
)

func testJourney(waypoints int) *domain.Journey {
	j := &domain.Journey{
		ID:       1,
		Name:     "commute",
		Timezone: "America/New_York",
		Status:   domain.StatusActive,
	}
	addresses := []string{"1 Origin St", "2 Middle Ave", "3 End Rd", "4 Far Blvd"}
	for i := 0; i < waypoints; i++ {
		j.Waypoints = append(j.Waypoints, domain.Waypoint{
			ID:               10 + i,
			JourneyID:        1,
			SequenceNumber:   i + 1,
			PlaceID:          "pid-" + string(rune('a'+i)),
			FormattedAddress: addresses[i],
		})
	}
	return j
}

func fullMockRoutes() []directions.MockRoute {
	direct := func(mode string, seconds, meters int) directions.MockRoute {
		return directions.MockRoute{
			Mode: mode,
			Legs: []ports.RouteLeg{{
				StartAddress:    "1 Origin St",
				EndAddress:      "3 End Rd",
				DurationSeconds: seconds,
				DistanceMeters:  meters,
			}},
		}
	}
	return []directions.MockRoute{
		direct("driving", 500, 6000),
		direct("bicycling", 1500, 5500),
		direct("walking", 4000, 5000),
		direct("transit", 1200, 7000),
		{
			Mode:   "driving",
			Routed: true,
			Legs: []ports.RouteLeg{
				{StartAddress: "1 Origin St", EndAddress: "2 Middle Ave", DurationSeconds: 300, DistanceMeters: 3000},
				{StartAddress: "2 Middle Ave", EndAddress: "3 End Rd", DurationSeconds: 300, DistanceMeters: 3000},
			},
		},
	}
}

func newTestCalculator(t *testing.T, provider ports.DirectionsProvider) *Calculator {
	t.Helper()
	calc := NewCalculator(provider, CalculatorConfig{MaxWorkers: 4})
	t.Cleanup(calc.Close)
	return calc
}

func TestProcessJourneyMeasuresAllModes(t *testing.T) {
	mock := directions.NewMockDirectionsProvider(fullMockRoutes())
	calc := newTestCalculator(t, mock)

	departAt := time.Now().UTC()
	result, err := calc.ProcessJourney(context.Background(), testJourney(3), departAt)
	require.NoError(t, err)

	require.Len(t, result.Modes, 5)
	assert.Equal(t, 500, result.Modes[domain.DrivingDirect].Metrics.DurationSeconds)
	assert.InDelta(t, 43.2, result.Modes[domain.DrivingDirect].Metrics.SpeedKPH, 0.001)

	routed := result.Modes[domain.DrivingRouted]
	require.NotNil(t, routed)
	assert.Equal(t, 600, routed.Metrics.DurationSeconds)
	assert.Equal(t, 6000, routed.Metrics.DistanceMeters)
	require.Len(t, routed.Legs, 2)
}

func TestProcessJourneyRoutedRequestCarriesWaypoints(t *testing.T) {
	mock := directions.NewMockDirectionsProvider(fullMockRoutes())
	calc := newTestCalculator(t, mock)

	departAt := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	_, err := calc.ProcessJourney(context.Background(), testJourney(3), departAt)
	require.NoError(t, err)

	requests := mock.Requests()
	require.Len(t, requests, 5)

	var routed *ports.RouteRequest
	for i := range requests {
		assert.Equal(t, "place_id:pid-a", requests[i].Origin)
		assert.Equal(t, "place_id:pid-c", requests[i].Destination)
		assert.Equal(t, departAt, requests[i].DepartAt)
		if len(requests[i].Waypoints) > 0 {
			routed = &requests[i]
		}
	}
	require.NotNil(t, routed, "expected one waypoint-routed request")
	assert.Equal(t, "driving", routed.Mode)
	assert.Equal(t, []string{"place_id:pid-b"}, routed.Waypoints)
}

func TestProcessJourneySkipsRoutedWithoutIntermediates(t *testing.T) {
	mock := directions.NewMockDirectionsProvider(fullMockRoutes())
	calc := newTestCalculator(t, mock)

	result, err := calc.ProcessJourney(context.Background(), testJourney(2), time.Now().UTC())
	require.NoError(t, err)

	assert.NotContains(t, result.Modes, domain.DrivingRouted)
	require.Len(t, mock.Requests(), 4)
	for _, req := range mock.Requests() {
		assert.Empty(t, req.Waypoints)
	}
}

func TestProcessJourneyIsolatesModeFailures(t *testing.T) {
	routes := fullMockRoutes()
	for i := range routes {
		if routes[i].Mode == "transit" {
			routes[i].Err = errors.New("upstream timeout")
		}
	}
	mock := directions.NewMockDirectionsProvider(routes)
	calc := newTestCalculator(t, mock)

	result, err := calc.ProcessJourney(context.Background(), testJourney(3), time.Now().UTC())
	require.NoError(t, err)

	transit := result.Modes[domain.Transit]
	require.NotNil(t, transit)
	assert.True(t, transit.Failed())
	assert.Contains(t, transit.Err, "upstream timeout")

	for _, mode := range []domain.Mode{domain.DrivingDirect, domain.DrivingRouted, domain.Bicycling, domain.Walking} {
		res := result.Modes[mode]
		require.NotNil(t, res, "mode %s missing", mode)
		assert.False(t, res.Failed(), "mode %s unexpectedly failed", mode)
	}
}

func TestProcessJourneyOmitsModesWithoutRoutes(t *testing.T) {
	// Only driving is configured; every other lookup finds no route.
	mock := directions.NewMockDirectionsProvider([]directions.MockRoute{
		{Mode: "driving", Legs: []ports.RouteLeg{{DurationSeconds: 500, DistanceMeters: 6000}}},
	})
	calc := newTestCalculator(t, mock)

	result, err := calc.ProcessJourney(context.Background(), testJourney(2), time.Now().UTC())
	require.NoError(t, err)

	require.Len(t, result.Modes, 1)
	assert.Contains(t, result.Modes, domain.DrivingDirect)
}

func TestProcessJourneyRejectsUnmeasurableJourney(t *testing.T) {
	mock := directions.NewMockDirectionsProvider(nil)
	calc := newTestCalculator(t, mock)

	_, err := calc.ProcessJourney(context.Background(), testJourney(1), time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTasks)
	assert.Empty(t, mock.Requests())
}
