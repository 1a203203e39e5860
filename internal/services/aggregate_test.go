package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-metrics-service/internal/ports"
)

func TestSpeedKPH(t *testing.T) {
	// 6 km in 500 s is 43.2 kph.
	assert.InDelta(t, 43.2, SpeedKPH(6000, 500), 0.001)
	assert.InDelta(t, 36.0, SpeedKPH(3000, 300), 0.001)
}

func TestSpeedKPHDegenerateDurations(t *testing.T) {
	assert.Zero(t, SpeedKPH(5000, 0))
	assert.Zero(t, SpeedKPH(5000, -10))
	assert.Zero(t, SpeedKPH(0, 100))
}

func TestAggregateRouteSumsLegs(t *testing.T) {
	route := &ports.Route{
		Legs: []ports.RouteLeg{
			{StartAddress: "A", EndAddress: "B", DurationSeconds: 300, DistanceMeters: 3000},
			{StartAddress: "B", EndAddress: "C", DurationSeconds: 300, DistanceMeters: 3000},
		},
		Raw: json.RawMessage(`{"summary":"test"}`),
	}

	res := AggregateRoute(route)
	require.NotNil(t, res)
	assert.False(t, res.Failed())

	assert.Equal(t, 600, res.Metrics.DurationSeconds)
	assert.Equal(t, 6000, res.Metrics.DistanceMeters)
	assert.InDelta(t, 36.0, res.Metrics.SpeedKPH, 0.001)

	require.Len(t, res.Legs, 2)
	assert.Equal(t, "A", res.Legs[0].StartAddress)
	assert.Equal(t, "B", res.Legs[0].EndAddress)
	assert.InDelta(t, 36.0, res.Legs[0].SpeedKPH, 0.001)
	assert.Equal(t, json.RawMessage(`{"summary":"test"}`), res.Raw)
}

func TestAggregateRouteZeroDurationLeg(t *testing.T) {
	route := &ports.Route{
		Legs: []ports.RouteLeg{
			{DurationSeconds: 0, DistanceMeters: 1000},
		},
	}

	res := AggregateRoute(route)
	assert.Equal(t, 1000, res.Metrics.DistanceMeters)
	assert.Zero(t, res.Metrics.SpeedKPH)
	assert.Zero(t, res.Legs[0].SpeedKPH)
}
