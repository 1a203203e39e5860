package services

import (
	"journey-metrics-service/internal/domain"
	"journey-metrics-service/internal/ports"
)

// SpeedKPH computes average speed in kilometers per hour.
// Non-positive durations yield 0.0 rather than an error: a degenerate
// route is recorded as stationary, never divides by zero.
func SpeedKPH(distanceMeters, durationSeconds int) float64 {
	if durationSeconds <= 0 {
		return 0.0
	}
	return (float64(distanceMeters) / 1000) / (float64(durationSeconds) / 3600)
}

// AggregateRoute turns a raw provider route into route-level and
// leg-level metrics. Pure: route totals are the sums of the leg
// values, and absent leg fields contribute zero.
func AggregateRoute(route *ports.Route) *domain.ModeResult {
	var totalDuration, totalDistance int
	legs := make([]domain.LegMetrics, 0, len(route.Legs))

	for _, leg := range route.Legs {
		totalDuration += leg.DurationSeconds
		totalDistance += leg.DistanceMeters

		legs = append(legs, domain.LegMetrics{
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DurationSeconds: leg.DurationSeconds,
			DistanceMeters:  leg.DistanceMeters,
			SpeedKPH:        SpeedKPH(leg.DistanceMeters, leg.DurationSeconds),
		})
	}

	return &domain.ModeResult{
		Metrics: domain.RouteMetrics{
			DurationSeconds: totalDuration,
			DistanceMeters:  totalDistance,
			SpeedKPH:        SpeedKPH(totalDistance, totalDuration),
		},
		Legs: legs,
		Raw:  route.Raw,
	}
}
