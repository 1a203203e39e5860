package services

import (
	"fmt"
	"io"
	"strings"

	"journey-metrics-service/internal/domain"
)

// Reporter formats a human-readable summary of a completed batch.
// Every attempted journey appears, successful or failed.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// FormatDuration renders seconds as "Hh Mm Ss".
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
}

func metersToMiles(meters float64) float64 { return meters / 1609.34 }

func kphToMPH(kph float64) float64 { return kph * 0.621371 }

// PrintBatchSummary writes the summary for every completed journey.
func (r *Reporter) PrintBatchSummary(results []*domain.JourneyResult) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, "No journeys to summarize")
		return
	}
	for _, result := range results {
		r.printJourneySummary(result)
	}
}

func (r *Reporter) printJourneySummary(result *domain.JourneyResult) {
	rule := strings.Repeat("=", 80)

	fmt.Fprintf(r.out, "\n%s\n", rule)
	fmt.Fprintf(r.out, "Journey: %s\n", result.JourneyName)
	if result.Description != "" {
		fmt.Fprintf(r.out, "Description: %s\n", result.Description)
	}
	fmt.Fprintln(r.out, rule)

	if result.Failed() {
		fmt.Fprintf(r.out, "\nSTATUS: FAILED\nError: %s\n%s\n", result.Err, rule)
		return
	}

	fmt.Fprintln(r.out, "\nDIRECT ROUTES:")
	fmt.Fprintln(r.out, strings.Repeat("-", 40))
	for _, mode := range domain.DirectModes() {
		if res, ok := result.Modes[mode]; ok {
			r.printModeDetails(mode, res)
		}
	}

	// The waypoint-routed drive gets its own section with leg detail.
	if res, ok := result.Modes[domain.DrivingRouted]; ok {
		fmt.Fprintf(r.out, "\n%s\n", rule)
		fmt.Fprintln(r.out, "DRIVING (ROUTED WITH WAYPOINTS):")
		fmt.Fprintln(r.out, strings.Repeat("-", 40))
		r.printModeDetails(domain.DrivingRouted, res)
	}

	fmt.Fprintf(r.out, "\n%s\n", rule)
}

func (r *Reporter) printModeDetails(mode domain.Mode, res *domain.ModeResult) {
	fmt.Fprintf(r.out, "\n%s:\n", strings.ToUpper(mode.String()))

	if res.Failed() {
		fmt.Fprintf(r.out, "Error: %s\n", res.Err)
		return
	}

	m := res.Metrics
	km := float64(m.DistanceMeters) / 1000
	fmt.Fprintf(r.out, "Duration: %s\n", FormatDuration(m.DurationSeconds))
	fmt.Fprintf(r.out, "Distance: %.1f km (%.1f miles)\n", km, metersToMiles(float64(m.DistanceMeters)))
	fmt.Fprintf(r.out, "Average Speed: %.1f kph (%.1f mph)\n", m.SpeedKPH, kphToMPH(m.SpeedKPH))

	if len(res.Legs) > 1 {
		fmt.Fprintln(r.out, "\nDetailed Leg Information:")
		for i, leg := range res.Legs {
			fmt.Fprintf(r.out, "\nLeg %d:\n", i+1)
			fmt.Fprintf(r.out, "From: %s\n", leg.StartAddress)
			fmt.Fprintf(r.out, "To: %s\n", leg.EndAddress)
			fmt.Fprintf(r.out, "Duration: %s\n", FormatDuration(leg.DurationSeconds))
			fmt.Fprintf(r.out, "Distance: %.1f km (%.1f miles)\n",
				float64(leg.DistanceMeters)/1000, metersToMiles(float64(leg.DistanceMeters)))
			fmt.Fprintf(r.out, "Speed: %.1f kph (%.1f mph)\n", leg.SpeedKPH, kphToMPH(leg.SpeedKPH))
		}
	}
}
