package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"journey-metrics-service/internal/domain"
	"journey-metrics-service/internal/ports"
)

// MeasurementPublisher receives each measurement after its journey's
// transaction commits. Publish failures are logged, never fatal.
type MeasurementPublisher interface {
	PublishMeasurement(journeyName string, measurement *domain.Measurement) error
}

// BatchMetrics is the instrumentation sink the scheduler reports to.
// Implemented by the prometheus collector; wired in the composition
// root.
type BatchMetrics interface {
	JourneyProcessed(failed bool)
	TaskResult(mode string, failed bool)
	ObserveJourneyDuration(d time.Duration)
	SetActiveJourneys(n int)
}

// SchedulerConfig carries the explicit batch knobs.
type SchedulerConfig struct {
	// Skip the whole run when the newest measurement is younger than
	// this. Zero disables gating.
	MinInterval time.Duration
}

// Scheduler runs one full measurement batch over all eligible
// journeys, sequentially between journeys, isolating failures so a
// bad journey never aborts the rest of the batch.
type Scheduler struct {
	store     ports.JourneyStore
	calc      *Calculator
	reporter  *Reporter
	cfg       SchedulerConfig
	publisher MeasurementPublisher
	metrics   BatchMetrics
	now       func() time.Time
}

func NewScheduler(store ports.JourneyStore, calc *Calculator, reporter *Reporter, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		store:    store,
		calc:     calc,
		reporter: reporter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithPublisher attaches an optional post-commit measurement sink.
func (s *Scheduler) WithPublisher(p MeasurementPublisher) *Scheduler {
	s.publisher = p
	return s
}

// WithMetrics attaches an optional instrumentation sink.
func (s *Scheduler) WithMetrics(m BatchMetrics) *Scheduler {
	s.metrics = m
	return s
}

// BatchSummary is the outcome of one Run. Every attempted journey
// appears in Results, successful or not.
type BatchSummary struct {
	Started  time.Time
	Finished time.Time
	Skipped  bool
	Results  []*domain.JourneyResult
}

// Run executes one batch: load reference data and eligible journeys,
// measure each journey, persist its measurements in a per-journey
// transaction, and print the batch report. Only batch-level failures
// (reference data, journey listing, bucket misconfiguration) abort
// the run; per-journey failures are recorded and processing
// continues.
func (s *Scheduler) Run(ctx context.Context) (*BatchSummary, error) {
	started := s.now().UTC()
	summary := &BatchSummary{Started: started}

	if s.cfg.MinInterval > 0 {
		last, ok, err := s.store.LastMeasurementAt(ctx)
		if err != nil {
			return nil, fmt.Errorf("scheduler: read last measurement time: %w", err)
		}
		if ok {
			age := started.Sub(last)
			if age < s.cfg.MinInterval {
				log.Printf("scheduler: skipping run, last measurement is %s old (minimum %s)",
					age.Round(time.Second), s.cfg.MinInterval)
				summary.Skipped = true
				summary.Finished = s.now().UTC()
				return summary, nil
			}
		} else {
			log.Printf("scheduler: no prior measurements found, proceeding")
		}
	}

	ref, err := s.store.ReferenceData(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load reference data: %w", err)
	}

	journeys, err := s.store.ActiveJourneys(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load active journeys: %w", err)
	}
	log.Printf("scheduler: starting batch journeys=%d", len(journeys))
	if s.metrics != nil {
		s.metrics.SetActiveJourneys(len(journeys))
	}

	for _, journey := range journeys {
		journeyStart := s.now()

		result, err := s.processJourney(ctx, ref, journey)
		if err != nil {
			// Bucket misconfiguration is fatal: reference data is
			// broken and every remaining journey would fail the same
			// way.
			return nil, err
		}
		summary.Results = append(summary.Results, result)

		if s.metrics != nil {
			s.metrics.JourneyProcessed(result.Failed())
			s.metrics.ObserveJourneyDuration(s.now().Sub(journeyStart))
			for mode, res := range result.Modes {
				s.metrics.TaskResult(mode.String(), res.Failed())
			}
		}
	}

	s.reporter.PrintBatchSummary(summary.Results)

	summary.Finished = s.now().UTC()
	elapsed := summary.Finished.Sub(started)
	log.Printf("scheduler: batch complete journeys=%d elapsed=%s", len(journeys), elapsed.Round(time.Millisecond))
	if len(journeys) > 0 {
		log.Printf("scheduler: average per journey %s", (elapsed / time.Duration(len(journeys))).Round(time.Millisecond))
	}

	return summary, nil
}

// failJourney records a per-journey failure: logged, written to the
// journey's error_message, and represented in the batch report.
func (s *Scheduler) failJourney(ctx context.Context, journey *domain.Journey, when time.Time, cause error) *domain.JourneyResult {
	log.Printf("scheduler: journey %q failed: %v", journey.Name, cause)

	if err := s.store.SetJourneyError(ctx, journey.ID, cause.Error()); err != nil {
		log.Printf("scheduler: journey %q: record error message: %v", journey.Name, err)
	}

	return &domain.JourneyResult{
		JourneyID:   journey.ID,
		JourneyName: journey.Name,
		Description: journey.Description,
		Timestamp:   when,
		Err:         cause.Error(),
	}
}

// processJourney measures and persists one journey. The returned
// error is non-nil only for batch-fatal conditions; every per-journey
// failure is folded into the returned result instead.
func (s *Scheduler) processJourney(ctx context.Context, ref *ports.ReferenceData, journey *domain.Journey) (*domain.JourneyResult, error) {
	departAt := s.now().UTC()

	// A journey without a valid IANA timezone cannot have its bucket
	// resolved. Never default to UTC: skip with a recorded failure.
	if journey.Timezone == "" {
		return s.failJourney(ctx, journey, departAt, errors.New("journey has no timezone")), nil
	}
	loc, err := time.LoadLocation(journey.Timezone)
	if err != nil {
		return s.failJourney(ctx, journey, departAt, fmt.Errorf("invalid timezone %q: %w", journey.Timezone, err)), nil
	}

	result, err := s.calc.ProcessJourney(ctx, journey, departAt)
	if err != nil {
		return s.failJourney(ctx, journey, departAt, err), nil
	}

	local := departAt.In(loc)
	dayID, slotID, err := ref.Buckets.Resolve(local)
	if err != nil {
		// Seeding defect; abort the whole run with a clear diagnostic.
		return nil, fmt.Errorf("scheduler: journey %q: %w", journey.Name, err)
	}

	measurements := make([]*domain.Measurement, 0, len(result.Modes))
	for mode, res := range result.Modes {
		if res.Failed() {
			continue
		}
		if _, ok := ref.ModeIDs[mode]; !ok {
			return nil, fmt.Errorf("scheduler: transit mode %q missing from reference data", mode)
		}

		measurements = append(measurements, &domain.Measurement{
			JourneyID:       journey.ID,
			Mode:            mode,
			Timestamp:       departAt,
			LocalTimestamp:  local,
			DayOfWeekID:     dayID,
			TimeSlotID:      slotID,
			DurationSeconds: res.Metrics.DurationSeconds,
			DistanceMeters:  res.Metrics.DistanceMeters,
			SpeedKPH:        res.Metrics.SpeedKPH,
			RawResponse:     res.Raw,
			Legs:            resolveLegs(journey, mode, res.Legs),
		})
	}

	if len(measurements) > 0 {
		if err := s.store.SaveMeasurements(ctx, journey.ID, measurements); err != nil {
			return s.failJourney(ctx, journey, departAt, fmt.Errorf("persist measurements: %w", err)), nil
		}
		if s.publisher != nil {
			for _, m := range measurements {
				if err := s.publisher.PublishMeasurement(journey.Name, m); err != nil {
					log.Printf("scheduler: journey %q: publish %s measurement: %v", journey.Name, m.Mode, err)
				}
			}
		}
	}

	return result, nil
}

// resolveLegs maps a route's legs onto the journey's waypoints.
// Positional mapping is exact whenever the leg count matches the
// waypoint chain (routed driving) or the route is a single
// origin-to-destination hop; otherwise legs are matched by the
// provider's formatted address. The final first-waypoint fallback is
// a known approximation and is always logged.
func resolveLegs(journey *domain.Journey, mode domain.Mode, legs []domain.LegMetrics) []domain.Leg {
	wps := journey.Waypoints
	out := make([]domain.Leg, 0, len(legs))

	for i, leg := range legs {
		var start, end domain.Waypoint
		switch {
		case mode.Routed() && len(legs)+1 == len(wps):
			start, end = wps[i], wps[i+1]
		case len(legs) == 1:
			start, end = wps[0], wps[len(wps)-1]
		default:
			start = waypointByAddress(journey, leg.StartAddress)
			end = waypointByAddress(journey, leg.EndAddress)
		}

		out = append(out, domain.Leg{
			SequenceNumber:  i + 1,
			StartWaypointID: start.ID,
			EndWaypointID:   end.ID,
			DurationSeconds: leg.DurationSeconds,
			DistanceMeters:  leg.DistanceMeters,
			SpeedKPH:        leg.SpeedKPH,
		})
	}

	return out
}

func waypointByAddress(journey *domain.Journey, address string) domain.Waypoint {
	for _, wp := range journey.Waypoints {
		if wp.FormattedAddress == address {
			return wp
		}
	}
	log.Printf("scheduler: journey %q: no waypoint matches address %q, attributing to first waypoint",
		journey.Name, address)
	return journey.Waypoints[0]
}
