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

// ErrNoTasks is returned for journeys that cannot produce a single
// measurable task (fewer than two waypoints).
var ErrNoTasks = errors.New("no measurable tasks for journey")

// modeTask is one directions lookup for a journey: a mode plus,
// for the routed driving variant, the intermediate waypoint chain.
type modeTask struct {
	mode     domain.Mode
	origin   string
	dest     string
	vias     []string
	departAt time.Time
}

type taskResult struct {
	mode   domain.Mode
	result *domain.ModeResult // nil means the provider found no route
}

// Calculator fans a journey's mode tasks out onto a bounded worker
// pool and collects the per-mode metrics. It owns the pool: callers
// must Close it when the batch scope ends.
type Calculator struct {
	provider   ports.DirectionsProvider
	pool       *workerPool
	maxWorkers int
	debug      bool
}

// CalculatorConfig carries the explicit knobs the calculator needs.
type CalculatorConfig struct {
	MaxWorkers int
	Debug      bool
}

func NewCalculator(provider ports.DirectionsProvider, cfg CalculatorConfig) *Calculator {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 4
	}
	return &Calculator{
		provider:   provider,
		pool:       newWorkerPool(workers),
		maxWorkers: workers,
		debug:      cfg.Debug,
	}
}

// Close drains the worker pool. Safe to defer immediately after
// construction regardless of whether any journey was processed.
func (c *Calculator) Close() { c.pool.Close() }

// placeRef formats a waypoint's place id as a provider location
// parameter.
func placeRef(wp domain.Waypoint) string {
	return "place_id:" + wp.PlaceID
}

// buildTasks produces the task set for one journey: a direct task per
// base mode, plus the waypoint-routed driving task when intermediates
// exist. All tasks share the same departure instant so the modes are
// compared at one point in time.
func (c *Calculator) buildTasks(journey *domain.Journey, departAt time.Time) []modeTask {
	if !journey.Measurable() {
		return nil
	}

	origin := placeRef(journey.Origin())
	dest := placeRef(journey.Destination())

	var vias []string
	for _, wp := range journey.Intermediates() {
		vias = append(vias, placeRef(wp))
	}

	tasks := make([]modeTask, 0, len(domain.DirectModes())+1)
	for _, mode := range domain.DirectModes() {
		tasks = append(tasks, modeTask{mode: mode, origin: origin, dest: dest, departAt: departAt})
	}
	if len(vias) > 0 {
		tasks = append(tasks, modeTask{mode: domain.DrivingRouted, origin: origin, dest: dest, vias: vias, departAt: departAt})
	}

	return tasks
}

// runTask executes one directions lookup. Provider failures become an
// error record for that mode; an empty provider result becomes a nil
// result. Neither aborts the other tasks.
func (c *Calculator) runTask(ctx context.Context, task modeTask) taskResult {
	if c.debug {
		log.Printf("calculator: requesting mode=%s routed=%t", task.mode, task.mode.Routed())
	}

	route, err := c.provider.Routes(ctx, ports.RouteRequest{
		Origin:      task.origin,
		Destination: task.dest,
		Mode:        task.mode.ProviderMode(),
		Waypoints:   task.vias,
		DepartAt:    task.departAt,
	})
	if err != nil {
		log.Printf("calculator: mode=%s error: %v", task.mode, err)
		return taskResult{mode: task.mode, result: &domain.ModeResult{Err: err.Error()}}
	}
	if route == nil || len(route.Legs) == 0 {
		if c.debug {
			log.Printf("calculator: mode=%s no route found", task.mode)
		}
		return taskResult{mode: task.mode}
	}

	return taskResult{mode: task.mode, result: AggregateRoute(route)}
}

// ProcessJourney runs the full task set for one journey and returns
// the per-mode results keyed by mode. Results are collected in
// completion order; the scheduler consumes the map by key. One mode's
// failure never aborts the others.
func (c *Calculator) ProcessJourney(ctx context.Context, journey *domain.Journey, departAt time.Time) (*domain.JourneyResult, error) {
	tasks := c.buildTasks(journey, departAt)
	if len(tasks) == 0 {
		return nil, fmt.Errorf("process journey %q: %w", journey.Name, ErrNoTasks)
	}

	results := make(chan taskResult, len(tasks))
	for _, task := range tasks {
		task := task
		c.pool.Submit(func() {
			results <- c.runTask(ctx, task)
		})
	}

	// Fan-in barrier: exactly one result per submitted task.
	modes := make(map[domain.Mode]*domain.ModeResult, len(tasks))
	for range tasks {
		res := <-results
		if res.result != nil {
			modes[res.mode] = res.result
		}
	}

	return &domain.JourneyResult{
		JourneyID:   journey.ID,
		JourneyName: journey.Name,
		Description: journey.Description,
		Timestamp:   departAt,
		Modes:       modes,
	}, nil
}
