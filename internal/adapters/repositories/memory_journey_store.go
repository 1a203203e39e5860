package repositories

import (
	"context"
	"sync"
	"time"

	"journey-metrics-service/internal/bucket"
	"journey-metrics-service/internal/domain"
	"journey-metrics-service/internal/ports"
)

// MemoryJourneyStore is an in-memory JourneyStore for tests and dry
// runs. Reference data is synthesized with the same shape and ordering
// the SQL seeders produce.
type MemoryJourneyStore struct {
	mu           sync.Mutex
	journeys     []*domain.Journey
	measurements map[int]map[domain.Mode]*domain.Measurement
	errors       map[int]string
	lastSavedAt  time.Time

	// SaveErr, when set, makes every SaveMeasurements call fail.
	SaveErr error
}

func NewMemoryJourneyStore(journeys []*domain.Journey) *MemoryJourneyStore {
	return &MemoryJourneyStore{
		journeys:     journeys,
		measurements: make(map[int]map[domain.Mode]*domain.Measurement),
		errors:       make(map[int]string),
	}
}

func (s *MemoryJourneyStore) ActiveJourneys(ctx context.Context) ([]*domain.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Journey, 0, len(s.journeys))
	for _, j := range s.journeys {
		if j.Status == domain.StatusActive && len(j.Waypoints) > 0 {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *MemoryJourneyStore) ReferenceData(ctx context.Context) (*ports.ReferenceData, error) {
	modeIDs := make(map[domain.Mode]int, len(domain.AllModes()))
	for i, m := range domain.AllModes() {
		modeIDs[m] = i + 1
	}

	dayIDs := make(map[int]int, 7)
	for i := range bucket.SeedDays() {
		dayIDs[i+1] = i + 1
	}

	slotIDs := make(map[string]int, 96)
	for i, name := range bucket.SeedSlots() {
		slotIDs[name] = i + 1
	}

	return &ports.ReferenceData{
		ModeIDs: modeIDs,
		Buckets: &bucket.Table{DayIDs: dayIDs, SlotIDs: slotIDs},
	}, nil
}

func (s *MemoryJourneyStore) LastMeasurementAt(ctx context.Context) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastSavedAt.IsZero() {
		return time.Time{}, false, nil
	}
	return s.lastSavedAt, true, nil
}

func (s *MemoryJourneyStore) SaveMeasurements(ctx context.Context, journeyID int, measurements []*domain.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	byMode := s.measurements[journeyID]
	if byMode == nil {
		byMode = make(map[domain.Mode]*domain.Measurement)
		s.measurements[journeyID] = byMode
	}
	for _, m := range measurements {
		byMode[m.Mode] = m
	}
	delete(s.errors, journeyID)
	s.lastSavedAt = time.Now().UTC()
	return nil
}

func (s *MemoryJourneyStore) SetJourneyError(ctx context.Context, journeyID int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors[journeyID] = message
	return nil
}

// Measurements returns the stored measurements for a journey keyed by
// mode, nil when none were saved.
func (s *MemoryJourneyStore) Measurements(journeyID int) map[domain.Mode]*domain.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.measurements[journeyID]
}

// JourneyError returns the recorded error message for a journey.
func (s *MemoryJourneyStore) JourneyError(journeyID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.errors[journeyID]
	return msg, ok
}

// SetLastMeasurementAt overrides the gating timestamp.
func (s *MemoryJourneyStore) SetLastMeasurementAt(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSavedAt = t
}
