package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"journey-metrics-service/internal/bucket"
	"journey-metrics-service/internal/domain"
	"journey-metrics-service/internal/ports"
)

// Postgres-backed implementation of the JourneyStore port.
type PostgresJourneyStore struct{ DB *sql.DB }

func NewPostgresJourneyStore(db *sql.DB) *PostgresJourneyStore {
	return &PostgresJourneyStore{DB: db}
}

// ActiveJourneys returns journeys in the active status together with
// their waypoints in sequence order. Journeys without waypoints are
// excluded; they have nothing to measure.
func (s *PostgresJourneyStore) ActiveJourneys(ctx context.Context) ([]*domain.Journey, error) {
	if s.DB == nil {
		return nil, errors.New("postgres journey store: DB is nil")
	}

	query := `
	SELECT
		j.id,
		j.name,
		j.description,
		j.city,
		j.state,
		j.country,
		j.timezone,
		COALESCE(j.error_message, ''),
		w.id,
		w.sequence_number,
		w.place_id,
		w.formatted_address,
		w.latitude,
		w.longitude
	FROM journeys j
	JOIN journey_statuses s ON s.id = j.status_id
	JOIN journey_waypoints w ON w.journey_id = j.id
	WHERE s.name = $1
	ORDER BY j.id, w.sequence_number;
	`
	rows, err := s.DB.QueryContext(ctx, query, string(domain.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active journeys: query: %w", err)
	}
	defer rows.Close()

	journeys := make([]*domain.Journey, 0, 16)
	var current *domain.Journey
	for rows.Next() {
		var j domain.Journey
		var wp domain.Waypoint
		err := rows.Scan(
			&j.ID, &j.Name, &j.Description, &j.City, &j.State, &j.Country,
			&j.Timezone, &j.ErrorMessage,
			&wp.ID, &wp.SequenceNumber, &wp.PlaceID, &wp.FormattedAddress,
			&wp.Latitude, &wp.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("list active journeys: scan row: %w", err)
		}

		if current == nil || current.ID != j.ID {
			j.Status = domain.StatusActive
			journeys = append(journeys, &j)
			current = journeys[len(journeys)-1]
		}
		wp.JourneyID = current.ID
		current.Waypoints = append(current.Waypoints, wp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active journeys: row iteration: %w", err)
	}

	return journeys, nil
}

// ReferenceData loads the dimension ids seeded by SeedReference.
func (s *PostgresJourneyStore) ReferenceData(ctx context.Context) (*ports.ReferenceData, error) {
	modeIDs, err := loadModeIDs(ctx, s.DB, `SELECT id, name FROM transit_modes;`)
	if err != nil {
		return nil, err
	}

	dayIDs, err := loadDayIDs(ctx, s.DB, `SELECT id, name FROM days_of_week;`)
	if err != nil {
		return nil, err
	}

	slotIDs, err := loadSlotIDs(ctx, s.DB, `SELECT id, name FROM time_slots;`)
	if err != nil {
		return nil, err
	}

	return &ports.ReferenceData{
		ModeIDs: modeIDs,
		Buckets: &bucket.Table{DayIDs: dayIDs, SlotIDs: slotIDs},
	}, nil
}

// LastMeasurementAt returns the creation instant of the newest
// measurement row, ok=false when the table is empty.
func (s *PostgresJourneyStore) LastMeasurementAt(ctx context.Context) (time.Time, bool, error) {
	return lastMeasurementAt(ctx, s.DB,
		`SELECT created_at FROM journey_measurements ORDER BY created_at DESC LIMIT 1;`)
}

// SaveMeasurements upserts all of a journey's measurements in one
// transaction. Each measurement keeps one row per (journey, mode);
// legs are replaced wholesale. A successful save clears the journey's
// recorded error message.
func (s *PostgresJourneyStore) SaveMeasurements(ctx context.Context, journeyID int, measurements []*domain.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save measurements: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT INTO journey_measurements (
		journey_id,
		transit_mode_id,
		measured_at,
		local_measured_at,
		day_of_week_id,
		time_slot_id,
		duration_seconds,
		distance_meters,
		speed_kph,
		raw_response,
		created_at
	)
	VALUES (
		$1,
		(SELECT id FROM transit_modes WHERE name = $2),
		$3, $4, $5, $6, $7, $8, $9, $10, now()
	)
	ON CONFLICT (journey_id, transit_mode_id) DO UPDATE SET
		measured_at = EXCLUDED.measured_at,
		local_measured_at = EXCLUDED.local_measured_at,
		day_of_week_id = EXCLUDED.day_of_week_id,
		time_slot_id = EXCLUDED.time_slot_id,
		duration_seconds = EXCLUDED.duration_seconds,
		distance_meters = EXCLUDED.distance_meters,
		speed_kph = EXCLUDED.speed_kph,
		raw_response = EXCLUDED.raw_response,
		created_at = now()
	RETURNING id;
	`
	insertLeg := `
	INSERT INTO journey_legs (
		journey_measurement_id,
		sequence_number,
		start_waypoint_id,
		end_waypoint_id,
		duration_seconds,
		distance_meters,
		speed_kph
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	for _, m := range measurements {
		var measurementID int
		err := tx.QueryRowContext(ctx, upsert,
			journeyID, m.Mode.String(), m.Timestamp, m.LocalTimestamp,
			m.DayOfWeekID, m.TimeSlotID,
			m.DurationSeconds, m.DistanceMeters, m.SpeedKPH,
			rawOrNull(m.RawResponse),
		).Scan(&measurementID)
		if err != nil {
			return fmt.Errorf("save measurements: upsert mode %s: %w", m.Mode, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM journey_legs WHERE journey_measurement_id = $1;`, measurementID); err != nil {
			return fmt.Errorf("save measurements: clear legs for mode %s: %w", m.Mode, err)
		}

		for _, leg := range m.Legs {
			_, err := tx.ExecContext(ctx, insertLeg,
				measurementID, leg.SequenceNumber,
				leg.StartWaypointID, leg.EndWaypointID,
				leg.DurationSeconds, leg.DistanceMeters, leg.SpeedKPH,
			)
			if err != nil {
				return fmt.Errorf("save measurements: insert leg %d for mode %s: %w", leg.SequenceNumber, m.Mode, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE journeys SET error_message = NULL, updated_at = now() WHERE id = $1;`, journeyID); err != nil {
		return fmt.Errorf("save measurements: clear journey error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save measurements: commit tx: %w", err)
	}

	return nil
}

// SetJourneyError records a failure message on the journey row.
func (s *PostgresJourneyStore) SetJourneyError(ctx context.Context, journeyID int, message string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE journeys SET error_message = $1, updated_at = now() WHERE id = $2;`, message, journeyID)
	if err != nil {
		return fmt.Errorf("set journey error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set journey error: journey %d not found", journeyID)
	}
	return nil
}
