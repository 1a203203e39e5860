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

// SQLite-backed implementation of the JourneyStore port. Used for
// local runs and tests; semantics mirror the postgres store.
type SqliteJourneyStore struct{ DB *sql.DB }

func NewSqliteJourneyStore(db *sql.DB) *SqliteJourneyStore {
	return &SqliteJourneyStore{DB: db}
}

func (s *SqliteJourneyStore) ActiveJourneys(ctx context.Context) ([]*domain.Journey, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite journey store: DB is nil")
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
	WHERE s.name = ?
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

func (s *SqliteJourneyStore) ReferenceData(ctx context.Context) (*ports.ReferenceData, error) {
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

func (s *SqliteJourneyStore) LastMeasurementAt(ctx context.Context) (time.Time, bool, error) {
	return lastMeasurementAt(ctx, s.DB,
		`SELECT created_at FROM journey_measurements ORDER BY created_at DESC LIMIT 1;`)
}

func (s *SqliteJourneyStore) SaveMeasurements(ctx context.Context, journeyID int, measurements []*domain.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save measurements: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

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
		?,
		(SELECT id FROM transit_modes WHERE name = ?),
		?, ?, ?, ?, ?, ?, ?, ?, ?
	)
	ON CONFLICT (journey_id, transit_mode_id) DO UPDATE SET
		measured_at = excluded.measured_at,
		local_measured_at = excluded.local_measured_at,
		day_of_week_id = excluded.day_of_week_id,
		time_slot_id = excluded.time_slot_id,
		duration_seconds = excluded.duration_seconds,
		distance_meters = excluded.distance_meters,
		speed_kph = excluded.speed_kph,
		raw_response = excluded.raw_response,
		created_at = excluded.created_at;
	`
	selectID := `
	SELECT id FROM journey_measurements
	WHERE journey_id = ?
	  AND transit_mode_id = (SELECT id FROM transit_modes WHERE name = ?);
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
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`

	for _, m := range measurements {
		_, err := tx.ExecContext(ctx, upsert,
			journeyID, m.Mode.String(), m.Timestamp, m.LocalTimestamp,
			m.DayOfWeekID, m.TimeSlotID,
			m.DurationSeconds, m.DistanceMeters, m.SpeedKPH,
			rawOrNull(m.RawResponse), now,
		)
		if err != nil {
			return fmt.Errorf("save measurements: upsert mode %s: %w", m.Mode, err)
		}

		var measurementID int
		if err := tx.QueryRowContext(ctx, selectID, journeyID, m.Mode.String()).Scan(&measurementID); err != nil {
			return fmt.Errorf("save measurements: read id for mode %s: %w", m.Mode, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM journey_legs WHERE journey_measurement_id = ?;`, measurementID); err != nil {
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
		`UPDATE journeys SET error_message = NULL, updated_at = ? WHERE id = ?;`, now, journeyID); err != nil {
		return fmt.Errorf("save measurements: clear journey error: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save measurements: commit tx: %w", err)
	}

	return nil
}

func (s *SqliteJourneyStore) SetJourneyError(ctx context.Context, journeyID int, message string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE journeys SET error_message = ?, updated_at = ? WHERE id = ?;`,
		message, time.Now().UTC(), journeyID)
	if err != nil {
		return fmt.Errorf("set journey error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set journey error: journey %d not found", journeyID)
	}
	return nil
}
