package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the postgres measurement schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS journey_statuses (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,

		`CREATE TABLE IF NOT EXISTS transit_modes (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,

		`CREATE TABLE IF NOT EXISTS days_of_week (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,

		`CREATE TABLE IF NOT EXISTS time_slots (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,

		`CREATE TABLE IF NOT EXISTS journeys (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL,
			status_id INTEGER NOT NULL DEFAULT 1 REFERENCES journey_statuses(id),
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,

		`CREATE TABLE IF NOT EXISTS journey_waypoints (
			id SERIAL PRIMARY KEY,
			journey_id INTEGER NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
			sequence_number INTEGER NOT NULL,
			place_id TEXT NOT NULL,
			formatted_address TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (journey_id, sequence_number),
			UNIQUE (journey_id, place_id)
		);`,

		`CREATE TABLE IF NOT EXISTS journey_measurements (
			id SERIAL PRIMARY KEY,
			journey_id INTEGER NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
			transit_mode_id INTEGER NOT NULL REFERENCES transit_modes(id),
			measured_at TIMESTAMPTZ NOT NULL,
			local_measured_at TIMESTAMP NOT NULL,
			day_of_week_id INTEGER NOT NULL REFERENCES days_of_week(id),
			time_slot_id INTEGER NOT NULL REFERENCES time_slots(id),
			duration_seconds INTEGER NOT NULL,
			distance_meters INTEGER NOT NULL,
			speed_kph DOUBLE PRECISION NOT NULL,
			raw_response JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (journey_id, transit_mode_id)
		);`,

		`CREATE TABLE IF NOT EXISTS journey_legs (
			id SERIAL PRIMARY KEY,
			journey_measurement_id INTEGER NOT NULL REFERENCES journey_measurements(id) ON DELETE CASCADE,
			sequence_number INTEGER NOT NULL,
			start_waypoint_id INTEGER NOT NULL REFERENCES journey_waypoints(id),
			end_waypoint_id INTEGER NOT NULL REFERENCES journey_waypoints(id),
			duration_seconds INTEGER NOT NULL,
			distance_meters INTEGER NOT NULL,
			speed_kph DOUBLE PRECISION NOT NULL,
			UNIQUE (journey_measurement_id, sequence_number)
		);`,

		`CREATE INDEX IF NOT EXISTS idx_journey_measurements_created_at
		ON journey_measurements(created_at);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
