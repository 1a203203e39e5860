package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"journey-metrics-service/internal/bucket"
	"journey-metrics-service/internal/domain"
)

// Dialect selects the placeholder and conflict syntax for the seeding
// statements shared by both SQL backends.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSqlite
)

// rebind rewrites ? placeholders to $n for postgres.
func rebind(d Dialect, query string) string {
	if d == DialectSqlite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SeedReference populates the static dimension tables: journey
// statuses, the five transit modes, the seven ISO weekdays and the 96
// fifteen-minute slots. Idempotent; existing rows are left untouched
// so their ids stay stable.
func SeedReference(db *sql.DB, d Dialect) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed reference: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := func(table string, names []string) error {
		query := rebind(d, fmt.Sprintf(
			`INSERT INTO %s (name) VALUES (?) ON CONFLICT (name) DO NOTHING;`, table))
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("seed reference: prepare %s insert: %w", table, err)
		}
		defer stmt.Close()

		for _, name := range names {
			if _, err := stmt.Exec(name); err != nil {
				return fmt.Errorf("seed reference: insert %s %q: %w", table, name, err)
			}
		}
		return nil
	}

	// Statuses first: journeys default to status_id 1, which must be
	// the active status.
	statuses := []string{
		string(domain.StatusActive),
		string(domain.StatusError),
		string(domain.StatusDisabled),
	}
	if err := insert("journey_statuses", statuses); err != nil {
		return err
	}

	modes := make([]string, 0, len(domain.AllModes()))
	for _, m := range domain.AllModes() {
		modes = append(modes, m.String())
	}
	if err := insert("transit_modes", modes); err != nil {
		return err
	}

	if err := insert("days_of_week", bucket.SeedDays()); err != nil {
		return err
	}
	if err := insert("time_slots", bucket.SeedSlots()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed reference: commit tx: %w", err)
	}

	return nil
}

type WaypointSeed struct {
	PlaceID          string  `json:"place_id"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

type JourneySeed struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	City        string         `json:"city"`
	State       string         `json:"state"`
	Country     string         `json:"country"`
	Timezone    string         `json:"timezone"`
	Waypoints   []WaypointSeed `json:"waypoints"`
}

// SeedJourneysFromJSON populates journeys and their waypoints from a
// JSON file. Journeys are upserted by name and their waypoint chains
// replaced wholesale, so re-running the seed converges on the file's
// contents.
func SeedJourneysFromJSON(db *sql.DB, d Dialect, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed journeys: read %q: %w", jsonPath, err)
	}

	var data []JourneySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed journeys: parse json: %w", err)
	}

	for i, j := range data {
		if strings.TrimSpace(j.Name) == "" {
			return fmt.Errorf("seed journeys: item at index %d: name cannot be empty", i)
		}
		if _, err := time.LoadLocation(j.Timezone); j.Timezone == "" || err != nil {
			return fmt.Errorf("seed journeys: journey %q: invalid timezone %q", j.Name, j.Timezone)
		}
		if len(j.Waypoints) < 2 {
			return fmt.Errorf("seed journeys: journey %q: needs at least 2 waypoints, got %d", j.Name, len(j.Waypoints))
		}
		for k, wp := range j.Waypoints {
			if strings.TrimSpace(wp.PlaceID) == "" {
				return fmt.Errorf("seed journeys: journey %q: waypoint %d: place_id cannot be empty", j.Name, k+1)
			}
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed journeys: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsertJourney := rebind(d, `
	INSERT INTO journeys (name, description, city, state, country, timezone)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (name) DO UPDATE SET
		description = excluded.description,
		city = excluded.city,
		state = excluded.state,
		country = excluded.country,
		timezone = excluded.timezone;
	`)
	selectID := rebind(d, `SELECT id FROM journeys WHERE name = ?;`)
	deleteWaypoints := rebind(d, `DELETE FROM journey_waypoints WHERE journey_id = ?;`)
	insertWaypoint := rebind(d, `
	INSERT INTO journey_waypoints (
		journey_id, sequence_number, place_id, formatted_address, latitude, longitude
	)
	VALUES (?, ?, ?, ?, ?, ?);
	`)

	for _, j := range data {
		if _, err := tx.Exec(upsertJourney,
			j.Name, j.Description, j.City, j.State, j.Country, j.Timezone); err != nil {
			return fmt.Errorf("seed journeys: upsert journey %q: %w", j.Name, err)
		}

		var journeyID int
		if err := tx.QueryRow(selectID, j.Name).Scan(&journeyID); err != nil {
			return fmt.Errorf("seed journeys: read id for journey %q: %w", j.Name, err)
		}

		if _, err := tx.Exec(deleteWaypoints, journeyID); err != nil {
			return fmt.Errorf("seed journeys: clear waypoints for journey %q: %w", j.Name, err)
		}

		for k, wp := range j.Waypoints {
			_, err := tx.Exec(insertWaypoint,
				journeyID, k+1, wp.PlaceID, wp.FormattedAddress, wp.Latitude, wp.Longitude)
			if err != nil {
				return fmt.Errorf("seed journeys: insert waypoint %d for journey %q: %w", k+1, j.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed journeys: commit tx: %w", err)
	}

	return nil
}
