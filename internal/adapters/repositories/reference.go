package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journey-metrics-service/internal/bucket"
	"journey-metrics-service/internal/domain"
)

// Shared reference-dimension loaders. The postgres and sqlite stores
// run identical SELECTs, so the scanning lives here.

func loadModeIDs(ctx context.Context, db *sql.DB, query string) (map[domain.Mode]int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load transit modes: query: %w", err)
	}
	defer rows.Close()

	modeIDs := make(map[domain.Mode]int, len(domain.AllModes()))
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("load transit modes: scan row: %w", err)
		}
		mode, err := domain.ParseMode(name)
		if err != nil {
			return nil, fmt.Errorf("load transit modes: %w", err)
		}
		modeIDs[mode] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load transit modes: row iteration: %w", err)
	}

	if len(modeIDs) < len(domain.AllModes()) {
		return nil, fmt.Errorf("load transit modes: %d of %d modes seeded", len(modeIDs), len(domain.AllModes()))
	}

	return modeIDs, nil
}

func loadDayIDs(ctx context.Context, db *sql.DB, query string) (map[int]int, error) {
	// The seeded day names carry their ISO weekday number by position.
	isoByName := make(map[string]int, 7)
	for i, name := range bucket.SeedDays() {
		isoByName[name] = i + 1
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load days of week: query: %w", err)
	}
	defer rows.Close()

	dayIDs := make(map[int]int, 7)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("load days of week: scan row: %w", err)
		}
		iso, ok := isoByName[name]
		if !ok {
			return nil, fmt.Errorf("load days of week: unknown day name %q", name)
		}
		dayIDs[iso] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load days of week: row iteration: %w", err)
	}

	if len(dayIDs) != 7 {
		return nil, fmt.Errorf("load days of week: %d of 7 days seeded", len(dayIDs))
	}

	return dayIDs, nil
}

func loadSlotIDs(ctx context.Context, db *sql.DB, query string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load time slots: query: %w", err)
	}
	defer rows.Close()

	slotIDs := make(map[string]int, 96)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("load time slots: scan row: %w", err)
		}
		slotIDs[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load time slots: row iteration: %w", err)
	}

	if len(slotIDs) != 96 {
		return nil, fmt.Errorf("load time slots: %d of 96 slots seeded", len(slotIDs))
	}

	return slotIDs, nil
}

// The newest row is selected directly rather than via MAX(): the
// sqlite driver only maps timestamps back to time.Time when the
// column's declared type survives, which aggregates discard.
func lastMeasurementAt(ctx context.Context, db *sql.DB, query string) (time.Time, bool, error) {
	var last time.Time
	err := db.QueryRowContext(ctx, query).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last measurement at: %w", err)
	}
	return last.UTC(), true, nil
}

// rawOrNull maps an absent provider payload to SQL NULL rather than
// an empty JSON document.
func rawOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
