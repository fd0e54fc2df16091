// Package journal keeps an append-only record of slot operations in
// SQLite. It replaces the per-slot payment history chain: billing audit
// questions ("what was slot 12 charged last month") are answered here,
// keyed by slot id, while the registry itself only carries the scalar
// due date.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"parklot/internal/events"
)

// Journal wraps the SQLite database holding slot event history.
type Journal struct {
	*sql.DB
}

// Entry is one recorded slot operation.
type Entry struct {
	ID           string    `json:"id"`
	SlotID       int       `json:"slot_id"`
	Event        string    `json:"event"`
	Category     string    `json:"category"`
	LicensePlate string    `json:"license_plate"`
	Fee          float64   `json:"fee"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open opens the journal database at path and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS slot_events (
			id TEXT PRIMARY KEY,
			slot_id INTEGER NOT NULL,
			event TEXT NOT NULL,
			category TEXT,
			license_plate TEXT,
			fee REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slot_events_slot ON slot_events(slot_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_slot_events_time ON slot_events(created_at)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Record appends one entry. A missing id or timestamp is filled in.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := j.ExecContext(ctx,
		`INSERT INTO slot_events (id, slot_id, event, category, license_plate, fee, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SlotID, e.Event, e.Category, e.LicensePlate, e.Fee, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record slot event: %w", err)
	}
	return nil
}

// Subscribe wires the journal to slot lifecycle events on the bus.
func (j *Journal) Subscribe(bus *events.Bus) {
	handler := func(ev events.Event) error {
		return j.Record(context.Background(), Entry{
			SlotID:       ev.SlotID,
			Event:        ev.Type,
			Category:     ev.Category.String(),
			LicensePlate: ev.LicensePlate,
			Fee:          ev.Fee,
			CreatedAt:    ev.CreatedAt,
		})
	}
	for _, t := range []string{
		events.TypeSlotAllocated,
		events.TypeSlotReleased,
		events.TypeSlotDeleted,
		events.TypeResidentBilled,
	} {
		bus.Subscribe(t, handler)
	}
}

// EventsForSlot returns the recorded history for one slot, newest
// first.
func (j *Journal) EventsForSlot(ctx context.Context, slotID int) ([]Entry, error) {
	rows, err := j.QueryContext(ctx,
		`SELECT id, slot_id, event, category, license_plate, fee, created_at
		 FROM slot_events WHERE slot_id = ? ORDER BY created_at DESC`, slotID)
	if err != nil {
		return nil, fmt.Errorf("query slot events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SlotID, &e.Event, &e.Category, &e.LicensePlate, &e.Fee, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan slot event: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FeeTotalBetween sums collected fees in the half-open interval
// [from, to).
func (j *Journal) FeeTotalBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var total sql.NullFloat64
	err := j.QueryRowContext(ctx,
		`SELECT SUM(fee) FROM slot_events WHERE created_at >= ? AND created_at < ?`,
		from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum fees: %w", err)
	}
	return total.Float64, nil
}
