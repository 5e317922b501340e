package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fauzi-lee/se-take-home-assignment/internal/model"

	_ "modernc.org/sqlite"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    row       INTEGER PRIMARY KEY AUTOINCREMENT,
    seq       INTEGER NOT NULL,
    id        TEXT NOT NULL UNIQUE,
    kind      TEXT NOT NULL,
    order_id  INTEGER,
    unit_id   INTEGER,
    priority  TEXT,
    at_ns     INTEGER NOT NULL
)`

const createEventsOrderIndex = `CREATE INDEX IF NOT EXISTS idx_events_order ON events(order_id)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
// ":memory:" gives a journal that lives as long as the store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createEventsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}

	if _, err := db.Exec(createEventsOrderIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("create events index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordEvent appends an event to the journal.
func (s *SQLiteStore) RecordEvent(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (seq, id, kind, order_id, unit_id, priority, at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Seq, ev.ID, ev.Kind, ev.OrderID, ev.UnitID, nullString(ev.Priority), ev.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns a page of events in journal order, along with the
// total number of events.
func (s *SQLiteStore) ListEvents(ctx context.Context, limit, offset int) ([]model.Event, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT seq, id, kind, order_id, unit_id, priority, at_ns
		FROM events ORDER BY row ASC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// OrderHistory returns every journal entry for the given order in journal
// order. It returns ErrNotFound if the order never appeared in the journal.
func (s *SQLiteStore) OrderHistory(ctx context.Context, orderID int64) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, kind, order_id, unit_id, priority, at_ns
		FROM events WHERE order_id = ? ORDER BY row ASC`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events, nil
}

// GetStats aggregates the journal. Turnaround is measured from an order's
// enqueue event to its completion event.
func (s *SQLiteStore) GetStats(ctx context.Context) (*JournalStats, error) {
	stats := &JournalStats{
		CountByKind:     make(map[string]int),
		CompletedByPrio: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM events GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		stats.CountByKind[kind] = n
		stats.TotalEvents += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		"SELECT priority, COUNT(*) FROM events WHERE kind = ? GROUP BY priority",
		model.EventOrderCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("completed by priority: %w", err)
	}
	for rows.Next() {
		var prio sql.NullString
		var n int
		if err := rows.Scan(&prio, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		stats.CompletedByPrio[prio.String] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priority counts: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT AVG((c.at_ns - q.at_ns) / 1000000.0)
		FROM events c JOIN events q ON q.order_id = c.order_id AND q.kind = ?
		WHERE c.kind = ?`,
		model.EventOrderEnqueued, model.EventOrderCompleted,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average turnaround: %w", err)
	}
	if avg.Valid {
		stats.AvgTurnaroundMS = avg.Float64
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT order_id) FROM events WHERE kind = ?",
		model.EventOrderRequeued,
	).Scan(&stats.RequeuedOrderCount)
	if err != nil {
		return nil, fmt.Errorf("count requeued orders: %w", err)
	}

	return stats, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		var (
			ev       model.Event
			orderID  sql.NullInt64
			unitID   sql.NullInt64
			priority sql.NullString
			atNS     int64
		)
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.Kind, &orderID, &unitID, &priority, &atNS); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if orderID.Valid {
			ev.OrderID = &orderID.Int64
		}
		if unitID.Valid {
			ev.UnitID = &unitID.Int64
		}
		ev.Priority = priority.String
		ev.At = time.Unix(0, atNS).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
