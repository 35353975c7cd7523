package timer

import (
	"context"
	"database/sql"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	_ "github.com/mattn/go-sqlite3"
)

// SQLStore is a Store backed by a SQL database, the recommended backend for
// any host with more than one instance: status updates race through the
// database's own locking instead of a shared file or process memory.
// NewSQLiteStore wires it to a local sqlite3 file; the same type works
// against any database/sql driver that accepts this schema.
type SQLStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS timer_schedule_status (
	timer_name   TEXT PRIMARY KEY,
	last         DATETIME NOT NULL,
	next         DATETIME NOT NULL,
	last_updated DATETIME NOT NULL
)`

// NewSQLiteStore opens (creating if necessary) a sqlite3 database file at
// path and ensures the schema exists.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(ErrMonitorTransient, "open sqlite timer store", j.KV("path", path))
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(ErrMonitorTransient, "create timer status schema", j.KV("path", path))
	}
	return &SQLStore{db: db}, nil
}

// NewSQLStore wraps an already-open *sql.DB whose schema matches
// sqliteSchema (or an equivalent on another SQL dialect).
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// NewSQLiteMonitor builds a sqlite3-backed SQLStore at path and composes it
// with the shared CheckPastDue algorithm via NewMonitor.
func NewSQLiteMonitor(path string) (ScheduleMonitor, error) {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	return NewMonitor(store), nil
}

// Close releases the underlying database connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) GetStatus(ctx context.Context, timerName string) (*ScheduleStatus, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT last, next, last_updated FROM timer_schedule_status WHERE timer_name = ?`, timerName)

	var status ScheduleStatus
	var last, next, lastUpdated time.Time
	err := row.Scan(&last, &next, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrMonitorTransient, "query timer status", j.KV("timer_name", timerName))
	}

	status.Last = last.UTC()
	status.Next = next.UTC()
	status.LastUpdated = lastUpdated.UTC()
	return &status, nil
}

func (s *SQLStore) UpdateStatus(ctx context.Context, timerName string, status ScheduleStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timer_schedule_status (timer_name, last, next, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(timer_name) DO UPDATE SET
			last = excluded.last,
			next = excluded.next,
			last_updated = excluded.last_updated
	`, timerName, status.Last, status.Next, status.LastUpdated)
	if err != nil {
		return errors.Wrap(ErrMonitorTransient, "upsert timer status", j.KV("timer_name", timerName))
	}
	return nil
}
