package telemetry

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// insertQueueSize bounds the number of records waiting for the insert loop.
// Records arriving while the queue is full are dropped rather than blocking
// the run that produced them.
const insertQueueSize = 256

// SQLiteRecorder persists records to a SQLite database.
//
// Inserts happen on a dedicated goroutine so Record never blocks the owning
// run, regardless of disk latency.
type SQLiteRecorder struct {
	db    *sql.DB
	queue chan Record
	done  chan struct{}
}

// OpenSQLite opens (creating if needed) a SQLite-backed recorder at path.
// The caller owns the recorder and must Close it to flush pending records.
func OpenSQLite(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}

	const createTableSQL = `CREATE TABLE IF NOT EXISTS run_telemetry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		output_chars INTEGER NOT NULL,
		timed_out INTEGER NOT NULL,
		batch_id TEXT,
		concurrency INTEGER
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: create run_telemetry table: %w", err)
	}

	_, _ = db.Exec("PRAGMA journal_mode=WAL;")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")

	r := &SQLiteRecorder{
		db:    db,
		queue: make(chan Record, insertQueueSize),
		done:  make(chan struct{}),
	}
	go r.insertLoop()
	return r, nil
}

// Record enqueues the record for insertion. If the queue is full the record
// is dropped; persistence failures are the recorder's concern, never the
// run's.
func (r *SQLiteRecorder) Record(rec Record) {
	select {
	case r.queue <- rec:
	default:
	}
}

// Close flushes queued records and closes the database.
func (r *SQLiteRecorder) Close() error {
	close(r.queue)
	<-r.done
	return r.db.Close()
}

func (r *SQLiteRecorder) insertLoop() {
	defer close(r.done)

	const insertSQL = `INSERT INTO run_telemetry (
		model, started_at, completed_at, duration_ms,
		exit_code, output_chars, timed_out, batch_id, concurrency
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for rec := range r.queue {
		_, _ = r.db.Exec(insertSQL,
			rec.Model, rec.StartedAt, rec.CompletedAt, rec.DurationMs,
			rec.ExitCode, rec.OutputChars, rec.TimedOut, rec.BatchID, rec.Concurrency)
	}
}
