// Package ledger keeps a sqlite history of completed session runs.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	sessionId     TEXT NOT NULL,
	model         TEXT NOT NULL,
	seconds       REAL NOT NULL,
	chunks        INTEGER NOT NULL,
	failedChunks  INTEGER NOT NULL,
	records       INTEGER NOT NULL,
	verified      INTEGER NOT NULL,
	finishedAt    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_session ON runs(sessionId);
`

// Run is one finished session
type Run struct {
	SessionID    string
	Model        string
	Elapsed      time.Duration
	Chunks       int
	FailedChunks int
	Records      int
	Verified     int
	FinishedAt   time.Time
}

// Ledger is the run history database
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path. ":memory:" works for tests.
func Open(path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// one connection keeps an in-memory database alive across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends a run
func (l *Ledger) Record(r Run) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := l.db.Exec(`
		INSERT INTO runs (sessionId, model, seconds, chunks, failedChunks, records, verified, finishedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.Model, r.Elapsed.Seconds(), r.Chunks, r.FailedChunks, r.Records, r.Verified,
		float64(r.FinishedAt.UnixNano())/1e9)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// AverageSessionTime is the mean elapsed time of the most recent runs of a
// model, or zero when there is no history.
func (l *Ledger) AverageSessionTime(model string, recent int) (time.Duration, error) {
	if recent <= 0 {
		recent = 50
	}
	row := l.db.QueryRow(`
		SELECT AVG(seconds) FROM (
			SELECT seconds FROM runs WHERE model = ? ORDER BY finishedAt DESC LIMIT ?
		)
	`, model, recent)

	var avg sql.NullFloat64
	if err := row.Scan(&avg); err != nil {
		return 0, fmt.Errorf("average run time: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return time.Duration(avg.Float64 * float64(time.Second)), nil
}

// Runs returns the history of one session, newest first
func (l *Ledger) Runs(sessionID string) ([]Run, error) {
	rows, err := l.db.Query(`
		SELECT sessionId, model, seconds, chunks, failedChunks, records, verified, finishedAt
		FROM runs
		WHERE sessionId = ?
		ORDER BY finishedAt DESC, id DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var seconds, finished float64
		if err := rows.Scan(&r.SessionID, &r.Model, &seconds, &r.Chunks, &r.FailedChunks,
			&r.Records, &r.Verified, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Elapsed = time.Duration(seconds * float64(time.Second))
		r.FinishedAt = timeFromUnix(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Count is the number of recorded runs
func (l *Ledger) Count() (int, error) {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
