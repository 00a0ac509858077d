package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists lookup history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers (the HTTP API) don't block the scheduler's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			source        TEXT,
			demo          INTEGER NOT NULL DEFAULT 0,
			price         REAL,
			percentile_1y REAL,
			percentile_3y REAL,
			percentile_5y REAL,
			samples_1y    INTEGER NOT NULL DEFAULT 0,
			samples_3y    INTEGER NOT NULL DEFAULT 0,
			samples_5y    INTEGER NOT NULL DEFAULT 0,
			band          TEXT,
			divergent     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_ts ON lookups(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_symbol ON lookups(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordLookup stores evt, assigning an ID and timestamp when missing.
func (r *SQLiteRecorder) RecordLookup(evt *LookupEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	_, err := r.db.Exec(`INSERT INTO lookups
		(id, timestamp, symbol, source, demo, price,
		 percentile_1y, percentile_3y, percentile_5y,
		 samples_1y, samples_3y, samples_5y,
		 band, divergent)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Timestamp.UnixMilli(), evt.Symbol, evt.Source, evt.Demo, evt.Price,
		evt.Percentile1Y, evt.Percentile3Y, evt.Percentile5Y,
		evt.Samples1Y, evt.Samples3Y, evt.Samples5Y,
		evt.Band, evt.Divergent,
	)
	return err
}

// RecentLookups returns up to limit lookups, newest first.
func (r *SQLiteRecorder) RecentLookups(limit int) ([]LookupEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT
		id, timestamp, symbol, source, demo, price,
		percentile_1y, percentile_3y, percentile_5y,
		samples_1y, samples_3y, samples_5y,
		band, divergent
		FROM lookups ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var out []LookupEvent
	for rows.Next() {
		var (
			evt          LookupEvent
			ts           int64
			p1, p3, p5   sql.NullFloat64
			source, band sql.NullString
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Symbol, &source, &evt.Demo, &evt.Price,
			&p1, &p3, &p5,
			&evt.Samples1Y, &evt.Samples3Y, &evt.Samples5Y,
			&band, &evt.Divergent); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		evt.Timestamp = time.UnixMilli(ts).UTC()
		evt.Source = source.String
		evt.Band = band.String
		evt.Percentile1Y = nullableFloat(p1)
		evt.Percentile3Y = nullableFloat(p3)
		evt.Percentile5Y = nullableFloat(p5)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
