package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"wrkbench/internal/benchmark"
)

// SQLiteStore keeps one row per invocation in a local SQLite database. The
// results column holds the same JSON array a file record would, so the
// stored field names stay a single contract across backends.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// migrations.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", benchmark.ErrStorageUnavailable, err)
	}

	store := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS history_records (
		run_ts TEXT PRIMARY KEY,
		results TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts the invocation record. The timestamp is the primary key, so a
// reused timestamp fails instead of silently overwriting.
func (s *SQLiteStore) Save(ts time.Time, runs []benchmark.Result) error {
	data, err := json.Marshal(runs)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO history_records (run_ts, results) VALUES (?, ?)`,
		ts.Format(TimestampLayout), string(data))
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Load selects records by the timestamp stored in the row identity.
func (s *SQLiteStore) Load(opts benchmark.LoadOptions) ([]benchmark.Result, error) {
	rows, err := s.db.Query(`SELECT run_ts, results FROM history_records ORDER BY run_ts ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying history records: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, s.logger)
	if err != nil {
		return nil, err
	}
	return selectRuns(records, opts, s.now())
}

// scanRecords decodes (run_ts, results) rows into ordered records. Rows with
// an unparsable timestamp are skipped, mirroring the file backend's
// permissive treatment of malformed names.
func scanRecords(rows *sql.Rows, logger *slog.Logger) ([]record, error) {
	var records []record
	for rows.Next() {
		var encodedTS, blob string
		if err := rows.Scan(&encodedTS, &blob); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		ts, err := time.Parse(TimestampLayout, encodedTS)
		if err != nil {
			logger.Debug("skipping history row with malformed timestamp", "run_ts", encodedTS)
			continue
		}
		var runs []benchmark.Result
		if err := json.Unmarshal([]byte(blob), &runs); err != nil {
			return nil, fmt.Errorf("decoding history record %s: %w", encodedTS, err)
		}
		records = append(records, record{ts: ts, runs: runs})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ts.Before(records[j].ts) })
	return records, nil
}
