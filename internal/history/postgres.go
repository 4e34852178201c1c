package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"wrkbench/internal/benchmark"
)

// PostgresStore keeps invocation records in PostgreSQL, for teams sharing a
// benchmark history across CI runners. Same row shape as the SQLite backend.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresStore connects with the given DSN and applies migrations.
func NewPostgresStore(dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", benchmark.ErrStorageUnavailable, err)
	}

	store := &PostgresStore{db: db, logger: logger, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS history_records (
		run_ts TEXT PRIMARY KEY,
		results TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(query); err != nil {
		slog.Debug("history migration failed", "error", err)
		return err
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Save inserts the invocation record; a reused timestamp violates the
// primary key instead of silently overwriting.
func (s *PostgresStore) Save(ts time.Time, runs []benchmark.Result) error {
	data, err := json.Marshal(runs)
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO history_records (run_ts, results) VALUES ($1, $2)`,
		ts.Format(TimestampLayout), string(data))
	if err != nil {
		return fmt.Errorf("inserting history record: %w", err)
	}
	return nil
}

// Load selects records by the timestamp stored in the row identity.
func (s *PostgresStore) Load(opts benchmark.LoadOptions) ([]benchmark.Result, error) {
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
