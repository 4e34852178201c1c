// Package history persists benchmark invocation records and reloads them
// filtered by a retention window. Three backends implement the same
// contract: plain JSON files (the default and the stored interchange
// format), SQLite and PostgreSQL.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wrkbench/internal/benchmark"
)

const (
	// TimestampLayout encodes record timestamps. Fixed format, numeric
	// offset, lexicographically sortable; part of the stored contract.
	TimestampLayout = "2006-01-02-15:04:05-0700"

	filePrefix = "result."
	fileSuffix = ".json"
)

// record is one stored invocation: its identity timestamp plus the runs
// captured during that invocation, in execution order.
type record struct {
	ts   time.Time
	runs []benchmark.Result
}

// FileStore keeps one result.<timestamp>.json file per invocation in a
// single directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewFileStore builds a file-backed store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}
}

// Save writes the invocation record. The storage directory is created on
// demand; failure to create it disables persistence for this run only and
// is reported as ErrStorageUnavailable. A record for an already-used
// timestamp is never silently overwritten.
func (s *FileStore) Save(ts time.Time, runs []benchmark.Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("unable to create history dir, statistics will be impaired", "dir", s.dir, "error", err)
		return fmt.Errorf("%w: creating %s: %v", benchmark.ErrStorageUnavailable, s.dir, err)
	}

	path := filepath.Join(s.dir, recordFilename(ts))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("history record %s already exists", path)
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing history record: %w", err)
	}
	s.logger.Debug("wrote history record", "path", path, "runs", len(runs))
	return nil
}

// Load enumerates stored records ordered by the timestamp embedded in each
// filename (storage mtime is never consulted) and returns the runs selected
// by opts. Filenames that do not follow the naming convention are skipped.
func (s *FileStore) Load(opts benchmark.LoadOptions) ([]benchmark.Result, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, benchmark.ErrNoRecords
		}
		return nil, fmt.Errorf("reading history dir %s: %w", s.dir, err)
	}

	var records []record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseRecordFilename(entry.Name())
		if !ok {
			s.logger.Debug("skipping unrecognized history file", "name", entry.Name())
			continue
		}
		records = append(records, record{ts: ts, runs: nil})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ts.Before(records[j].ts) })

	for i := range records {
		runs, err := s.readRecord(records[i].ts)
		if err != nil {
			return nil, err
		}
		records[i].runs = runs
	}

	return selectRuns(records, opts, s.now())
}

func (s *FileStore) readRecord(ts time.Time) ([]benchmark.Result, error) {
	path := filepath.Join(s.dir, recordFilename(ts))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history record %s: %w", path, err)
	}
	var runs []benchmark.Result
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("decoding history record %s: %w", path, err)
	}
	return runs, nil
}

func recordFilename(ts time.Time) string {
	return filePrefix + ts.Format(TimestampLayout) + fileSuffix
}

func parseRecordFilename(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	ts, err := time.Parse(TimestampLayout, encoded)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// selectRuns applies the load semantics shared by every backend. Records
// must already be ordered ascending by timestamp.
func selectRuns(records []record, opts benchmark.LoadOptions, now time.Time) ([]benchmark.Result, error) {
	if opts.Period == benchmark.Last {
		return selectLast(records, opts)
	}

	cutoff := opts.Period.Cutoff(now)
	var out []benchmark.Result
	for _, rec := range records {
		if rec.ts.Before(cutoff) {
			continue
		}
		kept := excludeKnown(rec.runs, opts.Exclude)
		if len(kept) == 0 {
			continue
		}
		if opts.ReduceBest {
			best, err := benchmark.Best(kept)
			if err != nil {
				return nil, err
			}
			out = append(out, best)
		} else {
			out = append(out, kept...)
		}
	}
	if len(out) == 0 {
		return nil, benchmark.ErrNoRecords
	}
	return out, nil
}

// selectLast returns the most recent record, skipping the one written by the
// current invocation so a run never compares against itself.
func selectLast(records []record, opts benchmark.LoadOptions) ([]benchmark.Result, error) {
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if !opts.CurrentRun.IsZero() && rec.ts.Equal(opts.CurrentRun) {
			continue
		}
		kept := excludeKnown(rec.runs, opts.Exclude)
		if len(kept) == 0 {
			continue
		}
		if opts.ReduceBest {
			best, err := benchmark.Best(kept)
			if err != nil {
				return nil, err
			}
			return []benchmark.Result{best}, nil
		}
		return kept, nil
	}
	return nil, benchmark.ErrNoRecords
}

func excludeKnown(runs, known []benchmark.Result) []benchmark.Result {
	if len(known) == 0 {
		return runs
	}
	var kept []benchmark.Result
	for _, r := range runs {
		seen := false
		for _, k := range known {
			if r.Equal(k) {
				seen = true
				break
			}
		}
		if !seen {
			kept = append(kept, r)
		}
	}
	return kept
}
