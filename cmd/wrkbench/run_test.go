package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/config"
)

type fakeExecutor struct {
	result benchmark.Result
}

func (e fakeExecutor) Execute(_ context.Context, _ benchmark.Config) benchmark.Result {
	return e.result
}

type fakeStore struct {
	saved    [][]benchmark.Result
	loadFunc func(benchmark.LoadOptions) ([]benchmark.Result, error)
}

func (s *fakeStore) Save(_ time.Time, runs []benchmark.Result) error {
	s.saved = append(s.saved, runs)
	return nil
}

func (s *fakeStore) Load(opts benchmark.LoadOptions) ([]benchmark.Result, error) {
	if s.loadFunc != nil {
		return s.loadFunc(opts)
	}
	return nil, benchmark.ErrNoRecords
}

// withFakes installs a canned executor result and store for the duration of
// one test, plus a fresh viper configured for a local target.
func withFakes(t *testing.T, result benchmark.Result, store *fakeStore) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	bindRunFlags()
	viper.Set("url", "http://localhost:8080")
	t.Cleanup(viper.Reset)

	origExec, origStore, origValidate := newExecutorFunc, newStoreFunc, validateConfigFunc
	newExecutorFunc = func(string, *slog.Logger) (benchmark.Executor, error) {
		return fakeExecutor{result: result}, nil
	}
	newStoreFunc = func(*slog.Logger) (benchmark.Store, error) {
		return store, nil
	}
	t.Cleanup(func() {
		newExecutorFunc, newStoreFunc, validateConfigFunc = origExec, origStore, origValidate
	})
}

func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func goodRun() benchmark.Result {
	return benchmark.Result{
		Requests:       30000,
		Successes:      30000,
		RequestsPerSec: 1200,
		AvgLatencyMs:   3.2,
		TransferMB:     64,
	}
}

func TestRunWithoutHistory(t *testing.T) {
	store := &fakeStore{}
	withFakes(t, goodRun(), store)

	out, err := execCLI(t, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "No history to compare against yet")
	require.Len(t, store.saved, 1, "campaign persisted exactly once")
}

func TestRunComparesAgainstHistory(t *testing.T) {
	historical := benchmark.Result{
		Success:        true,
		Timestamp:      time.Now().Add(-time.Hour),
		Requests:       30000,
		Successes:      30000,
		RequestsPerSec: 1000,
		AvgLatencyMs:   3.5,
		TransferMB:     60,
	}
	store := &fakeStore{loadFunc: func(opts benchmark.LoadOptions) ([]benchmark.Result, error) {
		if opts.Period == benchmark.Last {
			return nil, benchmark.ErrNoRecords
		}
		return []benchmark.Result{historical}, nil
	}}
	withFakes(t, goodRun(), store)

	out, err := execCLI(t, "run", "--period", "day")
	require.NoError(t, err)

	assert.Contains(t, out, "MEASUREMENT")
	assert.Contains(t, out, "Requests/sec")
	assert.Contains(t, out, "+20.00")
	assert.Contains(t, out, "IMPROVEMENT")
}

func TestRunRequiresURL(t *testing.T) {
	store := &fakeStore{}
	withFakes(t, goodRun(), store)
	viper.Set("url", "")

	_, err := execCLI(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target url configured")
}

func TestRunRejectsUnknownPeriod(t *testing.T) {
	store := &fakeStore{}
	withFakes(t, goodRun(), store)

	_, err := execCLI(t, "run", "--period", "fortnight")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnight")
}

func TestRunNoSaveNoCompare(t *testing.T) {
	store := &fakeStore{}
	withFakes(t, goodRun(), store)

	out, err := execCLI(t, "run", "--period", "day", "--no-save", "--no-compare")
	require.NoError(t, err)

	assert.Contains(t, out, "CONFIG")
	assert.Empty(t, store.saved, "nothing persisted with --no-save")
	assert.NotContains(t, out, "MEASUREMENT", "no report with --no-compare")
}
