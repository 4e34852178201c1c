package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wrkbench/internal/benchmark"
)

func testRun(ts time.Time, rps float64) benchmark.Result {
	return benchmark.Result{
		Success:        true,
		Timestamp:      ts,
		Config:         benchmark.NewConfig(8, 32, 30),
		Requests:       rps * 30,
		Successes:      rps * 30,
		RequestsPerSec: rps,
		AvgLatencyMs:   3.5,
		TransferMB:     64,
	}
}

func fileStoreAt(t *testing.T, now time.Time) *FileStore {
	t.Helper()
	s := NewFileStore(t.TempDir(), nil)
	s.now = func() time.Time { return now }
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Minute)
	saved := []benchmark.Result{testRun(ts, 1000), testRun(ts, 900)}
	require.NoError(t, s.Save(ts, saved))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	for i := range saved {
		assert.True(t, saved[i].Equal(loaded[i]), "run %d survives the round trip exactly", i)
	}
}

func TestFileStoreRecordFilename(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := time.Date(2026, 4, 10, 11, 30, 5, 0, time.UTC)
	require.NoError(t, s.Save(ts, []benchmark.Result{testRun(ts, 1000)}))

	_, err := os.Stat(filepath.Join(s.dir, "result.2026-04-10-11:30:05+0000.json"))
	assert.NoError(t, err)
}

func TestFileStoreDuplicateTimestamp(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Minute)
	require.NoError(t, s.Save(ts, []benchmark.Result{testRun(ts, 1000)}))

	err := s.Save(ts, []benchmark.Result{testRun(ts, 2000)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestFileStoreMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "never-created"), nil)

	_, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever})
	assert.ErrorIs(t, err, benchmark.ErrNoRecords)
}

func TestFileStoreUnavailableStorage(t *testing.T) {
	// a regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "history"), nil)
	err := s.Save(time.Now(), []benchmark.Result{testRun(time.Now(), 1000)})
	assert.ErrorIs(t, err, benchmark.ErrStorageUnavailable)
}

func TestFileStoreSkipsUnrecognizedFiles(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Minute)
	require.NoError(t, s.Save(ts, []benchmark.Result{testRun(ts, 1000)}))
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "README.md"), []byte("notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "result.not-a-timestamp.json"), []byte("{}"), 0o644))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever})
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestFileStoreOrdersByEmbeddedTimestamp(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	newer := now.Add(-time.Hour)
	older := now.Add(-2 * time.Hour)
	// written newest first, so file mtimes contradict record order
	require.NoError(t, s.Save(newer, []benchmark.Result{testRun(newer, 1200)}))
	require.NoError(t, s.Save(older, []benchmark.Result{testRun(older, 1000)}))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever})
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.True(t, loaded[0].Timestamp.Equal(older))
	assert.True(t, loaded[1].Timestamp.Equal(newer))
}

func TestHourWindowBoundary(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	onBoundary := now.Add(-time.Hour)
	justOutside := onBoundary.Add(-time.Second)
	require.NoError(t, s.Save(onBoundary, []benchmark.Result{testRun(onBoundary, 1000)}))
	require.NoError(t, s.Save(justOutside, []benchmark.Result{testRun(justOutside, 2000)}))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Hour})
	require.NoError(t, err)
	require.Len(t, loaded, 1, "record exactly at the cutoff is included, one second older is not")
	assert.True(t, loaded[0].Timestamp.Equal(onBoundary))
}

func TestEmptyWindow(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	old := now.Add(-48 * time.Hour)
	require.NoError(t, s.Save(old, []benchmark.Result{testRun(old, 1000)}))

	_, err := s.Load(benchmark.LoadOptions{Period: benchmark.Day})
	assert.ErrorIs(t, err, benchmark.ErrNoRecords)
}

func TestLastSkipsCurrentRun(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	previous := now.Add(-time.Hour)
	require.NoError(t, s.Save(previous, []benchmark.Result{testRun(previous, 1000)}))
	require.NoError(t, s.Save(now, []benchmark.Result{testRun(now, 1200)}))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Last, CurrentRun: now})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Timestamp.Equal(previous), "a run never compares against itself")
}

func TestLastWithOnlyCurrentRecord(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	require.NoError(t, s.Save(now, []benchmark.Result{testRun(now, 1200)}))

	_, err := s.Load(benchmark.LoadOptions{Period: benchmark.Last, CurrentRun: now})
	assert.ErrorIs(t, err, benchmark.ErrNoRecords)
}

func TestExcludeDeduplicates(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Hour)
	known := testRun(ts, 1000)
	fresh := testRun(ts, 1100)
	require.NoError(t, s.Save(ts, []benchmark.Result{known, fresh}))

	loaded, err := s.Load(benchmark.LoadOptions{
		Period:  benchmark.Forever,
		Exclude: []benchmark.Result{known},
	})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Equal(fresh))
}

func TestReduceBestPerRecord(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Hour)
	require.NoError(t, s.Save(ts, []benchmark.Result{
		testRun(ts, 800),
		testRun(ts, 1000),
		testRun(ts, 900),
	}))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever, ReduceBest: true})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 1000.0, loaded[0].RequestsPerSec)
}

func TestReduceBestAllFailedRecord(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	ts := now.Add(-time.Hour)
	failed := benchmark.Fail("connect refused")
	failed.Timestamp = ts
	require.NoError(t, s.Save(ts, []benchmark.Result{failed}))

	_, err := s.Load(benchmark.LoadOptions{Period: benchmark.Forever, ReduceBest: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no successful runs")
}

// Full cycle over two invocations an hour apart: the day window reduced to
// record bests must yield both runs, the better one wins and the variance
// against the older one is +20%.
func TestHistoryComparisonCycle(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	s := fileStoreAt(t, now)

	t0 := now.Add(-time.Hour)
	t1 := now
	require.NoError(t, s.Save(t0, []benchmark.Result{testRun(t0, 1000)}))
	require.NoError(t, s.Save(t1, []benchmark.Result{testRun(t1, 1200)}))

	loaded, err := s.Load(benchmark.LoadOptions{Period: benchmark.Day, ReduceBest: true})
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	best, err := benchmark.Best(loaded)
	require.NoError(t, err)
	assert.True(t, best.Timestamp.Equal(t1))

	v := benchmark.Compare(best, loaded[0])
	assert.InDelta(t, 20.0, v.Delta.RequestsPerSec, 1e-9)
}
