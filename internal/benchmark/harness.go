package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Executor runs one load profile against the target and returns its raw
// result. Implementations must not set Success; the harness derives it.
// A result with a populated Error field represents an execution or parse
// failure and never aborts the campaign.
type Executor interface {
	Execute(ctx context.Context, cfg Config) Result
}

// LoadOptions selects which stored records a history load returns.
type LoadOptions struct {
	// Period bounds the window. Last selects only the most recent record.
	Period Period
	// ReduceBest reduces each record's surviving runs to the single best
	// one before appending.
	ReduceBest bool
	// Exclude drops runs already held in memory by the caller, compared by
	// exact structural equality.
	Exclude []Result
	// CurrentRun is the timestamp of the record persisted by this
	// invocation, skipped by a Last load so a run never compares against
	// itself.
	CurrentRun time.Time
}

// Store persists invocation records and reloads them filtered by a window.
// Implementations order records by the timestamp embedded in the record
// identity, never by storage metadata.
type Store interface {
	// Save writes one record for the invocation. Reusing a timestamp is an
	// error; a record is never silently overwritten.
	Save(ts time.Time, runs []Result) error
	// Load returns the runs selected by opts, ordered by record timestamp.
	// An empty selection is ErrNoRecords.
	Load(opts LoadOptions) ([]Result, error)
}

// Options configures a Harness. Zero values take named defaults.
type Options struct {
	// MaxErrorPercentage is the highest error rate (errors/requests*100) a
	// run may show and still count as successful. Defaults to 2.
	MaxErrorPercentage float64
	Logger             *slog.Logger
	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Harness drives benchmark campaigns: it executes profiles sequentially,
// derives each run's success flag, persists the invocation record and keeps
// the in-memory history used for variance comparison.
type Harness struct {
	url      string
	executor Executor
	store    Store

	maxErrorPercentage float64
	logger             *slog.Logger
	now                func() time.Time

	invocationID uuid.UUID
	runDate      time.Time
	results      []Result
	history      []Result
}

// NewHarness builds a harness for the given target URL. Executor and store
// are required; everything else defaults.
func NewHarness(url string, executor Executor, store Store, opts Options) (*Harness, error) {
	if url == "" {
		return nil, fmt.Errorf("target url is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if opts.MaxErrorPercentage == 0 {
		opts.MaxErrorPercentage = 2
	}
	if opts.MaxErrorPercentage < 0 || opts.MaxErrorPercentage > 100 {
		return nil, fmt.Errorf("max error percentage %.2f out of range [0,100]", opts.MaxErrorPercentage)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Harness{
		url:                url,
		executor:           executor,
		store:              store,
		maxErrorPercentage: opts.MaxErrorPercentage,
		logger:             opts.Logger,
		now:                opts.Now,
	}, nil
}

// Bench executes every profile in order, each a blocking call awaited before
// the next starts. Execution failures are recorded as failed runs and the
// campaign continues. The collected runs are persisted as one record and the
// most recent prior record is loaded for comparison.
func (h *Harness) Bench(ctx context.Context, configs []Config) error {
	if len(configs) == 0 {
		return fmt.Errorf("no benchmark configurations given")
	}

	date := h.now().Truncate(time.Second)
	h.runDate = date
	h.invocationID = uuid.New()
	h.results = nil

	for _, cfg := range configs {
		run := h.executor.Execute(ctx, cfg)
		run.Config = cfg
		run.Timestamp = date
		run.applySuccessPolicy(h.maxErrorPercentage)
		if run.Error != "" {
			h.logger.Warn("benchmark run failed", "config", cfg.Key(), "error", run.Error)
		} else if !run.Success {
			h.logger.Warn("benchmark run exceeded error budget",
				"config", cfg.Key(),
				"error_percentage", run.errorPercentage(),
				"max_error_percentage", h.maxErrorPercentage)
		} else {
			h.logger.Debug("benchmark run completed", "config", cfg.Key(), "requests_per_sec", run.RequestsPerSec)
		}
		h.results = append(h.results, run)
	}

	if err := h.store.Save(date, h.results); err != nil {
		if errors.Is(err, ErrStorageUnavailable) {
			h.logger.Error("history disabled for this run", "error", err)
			return nil
		}
		return fmt.Errorf("persisting benchmark record: %w", err)
	}

	if err := h.LoadHistory(Last, false); err != nil && !errors.Is(err, ErrNoRecords) {
		return err
	}
	return nil
}

// BenchExponential runs the built-in thread/connection ladder.
func (h *Harness) BenchExponential(ctx context.Context, duration time.Duration) error {
	return h.Bench(ctx, ExponentialLadder(duration))
}

// LoadHistory loads a window of past runs and appends the survivors (those
// not already held) to the in-memory history. The current invocation's own
// runs are excluded so a windowed load never feeds a run back in as history.
func (h *Harness) LoadHistory(period Period, reduceBest bool) error {
	known := make([]Result, 0, len(h.history)+len(h.results))
	known = append(known, h.history...)
	known = append(known, h.results...)
	loaded, err := h.store.Load(LoadOptions{
		Period:     period,
		ReduceBest: reduceBest,
		Exclude:    known,
		CurrentRun: h.runDate,
	})
	if err != nil {
		return err
	}
	h.history = append(h.history, loaded...)
	return nil
}

// Best returns the best run of the current invocation.
func (h *Harness) Best() (Result, error) {
	return Best(h.results)
}

// HistoricalBest returns the best run of the loaded history.
func (h *Harness) HistoricalBest() (Result, error) {
	return Best(h.history)
}

// Variance loads the given window, reduced to record bests, and compares the
// current invocation's best run against the historical best.
func (h *Harness) Variance(period Period) (Variance, error) {
	newBest, err := h.Best()
	if err != nil {
		return Variance{}, err
	}
	if err := h.LoadHistory(period, true); err != nil {
		return Variance{}, err
	}
	oldBest, err := h.HistoricalBest()
	if err != nil {
		return Variance{}, err
	}
	return Compare(newBest, oldBest), nil
}

// Results returns the runs of the current invocation in execution order.
func (h *Harness) Results() []Result { return h.results }

// History returns the loaded historical runs.
func (h *Harness) History() []Result { return h.history }

// RunDate returns the timestamp stamped on the current invocation.
func (h *Harness) RunDate() time.Time { return h.runDate }

// InvocationID returns the unique id of the current invocation.
func (h *Harness) InvocationID() uuid.UUID { return h.invocationID }

// URL returns the benchmark target.
func (h *Harness) URL() string { return h.url }
