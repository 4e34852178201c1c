package benchmark

import "math"

// Variance is the per-metric percentage change between a new run and an old
// one. Delta holds the change of every numeric metric; its timestamp is the
// new run's timestamp. A Variance is ephemeral and never persisted, so the
// non-finite deltas produced by a zero baseline never reach a JSON encoder.
type Variance struct {
	New   Result
	Old   Result
	Delta Result
}

// Compare computes the variance of new relative to old.
//
// Division-by-zero policy: a metric whose old value is zero yields 0 when the
// new value is also zero, and ±Inf (sign of the new value) otherwise. The
// reporter renders non-finite deltas as "n/a".
func Compare(newRun, oldRun Result) Variance {
	delta := Result{
		Timestamp:      newRun.Timestamp,
		Config:         newRun.Config,
		Requests:       percentChange(newRun.Requests, oldRun.Requests),
		Errors:         percentChange(newRun.Errors, oldRun.Errors),
		Successes:      percentChange(newRun.Successes, oldRun.Successes),
		RequestsPerSec: percentChange(newRun.RequestsPerSec, oldRun.RequestsPerSec),
		AvgLatencyMs:   percentChange(newRun.AvgLatencyMs, oldRun.AvgLatencyMs),
		MinLatencyMs:   percentChange(newRun.MinLatencyMs, oldRun.MinLatencyMs),
		MaxLatencyMs:   percentChange(newRun.MaxLatencyMs, oldRun.MaxLatencyMs),
		StdevLatencyMs: percentChange(newRun.StdevLatencyMs, oldRun.StdevLatencyMs),
		TransferMB:     percentChange(newRun.TransferMB, oldRun.TransferMB),
		ErrorsConnect:  percentChange(newRun.ErrorsConnect, oldRun.ErrorsConnect),
		ErrorsRead:     percentChange(newRun.ErrorsRead, oldRun.ErrorsRead),
		ErrorsWrite:    percentChange(newRun.ErrorsWrite, oldRun.ErrorsWrite),
		ErrorsStatus:   percentChange(newRun.ErrorsStatus, oldRun.ErrorsStatus),
		ErrorsTimeout:  percentChange(newRun.ErrorsTimeout, oldRun.ErrorsTimeout),
	}
	return Variance{New: newRun, Old: oldRun, Delta: delta}
}

func percentChange(newVal, oldVal float64) float64 {
	if oldVal == 0 {
		if newVal == 0 {
			return 0
		}
		return math.Inf(int(math.Copysign(1, newVal)))
	}
	return (newVal - oldVal) / oldVal * 100
}
