package benchmark

import "time"

// Result is the measured outcome of executing one Config against a target.
//
// The snake_case field names are a stored contract: history files written by
// older versions must keep decoding, so renaming a tag is a breaking change.
type Result struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Config    Config    `json:"config"`
	Timestamp time.Time `json:"timestamp"`

	Requests       float64 `json:"requests"`
	Errors         float64 `json:"errors"`
	Successes      float64 `json:"successes"`
	RequestsPerSec float64 `json:"requests_per_sec"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	MinLatencyMs   float64 `json:"min_latency_ms"`
	MaxLatencyMs   float64 `json:"max_latency_ms"`
	StdevLatencyMs float64 `json:"stdev_latency_ms"`
	TransferMB     float64 `json:"transfer_mb"`
	ErrorsConnect  float64 `json:"errors_connect"`
	ErrorsRead     float64 `json:"errors_read"`
	ErrorsWrite    float64 `json:"errors_write"`
	ErrorsStatus   float64 `json:"errors_status"`
	ErrorsTimeout  float64 `json:"errors_timeout"`
}

// Fail builds the result recorded for an execution that never produced
// metrics: all counters zero, the error text populated, success false.
func Fail(reason string) Result {
	return Result{Error: reason}
}

// applySuccessPolicy derives the Success flag from the error-rate policy.
// A run succeeds when its error percentage (errors/requests*100) does not
// exceed maxErrorPercentage. A run that failed to execute, or that served
// no requests at all, never succeeds. Called exactly once per result,
// during ingestion.
func (r *Result) applySuccessPolicy(maxErrorPercentage float64) {
	if r.Error != "" || r.Requests == 0 {
		return
	}
	if r.errorPercentage() <= maxErrorPercentage {
		r.Success = true
	}
}

func (r *Result) errorPercentage() float64 {
	if r.Requests == 0 {
		return 0
	}
	return r.Errors / r.Requests * 100
}

// Equal reports exact structural equality, used to deduplicate runs already
// present in an in-memory history. Timestamps compare by instant so that a
// run survives a serialization round trip.
func (r Result) Equal(o Result) bool {
	if !r.Timestamp.Equal(o.Timestamp) {
		return false
	}
	r.Timestamp = time.Time{}
	o.Timestamp = time.Time{}
	return r == o
}
