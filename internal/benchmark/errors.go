package benchmark

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned when a history window selects no stored records.
var ErrNoRecords = errors.New("no history records in selected period")

// ErrStorageUnavailable marks a storage location that could not be prepared.
// Persistence of the current run is lost but the benchmark itself proceeds.
var ErrStorageUnavailable = errors.New("history storage unavailable")

// StatsError reports a reduction over a set with no successful runs.
type StatsError struct {
	SetSize int
}

func (e *StatsError) Error() string {
	return fmt.Sprintf("no successful runs in a set of %d elements", e.SetSize)
}
