package benchmark

// Best reduces a set of runs to the single best one.
//
// Failed runs are discarded first. The remaining runs are compared under a
// descending lexicographic order: requests/sec, then successes, then total
// requests, then transferred megabytes. The scan is strict greater-than, so
// the first run encountered wins full ties; the choice is deterministic for
// a given input order and has no effect on anything but the returned value.
func Best(runs []Result) (Result, error) {
	var best Result
	found := false
	for _, r := range runs {
		if !r.Success {
			continue
		}
		if !found || betterThan(r, best) {
			best = r
			found = true
		}
	}
	if !found {
		return Result{}, &StatsError{SetSize: len(runs)}
	}
	return best, nil
}

func betterThan(a, b Result) bool {
	if a.RequestsPerSec != b.RequestsPerSec {
		return a.RequestsPerSec > b.RequestsPerSec
	}
	if a.Successes != b.Successes {
		return a.Successes > b.Successes
	}
	if a.Requests != b.Requests {
		return a.Requests > b.Requests
	}
	return a.TransferMB > b.TransferMB
}
