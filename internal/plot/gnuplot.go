// Package plot renders a requests/sec history series to a PNG through the
// external gnuplot binary.
package plot

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"wrkbench/internal/benchmark"
)

// dataTimeLayout is the timestamp format written to the gnuplot data file
// and declared to gnuplot as timefmt.
const dataTimeLayout = "2006-01-02-15:04:05"

// execCommand allows mocking the gnuplot invocation in tests.
var execCommand = exec.Command

// Error is a plot-rendering failure.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "plot error: " + e.Reason
}

// Gnuplot renders one titled series to an output file.
type Gnuplot struct {
	title  string
	output string
	logger *slog.Logger
}

// New builds a renderer writing a PNG to output.
func New(title, output string, logger *slog.Logger) *Gnuplot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gnuplot{title: title, output: output, logger: logger}
}

// Plot renders the requests/sec series of the given runs, which must be
// ordered by timestamp. Fewer than two datapoints cannot form a series. On
// gnuplot failure the temporary data file is kept for post-mortem debugging
// and named in the error.
func (g *Gnuplot) Plot(runs []benchmark.Result) error {
	if len(runs) < 2 {
		return &Error{Reason: fmt.Sprintf("%d datapoints available, unable to plot history with less than 2", len(runs))}
	}

	dataFile, err := os.CreateTemp("", "wrkbench-plot-*.dat")
	if err != nil {
		return fmt.Errorf("creating plot data file: %w", err)
	}
	for _, r := range runs {
		fmt.Fprintf(dataFile, "%s %d\n", r.Timestamp.Format(dataTimeLayout), int64(r.RequestsPerSec))
	}
	if err := dataFile.Close(); err != nil {
		os.Remove(dataFile.Name())
		return fmt.Errorf("writing plot data file: %w", err)
	}

	script := g.script(runs, dataFile.Name())
	cmd := execCommand("gnuplot")
	cmd.Stdin = strings.NewReader(script)
	if out, err := cmd.CombinedOutput(); err != nil {
		g.logger.Error("gnuplot failed", "error", err, "output", string(out))
		return &Error{Reason: fmt.Sprintf("rendering %s failed, data file %s kept for debug", g.output, dataFile.Name())}
	}

	os.Remove(dataFile.Name())
	return nil
}

func (g *Gnuplot) script(runs []benchmark.Result, dataFile string) string {
	minX := runs[0].Timestamp
	maxX := runs[len(runs)-1].Timestamp

	minY, maxY := runs[0].RequestsPerSec, runs[0].RequestsPerSec
	for _, r := range runs[1:] {
		if r.RequestsPerSec < minY {
			minY = r.RequestsPerSec
		}
		if r.RequestsPerSec > maxY {
			maxY = r.RequestsPerSec
		}
	}
	// 15% headroom above and below the series
	low := int64(minY - minY*0.15)
	high := int64(maxY + maxY*0.15)

	return fmt.Sprintf(`set xdata time
set timefmt "%%Y-%%m-%%d-%%H:%%M:%%S"
set format x "%%m/%%y/%%d %%H:%%M:%%S"
set xrange ["%s":"%s"]
set yrange [%d:%d]
set key off
set xtics rotate by -45
set title "%s"
set terminal png
set output "%s"
plot "%s" using 1:2 with linespoints linetype 6 linewidth 2`,
		minX.Format(dataTimeLayout),
		maxX.Format(dataTimeLayout),
		low, high,
		g.title,
		g.output,
		dataFile)
}

// Series orders runs by timestamp for plotting, oldest first, without
// mutating the input.
func Series(runs []benchmark.Result) []benchmark.Result {
	out := make([]benchmark.Result, len(runs))
	copy(out, runs)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
