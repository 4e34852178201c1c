// Package report renders a variance comparison as a fixed-column text
// table, a markdown table or a styled terminal document. Pure formatting
// over a computed variance; no state, no failure modes beyond rendering.
package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"wrkbench/internal/benchmark"
)

var (
	improvementStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("46")). // Green
				Bold(true)
	regressionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	steadyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray
)

type row struct {
	name     string
	delta    float64
	current  float64
	old      float64
	decimals int
}

func rows(v benchmark.Variance) []row {
	return []row{
		{"Requests/sec", v.Delta.RequestsPerSec, v.New.RequestsPerSec, v.Old.RequestsPerSec, 2},
		{"Total requests", v.Delta.Requests, v.New.Requests, v.Old.Requests, 0},
		{"Total errors", v.Delta.Errors, v.New.Errors, v.Old.Errors, 0},
		{"Total successes", v.Delta.Successes, v.New.Successes, v.Old.Successes, 0},
		{"Average latency ms", v.Delta.AvgLatencyMs, v.New.AvgLatencyMs, v.Old.AvgLatencyMs, 2},
		{"Min latency ms", v.Delta.MinLatencyMs, v.New.MinLatencyMs, v.Old.MinLatencyMs, 2},
		{"Max latency ms", v.Delta.MaxLatencyMs, v.New.MaxLatencyMs, v.Old.MaxLatencyMs, 2},
		{"Stdev latency ms", v.Delta.StdevLatencyMs, v.New.StdevLatencyMs, v.Old.StdevLatencyMs, 2},
		{"Transfer MB", v.Delta.TransferMB, v.New.TransferMB, v.Old.TransferMB, 2},
		{"Connect errors", v.Delta.ErrorsConnect, v.New.ErrorsConnect, v.Old.ErrorsConnect, 0},
		{"Read errors", v.Delta.ErrorsRead, v.New.ErrorsRead, v.Old.ErrorsRead, 0},
		{"Write errors", v.Delta.ErrorsWrite, v.New.ErrorsWrite, v.Old.ErrorsWrite, 0},
		{"Status errors", v.Delta.ErrorsStatus, v.New.ErrorsStatus, v.Old.ErrorsStatus, 0},
		{"Timeout errors", v.Delta.ErrorsTimeout, v.New.ErrorsTimeout, v.Old.ErrorsTimeout, 0},
	}
}

// Table renders the comparison as an aligned text table.
func Table(v benchmark.Variance) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "MEASUREMENT\tVARIANCE %\tCURRENT\tOLD")
	for _, r := range rows(v) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.name, formatDelta(r.delta), formatValue(r.current, r.decimals), formatValue(r.old, r.decimals))
	}
	w.Flush()
	return buf.String()
}

// Markdown renders the comparison as a GitHub-flavored markdown table.
func Markdown(v benchmark.Variance) string {
	var b strings.Builder
	b.WriteString("| Measurement | Variance % | Current | Old |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, r := range rows(v) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.name, formatDelta(r.delta), formatValue(r.current, r.decimals), formatValue(r.old, r.decimals))
	}
	return b.String()
}

// Render pretty-prints a markdown report for the terminal.
func Render(markdown string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("building markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering markdown report: %w", err)
	}
	return out, nil
}

type verdictKind int

const (
	verdictSteady verdictKind = iota
	verdictImprovement
	verdictRegression
)

func classify(v benchmark.Variance, threshold float64) (verdictKind, string) {
	delta := v.Delta.RequestsPerSec
	switch {
	case math.IsInf(delta, 1):
		return verdictImprovement, "IMPROVEMENT: requests/sec up from a zero baseline"
	case math.IsNaN(delta) || math.IsInf(delta, -1):
		return verdictSteady, "STEADY: no usable throughput baseline"
	case delta >= threshold:
		return verdictImprovement, fmt.Sprintf("IMPROVEMENT: requests/sec %+.2f%%", delta)
	case delta <= -threshold:
		return verdictRegression, fmt.Sprintf("REGRESSION: requests/sec %+.2f%%", delta)
	default:
		return verdictSteady, fmt.Sprintf("STEADY: requests/sec %+.2f%% (threshold %.1f%%)", delta, threshold)
	}
}

// Verdict classifies the throughput delta against a percentage threshold
// and returns a styled one-line summary. Higher requests/sec is better, so
// a positive delta is an improvement.
func Verdict(v benchmark.Variance, threshold float64) string {
	kind, text := classify(v, threshold)
	switch kind {
	case verdictImprovement:
		return improvementStyle.Render(text)
	case verdictRegression:
		return regressionStyle.Render(text)
	default:
		return steadyStyle.Render(text)
	}
}

// PlainVerdict is Verdict without terminal styling, for notifications.
func PlainVerdict(v benchmark.Variance, threshold float64) string {
	_, text := classify(v, threshold)
	return text
}

// IsRegression reports whether the comparison crosses the regression
// threshold, for callers deciding whether to alert.
func IsRegression(v benchmark.Variance, threshold float64) bool {
	kind, _ := classify(v, threshold)
	return kind == verdictRegression
}

func formatDelta(delta float64) string {
	if math.IsInf(delta, 0) || math.IsNaN(delta) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f", delta)
}

func formatValue(v float64, decimals int) string {
	return fmt.Sprintf("%.*f", decimals, v)
}
