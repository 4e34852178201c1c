package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/notify"
	"wrkbench/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark campaign and compare it against history",
	Long: `Run executes wrk against the target URL, persists the results as one
history record and reports the variance of the best run against the best
historical run within the chosen period.`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("url", "", "Target URL to benchmark (http or https)")
	runCmd.Flags().Int("threads", 0, "Number of wrk threads")
	runCmd.Flags().Int("connections", 0, "Number of open connections")
	runCmd.Flags().Int("duration", 0, "Duration of each run in seconds")
	runCmd.Flags().Bool("exponential", false, "Run the exponential thread/connection ladder")
	runCmd.Flags().String("period", "", "History period to compare against (last, hour, day, week, month, forever)")
	runCmd.Flags().Bool("notify", false, "Send the verdict to the configured Slack webhook")
	runCmd.Flags().Bool("no-save", false, "Do not persist this campaign to history")
	runCmd.Flags().Bool("no-compare", false, "Skip the variance report")

	bindRunFlags()
}

// bindRunFlags wires the run flags into viper. Separate from init so tests
// can rebind after a viper.Reset.
func bindRunFlags() {
	viper.BindPFlag("url", runCmd.Flags().Lookup("url"))
	viper.BindPFlag("threads", runCmd.Flags().Lookup("threads"))
	viper.BindPFlag("connections", runCmd.Flags().Lookup("connections"))
	viper.BindPFlag("duration_secs", runCmd.Flags().Lookup("duration"))
	viper.BindPFlag("exponential", runCmd.Flags().Lookup("exponential"))
	viper.BindPFlag("period", runCmd.Flags().Lookup("period"))
	viper.BindPFlag("no_save", runCmd.Flags().Lookup("no-save"))
}

// discardStore drops records for --no-save runs while still serving history
// loads from the wrapped store.
type discardStore struct {
	benchmark.Store
}

func (discardStore) Save(time.Time, []benchmark.Result) error { return nil }

func runBenchmark(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	slog.SetDefault(logger)

	h, err := runCampaign(cmd.Context(), logger)
	if err != nil {
		return err
	}
	printRuns(cmd, h.Results())

	if noCompare, _ := cmd.Flags().GetBool("no-compare"); noCompare {
		return nil
	}

	period, err := benchmark.ParsePeriod(viper.GetString("period"))
	if err != nil {
		return err
	}
	v, err := h.Variance(period)
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			cmd.Println("No history to compare against yet. Run again to get a variance report.")
			return nil
		}
		return err
	}

	threshold := viper.GetFloat64("regression_threshold")
	cmd.Println()
	cmd.Println(report.Table(v))
	cmd.Println(report.Verdict(v, threshold))

	if notifyFlag, _ := cmd.Flags().GetBool("notify"); notifyFlag || viper.GetBool("notifications.slack.enabled") {
		notifier := notify.NewSlackNotifier(viper.GetString("notifications.slack.webhook_url"))
		message := fmt.Sprintf("%s\n%s\n\n%s", h.URL(), report.PlainVerdict(v, threshold), report.Markdown(v))
		if err := notifier.Notify(cmd.Context(), message); err != nil {
			logger.Warn("slack notification failed", "error", err)
		}
	}
	return nil
}

// runCampaign validates the configuration, assembles the harness from the
// configured factories and executes one full campaign. Shared by run and
// watch.
func runCampaign(ctx context.Context, logger *slog.Logger) (*benchmark.Harness, error) {
	if err := validateConfigFunc(); err != nil {
		return nil, err
	}
	target := viper.GetString("url")
	if target == "" {
		return nil, fmt.Errorf("no target url configured, set --url or the WRKBENCH_URL environment variable")
	}

	executor, err := newExecutorFunc(target, logger)
	if err != nil {
		return nil, err
	}
	store, err := newStoreFunc(logger)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("no_save") {
		store = discardStore{store}
	}
	h, err := benchmark.NewHarness(target, executor, store, benchmark.Options{
		MaxErrorPercentage: viper.GetFloat64("max_error_percentage"),
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	duration := time.Duration(viper.GetInt("duration_secs")) * time.Second
	if viper.GetBool("exponential") {
		err = h.BenchExponential(ctx, duration)
	} else {
		cfg := benchmark.Config{
			Threads:     viper.GetInt("threads"),
			Connections: viper.GetInt("connections"),
			Duration:    duration,
		}
		err = h.Bench(ctx, []benchmark.Config{cfg})
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func printRuns(cmd *cobra.Command, runs []benchmark.Result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CONFIG\tREQ/SEC\tAVG LATENCY MS\tTRANSFER MB\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
			if r.Error != "" {
				status = "failed: " + r.Error
			}
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n",
			r.Config, r.RequestsPerSec, r.AvgLatencyMs, r.TransferMB, status)
	}
	w.Flush()
}
