package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/metrics"
	"wrkbench/internal/notify"
	"wrkbench/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run benchmark campaigns on an interval",
	Long: `Watch runs a campaign immediately and then on every tick of the
configured interval, exposing the outcomes on a Prometheus /metrics
endpoint. Stops on SIGINT or SIGTERM.`,
	RunE: watchBenchmarks,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("interval", "", "Interval between campaigns (e.g. 30m, 1h)")
	watchCmd.Flags().Int("metrics-port", 0, "Port for the Prometheus /metrics endpoint, 0 disables it")

	viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
	viper.BindPFlag("metrics_port", watchCmd.Flags().Lookup("metrics-port"))
}

func watchBenchmarks(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	slog.SetDefault(logger)

	interval, err := time.ParseDuration(viper.GetString("watch.interval"))
	if err != nil {
		return fmt.Errorf("parsing watch interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %v", interval)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if port := viper.GetInt("metrics_port"); port > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
		go func() {
			logger.Info("metrics endpoint listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		defer server.Close()
	}

	logger.Info("watch started", "interval", interval, "url", viper.GetString("url"))
	watchTick(ctx, logger, m)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			watchTick(ctx, logger, m)
		}
	}
}

// watchTick runs one campaign and records its outcome. Failures are logged
// and never end the watch loop.
func watchTick(ctx context.Context, logger *slog.Logger, m *metrics.Metrics) {
	if ctx.Err() != nil {
		return
	}
	h, err := runCampaign(ctx, logger)
	if err != nil {
		logger.Error("campaign failed", "error", err)
		return
	}
	m.ObserveCampaign(h.Results())

	period, err := benchmark.ParsePeriod(viper.GetString("period"))
	if err != nil {
		logger.Error("invalid period", "error", err)
		return
	}
	v, err := h.Variance(period)
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			logger.Info("no history to compare against yet")
		} else {
			logger.Error("variance failed", "error", err)
		}
		return
	}

	threshold := viper.GetFloat64("regression_threshold")
	logger.Info("campaign finished",
		"invocation", h.InvocationID(),
		"verdict", report.PlainVerdict(v, threshold),
		"delta_requests_per_sec", v.Delta.RequestsPerSec)

	if viper.GetBool("notifications.slack.enabled") && report.IsRegression(v, threshold) {
		notifier := notify.NewSlackNotifier(viper.GetString("notifications.slack.webhook_url"))
		message := fmt.Sprintf("%s\n%s\n\n%s", h.URL(), report.PlainVerdict(v, threshold), report.Markdown(v))
		if err := notifier.Notify(ctx, message); err != nil {
			logger.Warn("slack notification failed", "error", err)
		}
	}
}
