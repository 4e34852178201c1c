package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wrkbench/internal/benchmark"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded benchmark runs",
	Long: `History lists the runs recorded within the given period, newest
records last. With --best each record is reduced to its single best run.`,
	RunE: showHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("period", "forever", "Period to list (last, hour, day, week, month, forever)")
	historyCmd.Flags().Bool("best", false, "Reduce each record to its best run")
}

func showHistory(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	periodName, _ := cmd.Flags().GetString("period")
	period, err := benchmark.ParsePeriod(periodName)
	if err != nil {
		return err
	}
	best, _ := cmd.Flags().GetBool("best")

	store, err := newStoreFunc(logger)
	if err != nil {
		return err
	}
	runs, err := store.Load(benchmark.LoadOptions{Period: period, ReduceBest: best})
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			cmd.Printf("No benchmark history for period %q.\n", period)
			return nil
		}
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tCONFIG\tREQ/SEC\tAVG LATENCY MS\tTRANSFER MB\tSTATUS")
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			r.Timestamp.Format(time.RFC3339), r.Config, r.RequestsPerSec, r.AvgLatencyMs, r.TransferMB, status)
	}
	w.Flush()
	return nil
}
