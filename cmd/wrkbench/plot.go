package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/plot"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the requests/sec history to a PNG",
	Long: `Plot renders the best requests/sec of every record within the given
period as a time series, through the gnuplot binary.`,
	RunE: renderPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().String("period", "forever", "Period to plot (hour, day, week, month, forever)")
	plotCmd.Flags().StringP("output", "o", "wrkbench.png", "Output PNG file")
	plotCmd.Flags().String("title", "Requests/sec over time", "Plot title")
}

func renderPlot(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	periodName, _ := cmd.Flags().GetString("period")
	period, err := benchmark.ParsePeriod(periodName)
	if err != nil {
		return err
	}

	store, err := newStoreFunc(logger)
	if err != nil {
		return err
	}
	runs, err := store.Load(benchmark.LoadOptions{Period: period, ReduceBest: true})
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			return fmt.Errorf("no benchmark history within period %q", period)
		}
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	title, _ := cmd.Flags().GetString("title")
	if err := plot.New(title, output, logger).Plot(plot.Series(runs)); err != nil {
		return err
	}
	cmd.Printf("Wrote %s with %d datapoints.\n", output, len(runs))
	return nil
}
