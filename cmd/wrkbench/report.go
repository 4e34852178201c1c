package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compare the latest record against historical bests",
	Long: `Report takes the best run of the most recent record and compares it
against the best historical run within the given period, without running
any new benchmarks.`,
	RunE: showReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("period", "", "Period to compare against (last, hour, day, week, month, forever)")
	reportCmd.Flags().String("format", "table", "Output format (table, markdown, term)")
}

func showReport(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	periodName, _ := cmd.Flags().GetString("period")
	if periodName == "" {
		periodName = viper.GetString("period")
	}
	period, err := benchmark.ParsePeriod(periodName)
	if err != nil {
		return err
	}

	store, err := newStoreFunc(logger)
	if err != nil {
		return err
	}

	latest, err := store.Load(benchmark.LoadOptions{Period: benchmark.Last})
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			return fmt.Errorf("no benchmark history, run 'wrkbench run' first")
		}
		return err
	}
	newBest, err := benchmark.Best(latest)
	if err != nil {
		return err
	}

	past, err := store.Load(benchmark.LoadOptions{
		Period:     period,
		ReduceBest: true,
		Exclude:    latest,
	})
	if err != nil {
		if errors.Is(err, benchmark.ErrNoRecords) {
			return fmt.Errorf("only one record within period %q, nothing to compare against", period)
		}
		return err
	}
	oldBest, err := benchmark.Best(past)
	if err != nil {
		return err
	}

	v := benchmark.Compare(newBest, oldBest)
	threshold := viper.GetFloat64("regression_threshold")

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "markdown":
		cmd.Println(report.Markdown(v))
		cmd.Println(report.PlainVerdict(v, threshold))
	case "term":
		rendered, err := report.Render(report.Markdown(v))
		if err != nil {
			return err
		}
		cmd.Println(rendered)
		cmd.Println(report.Verdict(v, threshold))
	case "table":
		cmd.Println(report.Table(v))
		cmd.Println(report.Verdict(v, threshold))
	default:
		return fmt.Errorf("unknown format %q, want table, markdown or term", format)
	}
	return nil
}
