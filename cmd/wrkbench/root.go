package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wrkbench/internal/benchmark"
	"wrkbench/internal/config"
	"wrkbench/internal/history"
	"wrkbench/internal/wrk"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wrkbench",
	Short: "HTTP benchmark harness with persistent run history",
	Long: `wrkbench drives the wrk load generator against a target service,
records every run in a durable history and reports whether the newest
run is a regression or an improvement relative to past runs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'wrkbench --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.wrkbench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("history-backend", "", "History backend (file, sqlite, postgres)")
	rootCmd.PersistentFlags().String("history-dir", "", "Directory for file-backed history")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("history.backend", rootCmd.PersistentFlags().Lookup("history-backend"))
	viper.BindPFlag("history.dir", rootCmd.PersistentFlags().Lookup("history-dir"))
}

// initConfig reads in the config file and environment variables if set.
func initConfig() {
	config.Load(cfgFile)
}

func buildLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Factories below are variables so command tests can swap in fakes.

var validateConfigFunc = config.ValidateConfig

var newStoreFunc = func(logger *slog.Logger) (benchmark.Store, error) {
	return history.NewStore(history.StoreConfig{
		Backend: viper.GetString("history.backend"),
		Dir:     viper.GetString("history.dir"),
		Path:    viper.GetString("history.path"),
		DSN:     viper.GetString("history.dsn"),
		Logger:  logger,
	})
}

var newExecutorFunc = func(target string, logger *slog.Logger) (benchmark.Executor, error) {
	return wrk.NewExecutor(target, wrk.Options{
		Request: wrk.Request{
			Method:  viper.GetString("method"),
			Body:    viper.GetString("body"),
			Headers: viper.GetStringMapString("headers"),
		},
		UserScript: viper.GetString("script"),
		Binary:     viper.GetString("wrk_binary"),
		Logger:     logger,
	})
}
