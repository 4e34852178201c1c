// Package config initializes viper-backed configuration for the CLI:
// config file, environment variables and named defaults.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
// Missing files are fine; defaults cover everything.
func Load(cfgFile string) {
	// explicit .env loading; a missing .env is not an error
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wrkbench")
	}

	viper.SetEnvPrefix("WRKBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	// If a config file is found, read it in; otherwise run on defaults.
	_ = viper.ReadInConfig()
}

// SetDefaults seeds every known key with its named default.
func SetDefaults() {
	viper.SetDefault("url", "")
	viper.SetDefault("method", "GET")
	viper.SetDefault("body", "")
	viper.SetDefault("headers", map[string]string{})
	viper.SetDefault("script", "")
	viper.SetDefault("wrk_binary", "wrk")

	viper.SetDefault("threads", 8)
	viper.SetDefault("connections", 32)
	viper.SetDefault("duration_secs", 30)
	viper.SetDefault("exponential", false)

	viper.SetDefault("max_error_percentage", 2.0)
	viper.SetDefault("period", "day")
	viper.SetDefault("regression_threshold", 10.0)

	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.dir", ".wrkbench-history")
	viper.SetDefault("history.path", ".wrkbench.db")
	viper.SetDefault("history.dsn", "")

	viper.SetDefault("notifications.slack.enabled", false)
	viper.SetDefault("notifications.slack.webhook_url", "")

	viper.SetDefault("watch.interval", "1h")
	viper.SetDefault("metrics_port", 2112)
	viper.SetDefault("verbose", false)
}
