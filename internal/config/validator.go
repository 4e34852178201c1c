package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wrkbench/internal/benchmark"
)

// ValidateConfig validates configuration values after viper has loaded
// them. Every problem is collected so the user sees them all at once.
func ValidateConfig() error {
	var errors []string

	if target := viper.GetString("url"); target != "" {
		u, err := url.Parse(target)
		if err != nil {
			errors = append(errors, fmt.Sprintf("url is not parsable: %v", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("url must use http or https, got: %s", target))
		} else if u.Host == "" {
			errors = append(errors, fmt.Sprintf("url has no host: %s", target))
		}
	}

	if threads := viper.GetInt("threads"); threads <= 0 {
		errors = append(errors, fmt.Sprintf("threads must be positive, got: %d", threads))
	}
	if connections := viper.GetInt("connections"); connections <= 0 {
		errors = append(errors, fmt.Sprintf("connections must be positive, got: %d", connections))
	}
	if secs := viper.GetInt("duration_secs"); secs <= 0 {
		errors = append(errors, fmt.Sprintf("duration_secs must be positive, got: %d", secs))
	}

	if pct := viper.GetFloat64("max_error_percentage"); pct < 0 || pct > 100 {
		errors = append(errors, fmt.Sprintf("max_error_percentage must be within [0,100], got: %v", pct))
	}

	if period := viper.GetString("period"); period != "" {
		if _, err := benchmark.ParsePeriod(period); err != nil {
			errors = append(errors, err.Error())
		}
	}

	switch backend := strings.ToLower(viper.GetString("history.backend")); backend {
	case "", "file", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		errors = append(errors, fmt.Sprintf("history.backend must be file, sqlite or postgres, got: %s", backend))
	}

	if viper.IsSet("watch.interval") {
		if interval := viper.GetString("watch.interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err != nil {
				errors = append(errors, fmt.Sprintf("watch.interval is not a duration: %v", err))
			} else if d <= 0 {
				errors = append(errors, fmt.Sprintf("watch.interval must be positive, got: %v", d))
			}
		}
	}

	if port := viper.GetInt("metrics_port"); port < 0 || port > 65535 {
		errors = append(errors, fmt.Sprintf("metrics_port must be a valid port, got: %d", port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
