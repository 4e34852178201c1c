package benchmark

import (
	"fmt"
	"time"
)

// Config describes a single load profile handed to the wrk executor.
type Config struct {
	Threads     int           `json:"threads"`
	Connections int           `json:"connections"`
	Duration    time.Duration `json:"duration"`
}

// DefaultConfig returns the profile used when the caller specifies nothing.
func DefaultConfig() Config {
	return Config{
		Threads:     8,
		Connections: 32,
		Duration:    30 * time.Second,
	}
}

// NewConfig builds a profile from explicit values, with the duration given in seconds.
func NewConfig(threads, connections int, durationSecs int) Config {
	return Config{
		Threads:     threads,
		Connections: connections,
		Duration:    time.Duration(durationSecs) * time.Second,
	}
}

// ExponentialLadder returns the built-in sweep of profiles: every combination
// of threads {2,4,8,16} and connections {32,64,128,256}.
func ExponentialLadder(duration time.Duration) []Config {
	if duration <= 0 {
		duration = 30 * time.Second
	}
	threads := []int{2, 4, 8, 16}
	connections := []int{32, 64, 128, 256}

	var configs []Config
	for _, t := range threads {
		for _, c := range connections {
			configs = append(configs, Config{Threads: t, Connections: c, Duration: duration})
		}
	}
	return configs
}

// Key returns a short correlation key for the profile.
func (c Config) Key() string {
	return fmt.Sprintf("%d-%d-%d", c.Threads, c.Connections, int(c.Duration.Seconds()))
}

func (c Config) String() string {
	return fmt.Sprintf("threads: %d connections: %d duration: %d secs",
		c.Threads, c.Connections, int(c.Duration.Seconds()))
}
