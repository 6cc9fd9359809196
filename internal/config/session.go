package config

import (
	"fmt"
	"os"
	"time"
)

const defaultIdleTimeout = 30 * time.Minute

// SessionIdleTimeout reads SESSION_IDLE_TIMEOUT, the time after which an
// untouched game without watchers is dropped. Zero disables pruning.
func SessionIdleTimeout() (time.Duration, error) {
	s, ok := os.LookupEnv("SESSION_IDLE_TIMEOUT")
	if !ok || s == "" {
		return defaultIdleTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unable to parse SESSION_IDLE_TIMEOUT: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}
	return d, nil
}
