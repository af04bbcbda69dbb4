package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	SSHDial           time.Duration // Timeout for establishing a TCP connection to an SSH port
	CommandTimeout    time.Duration // Timeout for a single remote command
	RebootPoll        time.Duration // Interval between host reachability polls
	WaitForDown       time.Duration // Bound on waiting for a rebooting host to go unreachable
	WaitForUp         time.Duration // Bound on waiting for a rebooted host to accept SSH auth
	RetryMaxAttempts  int           // Maximum number of SSH dial retry attempts
	RetryInitialDelay time.Duration // Initial delay between SSH dial retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - TRANSCODARR_TIMEOUT_SSH_DIAL (default: 10s)
//   - TRANSCODARR_TIMEOUT_COMMAND (default: 2m)
//   - TRANSCODARR_REBOOT_POLL (default: 5s)
//   - TRANSCODARR_TIMEOUT_WAIT_DOWN (default: 2m)
//   - TRANSCODARR_TIMEOUT_WAIT_UP (default: 5m)
//   - TRANSCODARR_RETRY_MAX_ATTEMPTS (default: 3)
//   - TRANSCODARR_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		SSHDial:           parseDuration("TRANSCODARR_TIMEOUT_SSH_DIAL", 10*time.Second),
		CommandTimeout:    parseDuration("TRANSCODARR_TIMEOUT_COMMAND", 2*time.Minute),
		RebootPoll:        parseDuration("TRANSCODARR_REBOOT_POLL", 5*time.Second),
		WaitForDown:       parseDuration("TRANSCODARR_TIMEOUT_WAIT_DOWN", 2*time.Minute),
		WaitForUp:         parseDuration("TRANSCODARR_TIMEOUT_WAIT_UP", 5*time.Minute),
		RetryMaxAttempts:  parseInt("TRANSCODARR_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("TRANSCODARR_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return n
}
