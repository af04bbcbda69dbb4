// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/provisioning"
	"github.com/transcodarr/transcodarr/internal/state"
)

// defaultConfigFile is what handlers look for when no --config is given.
const defaultConfigFile = "transcodarr.yaml"

// remote is the executor surface handlers need from an SSH client.
type remote interface {
	provisioning.Executor
	Addr() string
	Ping(ctx context.Context) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads and validates the configuration.
	loadConfigFile = config.Load

	// openStateStore opens the setup ledger at its default location.
	openStateStore = func() (*state.Store, error) {
		path, err := state.DefaultPath()
		if err != nil {
			return nil, err
		}
		return state.Open(path)
	}

	// newRemote creates an SSH executor for one host.
	newRemote = func(cfg *ssh.Config) (remote, error) {
		return ssh.NewClient(cfg)
	}
)

func resolveConfigPath(path string) string {
	if path == "" {
		return defaultConfigFile
	}
	return path
}

// dispatcherRemote builds the SSH executor for the NAS.
func dispatcherRemote(cfg *config.Config, timeouts *config.Timeouts) (remote, error) {
	r, err := newRemote(&ssh.Config{
		Host:        cfg.Dispatcher.Address,
		Port:        cfg.Dispatcher.Port,
		User:        cfg.Dispatcher.User,
		KeyPath:     cfg.Dispatcher.KeyPath,
		DialTimeout: timeouts.SSHDial,
		MaxRetries:  timeouts.RetryMaxAttempts,
		RetryDelay:  timeouts.RetryInitialDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatcher connection setup failed: %w", err)
	}
	return r, nil
}

// workerRemote builds the SSH executor for the macOS worker.
func workerRemote(cfg *config.Config, timeouts *config.Timeouts) (remote, error) {
	r, err := newRemote(&ssh.Config{
		Host:        cfg.Worker.Address,
		Port:        cfg.Worker.Port,
		User:        cfg.Worker.User,
		KeyPath:     cfg.Worker.KeyPath,
		DialTimeout: timeouts.SSHDial,
		MaxRetries:  timeouts.RetryMaxAttempts,
		RetryDelay:  timeouts.RetryInitialDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("worker connection setup failed: %w", err)
	}
	return r, nil
}
