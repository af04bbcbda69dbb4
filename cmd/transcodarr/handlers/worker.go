package handlers

import (
	"context"
	"fmt"
)

// WorkerStatus prints the dispatcher's rffmpeg host table.
func WorkerStatus(ctx context.Context, configPath string) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	workers, err := fetchWorkers(ctx, cfg)
	if err != nil {
		return err
	}

	if len(workers) == 0 {
		fmt.Println("No workers registered.")
		return nil
	}

	fmt.Printf("%-20s %-20s %6s %8s %s\n", "HOSTNAME", "NAME", "WEIGHT", "ACTIVE", "STATE")
	for _, w := range workers {
		fmt.Printf("%-20s %-20s %6d %8d %s\n", w.Hostname, w.Servername, w.Weight, w.Active, w.State)
	}
	return nil
}

// WorkerAdd registers an already-provisioned worker with rffmpeg. The host
// must have been set up (`transcodarr setup`) first; this only touches the
// dispatcher's host table.
func WorkerAdd(ctx context.Context, configPath, address, name string, weight int) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	if name == "" {
		name = address
	}
	if weight < 1 {
		return fmt.Errorf("weight must be at least 1")
	}

	dispatcher, err := dispatcherRemote(cfg, loadTimeouts())
	if err != nil {
		return err
	}

	client := newDispatchClient(dispatcher, cfg.Dispatcher.Container)

	registered, err := client.Registered(ctx, name)
	if err != nil {
		return err
	}
	if registered {
		fmt.Printf("%s is already registered.\n", name)
		return nil
	}

	if err := client.AddWorker(ctx, address, name, weight); err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s) with weight %d.\n", name, address, weight)
	return nil
}

// WorkerRemove deregisters a worker from rffmpeg.
func WorkerRemove(ctx context.Context, configPath, name string) error {
	cfg, err := loadConfigFile(resolveConfigPath(configPath))
	if err != nil {
		return err
	}

	dispatcher, err := dispatcherRemote(cfg, loadTimeouts())
	if err != nil {
		return err
	}

	if err := newDispatchClient(dispatcher, cfg.Dispatcher.Container).RemoveWorker(ctx, name); err != nil {
		return err
	}
	fmt.Printf("Removed %s from the worker table.\n", name)
	return nil
}
