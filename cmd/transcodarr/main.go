// Package main is the entry point for the transcodarr CLI.
//
// transcodarr provisions a hardware-accelerated transcode pipeline for
// Jellyfin: a dispatcher NAS running rffmpeg inside the Jellyfin container,
// and macOS workers that execute the transcodes with VideoToolbox. Setup is
// idempotent and resumable across the reboot macOS needs to materialize
// mount directories.
//
// Commands: init, setup, doctor, status, worker, uninstall.
//
// For detailed usage information, run:
//
//	transcodarr --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/transcodarr/transcodarr/cmd/transcodarr/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// An interrupt cancels the context; setup is idempotent, so the next run
	// re-detects where it stopped through probes.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
