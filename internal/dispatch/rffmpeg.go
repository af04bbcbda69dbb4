// Package dispatch wraps the rffmpeg admin CLI running inside the Jellyfin
// container on the NAS. All operations shell out over the dispatcher's SSH
// connection with `docker exec`, which is the only management surface rffmpeg
// exposes.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

// Runner executes commands on the dispatcher host. Satisfied by *ssh.Client.
type Runner interface {
	Exec(ctx context.Context, command string) (ssh.Result, error)
}

// Host is one row of rffmpeg's host table.
type Host struct {
	Hostname   string
	Servername string
	ID         int
	Weight     int
	State      string
	Active     int
}

// Client manages rffmpeg worker registrations.
type Client struct {
	runner    Runner
	container string
}

// NewClient returns a Client that administers rffmpeg inside the named
// container on the dispatcher.
func NewClient(runner Runner, container string) *Client {
	return &Client{runner: runner, container: container}
}

// AddWorker registers a worker with rffmpeg. Registering an address that is
// already present is rffmpeg's problem to dedupe, so callers gate on Status
// first.
func (c *Client) AddWorker(ctx context.Context, address, name string, weight int) error {
	command := fmt.Sprintf("docker exec %s rffmpeg add --weight %d --name %s %s",
		ssh.Quote(c.container), weight, ssh.Quote(name), ssh.Quote(address))
	return c.exec(ctx, command)
}

// RemoveWorker deregisters a worker by name.
func (c *Client) RemoveWorker(ctx context.Context, name string) error {
	command := fmt.Sprintf("docker exec %s rffmpeg remove %s", ssh.Quote(c.container), ssh.Quote(name))
	return c.exec(ctx, command)
}

// Status returns rffmpeg's current host table.
func (c *Client) Status(ctx context.Context) ([]Host, error) {
	command := fmt.Sprintf("docker exec %s rffmpeg status", ssh.Quote(c.container))
	res, err := c.runner.Exec(ctx, command)
	if err != nil {
		return nil, err
	}
	if !res.Ok() {
		return nil, fmt.Errorf("rffmpeg status exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return parseStatus(res.Stdout), nil
}

// Registered reports whether a worker name appears in the host table.
func (c *Client) Registered(ctx context.Context, name string) (bool, error) {
	hosts, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	for _, h := range hosts {
		if h.Servername == name || h.Hostname == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) exec(ctx context.Context, command string) error {
	res, err := c.runner.Exec(ctx, command)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("rffmpeg command exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// parseStatus extracts host rows from rffmpeg's status table. The table is
// whitespace-aligned with a header line:
//
//	Hostname   Servername  ID  Weight  State  Active Commands
//
// Lines that do not start with a host row (separators, the localhost
// fallback notice, command details) are skipped.
func parseStatus(out string) []Host {
	var hosts []Host
	inTable := false
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "hostname") {
			inTable = true
			continue
		}
		if !inTable || len(fields) < 5 {
			continue
		}
		id, err := strconv.Atoi(fields[2])
		if err != nil {
			continue
		}
		weight, _ := strconv.Atoi(fields[3])
		h := Host{
			Hostname:   fields[0],
			Servername: fields[1],
			ID:         id,
			Weight:     weight,
			State:      fields[4],
		}
		if len(fields) > 5 {
			h.Active, _ = strconv.Atoi(fields[5])
		}
		hosts = append(hosts, h)
	}
	return hosts
}
