// Package reboot coordinates worker restarts requested by provisioning steps.
//
// A restart is the one operation in the pipeline that destroys the session it
// runs over, so ordering matters more than anywhere else: the resume point is
// persisted before the reboot command is issued, and only a verified
// come-back clears it. If the process dies at any point in between, the next
// invocation finds the pending marker and picks up where this one stopped.
package reboot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/provisioning"
	"github.com/transcodarr/transcodarr/internal/state"
)

// ErrDeclined is returned when the operator answers no to the reboot prompt.
var ErrDeclined = errors.New("reboot declined")

// TimeoutError is returned when a rebooted host does not come back within the
// configured bound. The host may still be booting; the error carries the
// resume command so the operator can continue once it is reachable.
type TimeoutError struct {
	Host    string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"host %s did not come back within %v; once it is reachable, run `transcodarr setup --resume` to continue",
		e.Host, e.Elapsed.Round(time.Second))
}

// Host is the rebooting machine. Satisfied by *ssh.Client.
type Host interface {
	// Addr returns the host:port dial address.
	Addr() string
	// Ping establishes one authenticated SSH session and closes it.
	Ping(ctx context.Context) error
	// ExecPrivilegedBatch runs a root script; used for the reboot itself.
	ExecPrivilegedBatch(ctx context.Context, script string) (ssh.Result, error)
}

// Orchestrator drives one restart cycle: confirm, persist the resume point,
// reboot, wait for the host to drop off the network, wait for SSH to come
// back, clear the resume point.
type Orchestrator struct {
	state    *state.Store
	observer provisioning.Observer
	timeouts *config.Timeouts

	// assumeYes skips the interactive confirmation.
	assumeYes bool

	// Test seams. dial answers whether a TCP connection to addr currently
	// succeeds; confirm asks the operator.
	dial    func(ctx context.Context, addr string) bool
	confirm func(host string) (bool, error)
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithAssumeYes skips the interactive reboot confirmation.
func WithAssumeYes(yes bool) Option {
	return func(o *Orchestrator) { o.assumeYes = yes }
}

// NewOrchestrator creates a reboot orchestrator persisting into st.
func NewOrchestrator(st *state.Store, observer provisioning.Observer, timeouts *config.Timeouts, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state:    st,
		observer: observer,
		timeouts: timeouts,
		dial:     tcpDial,
		confirm:  confirmReboot,
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute performs the restart cycle for a pipeline reboot request. On
// success the host is back up, SSH authenticates, and the pending-reboot
// marker is cleared; the caller re-runs the pipeline, which resumes at the
// requesting step's probe.
func (o *Orchestrator) Execute(ctx context.Context, req *provisioning.RebootRequest, host Host) error {
	if !o.assumeYes {
		ok, err := o.confirm(req.Host)
		if err != nil {
			return fmt.Errorf("reboot confirmation failed: %w", err)
		}
		if !ok {
			return ErrDeclined
		}
	}

	// Persist the resume point first. A crash after the reboot command but
	// before this write would lose the resume step, so the order is
	// non-negotiable.
	if err := o.state.SetPendingReboot(req.StepID, req.Host); err != nil {
		return fmt.Errorf("failed to persist reboot state: %w", err)
	}

	o.observer.Printf("rebooting %s for step %s", req.Host, req.StepID)

	// The SSH session dies mid-command when shutdown fires, so a transport
	// error here is the expected outcome, not a failure.
	if _, err := host.ExecPrivilegedBatch(ctx, "shutdown -r now"); err != nil {
		if errors.Is(err, ssh.ErrAuthentication) {
			return fmt.Errorf("reboot command rejected: %w", err)
		}
		o.observer.Printf("connection dropped during reboot command (expected)")
	}

	if err := o.waitForDown(ctx, host.Addr()); err != nil {
		return err
	}
	if err := o.waitForUp(ctx, host); err != nil {
		return err
	}

	if err := o.state.ClearPendingReboot(); err != nil {
		return fmt.Errorf("failed to clear reboot state: %w", err)
	}
	o.observer.Printf("%s is back up", req.Host)
	return nil
}

// waitForDown polls until the host's SSH port stops answering. The bound is
// soft: some machines reboot faster than one poll interval, so hitting the
// deadline only means we never caught the gap, not that the reboot failed.
func (o *Orchestrator) waitForDown(ctx context.Context, addr string) error {
	o.observer.Printf("waiting for %s to go down", addr)
	deadline := time.Now().Add(o.timeouts.WaitForDown)
	for time.Now().Before(deadline) {
		if !o.dial(ctx, addr) {
			return nil
		}
		if err := o.sleep(ctx, o.timeouts.RebootPoll); err != nil {
			return err
		}
	}
	o.observer.Printf("%s never went unreachable; assuming the restart was faster than the poll interval", addr)
	return nil
}

// waitForUp waits in two phases: first for the SSH port to accept TCP again,
// then for an authenticated session. The port answering is not enough — on
// macOS sshd accepts connections well before login sessions work.
func (o *Orchestrator) waitForUp(ctx context.Context, host Host) error {
	o.observer.Printf("waiting for %s to come back", host.Addr())
	start := time.Now()
	deadline := start.Add(o.timeouts.WaitForUp)

	for time.Now().Before(deadline) {
		if o.dial(ctx, host.Addr()) {
			break
		}
		if err := o.sleep(ctx, o.timeouts.RebootPoll); err != nil {
			return err
		}
	}

	for time.Now().Before(deadline) {
		err := o.ping(ctx, host)
		if err == nil {
			return nil
		}
		if errors.Is(err, ssh.ErrAuthentication) {
			// The host is up but rejects our key; waiting longer cannot fix
			// that.
			return fmt.Errorf("host %s is up but authentication failed: %w", host.Addr(), err)
		}
		if err := o.sleep(ctx, o.timeouts.RebootPoll); err != nil {
			return err
		}
	}

	return &TimeoutError{Host: host.Addr(), Elapsed: time.Since(start)}
}

func (o *Orchestrator) ping(ctx context.Context, host Host) error {
	pingCtx, cancel := context.WithTimeout(ctx, o.timeouts.SSHDial)
	defer cancel()
	return host.Ping(pingCtx)
}

func tcpDial(ctx context.Context, addr string) bool {
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func confirmReboot(host string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Reboot %s now?", host)).
		Description("The mount directories only materialize after a restart. Declining leaves setup paused; re-run it when convenient.").
		Affirmative("Reboot").
		Negative("Not now").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
