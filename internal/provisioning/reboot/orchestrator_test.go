package reboot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/provisioning"
	"github.com/transcodarr/transcodarr/internal/state"
)

type fakeHost struct {
	addr     string
	pingErr  error
	scripts  []string
	onReboot func()
}

func (f *fakeHost) Addr() string { return f.addr }

func (f *fakeHost) Ping(context.Context) error { return f.pingErr }

func (f *fakeHost) ExecPrivilegedBatch(_ context.Context, script string) (ssh.Result, error) {
	f.scripts = append(f.scripts, script)
	if f.onReboot != nil {
		f.onReboot()
	}
	// The session drops when shutdown fires.
	return ssh.Result{}, ssh.ErrUnreachable
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		SSHDial:     time.Second,
		RebootPoll:  time.Millisecond,
		WaitForDown: 50 * time.Millisecond,
		WaitForUp:   100 * time.Millisecond,
	}
}

func testStore(t *testing.T) *state.Store {
	t.Helper()
	st, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return st
}

func newTestOrchestrator(st *state.Store, opts ...Option) *Orchestrator {
	o := NewOrchestrator(st, provisioning.NewConsoleObserver(), testTimeouts(), opts...)
	o.confirm = func(string) (bool, error) { return true, nil }
	return o
}

func request() *provisioning.RebootRequest {
	return &provisioning.RebootRequest{StepID: "mountpoints", Host: "192.168.1.50"}
}

func TestExecutePersistsResumePointBeforeRebooting(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22"}

	// Capture the persisted state at the moment the reboot command fires.
	var pendingAtReboot bool
	var stepAtReboot string
	host.onReboot = func() {
		pendingAtReboot, stepAtReboot, _ = st.PendingReboot()
	}

	o := newTestOrchestrator(st)
	down := false
	o.dial = func(context.Context, string) bool {
		if !down {
			down = true
			return false // went down on first poll
		}
		return true // back up
	}

	require.NoError(t, o.Execute(context.Background(), request(), host))

	assert.True(t, pendingAtReboot, "resume point must be on disk before the reboot command runs")
	assert.Equal(t, "mountpoints", stepAtReboot)
	require.Len(t, host.scripts, 1)
	assert.Equal(t, "shutdown -r now", host.scripts[0])

	pending, _, _ := st.PendingReboot()
	assert.False(t, pending, "marker cleared after a verified come-back")
}

func TestExecuteDeclined(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22"}

	o := newTestOrchestrator(st)
	o.confirm = func(string) (bool, error) { return false, nil }

	err := o.Execute(context.Background(), request(), host)
	require.ErrorIs(t, err, ErrDeclined)
	assert.Empty(t, host.scripts, "no reboot command after a decline")

	pending, _, _ := st.PendingReboot()
	assert.False(t, pending)
}

func TestExecuteAssumeYesSkipsConfirmation(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22"}

	o := newTestOrchestrator(st, WithAssumeYes(true))
	o.confirm = func(string) (bool, error) {
		t.Fatal("confirmation must not run with --yes")
		return false, nil
	}
	o.dial = func(context.Context, string) bool { return false }
	// Host announced down immediately; first up-phase dial fails, then
	// succeeds after the poll flips the closure state.
	calls := 0
	o.dial = func(context.Context, string) bool {
		calls++
		return calls > 2
	}

	require.NoError(t, o.Execute(context.Background(), request(), host))
	require.Len(t, host.scripts, 1)
}

func TestWaitForDownExpiryIsSoft(t *testing.T) {
	st := testStore(t)
	o := newTestOrchestrator(st)
	// Port answers throughout the down window: the restart outran the poll.
	o.dial = func(context.Context, string) bool { return true }

	assert.NoError(t, o.waitForDown(context.Background(), "192.168.1.50:22"))
}

func TestWaitForUpTimesOut(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22", pingErr: ssh.ErrUnreachable}

	o := newTestOrchestrator(st)
	o.dial = func(context.Context, string) bool { return true }

	err := o.waitForUp(context.Background(), host)
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "192.168.1.50:22", timeout.Host)
	assert.Contains(t, err.Error(), "transcodarr setup --resume")
}

func TestWaitForUpAuthFailureIsTerminal(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22", pingErr: ssh.ErrAuthentication}

	o := newTestOrchestrator(st)
	o.dial = func(context.Context, string) bool { return true }

	start := time.Now()
	err := o.waitForUp(context.Background(), host)
	require.Error(t, err)
	assert.ErrorIs(t, err, ssh.ErrAuthentication)
	assert.Less(t, time.Since(start), testTimeouts().WaitForUp, "auth rejection must not wait out the deadline")
}

func TestExecuteTimeoutKeepsResumePoint(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22", pingErr: ssh.ErrUnreachable}

	o := newTestOrchestrator(st)
	// Goes down, never answers again.
	o.dial = func(context.Context, string) bool { return false }

	err := o.Execute(context.Background(), request(), host)
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)

	pending, step, rebootHost := st.PendingReboot()
	assert.True(t, pending, "resume point survives a timed-out wait")
	assert.Equal(t, "mountpoints", step)
	assert.Equal(t, "192.168.1.50", rebootHost)
}

func TestExecuteCancellation(t *testing.T) {
	st := testStore(t)
	host := &fakeHost{addr: "192.168.1.50:22"}

	ctx, cancel := context.WithCancel(context.Background())
	o := newTestOrchestrator(st)
	o.dial = func(context.Context, string) bool {
		cancel()
		return true // keeps the down-phase polling so the sleep sees the cancel
	}

	err := o.Execute(ctx, request(), host)
	require.ErrorIs(t, err, context.Canceled)
}
