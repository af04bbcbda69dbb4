package handlers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
	"github.com/transcodarr/transcodarr/internal/state"
)

// fakeRemote implements the remote interface for handler tests. Responses are
// matched by substring; unmatched commands succeed with empty output.
type fakeRemote struct {
	addr      string
	responses map[string]ssh.Result
	pingErr   error
	commands  []string
}

func (f *fakeRemote) lookup(command string) (ssh.Result, error) {
	f.commands = append(f.commands, command)
	for substr, res := range f.responses {
		if strings.Contains(command, substr) {
			return res, nil
		}
	}
	return ssh.Result{}, nil
}

func (f *fakeRemote) Exec(_ context.Context, command string) (ssh.Result, error) {
	return f.lookup(command)
}

func (f *fakeRemote) ExecPrivileged(_ context.Context, command string) (ssh.Result, error) {
	return f.lookup(command)
}

func (f *fakeRemote) ExecPrivilegedBatch(_ context.Context, script string) (ssh.Result, error) {
	return f.lookup(script)
}

func (f *fakeRemote) Deliver(context.Context, []byte) (string, error) {
	return "/tmp/transcodarr-payload.sh", nil
}

func (f *fakeRemote) Addr() string { return f.addr }

func (f *fakeRemote) Ping(context.Context) error { return f.pingErr }

func handlerTestConfig() *config.Config {
	return &config.Config{
		Dispatcher: config.DispatcherConfig{
			Address:         "192.168.1.10",
			User:            "admin",
			KeyPath:         "/home/admin/.ssh/id_ed25519",
			Container:       "jellyfin",
			DispatchKeyPath: "/volume1/docker/jellyfin/rffmpeg/.ssh/id_rsa",
		},
		Worker: config.WorkerConfig{
			Name:    "studio-m2",
			Address: "192.168.1.50",
			User:    "transcode",
			KeyPath: "/home/admin/.ssh/id_ed25519",
			Weight:  2,
		},
		Media: config.MediaConfig{
			MediaExport: "/volume1/media",
			CacheExport: "/volume1/cache",
			MediaMount:  "/data/media",
			CacheMount:  "/config/cache/transcodes",
		},
		Encoder: config.EncoderConfig{Variant: config.EncoderHEVCVideoToolbox},
	}
}

// stubCommonFactories points the shared factory seams at fakes and restores
// them when the test finishes. Returns the state store handlers will open.
func stubCommonFactories(t *testing.T, worker, dispatcher *fakeRemote) *state.Store {
	t.Helper()

	origLoad := loadConfigFile
	origOpen := openStateStore
	origRemote := newRemote
	t.Cleanup(func() {
		loadConfigFile = origLoad
		openStateStore = origOpen
		newRemote = origRemote
	})

	st, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	loadConfigFile = func(string) (*config.Config, error) { return handlerTestConfig(), nil }
	openStateStore = func() (*state.Store, error) { return st, nil }
	newRemote = func(cfg *ssh.Config) (remote, error) {
		if cfg.Host == "192.168.1.50" {
			return worker, nil
		}
		return dispatcher, nil
	}

	return st
}

// captureOutput captures stdout during function execution.
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}
