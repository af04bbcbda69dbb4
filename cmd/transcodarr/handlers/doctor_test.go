package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

func TestDoctorWorkerRole(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22", responses: map[string]ssh.Result{
		"-encoders":   {Stdout: "V....D hevc_videotoolbox  VideoToolbox H.265 Encoder"},
		"/sbin/mount": {Stdout: "nas:/volume1/media on /data/media (nfs)\nnas:/volume1/cache on /config/cache/transcodes (nfs)\n"},
	}}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"rffmpeg status": {Stdout: rffmpegTable},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := Doctor(context.Background(), "", "worker", false)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "192.168.1.50")
	assert.Contains(t, output, "worker")
	assert.Contains(t, output, "fully-configured")
}

func TestDoctorJSONOutput(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22", responses: map[string]ssh.Result{
		"-encoders":   {Stdout: "V....D hevc_videotoolbox  VideoToolbox H.265 Encoder"},
		"/sbin/mount": {Stdout: "nas:/volume1/media on /data/media (nfs)\nnas:/volume1/cache on /config/cache/transcodes (nfs)\n"},
	}}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"rffmpeg status": {Stdout: rffmpegTable},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := Doctor(context.Background(), "", "worker", true)
		require.NoError(t, err)
	})

	var got struct {
		Host    string          `json:"host"`
		Role    string          `json:"role"`
		Status  string          `json:"status"`
		Results map[string]bool `json:"results"`
		Pending []string        `json:"pending"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "192.168.1.50", got.Host)
	assert.Equal(t, "worker", got.Role)
	assert.Equal(t, "fully-configured", got.Status)
	assert.Empty(t, got.Pending)
	assert.NotEmpty(t, got.Results)
}

func TestDoctorDispatcherRole(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"test -f": {ExitCode: 1},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := Doctor(context.Background(), "", "dispatcher", false)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "192.168.1.10")
	assert.Contains(t, output, "dispatch key pair")
	assert.Contains(t, output, "pending: keypair")
}

func TestDoctorRejectsUnknownRole(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22"}
	stubCommonFactories(t, worker, dispatcher)

	err := Doctor(context.Background(), "", "bystander", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}
