package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

func TestWorkerAddRegisters(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"rffmpeg status": {Stdout: "Hostname  Servername  ID  Weight  State\n"},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := WorkerAdd(context.Background(), "", "192.168.1.60", "mini-two", 1)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Registered mini-two")

	var sawAdd bool
	for _, cmd := range dispatcher.commands {
		if strings.Contains(cmd, "rffmpeg add") {
			sawAdd = true
			assert.Contains(t, cmd, "--name 'mini-two'")
			assert.Contains(t, cmd, "'192.168.1.60'")
		}
	}
	assert.True(t, sawAdd, "expected an rffmpeg add command, got %v", dispatcher.commands)
}

func TestWorkerAddAlreadyRegistered(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"rffmpeg status": {Stdout: rffmpegTable},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := WorkerAdd(context.Background(), "", "192.168.1.50", "studio-m2", 2)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "already registered")
	for _, cmd := range dispatcher.commands {
		assert.NotContains(t, cmd, "rffmpeg add")
	}
}

func TestWorkerAddRejectsBadWeight(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22"}
	stubCommonFactories(t, worker, dispatcher)

	err := WorkerAdd(context.Background(), "", "192.168.1.60", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight")
}

func TestWorkerRemove(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22"}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := WorkerRemove(context.Background(), "", "studio-m2")
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Removed studio-m2")
	require.Len(t, dispatcher.commands, 1)
	assert.Contains(t, dispatcher.commands[0], "rffmpeg remove 'studio-m2'")
}

func TestWorkerStatus(t *testing.T) {
	worker := &fakeRemote{addr: "192.168.1.50:22"}
	dispatcher := &fakeRemote{addr: "192.168.1.10:22", responses: map[string]ssh.Result{
		"rffmpeg status": {Stdout: rffmpegTable},
	}}
	stubCommonFactories(t, worker, dispatcher)

	output := captureOutput(func() {
		err := WorkerStatus(context.Background(), "")
		require.NoError(t, err)
	})

	assert.Contains(t, output, "studio-m2")
	assert.Contains(t, output, "HOSTNAME")
}
