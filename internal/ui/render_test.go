package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transcodarr/transcodarr/internal/dispatch"
	"github.com/transcodarr/transcodarr/internal/plan"
	"github.com/transcodarr/transcodarr/internal/probe"
)

func testProbes() []probe.Probe {
	return []probe.Probe{
		{ID: "homebrew", Description: "Homebrew package manager installed", Check: func(context.Context) bool { return true }},
		{ID: "ffmpeg", Description: "ffmpeg reports the hevc_videotoolbox encoder", Check: func(context.Context) bool { return true }},
	}
}

func TestRenderDoctor(t *testing.T) {
	out := RenderDoctor(DoctorReport{
		Host:    "192.168.1.50",
		Role:    "worker",
		Probes:  testProbes(),
		Results: probe.Results{"homebrew": true, "ffmpeg": false},
		Status:  plan.FirstTime,
	})

	assert.Contains(t, out, "Doctor — 192.168.1.50 (worker)")
	assert.Contains(t, out, "Homebrew package manager installed")
	assert.Contains(t, out, "hevc_videotoolbox")
	assert.Contains(t, out, "first-time")
	assert.Contains(t, out, "pending: ffmpeg")
}

func TestRenderDoctorFullyConfiguredHasNoPendingLine(t *testing.T) {
	out := RenderDoctor(DoctorReport{
		Host:    "192.168.1.50",
		Role:    "worker",
		Probes:  testProbes(),
		Results: probe.Results{"homebrew": true, "ffmpeg": true},
		Status:  plan.FullyConfigured,
	})

	assert.Contains(t, out, "fully-configured")
	assert.NotContains(t, out, "pending:")
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(StatusReport{
		Role:           "worker",
		StatePath:      "/home/user/.transcodarr/state.json",
		CompletedSteps: []string{"homebrew", "ffmpeg"},
		RequiredSteps:  []string{"homebrew", "ffmpeg", "mountpoints"},
		Workers: []dispatch.Host{
			{Hostname: "192.168.1.50", Servername: "studio-m2", Weight: 2, State: "idle"},
		},
	})

	assert.Contains(t, out, "Setup progress")
	assert.Contains(t, out, "mountpoints")
	assert.Contains(t, out, "studio-m2")
	assert.NotContains(t, out, "Pending reboot")
}

func TestRenderStatusPendingReboot(t *testing.T) {
	out := RenderStatus(StatusReport{
		Role:          "worker",
		RequiredSteps: []string{"mountpoints"},
		PendingReboot: true,
		ResumeStep:    "mountpoints",
		ResumeHost:    "192.168.1.50",
	})

	assert.Contains(t, out, "Pending reboot")
	assert.Contains(t, out, "transcodarr setup --resume")
	assert.Contains(t, out, "192.168.1.50")
}

func TestRenderStatusWorkerTableUnavailable(t *testing.T) {
	out := RenderStatus(StatusReport{
		Role:          "dispatcher",
		RequiredSteps: []string{"keypair"},
		WorkersErr:    errors.New("dispatcher unreachable"),
	})

	assert.Contains(t, out, "dispatcher unreachable")
}

func TestRenderStatusNoWorkers(t *testing.T) {
	out := RenderStatus(StatusReport{
		Role:          "dispatcher",
		RequiredSteps: []string{"keypair"},
	})

	assert.Contains(t, out, "none registered")
}
