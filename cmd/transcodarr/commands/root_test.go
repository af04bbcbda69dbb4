package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "transcodarr", cmd.Use)
	assert.Equal(t, "Provision hardware transcode workers for Jellyfin with rffmpeg", cmd.Short)
}

func TestRoot_HasSubcommands(t *testing.T) {
	cmd := Root()

	expectedSubcommands := []string{
		"init",
		"setup",
		"doctor",
		"status",
		"worker",
		"uninstall",
		"version",
		"completion",
	}

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		assert.True(t, subcommands[expected], "Expected subcommand %s not found", expected)
	}
}

func TestSetupFlags(t *testing.T) {
	cmd := Setup()

	for _, flag := range []string{"config", "role", "resume", "reset-step", "yes"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "Expected flag --%s", flag)
	}
}

func TestWorkerSubcommands(t *testing.T) {
	cmd := Worker()

	subcommands := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcommands[sub.Name()] = true
	}

	assert.True(t, subcommands["status"])
	assert.True(t, subcommands["add"])
	assert.True(t, subcommands["remove"])
}
