package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Dispatcher: DispatcherConfig{
			Address:   "192.168.1.100",
			User:      "admin",
			Container: "jellyfin",
		},
		Worker: WorkerConfig{
			Name:    "studio",
			Address: "192.168.1.50",
			User:    "media",
			Weight:  2,
		},
		Media: MediaConfig{
			MediaExport: "/volume1/data/media",
			CacheExport: "/volume1/docker/jellyfin/cache",
			MediaMount:  "/Volumes/transcodarr/media",
			CacheMount:  "/Volumes/transcodarr/cache",
		},
		Encoder: EncoderConfig{
			Variant: EncoderHEVCVideoToolbox,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing dispatcher address", func(c *Config) { c.Dispatcher.Address = "" }, "dispatcher.address"},
		{"missing dispatcher user", func(c *Config) { c.Dispatcher.User = "" }, "dispatcher.user"},
		{"missing container", func(c *Config) { c.Dispatcher.Container = "" }, "dispatcher.container"},
		{"missing worker address", func(c *Config) { c.Worker.Address = "" }, "worker.address"},
		{"missing worker name", func(c *Config) { c.Worker.Name = "" }, "worker.name"},
		{"zero weight", func(c *Config) { c.Worker.Weight = 0 }, "worker.weight"},
		{"bad encoder variant", func(c *Config) { c.Encoder.Variant = "hevc_nvenc" }, "encoder.variant"},
		{"missing encoder variant", func(c *Config) { c.Encoder.Variant = "" }, "encoder.variant"},
		{"relative mount", func(c *Config) { c.Media.MediaMount = "Volumes/media" }, "absolute"},
		{"missing export", func(c *Config) { c.Media.CacheExport = "" }, "media.cache_export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Worker")
	require.NoError(t, err)
	assert.Equal(t, RoleWorker, role)

	role, err = ParseRole("dispatcher")
	require.NoError(t, err)
	assert.Equal(t, RoleDispatcher, role)

	_, err = ParseRole("observer")
	assert.Error(t, err)
}

func TestAddrHelpers(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "192.168.1.50:22", cfg.WorkerAddr())
	assert.Equal(t, "192.168.1.100:22", cfg.DispatcherAddr())

	cfg.Worker.Port = 2222
	assert.Equal(t, "192.168.1.50:2222", cfg.WorkerAddr())
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)

	require.NoError(t, Write(validConfig(), path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "studio", loaded.Worker.Name)
	assert.Equal(t, EncoderHEVCVideoToolbox, loaded.Encoder.Variant)
	// Defaults are applied on load.
	assert.NotEmpty(t, loaded.Dispatcher.DispatchKeyPath)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worker:\n  address: 10.0.0.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"dispatcher:\n  address: 192.168.1.100\nworker:\n  address: 192.168.1.50\n"), 0o600))

	cfg, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Worker.Weight)
	assert.Equal(t, "192.168.1.50", cfg.Worker.Name)
	assert.Equal(t, EncoderHEVCVideoToolbox, cfg.Encoder.Variant)
}

func TestLoadTimeouts(t *testing.T) {
	t.Setenv("TRANSCODARR_TIMEOUT_WAIT_UP", "45s")
	t.Setenv("TRANSCODARR_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("TRANSCODARR_REBOOT_POLL", "not-a-duration")

	timeouts := LoadTimeouts()
	assert.Equal(t, 45*time.Second, timeouts.WaitForUp)
	assert.Equal(t, 7, timeouts.RetryMaxAttempts)
	// Invalid values fall back to defaults.
	assert.Equal(t, 5*time.Second, timeouts.RebootPoll)
	assert.Equal(t, 2*time.Minute, timeouts.WaitForDown)
}

func TestWizardResultToConfig(t *testing.T) {
	r := &WizardResult{
		NASAddress:   "192.168.1.100",
		NASUser:      "admin",
		Container:    "jellyfin",
		WorkerAddr:   "192.168.1.50",
		WorkerUser:   "media",
		WorkerName:   "studio",
		WeightChoice: 4,
		Variant:      EncoderH264VideoToolbox,
		MediaExport:  "/volume1/data/media",
		CacheExport:  "/volume1/docker/jellyfin/cache",
	}

	cfg := r.ToConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Worker.Weight)
	assert.Equal(t, "/Volumes/transcodarr/media", cfg.Media.MediaMount)
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, validateAddress("192.168.1.5"))
	assert.NoError(t, validateAddress("nas.local"))
	assert.Error(t, validateAddress(""))
	assert.Error(t, validateAddress("192.168.1"))
	assert.Error(t, validateAddress("two words"))
}
