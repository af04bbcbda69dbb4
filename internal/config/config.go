// Package config loads and validates the transcodarr configuration file.
//
// The configuration describes the two host roles (dispatcher NAS and worker),
// the media paths shared between them, and the encoder toolchain expected on
// the worker. Timeout tuning lives in timeouts.go and is environment-driven.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "transcodarr.yaml"

// EncoderVariant identifies a hardware encoder exposed by ffmpeg.
type EncoderVariant string

// Supported hardware encoder variants (VideoToolbox on Apple silicon/Intel Macs).
const (
	EncoderHEVCVideoToolbox EncoderVariant = "hevc_videotoolbox"
	EncoderH264VideoToolbox EncoderVariant = "h264_videotoolbox"
)

// Role identifies which side of the pipeline a host plays.
type Role string

const (
	// RoleDispatcher is the NAS that owns Jellyfin and job registration.
	RoleDispatcher Role = "dispatcher"
	// RoleWorker is a machine that executes transcode jobs.
	RoleWorker Role = "worker"
)

// ParseRole converts a CLI flag value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleDispatcher:
		return RoleDispatcher, nil
	case RoleWorker:
		return RoleWorker, nil
	default:
		return "", fmt.Errorf("unknown role %q (expected %q or %q)", s, RoleDispatcher, RoleWorker)
	}
}

// Config is the top-level transcodarr configuration.
type Config struct {
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Worker     WorkerConfig     `yaml:"worker"`
	Media      MediaConfig      `yaml:"media"`
	Encoder    EncoderConfig    `yaml:"encoder"`
}

// DispatcherConfig describes the NAS running Jellyfin and rffmpeg.
type DispatcherConfig struct {
	// Address is the NAS IP or hostname on the LAN.
	Address string `yaml:"address"`
	// User is the SSH user on the NAS.
	User string `yaml:"user"`
	// Port is the SSH port. Zero means 22.
	Port int `yaml:"port,omitempty"`
	// KeyPath points at the private key used to reach the NAS.
	// The key contents are never stored in configuration or state.
	KeyPath string `yaml:"key_path"`
	// Container is the name of the Jellyfin container on the NAS.
	Container string `yaml:"container"`
	// DispatchKeyPath is the path, inside the NAS filesystem, of the key
	// rffmpeg uses to reach workers.
	DispatchKeyPath string `yaml:"dispatch_key_path,omitempty"`
}

// WorkerConfig describes a macOS transcode worker.
type WorkerConfig struct {
	// Name is the identifier the worker is registered under with rffmpeg.
	Name string `yaml:"name"`
	// Address is the worker's IP or hostname on the LAN.
	Address string `yaml:"address"`
	// User is the SSH user on the worker.
	User string `yaml:"user"`
	// Port is the SSH port. Zero means 22.
	Port int `yaml:"port,omitempty"`
	// KeyPath points at the private key used to reach the worker.
	KeyPath string `yaml:"key_path"`
	// Weight is the relative capacity weight handed to rffmpeg.
	Weight int `yaml:"weight"`
}

// MediaConfig describes the NFS exports on the NAS and where the worker
// mounts them.
type MediaConfig struct {
	// MediaExport is the NAS export holding the media library.
	MediaExport string `yaml:"media_export"`
	// CacheExport is the NAS export holding the transcode cache.
	CacheExport string `yaml:"cache_export"`
	// MediaMount is the worker-side mount point for the media library.
	MediaMount string `yaml:"media_mount"`
	// CacheMount is the worker-side mount point for the transcode cache.
	CacheMount string `yaml:"cache_mount"`
}

// EncoderConfig describes the encoder toolchain expected on the worker.
type EncoderConfig struct {
	// Variant is the hardware encoder ffmpeg must report.
	Variant EncoderVariant `yaml:"variant"`
	// Binary is the ffmpeg binary path on the worker. Empty means
	// discover via the package manager during provisioning.
	Binary string `yaml:"binary,omitempty"`
}

// DispatcherAddr returns the host:port dial address of the dispatcher.
func (c *Config) DispatcherAddr() string {
	return hostPort(c.Dispatcher.Address, c.Dispatcher.Port)
}

// WorkerAddr returns the host:port dial address of the worker.
func (c *Config) WorkerAddr() string {
	return hostPort(c.Worker.Address, c.Worker.Port)
}

func hostPort(host string, port int) string {
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Validate checks the configuration for completeness and consistency.
func (c *Config) Validate() error {
	if c.Dispatcher.Address == "" {
		return fmt.Errorf("dispatcher.address is required")
	}
	if c.Dispatcher.User == "" {
		return fmt.Errorf("dispatcher.user is required")
	}
	if c.Dispatcher.Container == "" {
		return fmt.Errorf("dispatcher.container is required")
	}
	if c.Worker.Address == "" {
		return fmt.Errorf("worker.address is required")
	}
	if c.Worker.User == "" {
		return fmt.Errorf("worker.user is required")
	}
	if c.Worker.Name == "" {
		return fmt.Errorf("worker.name is required")
	}
	if c.Worker.Weight < 1 {
		return fmt.Errorf("worker.weight must be at least 1, got %d", c.Worker.Weight)
	}
	switch c.Encoder.Variant {
	case EncoderHEVCVideoToolbox, EncoderH264VideoToolbox:
	case "":
		return fmt.Errorf("encoder.variant is required")
	default:
		return fmt.Errorf("unsupported encoder.variant %q", c.Encoder.Variant)
	}
	for name, path := range map[string]string{
		"media.media_export": c.Media.MediaExport,
		"media.cache_export": c.Media.CacheExport,
		"media.media_mount":  c.Media.MediaMount,
		"media.cache_mount":  c.Media.CacheMount,
	} {
		if path == "" {
			return fmt.Errorf("%s is required", name)
		}
		if !filepath.IsAbs(path) {
			return fmt.Errorf("%s must be an absolute path, got %q", name, path)
		}
	}
	return nil
}

// applyDefaults fills optional fields with sensible values after load.
func (c *Config) applyDefaults() {
	if c.Worker.Weight == 0 {
		c.Worker.Weight = 1
	}
	if c.Worker.Name == "" && c.Worker.Address != "" {
		c.Worker.Name = c.Worker.Address
	}
	if c.Encoder.Variant == "" {
		c.Encoder.Variant = EncoderHEVCVideoToolbox
	}
	if c.Dispatcher.KeyPath == "" {
		c.Dispatcher.KeyPath = defaultKeyPath()
	}
	if c.Worker.KeyPath == "" {
		c.Worker.KeyPath = defaultKeyPath()
	}
	if c.Dispatcher.DispatchKeyPath == "" {
		c.Dispatcher.DispatchKeyPath = "/volume1/docker/jellyfin/rffmpeg/.ssh/id_rsa"
	}
}

func defaultKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "id_ed25519")
}
