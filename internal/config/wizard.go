package config

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the wizard.
type WizardResult struct {
	NASAddress   string
	NASUser      string
	Container    string
	WorkerName   string
	WorkerAddr   string
	WorkerUser   string
	WeightChoice int
	Variant      EncoderVariant
	MediaExport  string
	CacheExport  string
}

// ToConfig expands the wizard answers into a full configuration.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Dispatcher: DispatcherConfig{
			Address:   r.NASAddress,
			User:      r.NASUser,
			Container: r.Container,
		},
		Worker: WorkerConfig{
			Name:    r.WorkerName,
			Address: r.WorkerAddr,
			User:    r.WorkerUser,
			Weight:  r.WeightChoice,
		},
		// Mount points mirror the paths Jellyfin sees inside its container:
		// rffmpeg hands the worker ffmpeg commands with container paths, so
		// the worker must resolve the same paths to the same files.
		Media: MediaConfig{
			MediaExport: r.MediaExport,
			CacheExport: r.CacheExport,
			MediaMount:  "/data/media",
			CacheMount:  "/config/cache/transcodes",
		},
		Encoder: EncoderConfig{
			Variant: r.Variant,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		// Defaults
		Container:    "jellyfin",
		WeightChoice: 2,
		Variant:      EncoderHEVCVideoToolbox,
		MediaExport:  "/volume1/data/media",
		CacheExport:  "/volume1/docker/jellyfin/cache",
	}

	form := huh.NewForm(
		// Dispatcher (NAS) side
		huh.NewGroup(
			huh.NewInput().
				Title("NAS address").
				Description("IP or hostname of the NAS running Jellyfin").
				Placeholder("192.168.1.100").
				Value(&result.NASAddress).
				Validate(validateAddress),
			huh.NewInput().
				Title("NAS SSH user").
				Value(&result.NASUser).
				Validate(validateNonEmpty("user")),
			huh.NewInput().
				Title("Jellyfin container name").
				Value(&result.Container).
				Validate(validateNonEmpty("container")),
		),

		// Worker side
		huh.NewGroup(
			huh.NewInput().
				Title("Worker address").
				Description("IP or hostname of the Mac that will transcode").
				Placeholder("192.168.1.50").
				Value(&result.WorkerAddr).
				Validate(validateAddress),
			huh.NewInput().
				Title("Worker SSH user").
				Value(&result.WorkerUser).
				Validate(validateNonEmpty("user")),
			huh.NewInput().
				Title("Worker name").
				Description("Identifier used when registering with rffmpeg; defaults to the address").
				Value(&result.WorkerName),
		),

		// Capacity and encoder
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Worker weight").
				Description("Relative share of jobs rffmpeg routes to this worker").
				Options(
					huh.NewOption("1 - light (older Intel Mac)", 1),
					huh.NewOption("2 - standard (Apple silicon)", 2),
					huh.NewOption("4 - heavy (Mac Studio class)", 4),
				).
				Value(&result.WeightChoice),
			huh.NewSelect[EncoderVariant]().
				Title("Hardware encoder").
				Options(
					huh.NewOption("HEVC (hevc_videotoolbox)", EncoderHEVCVideoToolbox),
					huh.NewOption("H.264 (h264_videotoolbox)", EncoderH264VideoToolbox),
				).
				Value(&result.Variant),
		),

		// NAS exports
		huh.NewGroup(
			huh.NewInput().
				Title("Media export").
				Description("NFS export on the NAS holding the media library").
				Value(&result.MediaExport).
				Validate(validateAbsPath),
			huh.NewInput().
				Title("Cache export").
				Description("NFS export on the NAS holding the transcode cache").
				Value(&result.CacheExport).
				Validate(validateAbsPath),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}

	if result.WorkerName == "" {
		result.WorkerName = result.WorkerAddr
	}
	return result, nil
}

func validateAddress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("address is required")
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("address must not contain whitespace")
	}
	// Accept hostnames as-is; only syntactically check dotted quads.
	if first, _, found := strings.Cut(s, "."); found {
		if _, err := strconv.Atoi(first); err == nil {
			if net.ParseIP(s) == nil {
				return fmt.Errorf("%q is not a valid IP address", s)
			}
		}
	}
	return nil
}

func validateNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateAbsPath(s string) error {
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("path must be absolute")
	}
	return nil
}
