package steps

import (
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
	"github.com/transcodarr/transcodarr/internal/provisioning"
)

// FFmpeg installs the encoder toolchain and records its location and variant
// in the state config for later steps and the file-generation collaborators.
type FFmpeg struct {
	worker provisioning.Executor
	cfg    *config.Config
}

func (s *FFmpeg) ID() string { return probe.IDFFmpeg }

func (s *FFmpeg) Probe() probe.Probe { return probe.FFmpeg(s.worker, s.cfg.Encoder) }

func (s *FFmpeg) Run(ctx *provisioning.Context) (provisioning.Result, error) {
	// brew refuses to run as root; this is deliberately unprivileged.
	install := fmt.Sprintf("%s brew install ffmpeg", brewPath)
	if err := execChecked(ctx, s.worker, install); err != nil {
		return provisioning.Failed, err
	}

	res, err := s.worker.Exec(ctx, fmt.Sprintf("%s command -v ffmpeg", brewPath))
	if err != nil {
		return provisioning.Failed, err
	}
	if !res.Ok() {
		return provisioning.Failed, fmt.Errorf("ffmpeg not on PATH after install: %s", firstLine(res.Stderr))
	}

	binary := strings.TrimSpace(res.Stdout)
	if err := ctx.State.Set("ffmpeg_path", binary); err != nil {
		return provisioning.Failed, err
	}
	if err := ctx.State.Set("encoder_variant", string(s.cfg.Encoder.Variant)); err != nil {
		return provisioning.Failed, err
	}

	return provisioning.Done, nil
}
