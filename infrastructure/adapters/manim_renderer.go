package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/config"
)

type manimRenderer struct {
	logger outbound.LoggerPort
	cfg    *config.RendererConfig
}

// NewManimRenderer runs the rendering engine as a synchronous external
// process. The scene's media directory isolates its output from every other
// scene.
func NewManimRenderer(logger outbound.LoggerPort, cfg *config.RendererConfig) outbound.SceneRendererPort {
	return &manimRenderer{
		logger: logger,
		cfg:    cfg,
	}
}

func (r *manimRenderer) Render(ctx context.Context, codePath string, mediaDir string) (bool, string) {
	cmd := exec.CommandContext(ctx, r.cfg.Bin, "render", r.cfg.Quality, codePath, "-o", "video", "--media_dir", mediaDir)

	r.logger.InfoWithFields("running render command", map[string]interface{}{
		"command": strings.Join(cmd.Args, " "),
	})

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		r.logger.DebugWithFields("render command output", map[string]interface{}{
			"stdout": stdout.String(),
		})
		return true, ""
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, fmt.Sprintf("command failed with exit code %d: %s",
			exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}

	// Process could not start at all.
	return false, err.Error()
}
