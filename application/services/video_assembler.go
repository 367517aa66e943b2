package services

import (
	"context"
	"fmt"
	"os"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/domain"
)

type videoAssembler struct {
	logger  outbound.LoggerPort
	toolkit outbound.MediaToolkit
}

func NewVideoAssembler(logger outbound.LoggerPort, toolkit outbound.MediaToolkit) inbound.VideoAssemblerPort {
	return &videoAssembler{
		logger:  logger,
		toolkit: toolkit,
	}
}

// Assemble concatenates the per-scene muxed clips in the original input
// order. Viability is decided from the filesystem, not from in-memory flags:
// a scene whose clip is missing is logged and omitted, and only a run with
// zero clips yields no output.
func (a *videoAssembler) Assemble(ctx context.Context, layout domain.Layout, video *domain.Video) (string, error) {
	clipPaths := make([]string, 0, len(video.SceneOrder))
	for _, sceneID := range video.SceneOrder {
		scenePath := layout.ScenePath(sceneID)
		if _, err := os.Stat(scenePath); err != nil {
			a.logger.ErrorWithFields(err, "scene clip missing, omitting from final video", map[string]interface{}{
				"scene_id": sceneID,
				"path":     scenePath,
			})
			continue
		}
		clipPaths = append(clipPaths, scenePath)
	}

	if len(clipPaths) == 0 {
		a.logger.Error(nil, "no scenes were successfully generated")
		return "", nil
	}

	finalPath := layout.FinalPath()
	if err := a.toolkit.Concatenate(ctx, clipPaths, finalPath); err != nil {
		return "", fmt.Errorf("concatenate scene clips: %w", err)
	}

	video.FinalPath = finalPath
	a.logger.InfoWithFields("assembled final video", map[string]interface{}{
		"video_id": video.ID,
		"path":     finalPath,
		"scenes":   len(clipPaths),
	})
	return finalPath, nil
}
