package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/domain"
)

// durationTolerance bounds the residual mismatch the final clamp acts on.
// Both adjustment branches already equalize the tracks, so a trim only fires
// when probing disagrees by more than this, never to undo the equalization.
const durationTolerance = 0.05

// lastFrameOffset is how far before the end the frozen frame is sampled;
// sampling exactly at the end yields an empty frame on some encodes.
const lastFrameOffset = 0.1

type sceneReconciler struct {
	logger  outbound.LoggerPort
	toolkit outbound.MediaToolkit
}

func NewSceneReconciler(logger outbound.LoggerPort, toolkit outbound.MediaToolkit) inbound.SceneReconcilerPort {
	return &sceneReconciler{
		logger:  logger,
		toolkit: toolkit,
	}
}

func (r *sceneReconciler) Reconcile(ctx context.Context, layout domain.Layout, sceneID string) (float64, error) {
	videoPath := layout.ScenePath(sceneID)
	audioPath := layout.AudioPath(sceneID)
	sceneDir := layout.SceneDir(sceneID)

	videoDuration, err := r.toolkit.Duration(ctx, videoPath)
	if err != nil {
		return 0, fmt.Errorf("probe video duration: %w", err)
	}
	audioDuration, err := r.toolkit.Duration(ctx, audioPath)
	if err != nil {
		return 0, fmt.Errorf("probe audio duration: %w", err)
	}

	r.logger.InfoWithFields("reconciling scene durations", map[string]interface{}{
		"scene_id":       sceneID,
		"video_duration": videoDuration,
		"audio_duration": audioDuration,
	})

	var intermediates []string
	defer func() {
		for _, path := range intermediates {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				r.logger.Error(err, "failed to remove intermediate clip")
			}
		}
	}()

	currentVideo := videoPath
	currentAudio := audioPath

	switch {
	case audioDuration < videoDuration-durationTolerance:
		padded := filepath.Join(sceneDir, "audio_padded.wav")
		if err := r.toolkit.PadAudio(ctx, audioPath, videoDuration-audioDuration, padded); err != nil {
			return 0, fmt.Errorf("pad audio: %w", err)
		}
		intermediates = append(intermediates, padded)
		currentAudio = padded
	case audioDuration > videoDuration+durationTolerance:
		r.logger.WarnWithFields("audio longer than video, holding last frame", map[string]interface{}{
			"scene_id": sceneID,
		})
		extended := filepath.Join(sceneDir, "video_extended.mp4")
		if err := r.toolkit.ExtendVideo(ctx, videoPath, videoDuration-lastFrameOffset, audioDuration-videoDuration, extended); err != nil {
			return 0, fmt.Errorf("extend video: %w", err)
		}
		intermediates = append(intermediates, extended)
		currentVideo = extended
	}

	finalDuration, currentVideo, currentAudio, clampIntermediates, err := r.clamp(ctx, sceneDir, currentVideo, currentAudio)
	intermediates = append(intermediates, clampIntermediates...)
	if err != nil {
		return 0, err
	}

	muxed := filepath.Join(sceneDir, "muxed.tmp.mp4")
	intermediates = append(intermediates, muxed)
	if err := r.toolkit.Mux(ctx, currentVideo, currentAudio, muxed); err != nil {
		return 0, fmt.Errorf("mux scene clip: %w", err)
	}

	// Rename over the old scene clip instead of delete-then-rewrite so a
	// crash mid-replace cannot lose the scene's artifact.
	if err := os.Rename(muxed, videoPath); err != nil {
		return 0, fmt.Errorf("replace scene clip: %w", err)
	}

	r.logger.InfoWithFields("reconciled and muxed scene", map[string]interface{}{
		"scene_id": sceneID,
		"duration": finalDuration,
	})
	return finalDuration, nil
}

// clamp re-probes the adjusted tracks and trims either down to the shorter
// duration, but only when the residual mismatch exceeds the tolerance.
func (r *sceneReconciler) clamp(ctx context.Context, sceneDir, videoIn, audioIn string) (float64, string, string, []string, error) {
	var intermediates []string

	videoDuration, err := r.toolkit.Duration(ctx, videoIn)
	if err != nil {
		return 0, videoIn, audioIn, intermediates, fmt.Errorf("probe adjusted video: %w", err)
	}
	audioDuration, err := r.toolkit.Duration(ctx, audioIn)
	if err != nil {
		return 0, videoIn, audioIn, intermediates, fmt.Errorf("probe adjusted audio: %w", err)
	}

	finalDuration := videoDuration
	if audioDuration < finalDuration {
		finalDuration = audioDuration
	}

	if videoDuration-finalDuration > durationTolerance {
		trimmed := filepath.Join(sceneDir, "video_trimmed.mp4")
		if err := r.toolkit.Trim(ctx, videoIn, finalDuration, trimmed); err != nil {
			return 0, videoIn, audioIn, intermediates, fmt.Errorf("trim video: %w", err)
		}
		intermediates = append(intermediates, trimmed)
		videoIn = trimmed
	}
	if audioDuration-finalDuration > durationTolerance {
		trimmed := filepath.Join(sceneDir, "audio_trimmed.wav")
		if err := r.toolkit.Trim(ctx, audioIn, finalDuration, trimmed); err != nil {
			return 0, videoIn, audioIn, intermediates, fmt.Errorf("trim audio: %w", err)
		}
		intermediates = append(intermediates, trimmed)
		audioIn = trimmed
	}

	return finalDuration, videoIn, audioIn, intermediates, nil
}
