package services

import (
	"context"
	"os"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/domain"
)

type sceneSpeechGenerator struct {
	logger      outbound.LoggerPort
	synthesizer outbound.SpeechSynthesizerPort
}

func NewSceneSpeechGenerator(logger outbound.LoggerPort, synthesizer outbound.SpeechSynthesizerPort) inbound.SceneSpeechGeneratorPort {
	return &sceneSpeechGenerator{
		logger:      logger,
		synthesizer: synthesizer,
	}
}

// Generate synthesizes narration for the scene and persists it to the scene's
// audio path. Synthesis failures are fatal for the scene; unlike render
// failures they are not correctable by regeneration, so there is no retry.
func (s *sceneSpeechGenerator) Generate(ctx context.Context, layout domain.Layout, scene *domain.Scene) error {
	audio, err := s.synthesizer.Synthesize(ctx, scene.Transcription)
	if err != nil {
		s.logger.ErrorWithFields(err, "speech synthesis failed", map[string]interface{}{
			"scene_id": scene.ID,
		})
		scene.SpeechStatus = domain.StatusFailed
		return err
	}

	if err := os.MkdirAll(layout.SceneDir(scene.ID), 0755); err != nil {
		s.logger.Error(err, "failed to create scene directory")
		scene.SpeechStatus = domain.StatusFailed
		return err
	}
	if err := os.WriteFile(layout.AudioPath(scene.ID), audio, 0644); err != nil {
		s.logger.Error(err, "failed to write scene audio file")
		scene.SpeechStatus = domain.StatusFailed
		return err
	}

	s.logger.InfoWithFields("generated speech for scene", map[string]interface{}{
		"scene_id": scene.ID,
	})
	scene.SpeechStatus = domain.StatusSucceeded
	return nil
}
