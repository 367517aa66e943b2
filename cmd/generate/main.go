package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/hargunmujral/3brown1blue/application/services"
	"github.com/hargunmujral/3brown1blue/config"
	"github.com/hargunmujral/3brown1blue/domain"
	"github.com/hargunmujral/3brown1blue/infrastructure/adapters"
)

// One-shot driver: generates a full video for a fixed set of example
// transcriptions and prints the result.
func main() {
	_ = godotenv.Load()

	examples := []string{
		"Bananas are an odd fruit. They are berries, but strawberries are not. They are also a herb, not a fruit. Bananas are a great source of potassium.",
		"This is a scene about the history of the internet. The internet was created in 1969 by the US Department of Defense. It was originally called ARPANET. The internet has revolutionized the way we communicate and access information.",
	}

	gptConfig, err := config.GetGptConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get gpt config")
	}

	elevenLabsConfig, err := config.GetElevenLabsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get eleven labs config")
	}

	rendererConfig, err := config.GetRendererConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get renderer config")
	}

	workspaceConfig, err := config.GetWorkspaceConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get workspace config")
	}

	zeroLogger := adapters.NewZerologWrapper()

	panicHandler := func(p interface{}) {
		zeroLogger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}

	workerPool, err := ants.NewPool(120, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	contentFetcher := adapters.NewContentFetcher(zeroLogger)

	codeGenerator := adapters.NewChatCodeGenerator(zeroLogger, gptConfig)
	synthesizer := adapters.NewSpeechSynthesizer(contentFetcher, elevenLabsConfig, zeroLogger)
	renderer := adapters.NewManimRenderer(zeroLogger, rendererConfig)
	mediaToolkit := adapters.NewFFmpegMediaToolkit(zeroLogger)

	sceneCodeGenerator := services.NewSceneCodeGenerator(zeroLogger, codeGenerator, renderer, workspaceConfig.MaxIterations)
	sceneSpeechGenerator := services.NewSceneSpeechGenerator(zeroLogger, synthesizer)
	sceneReconciler := services.NewSceneReconciler(zeroLogger, mediaToolkit)
	videoAssembler := services.NewVideoAssembler(zeroLogger, mediaToolkit)

	orchestrator := services.NewScenePipelineOrchestrator(zeroLogger, workerPool,
		sceneCodeGenerator, sceneSpeechGenerator, sceneReconciler, videoAssembler,
		nil, nil, workspaceConfig.GenerationsPath)

	video := domain.NewVideo(examples)

	events := make(chan domain.SceneEvent, 16)
	consumerDone := make(chan struct{})
	err = workerPool.Submit(func() {
		defer close(consumerDone)
		for ev := range events {
			zeroLogger.InfoWithFields("pipeline event", map[string]interface{}{
				"scene_id": ev.SceneID,
				"stage":    ev.Stage,
				"status":   ev.Status,
				"message":  ev.Message,
			})
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to submit event consumer")
	}

	finalPath, err := orchestrator.Run(context.Background(), video, events)
	<-consumerDone
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline run failed")
	}

	if finalPath == "" {
		zeroLogger.WarnWithFields("no final video was produced", map[string]interface{}{
			"video_id": video.ID,
		})
		return
	}

	zeroLogger.InfoWithFields("final video ready", map[string]interface{}{
		"video_id": video.ID,
		"path":     finalPath,
	})
}
