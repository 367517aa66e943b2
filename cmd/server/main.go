package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/application/services"
	"github.com/hargunmujral/3brown1blue/config"
	"github.com/hargunmujral/3brown1blue/infrastructure/adapters"
	"github.com/hargunmujral/3brown1blue/infrastructure/gin_interface/controllers"
	"github.com/hargunmujral/3brown1blue/middleware"
)

func main() {
	_ = godotenv.Load()

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

	var videoPublisher outbound.VideoPublisherPort
	if os.Getenv("BUCKET_NAME") != "" {
		s3Config, err := config.GetS3Config()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get s3 config")
		}
		videoPublisher = adapters.NewS3VideoPublisher(zeroLogger, s3Config)
	}

	var sceneStore outbound.SceneStorePort
	if os.Getenv("DYNAMO_TABLE_NAME") != "" {
		dynamoConfig, err := config.GetDynamoConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get dynamo config")
		}
		sess := session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
		sceneStore = adapters.NewDynamoSceneStore(zeroLogger, dynamodb.New(sess), dynamoConfig)
	}

	sceneCodeGenerator := services.NewSceneCodeGenerator(zeroLogger, codeGenerator, renderer, workspaceConfig.MaxIterations)
	sceneSpeechGenerator := services.NewSceneSpeechGenerator(zeroLogger, synthesizer)
	sceneReconciler := services.NewSceneReconciler(zeroLogger, mediaToolkit)
	videoAssembler := services.NewVideoAssembler(zeroLogger, mediaToolkit)

	orchestrator := services.NewScenePipelineOrchestrator(zeroLogger, workerPool,
		sceneCodeGenerator, sceneSpeechGenerator, sceneReconciler, videoAssembler,
		videoPublisher, sceneStore, workspaceConfig.GenerationsPath)

	eventHub := controllers.NewEventHub()
	videosController := controllers.NewVideosController(zeroLogger, workerPool, orchestrator, eventHub)

	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	if jwksUrl := os.Getenv("JWKS_URL"); jwksUrl != "" {
		authHandler, err := middleware.NewAuthHandler(jwksUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth handler!")
		}
		router.Use(authHandler.AuthMiddleware())
	}

	videosController.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
