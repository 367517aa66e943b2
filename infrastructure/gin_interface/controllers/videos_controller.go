package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/domain"
	"github.com/hargunmujral/3brown1blue/infrastructure/gin_interface/dto"
	"github.com/hargunmujral/3brown1blue/middleware"
)

// eventsPerScene sizes a video's event buffer so the pipeline never blocks on
// a slow or absent SSE consumer: one event per unit, one per reconcile, plus
// the assembly tail.
const eventsPerScene = 3

type VideosController interface {
	CreateVideo(c *gin.Context)
	StreamEvents(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type videosController struct {
	logger       outbound.LoggerPort
	workerPool   outbound.TaskDispatcher
	orchestrator inbound.ScenePipelineOrchestratorPort
	hub          *EventHub
}

func NewVideosController(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	orchestrator inbound.ScenePipelineOrchestratorPort, hub *EventHub) VideosController {
	return &videosController{
		logger:       logger,
		workerPool:   workerPool,
		orchestrator: orchestrator,
		hub:          hub,
	}
}

// CreateVideo starts a generation run and returns the video id immediately.
// The caller always gets an id; per-scene failures surface on the event
// stream and in the logs, never as a request error.
func (v *videosController) CreateVideo(c *gin.Context) {
	var createVideoRequest dto.CreateVideoRequest
	if err := c.ShouldBindJSON(&createVideoRequest); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := domain.NewVideo(createVideoRequest.Transcriptions)
	events := v.hub.Register(video.ID, eventsPerScene*len(video.SceneOrder)+2)

	err := v.workerPool.Submit(func() {
		// Outlives the request on purpose; the run has no wall-clock bound.
		if _, err := v.orchestrator.Run(context.Background(), video, events); err != nil {
			v.logger.ErrorWithFields(err, "pipeline run failed", map[string]interface{}{
				"video_id": video.ID,
			})
		}
	})
	if err != nil {
		v.hub.Remove(video.ID)
		v.logger.Error(err, "failed to submit pipeline run")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, dto.CreateVideoResponse{VideoID: video.ID})
}

func (v *videosController) StreamEvents(c *gin.Context) {
	videoID := c.Param("id")
	events, ok := v.hub.Lookup(videoID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown video id"})
		return
	}

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case ev, open := <-events:
			if !open {
				v.hub.Remove(videoID)
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				v.logger.Error(err, "failed to marshal scene event")
				continue
			}
			if _, err := c.Writer.WriteString("data: " + string(payload) + "\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func (v *videosController) RegisterRoutes(g *gin.Engine) {
	g.POST("/videos", v.CreateVideo)
	g.GET("/videos/:id/events", middleware.SSEHeaders(), v.StreamEvents)
	g.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
