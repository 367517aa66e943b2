package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/channel_utils"
	"github.com/hargunmujral/3brown1blue/domain"
)

type scenePipelineOrchestrator struct {
	logger          outbound.LoggerPort
	workerPool      outbound.TaskDispatcher
	codeGenerator   inbound.SceneCodeGeneratorPort
	speechGenerator inbound.SceneSpeechGeneratorPort
	reconciler      inbound.SceneReconcilerPort
	assembler       inbound.VideoAssemblerPort
	publisher       outbound.VideoPublisherPort
	sceneStore      outbound.SceneStorePort
	generationsPath string
}

// NewScenePipelineOrchestrator wires the per-video pipeline. publisher and
// sceneStore may be nil; publishing and persistence are then skipped.
func NewScenePipelineOrchestrator(logger outbound.LoggerPort, workerPool outbound.TaskDispatcher,
	codeGenerator inbound.SceneCodeGeneratorPort, speechGenerator inbound.SceneSpeechGeneratorPort,
	reconciler inbound.SceneReconcilerPort, assembler inbound.VideoAssemblerPort,
	publisher outbound.VideoPublisherPort, sceneStore outbound.SceneStorePort,
	generationsPath string) inbound.ScenePipelineOrchestratorPort {
	return &scenePipelineOrchestrator{
		logger:          logger,
		workerPool:      workerPool,
		codeGenerator:   codeGenerator,
		speechGenerator: speechGenerator,
		reconciler:      reconciler,
		assembler:       assembler,
		publisher:       publisher,
		sceneStore:      sceneStore,
		generationsPath: generationsPath,
	}
}

func (o *scenePipelineOrchestrator) Run(ctx context.Context, video *domain.Video, events chan<- domain.SceneEvent) (string, error) {
	if events != nil {
		defer close(events)
	}
	layout := domain.NewLayout(o.generationsPath, video.ID)

	sceneEventChs := make([]<-chan domain.SceneEvent, 0, len(video.SceneOrder))
	for _, sceneID := range video.SceneOrder {
		ch, err := o.runScenePair(ctx, layout, video.Scenes[sceneID], video.ID)
		if err != nil {
			o.logger.Error(err, "failed to schedule scene tasks")
			return "", err
		}
		sceneEventChs = append(sceneEventChs, ch)
	}

	// Draining the merged stream doubles as the join barrier: every scene's
	// channel closes only once both of its units have completed.
	merged, err := channel_utils.MergeChannels(o.workerPool, sceneEventChs...)
	if err != nil {
		o.logger.Error(err, "failed to merge scene event channels")
		return "", err
	}
	for ev := range merged {
		o.emit(events, ev)
	}

	for _, sceneID := range video.SceneOrder {
		o.reconcileScene(ctx, layout, video, video.Scenes[sceneID], events)
	}

	finalPath, err := o.assembler.Assemble(ctx, layout, video)
	if err != nil {
		o.emit(events, domain.SceneEvent{
			VideoID: video.ID,
			Stage:   domain.StageAssembly,
			Status:  domain.StatusFailed,
			Message: err.Error(),
		})
		return "", err
	}
	if finalPath == "" {
		o.emit(events, domain.SceneEvent{
			VideoID: video.ID,
			Stage:   domain.StageAssembly,
			Status:  domain.StatusFailed,
			Message: "no scene produced a usable clip",
		})
		return "", nil
	}

	o.emit(events, domain.SceneEvent{
		VideoID: video.ID,
		Stage:   domain.StageAssembly,
		Status:  domain.StatusSucceeded,
		Message: finalPath,
	})

	if o.publisher != nil {
		if _, err := o.publisher.Publish(ctx, outbound.PublishVideoRequest{
			VideoID:       video.ID,
			VideoFileName: finalPath,
		}); err != nil {
			// The local artifact is the contract; publishing is best effort.
			o.logger.Error(err, "failed to publish final video")
		}
	}

	return finalPath, nil
}

// runScenePair launches the scene's generation and synthesis as two
// independently-progressing pool tasks. The returned channel carries one
// event per unit and closes once both have completed.
func (o *scenePipelineOrchestrator) runScenePair(ctx context.Context, layout domain.Layout, scene *domain.Scene, videoID string) (<-chan domain.SceneEvent, error) {
	out := make(chan domain.SceneEvent, 4)
	var wg sync.WaitGroup

	units := []struct {
		stage string
		run   func() error
	}{
		{domain.StageGeneration, func() error { return o.codeGenerator.Generate(ctx, layout, scene) }},
		{domain.StageSynthesis, func() error { return o.speechGenerator.Generate(ctx, layout, scene) }},
	}

	wg.Add(len(units))
	for _, unit := range units {
		unit := unit
		err := o.workerPool.Submit(func() {
			defer wg.Done()
			ev := domain.SceneEvent{
				VideoID: videoID,
				SceneID: scene.ID,
				Stage:   unit.stage,
				Status:  domain.StatusSucceeded,
			}
			if err := unit.run(); err != nil {
				ev.Status = domain.StatusFailed
				ev.Message = err.Error()
			}
			out <- ev
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	if err := o.workerPool.Submit(func() {
		wg.Wait()
		close(out)
	}); err != nil {
		return nil, err
	}

	return out, nil
}

func (o *scenePipelineOrchestrator) reconcileScene(ctx context.Context, layout domain.Layout, video *domain.Video, scene *domain.Scene, events chan<- domain.SceneEvent) {
	record := domain.SceneRecord{
		VideoID:  video.ID,
		SceneID:  scene.ID,
		Status:   domain.StatusFailed,
		Attempts: scene.Attempts,
	}

	if !scene.Playable() {
		o.logger.WarnWithFields("scene not generated successfully, excluded from final video", map[string]interface{}{
			"scene_id":      scene.ID,
			"render_status": scene.RenderStatus,
			"speech_status": scene.SpeechStatus,
		})
		o.emit(events, domain.SceneEvent{
			VideoID: video.ID,
			SceneID: scene.ID,
			Stage:   domain.StageReconcile,
			Status:  domain.StatusFailed,
			Message: "scene skipped",
		})
		o.saveRecord(ctx, record)
		return
	}

	duration, err := o.reconciler.Reconcile(ctx, layout, scene.ID)
	if err != nil {
		o.logger.ErrorWithFields(err, "failed to reconcile scene", map[string]interface{}{
			"scene_id": scene.ID,
		})
		// Drop the unmuxed clip so assembly, which trusts the filesystem,
		// cannot pick up a silent scene.
		if removeErr := os.Remove(layout.ScenePath(scene.ID)); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			o.logger.Error(removeErr, "failed to remove unreconciled scene clip")
		}
		o.emit(events, domain.SceneEvent{
			VideoID: video.ID,
			SceneID: scene.ID,
			Stage:   domain.StageReconcile,
			Status:  domain.StatusFailed,
			Message: err.Error(),
		})
		o.saveRecord(ctx, record)
		return
	}

	record.Status = domain.StatusSucceeded
	record.Duration = duration
	o.emit(events, domain.SceneEvent{
		VideoID: video.ID,
		SceneID: scene.ID,
		Stage:   domain.StageReconcile,
		Status:  domain.StatusSucceeded,
	})
	o.saveRecord(ctx, record)
}

func (o *scenePipelineOrchestrator) saveRecord(ctx context.Context, record domain.SceneRecord) {
	if o.sceneStore == nil {
		return
	}
	if err := o.sceneStore.Save(ctx, record); err != nil {
		o.logger.ErrorWithFields(err, "failed to save scene record", map[string]interface{}{
			"scene_id": record.SceneID,
		})
	}
}

func (o *scenePipelineOrchestrator) emit(events chan<- domain.SceneEvent, ev domain.SceneEvent) {
	if events == nil {
		return
	}
	events <- ev
}
