package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargunmujral/3brown1blue/domain"
	"github.com/hargunmujral/3brown1blue/infrastructure/adapters"
)

type fakeSceneCodeGenerator struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   []string
}

func (f *fakeSceneCodeGenerator) Generate(_ context.Context, _ domain.Layout, scene *domain.Scene) error {
	f.mu.Lock()
	f.calls = append(f.calls, scene.ID)
	f.mu.Unlock()
	scene.Attempts = 1
	if f.failFor[scene.ID] {
		scene.RenderStatus = domain.StatusFailed
		return errors.New("generation attempts exhausted")
	}
	scene.RenderStatus = domain.StatusSucceeded
	return nil
}

type fakeSceneSpeechGenerator struct {
	mu      sync.Mutex
	failFor map[string]bool
	calls   []string
}

func (f *fakeSceneSpeechGenerator) Generate(_ context.Context, _ domain.Layout, scene *domain.Scene) error {
	f.mu.Lock()
	f.calls = append(f.calls, scene.ID)
	f.mu.Unlock()
	if f.failFor[scene.ID] {
		scene.SpeechStatus = domain.StatusFailed
		return errors.New("synthesis failed")
	}
	scene.SpeechStatus = domain.StatusSucceeded
	return nil
}

type fakeSceneReconciler struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSceneReconciler) Reconcile(_ context.Context, _ domain.Layout, sceneID string) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sceneID)
	f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return 7.5, nil
}

type fakeVideoAssembler struct {
	mu    sync.Mutex
	calls int
	path  string
}

func (f *fakeVideoAssembler) Assemble(_ context.Context, layout domain.Layout, _ *domain.Video) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.path == "" {
		return "", nil
	}
	return layout.FinalPath(), nil
}

type fakeSceneStore struct {
	mu      sync.Mutex
	records []domain.SceneRecord
}

func (f *fakeSceneStore) Save(_ context.Context, record domain.SceneRecord) error {
	f.mu.Lock()
	f.records = append(f.records, record)
	f.mu.Unlock()
	return nil
}

func collectEvents(t *testing.T, events <-chan domain.SceneEvent) []domain.SceneEvent {
	t.Helper()
	collected := make([]domain.SceneEvent, 0)
	for ev := range events {
		collected = append(collected, ev)
	}
	return collected
}

func TestScenePipelineOrchestrator_HappyPath(t *testing.T) {
	workerPool, err := ants.NewPool(20)
	require.NoError(t, err)
	defer workerPool.Release()

	video := domain.NewVideo([]string{"first", "second", "third"})
	codeGen := &fakeSceneCodeGenerator{failFor: map[string]bool{}}
	speechGen := &fakeSceneSpeechGenerator{failFor: map[string]bool{}}
	reconciler := &fakeSceneReconciler{}
	assembler := &fakeVideoAssembler{path: "final"}
	store := &fakeSceneStore{}

	orchestrator := NewScenePipelineOrchestrator(adapters.NewZerologWrapper(), workerPool,
		codeGen, speechGen, reconciler, assembler, nil, store, t.TempDir())

	events := make(chan domain.SceneEvent, 32)
	var collected []domain.SceneEvent
	done := make(chan struct{})
	go func() {
		defer close(done)
		collected = collectEvents(t, events)
	}()

	finalPath, err := orchestrator.Run(context.Background(), video, events)
	<-done
	require.NoError(t, err)
	assert.NotEmpty(t, finalPath)

	// Every scene's pair ran, reconciliation happened in input order, and
	// assembly ran exactly once after everything else.
	assert.Len(t, codeGen.calls, 3)
	assert.Len(t, speechGen.calls, 3)
	assert.Equal(t, video.SceneOrder, reconciler.calls)
	assert.Equal(t, 1, assembler.calls)

	require.Len(t, store.records, 3)
	for _, record := range store.records {
		assert.Equal(t, domain.StatusSucceeded, record.Status)
		assert.InDelta(t, 7.5, record.Duration, 1e-9)
	}

	var assemblyEvents int
	for _, ev := range collected {
		if ev.Stage == domain.StageAssembly {
			assemblyEvents++
			assert.Equal(t, domain.StatusSucceeded, ev.Status)
		}
	}
	assert.Equal(t, 1, assemblyEvents)
}

func TestScenePipelineOrchestrator_FailedSceneIsSkippedNotFatal(t *testing.T) {
	workerPool, err := ants.NewPool(20)
	require.NoError(t, err)
	defer workerPool.Release()

	video := domain.NewVideo([]string{"first", "second", "third"})
	failing := video.SceneOrder[1]
	codeGen := &fakeSceneCodeGenerator{failFor: map[string]bool{failing: true}}
	speechGen := &fakeSceneSpeechGenerator{failFor: map[string]bool{}}
	reconciler := &fakeSceneReconciler{}
	assembler := &fakeVideoAssembler{path: "final"}
	store := &fakeSceneStore{}

	orchestrator := NewScenePipelineOrchestrator(adapters.NewZerologWrapper(), workerPool,
		codeGen, speechGen, reconciler, assembler, nil, store, t.TempDir())

	events := make(chan domain.SceneEvent, 32)
	done := make(chan struct{})
	var collected []domain.SceneEvent
	go func() {
		defer close(done)
		collected = collectEvents(t, events)
	}()

	finalPath, err := orchestrator.Run(context.Background(), video, events)
	<-done
	require.NoError(t, err)
	assert.NotEmpty(t, finalPath)

	// The failed scene is excluded from reconciliation but the others
	// proceed, still in input order.
	assert.Equal(t, []string{video.SceneOrder[0], video.SceneOrder[2]}, reconciler.calls)
	assert.Equal(t, 1, assembler.calls)

	statuses := map[string]domain.RenderStatus{}
	for _, record := range store.records {
		statuses[record.SceneID] = record.Status
	}
	assert.Equal(t, domain.StatusFailed, statuses[failing])
	assert.Equal(t, domain.StatusSucceeded, statuses[video.SceneOrder[0]])

	var skipped bool
	for _, ev := range collected {
		if ev.SceneID == failing && ev.Stage == domain.StageReconcile {
			assert.Equal(t, domain.StatusFailed, ev.Status)
			skipped = true
		}
	}
	assert.True(t, skipped, "expected a terminal reconcile event for the skipped scene")
}

func TestScenePipelineOrchestrator_NoSurvivingScenes(t *testing.T) {
	workerPool, err := ants.NewPool(20)
	require.NoError(t, err)
	defer workerPool.Release()

	video := domain.NewVideo([]string{"first", "second"})
	failFor := map[string]bool{video.SceneOrder[0]: true, video.SceneOrder[1]: true}
	codeGen := &fakeSceneCodeGenerator{failFor: failFor}
	speechGen := &fakeSceneSpeechGenerator{failFor: map[string]bool{}}
	reconciler := &fakeSceneReconciler{}
	assembler := &fakeVideoAssembler{path: ""}

	orchestrator := NewScenePipelineOrchestrator(adapters.NewZerologWrapper(), workerPool,
		codeGen, speechGen, reconciler, assembler, nil, nil, t.TempDir())

	events := make(chan domain.SceneEvent, 32)
	done := make(chan struct{})
	var collected []domain.SceneEvent
	go func() {
		defer close(done)
		collected = collectEvents(t, events)
	}()

	finalPath, err := orchestrator.Run(context.Background(), video, events)
	<-done
	require.NoError(t, err)

	// The run still completes and the assembler still decides; it just
	// produces nothing.
	assert.Empty(t, finalPath)
	assert.Empty(t, reconciler.calls)
	assert.Equal(t, 1, assembler.calls)

	var assemblyFailed bool
	for _, ev := range collected {
		if ev.Stage == domain.StageAssembly && ev.Status == domain.StatusFailed {
			assemblyFailed = true
		}
	}
	assert.True(t, assemblyFailed)
}

func TestScenePipelineOrchestrator_NilEventsChannel(t *testing.T) {
	workerPool, err := ants.NewPool(20)
	require.NoError(t, err)
	defer workerPool.Release()

	video := domain.NewVideo([]string{"only"})
	codeGen := &fakeSceneCodeGenerator{failFor: map[string]bool{}}
	speechGen := &fakeSceneSpeechGenerator{failFor: map[string]bool{}}
	reconciler := &fakeSceneReconciler{}
	assembler := &fakeVideoAssembler{path: "final"}

	orchestrator := NewScenePipelineOrchestrator(adapters.NewZerologWrapper(), workerPool,
		codeGen, speechGen, reconciler, assembler, nil, nil, t.TempDir())

	finalPath, err := orchestrator.Run(context.Background(), video, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, finalPath)
}
