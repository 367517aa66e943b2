package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargunmujral/3brown1blue/domain"
	"github.com/hargunmujral/3brown1blue/infrastructure/adapters"
)

type fakeCodeGeneratorPort struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	history  [][]domain.ChatMessage
}

func (f *fakeCodeGeneratorPort) Generate(_ context.Context, messages []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	snapshot := make([]domain.ChatMessage, len(messages))
	copy(snapshot, messages)
	f.history = append(f.history, snapshot)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeRenderer struct {
	mu         sync.Mutex
	succeedOn  int
	diagnostic string
	calls      int
}

func (f *fakeRenderer) Render(_ context.Context, _ string, _ string) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.succeedOn > 0 && f.calls >= f.succeedOn {
		return true, ""
	}
	return false, f.diagnostic
}

func newTestScene(transcription string) *domain.Scene {
	return &domain.Scene{
		ID:            "scene-1",
		Transcription: transcription,
		RenderStatus:  domain.StatusPending,
		SpeechStatus:  domain.StatusPending,
	}
}

func TestSceneCodeGenerator_SucceedsFirstAttempt(t *testing.T) {
	layout := domain.NewLayout(t.TempDir(), "video-1")
	generator := &fakeCodeGeneratorPort{response: "```python\nclass VideoScene:\n    pass\n```"}
	renderer := &fakeRenderer{succeedOn: 1}
	scene := newTestScene("bananas are berries")

	svc := NewSceneCodeGenerator(adapters.NewZerologWrapper(), generator, renderer, 5)
	err := svc.Generate(context.Background(), layout, scene)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSucceeded, scene.RenderStatus)
	assert.Equal(t, 1, scene.Attempts)
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, 1, renderer.calls)

	// System prompt and transcription seed the conversation; code fences
	// are stripped before the assistant message is recorded.
	require.Len(t, scene.Conversation, 3)
	assert.Equal(t, domain.RoleSystem, scene.Conversation[0].Role)
	assert.Equal(t, "bananas are berries", scene.Conversation[1].Content)
	assert.Equal(t, "class VideoScene:\n    pass", scene.Conversation[2].Content)

	written, err := os.ReadFile(layout.CodePath(scene.ID))
	require.NoError(t, err)
	assert.Equal(t, "class VideoScene:\n    pass", string(written))
}

func TestSceneCodeGenerator_RetriesWithDiagnosticFeedback(t *testing.T) {
	layout := domain.NewLayout(t.TempDir(), "video-1")
	generator := &fakeCodeGeneratorPort{response: "print('hi')"}
	renderer := &fakeRenderer{succeedOn: 3, diagnostic: "command failed with exit code 1: NameError"}
	scene := newTestScene("history of the internet")

	svc := NewSceneCodeGenerator(adapters.NewZerologWrapper(), generator, renderer, 5)
	err := svc.Generate(context.Background(), layout, scene)
	require.NoError(t, err)

	// Terminates at the succeeding attempt, no further requests.
	assert.Equal(t, 3, generator.calls)
	assert.Equal(t, 3, renderer.calls)
	assert.Equal(t, 3, scene.Attempts)
	assert.Equal(t, domain.StatusSucceeded, scene.RenderStatus)

	// Two messages per failed attempt: assistant code plus the error report.
	require.Len(t, scene.Conversation, 2+3+2)
	assert.Equal(t, domain.RoleUser, scene.Conversation[4].Role)
	assert.Equal(t, "Error: command failed with exit code 1: NameError", scene.Conversation[4].Content)

	// The retry requests carry the full history so far.
	require.Len(t, generator.history, 3)
	assert.Len(t, generator.history[1], 4)
	assert.Len(t, generator.history[2], 6)
}

func TestSceneCodeGenerator_ExhaustsAttempts(t *testing.T) {
	layout := domain.NewLayout(t.TempDir(), "video-1")
	generator := &fakeCodeGeneratorPort{response: "broken code"}
	renderer := &fakeRenderer{succeedOn: 0, diagnostic: "command failed with exit code 1: boom"}
	scene := newTestScene("some scene")

	svc := NewSceneCodeGenerator(adapters.NewZerologWrapper(), generator, renderer, 5)
	err := svc.Generate(context.Background(), layout, scene)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttemptsExhausted))

	assert.Equal(t, 5, generator.calls)
	assert.Equal(t, 5, renderer.calls)
	assert.Equal(t, domain.StatusFailed, scene.RenderStatus)

	// The last attempt's code stays on disk for inspection.
	written, readErr := os.ReadFile(layout.CodePath(scene.ID))
	require.NoError(t, readErr)
	assert.Equal(t, "broken code", string(written))
}

func TestSceneCodeGenerator_ModelErrorBurnsAttempt(t *testing.T) {
	layout := domain.NewLayout(t.TempDir(), "video-1")
	generator := &fakeCodeGeneratorPort{err: errors.New("upstream unavailable")}
	renderer := &fakeRenderer{succeedOn: 1}
	scene := newTestScene("some scene")

	svc := NewSceneCodeGenerator(adapters.NewZerologWrapper(), generator, renderer, 3)
	err := svc.Generate(context.Background(), layout, scene)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAttemptsExhausted))

	assert.Equal(t, 3, generator.calls)
	assert.Equal(t, 0, renderer.calls)
}

func TestSceneCodeGenerator_WriteFailureIsFatal(t *testing.T) {
	// A regular file where the generations root should be makes every
	// directory creation fail.
	rootFile := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(rootFile, []byte("x"), 0644))
	layout := domain.NewLayout(rootFile, "video-1")

	generator := &fakeCodeGeneratorPort{response: "code"}
	renderer := &fakeRenderer{succeedOn: 1}
	scene := newTestScene("some scene")

	svc := NewSceneCodeGenerator(adapters.NewZerologWrapper(), generator, renderer, 5)
	err := svc.Generate(context.Background(), layout, scene)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAttemptsExhausted))

	// Fatal without validation: the renderer is never consulted.
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, 0, renderer.calls)
	assert.Equal(t, domain.StatusFailed, scene.RenderStatus)
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"unfenced":         {"class VideoScene:\n    pass", "class VideoScene:\n    pass"},
		"bare fence":       {"```\ncode here\n```", "code here"},
		"language tag":     {"```python\ncode here\n```", "code here"},
		"leading space":    {"  ```python\ncode here\n```  ", "code here"},
		"fence like code":  {"```\nprint('```')\n", "print('```')"},
		"single line code": {"print('hi')", "print('hi')"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := stripCodeFence(tc.input)
			assert.Equal(t, tc.expected, got)
			assert.False(t, strings.HasPrefix(got, "```"))
		})
	}
}
