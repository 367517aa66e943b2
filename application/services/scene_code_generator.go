package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hargunmujral/3brown1blue/application/ports/inbound"
	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/domain"
)

const SystemScenePrompt = `You are an expert teacher of simple and complex topics, similar to 3 Blue 1 Brown. Given a transcription for a video scene, you are to generate Manim code that will create an animation for the scene. The code should be able to run without errors.

Try to be creative in your visualization of the topic. The scene should be engaging and informative. ONLY generate and return the manim code. Nothing else. Not even markdown or the programming language name.

Two elements should not be in the same location at the same time. Ensure that every asset you use is defined in the file, and that the file can be run without errors.

The classname of the root animation should always be VideoScene.`

// ErrAttemptsExhausted marks a scene whose code never rendered within the
// attempt budget. The last attempt's code file is left on disk for inspection.
var ErrAttemptsExhausted = errors.New("generation attempts exhausted")

type sceneCodeGenerator struct {
	logger        outbound.LoggerPort
	codeGenerator outbound.CodeGeneratorPort
	renderer      outbound.SceneRendererPort
	maxIterations int
}

func NewSceneCodeGenerator(logger outbound.LoggerPort, codeGenerator outbound.CodeGeneratorPort,
	renderer outbound.SceneRendererPort, maxIterations int) inbound.SceneCodeGeneratorPort {
	return &sceneCodeGenerator{
		logger:        logger,
		codeGenerator: codeGenerator,
		renderer:      renderer,
		maxIterations: maxIterations,
	}
}

func (g *sceneCodeGenerator) Generate(ctx context.Context, layout domain.Layout, scene *domain.Scene) error {
	scene.Conversation = []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: SystemScenePrompt},
		{Role: domain.RoleUser, Content: scene.Transcription},
	}

	for attempt := 1; attempt <= g.maxIterations; attempt++ {
		scene.Attempts = attempt

		output, err := g.codeGenerator.Generate(ctx, scene.Conversation)
		if err != nil {
			// A model-side failure burns the attempt; there is no
			// corrective feedback to append.
			g.logger.ErrorWithFields(err, "code generation request failed", map[string]interface{}{
				"scene_id": scene.ID,
				"attempt":  attempt,
			})
			continue
		}

		scene.Code = stripCodeFence(output)
		scene.Conversation = append(scene.Conversation, domain.ChatMessage{
			Role:    domain.RoleAssistant,
			Content: scene.Code,
		})

		if err := g.writeCode(layout, scene); err != nil {
			// Local write failures are not content-correctable; fail the
			// scene immediately without burning further attempts.
			g.logger.ErrorWithFields(err, "failed to write scene code file", map[string]interface{}{
				"scene_id": scene.ID,
			})
			scene.RenderStatus = domain.StatusFailed
			return err
		}

		ok, diagnostic := g.renderer.Render(ctx, layout.CodePath(scene.ID), layout.SceneDir(scene.ID))
		if ok {
			g.logger.InfoWithFields("scene rendered successfully", map[string]interface{}{
				"scene_id": scene.ID,
				"attempts": attempt,
			})
			scene.RenderStatus = domain.StatusSucceeded
			return nil
		}

		g.logger.WarnWithFields("scene render failed", map[string]interface{}{
			"scene_id":   scene.ID,
			"attempt":    attempt,
			"diagnostic": diagnostic,
		})
		scene.Conversation = append(scene.Conversation, domain.ChatMessage{
			Role:    domain.RoleUser,
			Content: "Error: " + diagnostic,
		})
	}

	scene.RenderStatus = domain.StatusFailed
	return fmt.Errorf("scene %s: %w", scene.ID, ErrAttemptsExhausted)
}

func (g *sceneCodeGenerator) writeCode(layout domain.Layout, scene *domain.Scene) error {
	if err := os.MkdirAll(layout.SceneDir(scene.ID), 0755); err != nil {
		return err
	}
	return os.WriteFile(layout.CodePath(scene.ID), []byte(scene.Code), 0644)
}

// stripCodeFence removes surrounding markdown code-fence lines, including an
// optional language tag on the opening fence. Unfenced text passes through
// untouched.
func stripCodeFence(output string) string {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		// Only a bare language word may follow the opening fence.
		if firstLine == "" || !strings.ContainsAny(firstLine, " \t") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
