package inbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// SceneCodeGeneratorPort drives the generate-validate-retry loop for one
// scene. A nil return means the scene's code file rendered successfully; the
// scene's RenderStatus, Code, Attempts and Conversation reflect the outcome
// either way.
type SceneCodeGeneratorPort interface {
	Generate(ctx context.Context, layout domain.Layout, scene *domain.Scene) error
}
