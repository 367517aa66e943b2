package inbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

type SceneSpeechGeneratorPort interface {
	Generate(ctx context.Context, layout domain.Layout, scene *domain.Scene) error
}
