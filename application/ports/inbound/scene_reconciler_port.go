package inbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// SceneReconcilerPort equalizes a scene's video and audio durations and
// replaces the scene's video file with the muxed clip. Returns the muxed
// clip's duration.
type SceneReconcilerPort interface {
	Reconcile(ctx context.Context, layout domain.Layout, sceneID string) (float64, error)
}
