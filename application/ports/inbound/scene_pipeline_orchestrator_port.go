package inbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// ScenePipelineOrchestratorPort runs the whole per-video pipeline: concurrent
// generation and synthesis for every scene, sequential reconciliation of the
// pairs that succeeded, then assembly. Run blocks until assembly has been
// attempted and returns the final video path, or "" when no scene survived.
// Progress is reported on events, which Run closes before returning; a nil
// events channel disables reporting. Per-scene failures never fail the run.
type ScenePipelineOrchestratorPort interface {
	Run(ctx context.Context, video *domain.Video, events chan<- domain.SceneEvent) (string, error)
}
