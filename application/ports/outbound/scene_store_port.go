package outbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// SceneStorePort persists per-scene outcome records for later inspection.
type SceneStorePort interface {
	Save(ctx context.Context, record domain.SceneRecord) error
}
