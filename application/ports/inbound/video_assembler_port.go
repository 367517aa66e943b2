package inbound

import (
	"context"

	"github.com/hargunmujral/3brown1blue/domain"
)

// VideoAssemblerPort concatenates the scenes' muxed clips, in input order,
// into the final video. Scenes whose clip is missing on disk are skipped.
// Returns the final path, or "" when no scene produced a clip.
type VideoAssemblerPort interface {
	Assemble(ctx context.Context, layout domain.Layout, video *domain.Video) (string, error)
}
