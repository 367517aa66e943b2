package outbound

import "context"

// SceneRendererPort invokes the external rendering engine on a scene's code
// file. mediaDir is the scene's own directory and acts as the isolation
// boundary between scenes. On failure the diagnostic carries the engine's
// stderr, prefixed with the exit code. The adapter never retries; retry
// policy belongs to the generation loop.
type SceneRendererPort interface {
	Render(ctx context.Context, codePath string, mediaDir string) (bool, string)
}
