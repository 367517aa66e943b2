package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hargunmujral/3brown1blue/config"
)

func writeStubBinary(t *testing.T, name string, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestManimRenderer_Success(t *testing.T) {
	bin := writeStubBinary(t, "manim", "#!/bin/sh\nexit 0\n")
	renderer := NewManimRenderer(NewZerologWrapper(), &config.RendererConfig{Bin: bin, Quality: "-ql"})

	ok, diagnostic := renderer.Render(context.Background(), "scene/video.py", "scene")
	assert.True(t, ok)
	assert.Empty(t, diagnostic)
}

func TestManimRenderer_FailureCarriesExitCodeAndStderr(t *testing.T) {
	bin := writeStubBinary(t, "manim", "#!/bin/sh\necho 'NameError: circle is not defined' >&2\nexit 3\n")
	renderer := NewManimRenderer(NewZerologWrapper(), &config.RendererConfig{Bin: bin, Quality: "-ql"})

	ok, diagnostic := renderer.Render(context.Background(), "scene/video.py", "scene")
	assert.False(t, ok)
	assert.Equal(t, "command failed with exit code 3: NameError: circle is not defined", diagnostic)
}

func TestManimRenderer_StartFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing-binary")
	renderer := NewManimRenderer(NewZerologWrapper(), &config.RendererConfig{Bin: missing, Quality: "-ql"})

	ok, diagnostic := renderer.Render(context.Background(), "scene/video.py", "scene")
	assert.False(t, ok)
	assert.NotEmpty(t, diagnostic)
}
