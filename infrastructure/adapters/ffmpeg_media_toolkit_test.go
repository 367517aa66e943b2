package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFmpegMediaToolkit_DurationParsesFullPrecision(t *testing.T) {
	ffprobe := writeStubBinary(t, "ffprobe", "#!/bin/sh\necho 12.345678\n")
	toolkit := &ffmpegMediaToolkit{logger: NewZerologWrapper(), ffmpegBin: "ffmpeg", ffprobeBin: ffprobe}

	duration, err := toolkit.Duration(context.Background(), "clip.mp4")
	require.NoError(t, err)
	assert.InDelta(t, 12.345678, duration, 1e-9)
}

func TestFFmpegMediaToolkit_RunSurfacesStderr(t *testing.T) {
	ffmpeg := writeStubBinary(t, "ffmpeg", "#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n")
	toolkit := &ffmpegMediaToolkit{logger: NewZerologWrapper(), ffmpegBin: ffmpeg, ffprobeBin: "ffprobe"}

	err := toolkit.Trim(context.Background(), "in.mp4", 5.0, "out.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestFFmpegMediaToolkit_ConcatenateCleansUpListFile(t *testing.T) {
	ffmpeg := writeStubBinary(t, "ffmpeg", "#!/bin/sh\nexit 0\n")
	toolkit := &ffmpegMediaToolkit{logger: NewZerologWrapper(), ffmpegBin: ffmpeg, ffprobeBin: "ffprobe"}

	outDir := t.TempDir()
	err := toolkit.Concatenate(context.Background(), []string{"a.mp4", "b.mp4"}, filepath.Join(outDir, "final.mp4"))
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, ".txt", filepath.Ext(entry.Name()), "concat list file should be removed")
	}
}

func TestWriteConcatList(t *testing.T) {
	listPath := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, writeConcatList(listPath, []string{"/clips/one.mp4", "/clips/two.mp4"}))

	content, err := os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Equal(t, "file '/clips/one.mp4'\nfile '/clips/two.mp4'\n", string(content))
}
