package adapters

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
)

type ffmpegMediaToolkit struct {
	logger     outbound.LoggerPort
	ffmpegBin  string
	ffprobeBin string
}

func NewFFmpegMediaToolkit(logger outbound.LoggerPort) outbound.MediaToolkit {
	return &ffmpegMediaToolkit{
		logger:     logger,
		ffmpegBin:  "ffmpeg",
		ffprobeBin: "ffprobe",
	}
}

func (f *ffmpegMediaToolkit) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobeBin, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)

	out, err := cmd.Output()
	if err != nil {
		f.logger.ErrorWithFields(err, "error probing clip duration", map[string]interface{}{
			"path": path,
		})
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		f.logger.Error(err, "error parsing clip duration")
		return 0, err
	}

	return duration, nil
}

// PadAudio appends an actual generated silence segment, not a stated longer
// duration, so downstream probing sees the padded length.
func (f *ffmpegMediaToolkit) PadAudio(ctx context.Context, inPath string, silenceSeconds float64, outPath string) error {
	return f.run(ctx,
		"-y",
		"-i", inPath,
		"-f", "lavfi", "-t", formatSeconds(silenceSeconds), "-i", "anullsrc=r=44100:cl=stereo",
		"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1",
		outPath,
	)
}

func (f *ffmpegMediaToolkit) ExtendVideo(ctx context.Context, inPath string, freezeAt float64, extraSeconds float64, outPath string) error {
	framePath := outPath + ".frame.png"
	defer func() {
		if err := os.Remove(framePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.logger.Error(err, "failed to remove sampled frame")
		}
	}()

	if err := f.run(ctx,
		"-y",
		"-ss", formatSeconds(freezeAt),
		"-i", inPath,
		"-frames:v", "1",
		framePath,
	); err != nil {
		return fmt.Errorf("sample last frame: %w", err)
	}

	return f.run(ctx,
		"-y",
		"-i", inPath,
		"-loop", "1", "-t", formatSeconds(extraSeconds), "-i", framePath,
		"-filter_complex", "[1:v]format=yuv420p[still];[0:v][still]concat=n=2:v=1:a=0",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		outPath,
	)
}

func (f *ffmpegMediaToolkit) Trim(ctx context.Context, inPath string, seconds float64, outPath string) error {
	return f.run(ctx,
		"-y",
		"-i", inPath,
		"-t", formatSeconds(seconds),
		"-c", "copy",
		outPath,
	)
}

func (f *ffmpegMediaToolkit) Mux(ctx context.Context, videoPath string, audioPath string, outPath string) error {
	return f.run(ctx,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "aac", "-b:a", "192k",
		outPath,
	)
}

func (f *ffmpegMediaToolkit) Concatenate(ctx context.Context, clipPaths []string, outPath string) error {
	listPath := filepath.Join(filepath.Dir(outPath), uuid.NewString()+".txt")
	if err := writeConcatList(listPath, clipPaths); err != nil {
		f.logger.Error(err, "Failed to write video list file")
		return err
	}
	defer func() {
		if err := os.Remove(listPath); err != nil {
			f.logger.Error(err, "Failed to remove video list file")
		}
	}()

	return f.run(ctx,
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
}

func (f *ffmpegMediaToolkit) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		f.logger.ErrorWithFields(err, "ffmpeg command failed", map[string]interface{}{
			"args":   strings.Join(args, " "),
			"stderr": strings.TrimSpace(stderr.String()),
		})
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func writeConcatList(listPath string, clipPaths []string) error {
	fileList, err := os.Create(listPath)
	if err != nil {
		return err
	}
	defer fileList.Close()

	writer := bufio.NewWriter(fileList)
	for _, clipPath := range clipPaths {
		absPath, err := filepath.Abs(clipPath)
		if err != nil {
			return err
		}
		if _, err := writer.WriteString("file '" + absPath + "'\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
