package outbound

import "context"

// MediaToolkit wraps the media primitives the reconciler and assembler need:
// duration probing, silence padding, freeze-frame extension, trimming, muxing
// and concatenation. Every operation writes a new file; inputs are never
// modified in place.
type MediaToolkit interface {
	Duration(ctx context.Context, path string) (float64, error)

	// PadAudio appends a generated silence segment of silenceSeconds to the
	// audio at inPath.
	PadAudio(ctx context.Context, inPath string, silenceSeconds float64, outPath string) error

	// ExtendVideo appends a still clip of extraSeconds, holding the frame
	// sampled at freezeAt, after the video at inPath.
	ExtendVideo(ctx context.Context, inPath string, freezeAt float64, extraSeconds float64, outPath string) error

	// Trim cuts the clip at inPath down to seconds.
	Trim(ctx context.Context, inPath string, seconds float64, outPath string) error

	// Mux attaches the audio track to the video track.
	Mux(ctx context.Context, videoPath string, audioPath string, outPath string) error

	// Concatenate joins the clips in order into one file.
	Concatenate(ctx context.Context, clipPaths []string, outPath string) error
}
