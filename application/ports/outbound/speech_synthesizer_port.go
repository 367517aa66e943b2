package outbound

import "context"

// SpeechSynthesizerPort requests narration audio for a transcription. Voice
// and output format are fixed per deployment, not per call.
type SpeechSynthesizerPort interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
