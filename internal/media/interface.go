package media

import "context"

// Converter normalizes audio/video containers into the canonical waveform
// (mono, 16kHz, signed 16-bit PCM WAV) used for transcription.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}
