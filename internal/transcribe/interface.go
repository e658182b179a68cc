package transcribe

import "context"

// Engine turns a canonical waveform into time-aligned text.
type Engine interface {
	Transcribe(ctx context.Context, wavPath, language string) (*Transcript, error)
}
