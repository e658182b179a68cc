package tts

import (
	"context"
	"iter"
)

// Synthesizer yields raw mono signed 16-bit PCM chunks at SampleRate, in order.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, speed float64) iter.Seq2[[]byte, error]
	SampleRate() int
}
