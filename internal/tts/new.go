package tts

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

// ErrProviderUnavailable marks network failures and 5xx responses from the speech engine.
var ErrProviderUnavailable = errors.New("speech provider unavailable")

type implHTTP struct {
	endpoint   string
	model      string
	apiKey     string
	sampleRate int
	splitter   *textsplitter.RecursiveCharacter
	httpClient *http.Client
	logger     logger.Logger
}

// NewHTTP creates a Synthesizer for an OpenAI-compatible /audio/speech endpoint
// (Kokoro-FastAPI and similar) requesting raw PCM. Long text is split into
// chunks of about cfg.ChunkSize characters, one request per chunk.
func NewHTTP(cfg config.TTSConfig, apiKey string, client *http.Client, log logger.Logger) Synthesizer {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 24000
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", "? ", "! ", " "}),
	)

	return &implHTTP{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		apiKey:     apiKey,
		sampleRate: sampleRate,
		splitter:   &splitter,
		httpClient: client,
		logger:     log,
	}
}
