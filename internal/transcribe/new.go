package transcribe

import (
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

const requestTimeout = 10 * time.Minute

type implWhisper struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates an Engine backed by the whisper.cpp command line binary.
func NewWhisper(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Engine {
	return &implWhisper{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}

type implHTTP struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewHTTP creates an Engine for an OpenAI-compatible /audio/transcriptions endpoint.
// A nil client gets a default one with a generous timeout.
func NewHTTP(cfg config.WhisperConfig, client *http.Client, log logger.Logger) Engine {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &implHTTP{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: client,
		logger:     log,
	}
}

// New picks the provider named in cfg.Provider.
func New(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Engine {
	if cfg.Provider == "http" {
		return NewHTTP(cfg, nil, log)
	}
	return NewWhisper(cfg, exec, log)
}
