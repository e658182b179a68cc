package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

const requestTimeout = 10 * time.Minute

// Options configures an OpenAI-compatible client (OpenAI, OpenRouter, Ollama, LM Studio).
type Options struct {
	BaseURL     string
	APIKey      string
	Headers     map[string]string
	Temperature float64
	HTTPClient  *http.Client
}

type implOpenAI struct {
	baseURL     string
	apiKey      string
	headers     map[string]string
	temperature float64
	httpClient  *http.Client
	logger      logger.Logger
}

// NewOpenAI creates a Provider speaking the chat completions protocol.
func NewOpenAI(opts Options, log logger.Logger) Provider {
	client := opts.HTTPClient
	if client == nil {
		// No overall timeout; streamed generations can run long and are bounded by ctx.
		client = &http.Client{}
	}
	return &implOpenAI{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		headers:     opts.Headers,
		temperature: opts.Temperature,
		httpClient:  client,
		logger:      log,
	}
}

// New builds the provider selected by cfg.Provider.
func New(cfg config.LLMConfig, log logger.Logger) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(cfg.GeminiKeys, cfg.Temperature, log)
	case "", "openai":
		return NewOpenAI(Options{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Headers:     cfg.Headers,
			Temperature: cfg.Temperature,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
