package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage     StorageConfig     `yaml:"storage"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	LLM         LLMConfig         `yaml:"llm"`
	OCR         OCRConfig         `yaml:"ocr"`
	LaTeX       LaTeXConfig       `yaml:"latex"`
	TTS         TTSConfig         `yaml:"tts"`
	Fetcher     FetcherConfig     `yaml:"fetcher"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type StorageConfig struct {
	BaseDir   string `yaml:"base_dir"`
	Inbox     string `yaml:"inbox"`
	LineageDB string `yaml:"lineage_db"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
}

type WhisperConfig struct {
	Provider   string `yaml:"provider"` // binary | http
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
}

type LLMConfig struct {
	Provider      string            `yaml:"provider"` // openai | gemini
	BaseURL       string            `yaml:"base_url"`
	APIKey        string            `yaml:"api_key"`
	GeminiKeys    []string          `yaml:"gemini_keys"`
	DocumentModel string            `yaml:"document_model"`
	ScriptModel   string            `yaml:"script_model"`
	SummaryModel  string            `yaml:"summary_model"`
	QuizModel     string            `yaml:"quiz_model"`
	ChatModel     string            `yaml:"chat_model"`
	ContextWindow int               `yaml:"context_window"`
	Temperature   float64           `yaml:"temperature"`
	Headers       map[string]string `yaml:"headers"`
}

type OCRConfig struct {
	Provider string `yaml:"provider"` // openai | gemini
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type LaTeXConfig struct {
	CompilerPath string `yaml:"compiler_path"`
}

type TTSConfig struct {
	Endpoint   string  `yaml:"endpoint"`
	Model      string  `yaml:"model"`
	Voice      string  `yaml:"voice"`
	Speed      float64 `yaml:"speed"`
	SampleRate int     `yaml:"sample_rate"`
	ChunkSize  int     `yaml:"chunk_size"`
}

type FetcherConfig struct {
	BinaryPath string `yaml:"binary_path"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Load reads the YAML file at path, applies environment overrides for secrets
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.Whisper.APIKey == "" {
			c.Whisper.APIKey = v
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
	}
	if v := os.Getenv("OCR_API_KEY"); v != "" {
		c.OCR.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEYS"); v != "" {
		c.LLM.GeminiKeys = nil
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				c.LLM.GeminiKeys = append(c.LLM.GeminiKeys, k)
			}
		}
	}
	if v := os.Getenv("PDFLATEX_PATH"); v != "" {
		c.LaTeX.CompilerPath = v
	}
}

func (c *Config) Validate() error {
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	switch c.Whisper.Provider {
	case "", "binary":
		c.Whisper.Provider = "binary"
		if c.Whisper.ModelPath == "" {
			return fmt.Errorf("whisper.model_path is required")
		}
		if c.Whisper.BinaryPath == "" {
			return fmt.Errorf("whisper.binary_path is required")
		}
	case "http":
		if c.Whisper.Endpoint == "" {
			return fmt.Errorf("whisper.endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("whisper.provider %q is not supported", c.Whisper.Provider)
	}

	switch c.LLM.Provider {
	case "", "openai":
		c.LLM.Provider = "openai"
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = "http://localhost:11434/v1"
		}
	case "gemini":
		if len(c.LLM.GeminiKeys) == 0 {
			return fmt.Errorf("llm.gemini_keys is required for the gemini provider")
		}
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}

	if c.Storage.Inbox == "" {
		c.Storage.Inbox = filepath.Join(c.Storage.BaseDir, "inbox")
	}
	if c.Storage.LineageDB == "" {
		c.Storage.LineageDB = filepath.Join(c.Storage.BaseDir, "lineage.db")
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "whisper-1"
	}
	if c.LLM.DocumentModel == "" {
		c.LLM.DocumentModel = "qwen3:30b-instruct"
	}
	if c.LLM.ScriptModel == "" {
		c.LLM.ScriptModel = c.LLM.DocumentModel
	}
	if c.LLM.SummaryModel == "" {
		c.LLM.SummaryModel = c.LLM.DocumentModel
	}
	if c.LLM.QuizModel == "" {
		c.LLM.QuizModel = c.LLM.DocumentModel
	}
	if c.LLM.ChatModel == "" {
		c.LLM.ChatModel = c.LLM.DocumentModel
	}
	if c.LLM.ContextWindow == 0 {
		c.LLM.ContextWindow = 32768
	}
	if c.OCR.Provider == "" {
		c.OCR.Provider = c.LLM.Provider
	}
	if c.OCR.BaseURL == "" {
		c.OCR.BaseURL = c.LLM.BaseURL
	}
	if c.OCR.APIKey == "" {
		c.OCR.APIKey = c.LLM.APIKey
	}
	if c.OCR.Model == "" {
		c.OCR.Model = "mistralai/ministral-8b-2512"
	}
	if c.LaTeX.CompilerPath == "" {
		c.LaTeX.CompilerPath = "pdflatex"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "af_bella"
	}
	if c.TTS.Speed == 0 {
		c.TTS.Speed = 1
	}
	if c.TTS.SampleRate == 0 {
		c.TTS.SampleRate = 24000
	}
	if c.TTS.ChunkSize == 0 {
		c.TTS.ChunkSize = 1000
	}
	if c.TTS.Model == "" {
		c.TTS.Model = "kokoro"
	}
	if c.Fetcher.BinaryPath == "" {
		c.Fetcher.BinaryPath = "yt-dlp"
	}
	if c.Server.Port == "" {
		c.Server.Port = "5000"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
