package main

import (
	"fmt"
	"os"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/compiler"
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/extract"
	"github.com/nguyentantai21042004/study-flow/internal/fetch"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/ocr"
	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
	"github.com/nguyentantai21042004/study-flow/internal/router"
	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
	"github.com/nguyentantai21042004/study-flow/internal/tts"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg      *config.Config
	store    artifact.Store
	provider llm.Provider
	pipeline pipeline.Pipeline
	logger   logger.Logger
}

func newApp(cfg *config.Config, log logger.Logger) (*app, error) {
	latexPath, err := compiler.LookPath(cfg.LaTeX.CompilerPath)
	if err != nil {
		return nil, err
	}

	provider, err := llm.New(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	vision, err := llm.New(config.LLMConfig{
		Provider:    cfg.OCR.Provider,
		BaseURL:     cfg.OCR.BaseURL,
		APIKey:      cfg.OCR.APIKey,
		GeminiKeys:  cfg.LLM.GeminiKeys,
		Headers:     cfg.LLM.Headers,
		Temperature: cfg.LLM.Temperature,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create ocr provider: %w", err)
	}

	store, err := artifact.New(cfg.Storage.BaseDir, cfg.Storage.LineageDB, log)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	exec := executor.New()
	rt := router.New(
		media.New(cfg.FFmpeg.BinaryPath, exec, log),
		transcribe.New(cfg.Whisper, exec, log),
		extract.New(ocr.New(vision, cfg.OCR.Model, log), log),
		cfg.Whisper.Language,
		log,
	)

	p := pipeline.New(pipeline.Deps{
		Router:      rt,
		Generator:   provider,
		Compiler:    compiler.New(latexPath, exec, log),
		Synthesizer: tts.NewHTTP(cfg.TTS, os.Getenv("TTS_API_KEY"), nil, log),
		Fetcher:     fetch.New(cfg.Fetcher.BinaryPath, exec, log),
		Exporter:    export.New(log),
		Store:       store,
	}, pipeline.OptionsFromConfig(cfg), log)

	return &app{
		cfg:      cfg,
		store:    store,
		provider: provider,
		pipeline: p,
		logger:   log,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
