package pipeline

import (
	"github.com/nguyentantai21042004/study-flow/internal/artifact"
	"github.com/nguyentantai21042004/study-flow/internal/compiler"
	"github.com/nguyentantai21042004/study-flow/internal/config"
	"github.com/nguyentantai21042004/study-flow/internal/export"
	"github.com/nguyentantai21042004/study-flow/internal/fetch"
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/router"
	"github.com/nguyentantai21042004/study-flow/internal/tts"
)

// Deps are the collaborators a Pipeline drives. Fetcher and Exporter may be
// nil when the corresponding stage is not used.
type Deps struct {
	Router      router.Router
	Generator   llm.Generator
	Compiler    compiler.Compiler
	Synthesizer tts.Synthesizer
	Fetcher     fetch.Fetcher
	Exporter    export.Exporter
	Store       artifact.Store
}

// Options holds model names and synthesis defaults.
type Options struct {
	DocumentModel string
	ScriptModel   string
	SummaryModel  string
	QuizModel     string
	ContextWindow int
	Voice         string
	Speed         float64
}

// OptionsFromConfig picks the pipeline settings out of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DocumentModel: cfg.LLM.DocumentModel,
		ScriptModel:   cfg.LLM.ScriptModel,
		SummaryModel:  cfg.LLM.SummaryModel,
		QuizModel:     cfg.LLM.QuizModel,
		ContextWindow: cfg.LLM.ContextWindow,
		Voice:         cfg.TTS.Voice,
		Speed:         cfg.TTS.Speed,
	}
}

type implPipeline struct {
	router      router.Router
	generator   llm.Generator
	compiler    compiler.Compiler
	synthesizer tts.Synthesizer
	fetcher     fetch.Fetcher
	exporter    export.Exporter
	store       artifact.Store
	opts        Options
	logger      logger.Logger
}

func New(d Deps, opts Options, log logger.Logger) Pipeline {
	if opts.Voice == "" {
		opts.Voice = "af_bella"
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	return &implPipeline{
		router:      d.Router,
		generator:   d.Generator,
		compiler:    d.Compiler,
		synthesizer: d.Synthesizer,
		fetcher:     d.Fetcher,
		exporter:    d.Exporter,
		store:       d.Store,
		opts:        opts,
		logger:      log,
	}
}
