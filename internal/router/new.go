package router

import (
	"github.com/nguyentantai21042004/study-flow/internal/extract"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/media"
	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
)

type implRouter struct {
	converter   media.Converter
	transcriber transcribe.Engine
	extractor   extract.Extractor
	language    string
	logger      logger.Logger
}

// New creates a Router. language is passed to the transcription engine.
func New(conv media.Converter, engine transcribe.Engine, ext extract.Extractor, language string, log logger.Logger) Router {
	return &implRouter{
		converter:   conv,
		transcriber: engine,
		extractor:   ext,
		language:    language,
		logger:      log,
	}
}
