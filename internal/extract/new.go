package extract

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/ocr"
)

type implExtractor struct {
	ocr    ocr.Engine
	logger logger.Logger
	// openPDF is swapped in tests to avoid needing real PDF fixtures.
	openPDF func(path string) (pageSource, error)
}

// New creates an Extractor that sends embedded images to engine.
func New(engine ocr.Engine, log logger.Logger) Extractor {
	e := &implExtractor{
		ocr:    engine,
		logger: log,
	}
	e.openPDF = func(path string) (pageSource, error) {
		return openFitzPages(path, log)
	}
	return e
}
