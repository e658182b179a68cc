package ocr

import (
	"github.com/nguyentantai21042004/study-flow/internal/llm"
	"github.com/nguyentantai21042004/study-flow/internal/logger"
)

type implEngine struct {
	vision llm.Vision
	model  string
	logger logger.Logger
}

// New creates an Engine backed by a vision-capable model.
func New(vision llm.Vision, model string, log logger.Logger) Engine {
	return &implEngine{
		vision: vision,
		model:  model,
		logger: log,
	}
}
