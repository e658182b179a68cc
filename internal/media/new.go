package media

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type implConverter struct {
	binary   string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Converter that shells out to the ffmpeg binary at binaryPath.
func New(binaryPath string, exec executor.Executor, log logger.Logger) Converter {
	if binaryPath == "" {
		binaryPath = "ffmpeg"
	}
	return &implConverter{
		binary:   binaryPath,
		executor: exec,
		logger:   log,
	}
}
