package fetch

import (
	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type implYTDLP struct {
	binary   string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Fetcher backed by the yt-dlp binary.
func New(binaryPath string, exec executor.Executor, log logger.Logger) Fetcher {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &implYTDLP{
		binary:   binaryPath,
		executor: exec,
		logger:   log,
	}
}
