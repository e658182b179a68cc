package export

import "github.com/nguyentantai21042004/study-flow/internal/logger"

type implExporter struct {
	logger logger.Logger
}

func New(log logger.Logger) Exporter {
	return &implExporter{logger: log}
}
