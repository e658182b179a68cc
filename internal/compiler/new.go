package compiler

import (
	"fmt"
	"os/exec"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

type implCompiler struct {
	binary   string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Compiler running the LaTeX binary at binaryPath.
func New(binaryPath string, exec executor.Executor, log logger.Logger) Compiler {
	return &implCompiler{
		binary:   binaryPath,
		executor: exec,
		logger:   log,
	}
}

// LookPath resolves the configured compiler once at startup.
func LookPath(binaryPath string) (string, error) {
	p, err := exec.LookPath(binaryPath)
	if err != nil {
		return "", fmt.Errorf("latex compiler %q not found: set latex.compiler_path or PDFLATEX_PATH: %w", binaryPath, err)
	}
	return p, nil
}
