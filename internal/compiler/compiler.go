package compiler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/study-flow/pkg/executor"
)

const logTailLines = 50

// Auxiliary outputs removed after a successful compile.
var auxExtensions = []string{".aux", ".log", ".out", ".toc", ".lof", ".lot"}

// CompilationError carries the tail of the compiler log.
type CompilationError struct {
	Log string
}

func (e *CompilationError) Error() string {
	return "compilation failed: no PDF produced\n" + e.Log
}

// Compile runs two passes. Success is decided only by the PDF existing after
// a pass, never by exit code, since warnings commonly produce a non-zero exit.
// If pass one produces nothing, pass two is skipped.
func (c *implCompiler) Compile(ctx context.Context, texPath, outputDir string) (string, error) {
	if _, err := os.Stat(texPath); err != nil {
		return "", fmt.Errorf("source not found: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	pdfPath := filepath.Join(outputDir, stem+".pdf")
	logPath := filepath.Join(outputDir, stem+".log")

	args := []string{
		"-interaction=nonstopmode",
		"-output-directory=" + outputDir,
		texPath,
	}
	// Subprocesses run to completion even if the caller goes away.
	runCtx := context.WithoutCancel(ctx)

	c.logger.Info(ctx, "Compiling %s (pass 1)", texPath)
	out, err := c.run(runCtx, args)
	if err != nil {
		return "", err
	}
	if !exists(pdfPath) {
		return "", &CompilationError{Log: logTail(logPath, out)}
	}

	c.logger.Info(ctx, "Compiling %s (pass 2)", texPath)
	out, err = c.run(runCtx, args)
	if err != nil {
		return "", err
	}
	if !exists(pdfPath) {
		return "", &CompilationError{Log: logTail(logPath, out)}
	}

	for _, ext := range auxExtensions {
		aux := filepath.Join(outputDir, stem+ext)
		if err := os.Remove(aux); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug(ctx, "Failed to remove %s: %v", aux, err)
		}
	}

	c.logger.Info(ctx, "PDF created: %s", pdfPath)
	return pdfPath, nil
}

// run returns the compiler stdout. A non-zero exit is not an error here.
func (c *implCompiler) run(ctx context.Context, args []string) (string, error) {
	out, err := c.executor.Execute(ctx, c.binary, args...)
	if err != nil {
		var exitErr *executor.ExitError
		if errors.As(err, &exitErr) {
			c.logger.Warn(ctx, "%s exited with code %d", c.binary, exitErr.ExitCode)
			return exitErr.Stdout, nil
		}
		return "", &CompilationError{Log: err.Error()}
	}
	return out, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// logTail returns the last lines of the .log file, or of fallback when there is none.
func logTail(logPath, fallback string) string {
	text := fallback
	if data, err := os.ReadFile(logPath); err == nil {
		text = string(data)
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > logTailLines {
		lines = lines[len(lines)-logTailLines:]
	}
	return strings.Join(lines, "\n")
}
