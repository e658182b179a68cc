package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExitError is returned when a command ran but exited non-zero.
// Stdout and Stderr hold everything the command wrote.
type ExitError struct {
	Name     string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command '%s' exited with code %d\nstderr: %s", e.Name, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("command '%s' exited with code %d", e.Name, e.ExitCode)
}

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return e.run(ctx, "", name, args)
}

// ExecuteInDir runs an external command in a specific working directory
func (e *implExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	return e.run(ctx, dir, name, args)
}

func (e *implExecutor) run(ctx context.Context, dir, name string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &ExitError{
				Name:     name,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   strings.TrimSpace(stderr.String()),
			}
		}
		// Command never started (binary missing, permission denied, ...)
		return "", fmt.Errorf("command '%s' failed: %w", name, err)
	}

	return stdout.String(), nil
}
