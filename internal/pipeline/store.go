package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/artifact"
)

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}
	return text, nil
}

// write persists content as a new artifact under root and returns its path.
func (p *implPipeline) write(root artifact.Root, n artifact.Name, content []byte) (string, error) {
	path, err := p.store.NewPath(root, n)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		discard(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// discard drops a path reserved by NewPath whose content was never written.
func discard(path string) {
	os.Remove(path)
}

// record adds a lineage entry. The artifact is already on disk, so a failure
// here is logged and does not fail the stage.
func (p *implPipeline) record(ctx context.Context, stage Stage, key, source string) {
	if err := p.store.Record(artifact.Artifact{Key: key, Stage: string(stage), Source: source}); err != nil {
		p.logger.Warn(ctx, "Failed to record lineage for %s: %v", key, err)
	}
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
