package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/pipeline"
)

// stageError names the failed stage and lists what was kept so the user can
// rerun just that step.
func stageError(out pipeline.Outcome, err error) error {
	if len(out.Artifacts) == 0 {
		return fmt.Errorf("%s stage failed: %w", out.Stage, err)
	}
	return fmt.Errorf("%s stage failed (kept %s): %w", out.Stage, strings.Join(out.Artifacts, ", "), err)
}

func printArtifacts(w io.Writer, out pipeline.Outcome) {
	for _, p := range out.Artifacts {
		marker := " "
		if p == out.ArtifactKey {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, p)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
