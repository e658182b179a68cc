package compiler

import "context"

// Compiler typesets a source file into a PDF inside outputDir.
type Compiler interface {
	Compile(ctx context.Context, texPath, outputDir string) (string, error)
}
