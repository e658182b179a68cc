package export

import "context"

// Exporter renders plain or lightly formatted text as a Word document.
type Exporter interface {
	// Docx writes text to outputPath. Markdown-style headings, bullets and
	// **bold** are styled; timestamped transcript lines lose their time range.
	Docx(ctx context.Context, title, text, outputPath string) error
}
