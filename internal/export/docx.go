package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
	black     = "000000"
)

var (
	reHeading   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet    = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)
	reNumbered  = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	reTimeRange = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2} --> \d{2}:\d{2}:\d{2}\]\s*`)
	rePageMark  = regexp.MustCompile(`^--- (.+) ---$`)
)

func (e *implExporter) Docx(ctx context.Context, title, text, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), title, true, titleSize)

	var paragraphs int
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(reTimeRange.ReplaceAllString(strings.TrimSpace(line), ""))
		if trimmed == "" || trimmed == "---" {
			continue
		}
		paragraphs++

		if m := rePageMark.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[1], true, headingSize(2))
			continue
		}
		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		if reNumbered.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}

	e.logger.Info(ctx, "Exported %d paragraphs to %s", paragraphs, outputPath)
	return nil
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanInline(text)).Font(fontName).Size(size).Color(black)
	if bold {
		run.Bold(true)
	}
}

// addRichText splits on **bold** spans and emits alternating plain and bold runs.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanInline(part)).Font(fontName).Size(fontSize).Color(black)
		}
		if i < len(matches) {
			p.AddText(cleanInline(matches[i][1])).Font(fontName).Size(fontSize).Color(black).Bold(true)
		}
	}
}

func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
