package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// extractDOCX emits one block with the non-empty paragraphs of the body,
// followed by OCR of every inline picture in document order.
func (e *implExtractor) extractDOCX(ctx context.Context, p string) (string, error) {
	pkg, err := openPackage(p)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	paragraphs, images, err := parseDocument(pkg)
	if err != nil {
		return "", err
	}

	var transcriptions []string
	if len(images) > 0 {
		rels, err := pkg.rels(documentPart)
		if err != nil {
			e.logger.Warn(ctx, "Failed to read document relationships: %v", err)
			rels = map[string]string{}
		}
		for _, rid := range images {
			transcriptions = append(transcriptions, e.transcribePart(ctx, pkg, rels, rid))
		}
	}

	if len(paragraphs) == 0 && len(transcriptions) == 0 {
		return "", nil
	}
	return block("--- Document ---", strings.Join(paragraphs, "\n"), transcriptions), nil
}

func parseDocument(pkg *ooxmlPackage) ([]string, []string, error) {
	dec, closeFn, err := pkg.decoder(documentPart)
	if err != nil {
		return nil, nil, err
	}
	defer closeFn()

	var (
		paragraphs []string
		images     []string
		current    strings.Builder
		depth      int
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				// Text boxes nest paragraphs; keep them inside the outer one.
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			case "blip":
				if rid := relAttr(t, "embed"); rid != "" {
					images = append(images, rid)
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			}
		}
	}

	return paragraphs, images, nil
}
