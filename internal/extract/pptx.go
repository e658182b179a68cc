package extract

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/study-flow/internal/ocr"
)

const presentationPart = "ppt/presentation.xml"

var reSlidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// slideContent is what one slide yields, in shape order.
type slideContent struct {
	texts  []string
	images []string // relationship ids of picture blips
}

func (e *implExtractor) extractPPTX(ctx context.Context, p string) (string, error) {
	pkg, err := openPackage(p)
	if err != nil {
		return "", err
	}
	defer pkg.Close()

	slides, err := slideOrder(pkg)
	if err != nil {
		return "", err
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: presentation has no slides", ErrExtractionFailed)
	}

	blocks := make([]string, 0, len(slides))
	for i, slidePath := range slides {
		content, err := parseSlide(pkg, slidePath)
		if err != nil {
			e.logger.Warn(ctx, "Failed to parse slide %d: %v", i+1, err)
			blocks = append(blocks, block(fmt.Sprintf("--- Slide %d ---", i+1), "[Slide Error: "+err.Error()+"]", nil))
			continue
		}

		rels, err := pkg.rels(slidePath)
		if err != nil {
			e.logger.Warn(ctx, "Failed to read relationships of slide %d: %v", i+1, err)
			rels = map[string]string{}
		}

		var transcriptions []string
		for _, rid := range content.images {
			transcriptions = append(transcriptions, e.transcribePart(ctx, pkg, rels, rid))
		}

		blocks = append(blocks, block(fmt.Sprintf("--- Slide %d ---", i+1), strings.Join(content.texts, "\n"), transcriptions))
	}

	return strings.Join(blocks, blockSep), nil
}

// transcribePart OCRs one embedded media part; any failure lands in the slot as a marker.
func (e *implExtractor) transcribePart(ctx context.Context, pkg *ooxmlPackage, rels map[string]string, rid string) string {
	target, ok := rels[rid]
	if !ok {
		return ocr.Marker(fmt.Errorf("image relationship %s not found", rid))
	}
	data, err := pkg.read(target)
	if err != nil {
		return ocr.Marker(err)
	}
	return e.ocr.Transcribe(ctx, data, ocr.MimeType(path.Ext(target)))
}

// slideOrder lists slide parts in presentation order (p:sldIdLst). Without a
// presentation part it falls back to numeric slideN.xml order.
func slideOrder(pkg *ooxmlPackage) ([]string, error) {
	if !pkg.has(presentationPart) {
		return slidesByNumber(pkg), nil
	}

	rels, err := pkg.rels(presentationPart)
	if err != nil {
		return nil, err
	}

	dec, closeFn, err := pkg.decoder(presentationPart)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var slides []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", presentationPart, err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "sldId" {
			continue
		}
		if target, ok := rels[relAttr(el, "id")]; ok {
			slides = append(slides, target)
		}
	}

	if len(slides) == 0 {
		return slidesByNumber(pkg), nil
	}
	return slides, nil
}

func slidesByNumber(pkg *ooxmlPackage) []string {
	type numbered struct {
		n    int
		name string
	}
	var found []numbered
	for name := range pkg.files {
		if m := reSlidePart.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			found = append(found, numbered{n, name})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.name)
	}
	return out
}

// parseSlide walks shapes in document order. Text comes from p:sp text
// bodies, images from a:blip references inside p:pic.
func parseSlide(pkg *ooxmlPackage, slidePath string) (*slideContent, error) {
	dec, closeFn, err := pkg.decoder(slidePath)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	content := &slideContent{}
	var (
		shapeDepth int // nesting of p:sp
		picDepth   int // nesting of p:pic
		inText     bool
		para       strings.Builder
		paras      []string
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", slidePath, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				shapeDepth++
				if shapeDepth == 1 {
					paras = paras[:0]
				}
			case "pic":
				picDepth++
			case "p":
				if shapeDepth > 0 {
					para.Reset()
				}
			case "t":
				inText = shapeDepth > 0
			case "br":
				if shapeDepth > 0 {
					para.WriteByte('\n')
				}
			case "blip":
				if picDepth > 0 {
					if rid := relAttr(t, "embed"); rid != "" {
						content.images = append(content.images, rid)
					}
				}
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if shapeDepth > 0 {
					paras = append(paras, para.String())
				}
			case "pic":
				picDepth--
			case "sp":
				shapeDepth--
				if shapeDepth == 0 {
					if text := strings.TrimSpace(strings.Join(paras, "\n")); text != "" {
						content.texts = append(content.texts, text)
					}
				}
			}
		}
	}

	return content, nil
}
