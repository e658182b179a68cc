package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/nguyentantai21042004/study-flow/internal/logger"
	"github.com/nguyentantai21042004/study-flow/internal/ocr"
)

const renderDPI = 150

// pageSource is a paginated document. Pages are 0-indexed.
type pageSource interface {
	NumPage() int
	Text(page int) (string, error)
	HasImages(page int) bool
	RenderPNG(page int) ([]byte, error)
	Close() error
}

func (e *implExtractor) extractPDF(ctx context.Context, path string) (string, error) {
	src, err := e.openPDF(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if src.NumPage() == 0 {
		return "", fmt.Errorf("%w: document has no pages", ErrExtractionFailed)
	}
	return e.walkPages(ctx, src), nil
}

// walkPages emits one block per page: direct text first, then OCR of the
// rendered page when it has images or no text layer.
func (e *implExtractor) walkPages(ctx context.Context, src pageSource) string {
	blocks := make([]string, 0, src.NumPage())

	for n := 0; n < src.NumPage(); n++ {
		text, err := src.Text(n)
		if err != nil {
			e.logger.Warn(ctx, "Failed to read text layer of page %d: %v", n+1, err)
		}
		text = strings.TrimSpace(text)

		var transcriptions []string
		if src.HasImages(n) || text == "" {
			png, err := src.RenderPNG(n)
			if err != nil {
				transcriptions = append(transcriptions, ocr.Marker(fmt.Errorf("render page: %w", err)))
			} else {
				transcriptions = append(transcriptions, e.ocr.Transcribe(ctx, png, "image/png"))
			}
		}

		blocks = append(blocks, block(fmt.Sprintf("--- PDF Page %d ---", n+1), text, transcriptions))
	}

	return strings.Join(blocks, blockSep)
}

// fitzPages reads text and renders with MuPDF; image detection comes from pdfcpu.
type fitzPages struct {
	doc *fitz.Document
	// imagePages is nil when pdfcpu could not parse the file; every page is
	// then treated as possibly containing images.
	imagePages map[int]bool
}

func openFitzPages(path string, log logger.Logger) (pageSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	imagePages, err := detectImagePages(path)
	if err != nil {
		log.Warn(context.Background(), "pdfcpu could not inspect %s, rendering every page: %v", path, err)
	}

	return &fitzPages{doc: doc, imagePages: imagePages}, nil
}

func (f *fitzPages) NumPage() int { return f.doc.NumPage() }

func (f *fitzPages) Text(page int) (string, error) { return f.doc.Text(page) }

func (f *fitzPages) HasImages(page int) bool {
	if f.imagePages == nil {
		return true
	}
	return f.imagePages[page]
}

func (f *fitzPages) RenderPNG(page int) ([]byte, error) {
	return f.doc.ImagePNG(page, renderDPI)
}

func (f *fitzPages) Close() error { return f.doc.Close() }

// detectImagePages returns the 0-indexed pages that reference image XObjects.
func detectImagePages(path string) (map[int]bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(file, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make(map[int]bool, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(pdfCtx, pageNr)) > 0 {
			pages[pageNr-1] = true
		}
	}
	return pages, nil
}
