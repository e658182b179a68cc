package extract

import "context"

// Extractor turns a document or image into page/slide structured text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}
