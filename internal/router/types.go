package router

import (
	"errors"

	"github.com/nguyentantai21042004/study-flow/internal/transcribe"
)

var (
	// ErrUnsupportedFormat is returned for extensions outside both branches.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnhandledKind is returned by consumers that receive a Result variant they do not handle.
	ErrUnhandledKind = errors.New("unhandled routed result kind")
)

type Kind int

const (
	KindMedia Kind = iota + 1
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindMedia:
		return "media"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Result is the output of Route. It is implemented only by *MediaResult and
// *DocumentResult; consumers switch on the concrete type.
type Result interface {
	Kind() Kind
	Source() string
	isResult()
}

type MediaResult struct {
	FullText            string
	Language            string
	Segments            []transcribe.Segment
	NormalizedAudioPath string
	SourcePath          string
}

func (*MediaResult) Kind() Kind       { return KindMedia }
func (r *MediaResult) Source() string { return r.SourcePath }
func (*MediaResult) isResult()        {}

type DocumentResult struct {
	ExtractedText string
	SourcePath    string
}

func (*DocumentResult) Kind() Kind       { return KindDocument }
func (r *DocumentResult) Source() string { return r.SourcePath }
func (*DocumentResult) isResult()        {}

// Text returns the routed text of either variant.
func Text(r Result) (string, error) {
	switch v := r.(type) {
	case *MediaResult:
		return v.FullText, nil
	case *DocumentResult:
		return v.ExtractedText, nil
	default:
		return "", ErrUnhandledKind
	}
}
