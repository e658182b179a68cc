package artifact

import (
	"io"
	"time"
)

// Root is a top-level namespace of the store.
type Root string

const (
	RootMedia      Root = "media"
	RootTranscript Root = "transcript"
	RootTTS        Root = "TTS"
	RootRender     Root = "render"
	RootQuiz       Root = "quiz"
)

// Name describes a new artifact file: <clean Base>[_<Tag>]_<YYYYmmdd_HHMMSS><Ext>.
type Name struct {
	Base string
	Tag  string
	Ext  string
}

// Artifact is one lineage record. Source is the key it was derived from,
// empty for raw inputs.
type Artifact struct {
	Key       string    `json:"key"`
	Stage     string    `json:"stage"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the date-partitioned artifact namespace plus its lineage index.
type Store interface {
	// Put returns <base>/<root>/<MM-YYYY>/<filename>, creating the partition if needed.
	Put(root Root, filename string) (string, error)
	// NewPath reserves a fresh path for n under root by creating it empty.
	// The caller overwrites it, or removes it when the stage fails.
	NewPath(root Root, n Name) (string, error)
	// List returns files under root, most recently modified first. When exts
	// is non-empty only those extensions are kept.
	List(root Root, exts ...string) ([]string, error)
	// SaveUpload writes r under the media root via a temp file and rename.
	SaveUpload(filename string, r io.Reader) (string, error)
	// Resolve maps a bare file name or a store-relative path to a path inside root.
	Resolve(root Root, name string) (string, error)

	Record(a Artifact) error
	Lookup(key string) (*Artifact, error)
	// Lineage walks Source references from key back to its raw input.
	Lineage(key string) ([]Artifact, error)

	Close() error
}
