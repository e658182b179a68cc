package llm

import (
	"iter"
	"strings"
)

// Stream is a single-use, finite sequence of text fragments from one upstream
// call. Fragments can be consumed incrementally with Next or All, and Collect
// drains whatever is left. Every fragment handed out is also kept in an
// internal buffer, so Collect after partial iteration returns the full text.
// A Stream is not safe for concurrent use.
type Stream struct {
	next func() (string, error, bool)
	stop func()
	buf  strings.Builder
	err  error
	done bool
}

// NewStream wraps seq. The upstream work starts on the first Next.
func NewStream(seq iter.Seq2[string, error]) *Stream {
	next, stop := iter.Pull2(seq)
	return &Stream{next: next, stop: stop}
}

// StreamOf returns a Stream over fixed fragments.
func StreamOf(fragments ...string) *Stream {
	return NewStream(func(yield func(string, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
	})
}

// Next returns the next fragment. It returns false once the sequence is
// exhausted or failed; check Err afterwards.
func (s *Stream) Next() (string, bool) {
	if s.done {
		return "", false
	}
	frag, err, ok := s.next()
	if !ok {
		s.finish(nil)
		return "", false
	}
	if err != nil {
		s.finish(err)
		return "", false
	}
	s.buf.WriteString(frag)
	return frag, true
}

// All ranges over the remaining fragments. A failure is yielded once as the
// final element. Breaking out early leaves the rest available to Collect.
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			frag, ok := s.Next()
			if !ok {
				if s.err != nil {
					yield("", s.err)
				}
				return
			}
			if !yield(frag, nil) {
				return
			}
		}
	}
}

// Collect drains the stream and returns every fragment seen, including the
// ones already consumed through Next or All.
func (s *Stream) Collect() (string, error) {
	for {
		if _, ok := s.Next(); !ok {
			break
		}
	}
	return s.buf.String(), s.err
}

// Text returns what has been received so far.
func (s *Stream) Text() string {
	return s.buf.String()
}

func (s *Stream) Err() error {
	return s.err
}

// Close stops the upstream without reading further fragments.
func (s *Stream) Close() {
	if !s.done {
		s.finish(nil)
	}
}

func (s *Stream) finish(err error) {
	s.done = true
	s.err = err
	s.stop()
}
