package transcribe

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrProviderUnavailable marks failures where the engine could not be reached
// or did not run (connection refused, 5xx, missing binary).
var ErrProviderUnavailable = errors.New("transcription provider unavailable")

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// ValidateSegments checks start <= end for each segment and non-decreasing starts.
func ValidateSegments(segments []Segment) error {
	for i, s := range segments {
		if s.Start > s.End {
			return fmt.Errorf("segment %d: start %.3f after end %.3f", i, s.Start, s.End)
		}
		if i > 0 && segments[i-1].Start > s.Start {
			return fmt.Errorf("segment %d: start %.3f before previous start %.3f", i, s.Start, segments[i-1].Start)
		}
	}
	return nil
}

// normalize orders segments by start time, clamps inverted ranges
// and trims text. Providers call it before returning.
func normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.End < s.Start {
			s.End = s.Start
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// joinSegments rebuilds full text from segments when the provider returns none.
func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}
