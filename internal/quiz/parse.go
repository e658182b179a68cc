package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// wire types use pointers so a missing key can be told apart from a zero value.
type wireDocument struct {
	Title          *string         `json:"quiz_title"`
	TotalQuestions *int            `json:"total_questions"`
	Questions      *[]wireQuestion `json:"questions"`
}

type wireQuestion struct {
	ID          *int              `json:"id"`
	Prompt      *string           `json:"question"`
	Options     map[string]string `json:"options"`
	Correct     *string           `json:"correct_answer"`
	Explanation *string           `json:"explanation"`
	Difficulty  *string           `json:"difficulty"`
}

// Parse strips enclosing code fences from raw and decodes it strictly. Any
// unknown or missing key, an option set other than exactly A-D, a correct
// answer outside A-D, or ids that are not 1..n in order yields *SchemaError.
// Nothing is repaired or defaulted.
func Parse(raw string) (*Document, error) {
	fail := func(format string, args ...any) (*Document, error) {
		return nil, &SchemaError{Raw: raw, Reason: fmt.Sprintf(format, args...)}
	}

	body := StripFences(raw)
	if body == "" {
		return fail("empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var w wireDocument
	if err := dec.Decode(&w); err != nil {
		return fail("decode: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fail("trailing data after JSON object")
	}

	if w.Title == nil {
		return fail("missing quiz_title")
	}
	if w.TotalQuestions == nil {
		return fail("missing total_questions")
	}
	if w.Questions == nil {
		return fail("missing questions")
	}
	if len(*w.Questions) == 0 {
		return fail("no questions")
	}

	doc := &Document{Title: *w.Title}
	for i, wq := range *w.Questions {
		q, reason := convert(wq, i+1)
		if reason != "" {
			return fail("question %d: %s", i+1, reason)
		}
		doc.Questions = append(doc.Questions, q)
	}

	doc.TotalQuestions = len(doc.Questions)
	if *w.TotalQuestions != doc.TotalQuestions {
		return fail("total_questions is %d but %d questions were given", *w.TotalQuestions, doc.TotalQuestions)
	}
	return doc, nil
}

func convert(wq wireQuestion, wantID int) (Question, string) {
	switch {
	case wq.ID == nil:
		return Question{}, "missing id"
	case *wq.ID != wantID:
		return Question{}, fmt.Sprintf("id is %d, want %d", *wq.ID, wantID)
	case wq.Prompt == nil || strings.TrimSpace(*wq.Prompt) == "":
		return Question{}, "missing question"
	case wq.Options == nil:
		return Question{}, "missing options"
	case wq.Correct == nil:
		return Question{}, "missing correct_answer"
	case wq.Explanation == nil:
		return Question{}, "missing explanation"
	case wq.Difficulty == nil:
		return Question{}, "missing difficulty"
	}

	if len(wq.Options) != len(Options) {
		return Question{}, fmt.Sprintf("has %d options, want 4", len(wq.Options))
	}
	opts := make(map[Option]string, len(Options))
	for k, v := range wq.Options {
		o := Option(k)
		if !o.Valid() {
			return Question{}, fmt.Sprintf("option key %q outside A-D", k)
		}
		opts[o] = v
	}

	correct := Option(*wq.Correct)
	if !correct.Valid() {
		return Question{}, fmt.Sprintf("correct_answer %q outside A-D", *wq.Correct)
	}

	return Question{
		ID:          *wq.ID,
		Prompt:      *wq.Prompt,
		Options:     opts,
		Correct:     correct,
		Explanation: *wq.Explanation,
		Difficulty:  *wq.Difficulty,
	}, ""
}

// StripFences removes a ```json or bare ``` fence wrapping the whole text.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Marshal renders doc in the wire format with indentation.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
