package pipeline

import (
	"strings"
	"unicode"
)

const fence = "```"

// StripFences removes code-fence markers wrapping a generated document. An
// opening fence loses its language tag ("```latex", "```tex", "```text"), and
// only the start and end of the text are touched, so backticks inside the
// document survive. Applying it to its own output is a no-op.
func StripFences(src string) string {
	s := strings.TrimSpace(src)
	for {
		next := stripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripOnce(s string) string {
	if rest, ok := strings.CutPrefix(s, fence); ok {
		s = dropTag(rest)
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// dropTag removes the language tag right after an opening fence. The tag ends
// at the first whitespace, so "```text" is never read as "```tex" plus "t".
// Anything that is not a plain identifier is left alone as document content.
func dropTag(s string) string {
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	if !isTag(s[:end]) {
		return s
	}
	return s[end:]
}

func isTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '+' && r != '_' {
			return false
		}
	}
	return true
}
