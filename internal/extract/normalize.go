package extract

import (
	"regexp"
	"strings"
)

var (
	reDisallowed  = regexp.MustCompile(`[^A-Za-z0-9\n:/\- ]`)
	reSpaceRun    = regexp.MustCompile(`[ \t]+`)
	reNewlineRun  = regexp.MustCompile(`\n+`)
	reDevNameTag  = regexp.MustCompile(`नाम\s*/\s*`)
	reMultiSpace  = regexp.MustCompile(`\s{2,}`)
	reAnyWhiteRun = regexp.MustCompile(`\s+`)
)

// Normalize strips OCR noise from raw text. Every rune outside
// [A-Za-z0-9\n:/- ] becomes a space, space runs and newline runs collapse to
// one, and the result is trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := reDisallowed.ReplaceAllString(raw, " ")
	s = reSpaceRun.ReplaceAllString(s, " ")
	s = reNewlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Lines splits normalized text into trimmed lines. With keepBlank the
// whitespace-only lines stay in place so line offsets match the source.
func Lines(normalized string, keepBlank bool) []string {
	if normalized == "" {
		return nil
	}
	parts := strings.Split(normalized, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" && !keepBlank {
			continue
		}
		out = append(out, p)
	}
	return out
}

// rawLines splits unnormalized text into trimmed, non-empty lines.
func rawLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(reMultiSpace.ReplaceAllString(s, " "))
}
