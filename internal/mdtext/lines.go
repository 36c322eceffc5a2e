package mdtext

import (
	"regexp"
	"strings"
)

var (
	// fenceOpenPattern matches an opening fence: up to three spaces of
	// indentation, three or more backticks or tildes, an optional info string.
	fenceOpenPattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")

	// fenceClosePattern matches a closing fence candidate.
	fenceClosePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*$")
)

// Line is one line of a document.
type Line struct {
	// Num is the 1-based line number.
	Num int
	// Text is the line without its terminator.
	Text string
	// Code is true for fence delimiter lines and everything between them.
	Code bool
}

// Split returns every line of text with its fence state.
// A fence closes only on a line made of the same marker character repeated
// at least as often as in the opening line; an unterminated fence extends to
// the end of the text.
func Split(text string) []Line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}

	lines := make([]Line, 0, len(raw))
	fence := ""
	for i, s := range raw {
		l := Line{Num: i + 1, Text: s}
		switch {
		case fence == "":
			if m := fenceOpenPattern.FindStringSubmatch(s); m != nil && !invalidInfo(m[1], m[2]) {
				fence = m[1]
				l.Code = true
			}
		default:
			l.Code = true
			if m := fenceClosePattern.FindStringSubmatch(s); m != nil && closes(fence, m[1]) {
				fence = ""
			}
		}
		lines = append(lines, l)
	}
	return lines
}

// Prose returns only the lines outside fenced code.
func Prose(text string) []Line {
	all := Split(text)
	out := all[:0]
	for _, l := range all {
		if !l.Code {
			out = append(out, l)
		}
	}
	return out
}

// invalidInfo reports whether a backtick fence carries an info string with a
// backtick, which makes the line an inline code span instead of a fence.
func invalidInfo(marker, info string) bool {
	return marker[0] == '`' && strings.Contains(info, "`")
}

func closes(open, candidate string) bool {
	return candidate[0] == open[0] && len(candidate) >= len(open)
}

// MaskCodeSpans replaces inline code spans, backticks included, with spaces.
// Byte offsets of the remaining text are preserved. An unmatched backtick run
// is left as is.
func MaskCodeSpans(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}
	b := []byte(s)
	i := 0
	for i < len(b) {
		if b[i] != '`' {
			i++
			continue
		}
		start := i
		for i < len(b) && b[i] == '`' {
			i++
		}
		n := i - start
		end := findRun(b, i, n)
		if end < 0 {
			continue
		}
		for j := start; j < end+n; j++ {
			b[j] = ' '
		}
		i = end + n
	}
	return string(b)
}

// MaskComments replaces HTML comments, delimiters included, with spaces.
// open reports whether the line starts inside a comment left open by an
// earlier line; the result reports whether one is still open at its end.
// Byte offsets are preserved.
func MaskComments(s string, open bool) (string, bool) {
	if !open && !strings.Contains(s, "<!--") {
		return s, false
	}
	b := []byte(s)
	i := 0
	for i < len(b) {
		start := i
		if !open {
			at := strings.Index(s[i:], "<!--")
			if at < 0 {
				break
			}
			start = i + at
			i = start + len("<!--")
		}
		end := strings.Index(s[i:], "-->")
		if end < 0 {
			blank(b[start:])
			return string(b), true
		}
		i += end + len("-->")
		blank(b[start:i])
		open = false
	}
	return string(b), false
}

func blank(b []byte) {
	for i := range b {
		b[i] = ' '
	}
}

// findRun returns the offset of the next run of exactly n backticks at or
// after from, or -1.
func findRun(b []byte, from, n int) int {
	for i := from; i < len(b); {
		if b[i] != '`' {
			i++
			continue
		}
		start := i
		for i < len(b) && b[i] == '`' {
			i++
		}
		if i-start == n {
			return start
		}
	}
	return -1
}
