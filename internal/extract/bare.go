package extract

import (
	"regexp"
	"strings"

	"github.com/nao1215/linkguard/internal/model"
)

// bareURLPattern matches http(s) URLs in prose. Angle brackets, quotes,
// backticks and table pipes terminate a URL.
var bareURLPattern = regexp.MustCompile("(?i)https?://[^\\s<>\"'`|]+")

// trailingPunctuation is stripped from the end of a bare URL.
const trailingPunctuation = ".,;:!?*_~'\""

// bareURLs returns URLs on the line that do not overlap a claimed span.
func bareURLs(line string, claimed []span) []found {
	var out []found
	for _, loc := range bareURLPattern.FindAllStringIndex(line, -1) {
		s := span{start: loc[0], end: loc[1]}
		if overlapsAny(s, claimed) {
			continue
		}
		u := trimURL(line[loc[0]:loc[1]])
		if i := strings.Index(u, "://"); i < 0 || i+3 >= len(u) {
			continue
		}
		out = append(out, found{col: loc[0], raw: u, syntax: model.SyntaxBareURL})
	}
	return out
}

// trimURL drops trailing sentence punctuation and closing brackets that have
// no opening partner inside the URL.
func trimURL(u string) string {
	for {
		trimmed := strings.TrimRight(u, trailingPunctuation)
		switch {
		case strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, ")") > strings.Count(trimmed, "("):
			trimmed = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, "]") && strings.Count(trimmed, "]") > strings.Count(trimmed, "["):
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == u {
			return u
		}
		u = trimmed
	}
}

func overlapsAny(s span, claimed []span) bool {
	for _, c := range claimed {
		if s.overlaps(c) {
			return true
		}
	}
	return false
}
