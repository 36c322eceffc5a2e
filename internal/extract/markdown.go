package extract

import (
	"regexp"
	"strings"

	"github.com/nao1215/linkguard/internal/model"
)

// definitionPattern matches a reference definition "[label]: target".
// Footnote definitions ("[^1]: text") are not links.
var definitionPattern = regexp.MustCompile(`^ {0,3}\[([^\]^][^\]]*)\]:[ \t]*(<[^>]*>|\S+)`)

// definition matches a reference definition line.
func definition(line string) (found, span, bool) {
	loc := definitionPattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return found{}, span{}, false
	}
	return found{
		col:    loc[4],
		raw:    cleanTarget(line[loc[4]:loc[5]]),
		text:   line[loc[2]:loc[3]],
		syntax: model.SyntaxDefinition,
	}, span{start: 0, end: len(line)}, true
}

// inlineLinks finds [text](target) links on a line. Images are matched so
// that their span is claimed, but only links are returned. A link whose
// text is an image yields the outer link target.
func inlineLinks(line string) ([]found, []span) {
	var links []found
	var spans []span

	for i := 0; i+1 < len(line); i++ {
		if line[i] != ']' || line[i+1] != '(' || escaped(line, i) {
			continue
		}
		open := openingBracket(line, i)
		if open < 0 {
			continue
		}
		closing := closingParen(line, i+1)
		if closing < 0 {
			continue
		}

		image := open > 0 && line[open-1] == '!' && !escaped(line, open-1)
		start := open
		if image {
			start = open - 1
		}
		spans = append(spans, span{start: start, end: closing + 1})

		if !image {
			links = append(links, found{
				col:    open,
				raw:    cleanTarget(line[i+2 : closing]),
				text:   strings.TrimSpace(line[open+1 : i]),
				syntax: model.SyntaxInline,
			})
		}
		i = closing
	}
	return links, spans
}

// openingBracket walks back from the ']' at end to its matching '['.
func openingBracket(line string, end int) int {
	depth := 0
	for j := end - 1; j >= 0; j-- {
		if escaped(line, j) {
			continue
		}
		switch line[j] {
		case ']':
			depth++
		case '[':
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

// closingParen walks forward from the '(' at start to its matching ')'.
// Angle-bracket destinations may contain parentheses.
func closingParen(line string, start int) int {
	depth := 0
	inAngle := false
	angleAt := firstNonSpace(line, start+1)
	for j := start; j < len(line); j++ {
		if escaped(line, j) {
			continue
		}
		switch c := line[j]; {
		case c == '<' && j == angleAt:
			inAngle = true
		case c == '>' && inAngle:
			inAngle = false
		case inAngle:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func firstNonSpace(line string, from int) int {
	for j := from; j < len(line); j++ {
		if line[j] != ' ' && line[j] != '\t' {
			return j
		}
	}
	return len(line)
}

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func escaped(line string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
