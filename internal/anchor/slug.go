package anchor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	hyphenRunPattern  = regexp.MustCompile(`-{2,}`)
	headingPattern    = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.*)$`)
	emptyHeadingLevel = regexp.MustCompile(`^ {0,3}#{1,6}[ \t]*$`)
)

// Slugify computes the anchor slug of a heading text. It returns an empty
// string when nothing usable remains; such headings produce no anchor.
// Slugify is idempotent: Slugify(Slugify(s)) == Slugify(s).
func Slugify(text string) string {
	s := norm.NFKC.String(text)
	s = cases.Lower(language.Und).String(s)
	s = htmlTagPattern.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	s = strings.Join(strings.FieldsFunc(b.String(), unicode.IsSpace), "-")
	s = strings.ReplaceAll(s, "_", "")
	s = hyphenRunPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseHeading reports whether line is an ATX heading and returns its level
// and text with closing # decoration removed.
func ParseHeading(line string) (level int, text string, ok bool) {
	if emptyHeadingLevel.MatchString(line) {
		return 0, "", false
	}
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	text = strings.TrimSpace(m[2])
	text = strings.TrimSpace(strings.TrimRight(text, "#"))
	if text == "" {
		return 0, "", false
	}
	return len(m[1]), text, true
}
