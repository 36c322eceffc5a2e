package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/linkguard/internal/model"
)

// linkAttributes are the attributes whose values are link targets.
var linkAttributes = map[string]bool{
	"href": true,
	"src":  true,
}

// htmlAttributes returns href and src values of the tags on a line, and the
// spans of the tags that carried them.
func htmlAttributes(line string) ([]found, []span) {
	if !strings.Contains(line, "<") {
		return nil, nil
	}

	var out []found
	var spans []span
	offset := 0
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out, spans
		}
		raw := len(z.Raw())
		start := offset
		offset += raw

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		claimed := false
		for _, attr := range tok.Attr {
			if !linkAttributes[attr.Key] {
				continue
			}
			val := strings.TrimSpace(attr.Val)
			out = append(out, found{
				col:    start + attrOffset(line[start:start+raw], attr.Key),
				raw:    val,
				text:   tok.Data,
				syntax: model.SyntaxHTML,
			})
			claimed = true
		}
		if claimed {
			spans = append(spans, span{start: start, end: start + raw})
		}
	}
}

// attrOffset locates key= inside a raw tag so that two attributes of one
// tag keep their source order.
func attrOffset(rawTag, key string) int {
	if i := strings.Index(strings.ToLower(rawTag), key+"="); i >= 0 {
		return i
	}
	return 0
}
