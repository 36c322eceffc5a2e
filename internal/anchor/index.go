package anchor

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/linkguard/internal/mdtext"
	"github.com/nao1215/linkguard/internal/model"
)

// Index is the anchor set of one document.
type Index struct {
	// Headings are the headings outside fenced code, in document order.
	Headings []model.Heading

	// Anchors are in document order; heading anchors first per line,
	// explicit HTML anchors after them.
	Anchors []model.Anchor

	set map[string]struct{}
}

// Build scans text and returns its anchor set.
func Build(text string) *Index {
	idx := &Index{set: make(map[string]struct{})}
	seen := make(map[string]int)

	for _, line := range mdtext.Prose(text) {
		if level, title, ok := ParseHeading(line.Text); ok {
			h := model.Heading{Level: level, Text: title, Line: line.Num}
			idx.Headings = append(idx.Headings, h)

			base := Slugify(title)
			if base != "" {
				slug := base
				if n := seen[base]; n > 0 {
					slug = base + "-" + strconv.Itoa(n)
				}
				seen[base]++
				idx.add(model.Anchor{Slug: slug, Heading: h})
			}
		}

		for _, id := range htmlAnchors(mdtext.MaskCodeSpans(line.Text)) {
			idx.add(model.Anchor{Slug: id})
		}
	}
	return idx
}

func (i *Index) add(a model.Anchor) {
	if _, dup := i.set[a.Slug]; dup {
		return
	}
	i.set[a.Slug] = struct{}{}
	i.Anchors = append(i.Anchors, a)
}

// Has reports whether fragment names an anchor of the document.
func (i *Index) Has(fragment string) bool {
	if i == nil {
		return false
	}
	_, ok := i.set[fragment]
	return ok
}

// Slugs returns the sorted anchor names.
func (i *Index) Slugs() []string {
	out := make([]string, 0, len(i.set))
	for s := range i.set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// htmlAnchors returns explicit anchor names declared on a line: any id
// attribute, and name attributes of <a> elements.
func htmlAnchors(line string) []string {
	if !strings.Contains(line, "<") {
		return nil
	}
	var ids []string
	z := html.NewTokenizer(strings.NewReader(line))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return ids
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		for _, attr := range tok.Attr {
			if attr.Val == "" {
				continue
			}
			if attr.Key == "id" || (attr.Key == "name" && tok.Data == "a") {
				ids = append(ids, attr.Val)
			}
		}
	}
}
