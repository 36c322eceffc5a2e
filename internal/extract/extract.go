package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/linkguard/internal/mdtext"
	"github.com/nao1215/linkguard/internal/model"
)

// schemePattern matches a URL scheme prefix such as "https:" or "mailto:".
var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// found is one match on a line before it becomes a model.Reference.
type found struct {
	col    int
	raw    string
	text   string
	syntax model.Syntax
}

// span is a half-open byte range of a line already claimed by a link.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Extract returns the references of doc ordered by line, then column.
// Fenced code, code spans and HTML comments yield nothing.
func Extract(doc *model.Document) []model.Reference {
	var refs []model.Reference
	inComment := false
	for _, line := range mdtext.Prose(doc.Text) {
		var text string
		text, inComment = mdtext.MaskComments(mdtext.MaskCodeSpans(line.Text), inComment)
		for _, f := range scanLine(text) {
			refs = append(refs, model.Reference{
				Source:     doc.Rel,
				SourcePath: doc.Path,
				Line:       line.Num,
				Column:     f.col,
				Raw:        f.raw,
				Text:       f.text,
				Syntax:     f.syntax,
			})
		}
	}
	return refs
}

// scanLine extracts every reference on a single prose line whose code
// spans and comments are already masked.
func scanLine(masked string) []found {
	if !strings.ContainsAny(masked, "[<:") {
		return nil
	}

	var out []found
	var claimed []span

	if f, s, ok := definition(masked); ok {
		claimed = append(claimed, s)
		if navigable(f.raw) {
			out = append(out, f)
		}
	} else {
		links, spans := inlineLinks(masked)
		claimed = append(claimed, spans...)
		for _, f := range links {
			if navigable(f.raw) {
				out = append(out, f)
			}
		}
	}

	attrs, spans := htmlAttributes(masked)
	claimed = append(claimed, spans...)
	for _, f := range attrs {
		if navigable(f.raw) {
			out = append(out, f)
		}
	}

	out = append(out, bareURLs(masked, claimed)...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].col < out[j].col })
	return out
}

// cleanTarget unwraps an angle-bracket target or cuts an optional title
// off the destination.
func cleanTarget(dest string) string {
	d := strings.TrimSpace(dest)
	if strings.HasPrefix(d, "<") {
		if end := strings.IndexByte(d, '>'); end > 0 {
			return strings.TrimSpace(d[1:end])
		}
	}
	if cut := strings.IndexAny(d, " \t"); cut >= 0 {
		d = d[:cut]
	}
	return d
}

// navigable reports whether a target is something the verifier can check:
// not empty, not a bare "#", and either scheme-less or http(s).
func navigable(target string) bool {
	if target == "" || target == "#" {
		return false
	}
	if m := schemePattern.FindString(target); m != "" {
		scheme := strings.ToLower(strings.TrimSuffix(m, ":"))
		return scheme == "http" || scheme == "https"
	}
	return true
}
