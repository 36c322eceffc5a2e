package model

import (
	"path"
	"strings"
)

// DocKind distinguishes markdown documents, which carry anchors, from other
// text files.
type DocKind int

const (
	// KindText is any eligible file that is not markdown.
	KindText DocKind = iota
	// KindMarkdown is a markdown document.
	KindMarkdown
)

// String returns a human-readable representation of the kind.
func (k DocKind) String() string {
	if k == KindMarkdown {
		return "markdown"
	}
	return "text"
}

// markdownSuffixes are the suffixes that mark a file as markdown.
var markdownSuffixes = []string{".md", ".markdown", ".mdown", ".mkd"}

// IsMarkdownPath reports whether p names a markdown document.
// Suffix matching is case-insensitive.
func IsMarkdownPath(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, s := range markdownSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// Document is a collected text file. It is immutable once read.
type Document struct {
	// Path is the canonical (absolute, cleaned) file path and the identity
	// of the document.
	Path string `json:"path"`

	// Rel is Path relative to the tree root, using forward slashes.
	// Reports always use Rel.
	Rel string `json:"rel"`

	// Text is the raw file contents.
	Text string `json:"-"`

	// Kind is markdown or plain text.
	Kind DocKind `json:"kind"`
}

// NewDocument builds a Document, deriving Kind from the file suffix.
func NewDocument(canonical, rel, text string) *Document {
	kind := KindText
	if IsMarkdownPath(canonical) {
		kind = KindMarkdown
	}
	return &Document{Path: canonical, Rel: rel, Text: text, Kind: kind}
}

// Heading is a markdown heading found outside fenced code.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// Anchor is the link target a heading produces.
type Anchor struct {
	// Slug is unique within its document.
	Slug string `json:"slug"`

	// Heading is the source heading. It is zero for explicit HTML anchors.
	Heading Heading `json:"heading"`
}
