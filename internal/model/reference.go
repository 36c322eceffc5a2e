package model

import "fmt"

// RefKind classifies a reference by the way it is resolved.
type RefKind int

const (
	// RefAnchorOnly is a same-document fragment such as "#setup".
	RefAnchorOnly RefKind = iota
	// RefLocalPath is a workspace path, relative or root-absolute.
	RefLocalPath
	// RefExternalURL is an http(s) URL outside the configured repository.
	RefExternalURL
	// RefInternalRepoURL is an http(s) URL under the configured repository base.
	RefInternalRepoURL
)

// String returns a human-readable representation of the kind.
func (k RefKind) String() string {
	switch k {
	case RefAnchorOnly:
		return "anchor-only"
	case RefLocalPath:
		return "local-path"
	case RefExternalURL:
		return "external-url"
	case RefInternalRepoURL:
		return "internal-repo-url"
	default:
		return "unknown"
	}
}

// Syntax records which surface form a reference was extracted from.
type Syntax int

const (
	// SyntaxInline is a markdown inline link [text](target).
	SyntaxInline Syntax = iota
	// SyntaxDefinition is a markdown reference definition [label]: target.
	SyntaxDefinition
	// SyntaxHTML is an HTML href= or src= attribute.
	SyntaxHTML
	// SyntaxBareURL is a bare http(s) URL or autolink in prose.
	SyntaxBareURL
)

// String returns a human-readable representation of the syntax.
func (s Syntax) String() string {
	switch s {
	case SyntaxInline:
		return "inline"
	case SyntaxDefinition:
		return "definition"
	case SyntaxHTML:
		return "html"
	case SyntaxBareURL:
		return "bare-url"
	default:
		return "unknown"
	}
}

// Reference is one extracted link occurrence.
type Reference struct {
	// Source is the root-relative path of the document containing the link.
	Source string `json:"source"`

	// SourcePath is the canonical path of that document.
	SourcePath string `json:"-"`

	// Line is the 1-based source line.
	Line int `json:"line"`

	// Column is the 0-based byte offset within the line. It only orders
	// references that share a line.
	Column int `json:"-"`

	// Raw is the target exactly as written, after angle-bracket unwrapping
	// and title truncation.
	Raw string `json:"raw"`

	// Text is the link's display text, if any.
	Text string `json:"text,omitempty"`

	// Syntax is the surface form the link was found in.
	Syntax Syntax `json:"syntax"`

	// Kind is set by the resolver.
	Kind RefKind `json:"kind"`

	// Fragment is the part after '#', if any. Set by the resolver.
	Fragment string `json:"fragment,omitempty"`
}

// Evidence returns the "document:line" location of the reference.
func (r Reference) Evidence() string {
	return fmt.Sprintf("%s:%d", r.Source, r.Line)
}
