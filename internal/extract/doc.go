// Package extract finds the cross-references of a document.
//
// It recognizes markdown inline links (images excluded), markdown reference
// definitions, HTML href and src attributes, and bare http(s) URLs in prose.
// Fenced code blocks and inline code spans never yield references.
package extract
