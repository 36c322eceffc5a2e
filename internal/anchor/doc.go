// Package anchor turns markdown headings into link anchors.
//
// Slugs follow the heading-anchor convention of the common hosted markdown
// renderers: the text is NFKC-normalized and lowercased, inline HTML tags
// are dropped, every character other than letters, digits, spaces, hyphens
// and underscores is removed, whitespace runs become single hyphens,
// underscores are removed, hyphen runs collapse and leading or trailing
// hyphens are trimmed. Repeated slugs within one document get -1, -2, ...
// suffixes in document order.
//
// Index builds the anchor set of one document. Cache builds indexes lazily
// per file and shares them across every document that links into the file.
package anchor
