// Package html provides an Extractor for HTML documents.
// It walks the token stream with golang.org/x/net/html, drops scripts,
// styles and other non-content elements, decodes entities and keeps block
// boundaries as line breaks so the chunker can split on paragraphs.
package html
