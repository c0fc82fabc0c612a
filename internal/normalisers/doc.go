// Package normalisers turns raw document bytes into text the chunker can
// split. The encoding subpackage repairs the bytes themselves; the format
// subpackages (plaintext, html) extract readable text for a declared format.
//
// Extractors are registered with the Registry at startup.
package normalisers
