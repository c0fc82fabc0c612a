// Package filesystem reads documents from local directories.
//
// Only files with a supported extension (.txt, .md, .html and their aliases)
// are loaded. Hidden files and anything below a hidden directory are skipped.
// Each loaded document carries {source, original_path, filename} metadata.
package filesystem
