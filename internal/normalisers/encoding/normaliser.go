// Package encoding repairs encoding defects in raw document bytes.
//
// Normalisation is total: it never fails, whatever the input. Bytes that
// cannot be decoded are replaced with U+FFFD rather than dropped, NUL and
// other control characters except newline and tab are removed, and line
// endings are folded to "\n". Applying it twice gives the same result as
// applying it once.
package encoding

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

const byteOrderMark = "\uFEFF"

// Normaliser decodes and cleans raw text.
type Normaliser struct{}

// New creates a new text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise decodes content under charset and cleans the result.
// Unknown charsets are treated as UTF-8.
func (n *Normaliser) Normalise(content []byte, charset string) string {
	if len(content) == 0 {
		return ""
	}
	return Clean(decode(content, charset))
}

// Clean applies the cleaning rules to text that is already decoded.
func (n *Normaliser) Clean(text string) string {
	return Clean(text)
}

// decode converts content from charset to a Go string. The result may still
// contain invalid UTF-8; Clean replaces it.
func decode(content []byte, charset string) string {
	enc := lookup(charset)
	if enc == nil {
		return string(content)
	}
	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(out)
}

// lookup resolves a charset label. Returns nil for UTF-8 and unknown labels.
func lookup(charset string) encoding.Encoding {
	label := strings.ToLower(strings.TrimSpace(charset))
	switch label {
	case "", "utf-8", "utf8":
		return nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		enc, err = ianaindex.IANA.Encoding(label)
		if err != nil || enc == nil {
			return nil
		}
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil
	}
	return enc
}

// Clean returns s as valid UTF-8 with:
//   - each maximal run of invalid bytes replaced by a single U+FFFD
//   - "\r\n" and lone "\r" folded to "\n"
//   - NUL and every other control character except "\n" and "\t" removed
//   - leading byte order marks stripped
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inInvalid := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		if r == utf8.RuneError && size == 1 {
			if !inInvalid {
				b.WriteRune(utf8.RuneError)
				inInvalid = true
			}
			continue
		}
		inInvalid = false

		switch {
		case r == '\r':
			if i < len(s) && s[i] == '\n' {
				continue
			}
			b.WriteByte('\n')
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimLeft(b.String(), byteOrderMark)
}
