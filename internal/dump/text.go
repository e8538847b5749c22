package dump

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// RepairText undoes the export's double encoding: every rune of s is taken
// as one raw byte and the resulting bytes are decoded as UTF-8.
func RepairText(s string) (string, error) {
	if isASCII(s) {
		return s, nil
	}
	// the encoder keeps state, so one per call
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return "", fmt.Errorf("%w: rune outside latin-1 in %q: %v", ErrDecode, s, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid utf-8 in %q", ErrDecode, s)
	}
	return string(b), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
