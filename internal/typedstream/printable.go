package typedstream

import "unicode/utf8"

// PrintableThreshold is the minimum share of text-like characters a
// candidate must have to be accepted as recovered text.
var PrintableThreshold = 0.8

// IsPrintable reports whether s looks like genuine text rather than
// structural bytes that happened to decode.
func IsPrintable(s string) bool {
	if s == "" {
		return false
	}
	total, good := 0, 0
	for _, r := range s {
		total++
		if isTextRune(r) {
			good++
		}
	}
	return float64(good) >= PrintableThreshold*float64(total)
}

func isTextRune(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return true
	case r > 0x7f:
		return true
	case r == '\n' || r == '\r' || r == '\t':
		return true
	}
	return false
}

// decodeUTF8 converts raw bytes to a string, substituting U+FFFD for
// invalid sequences.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return string([]rune(string(b)))
}
