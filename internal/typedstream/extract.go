package typedstream

import "bytes"

// MaxTextLength bounds a decoded length; anything at or above it is taken as
// a corrupt or mis-detected prefix.
const MaxTextLength = 100000

// Class names that precede length-prefixed string payloads in older blobs.
const (
	classString        = "NSString"
	classMutableString = "NSMutableString"
)

// contentMarker sits directly in front of the length byte of the message
// body in current blobs.
var contentMarker = []byte{0x01, 0x2b}

// markerStrategy locates a marker and decodes the string that follows it.
type markerStrategy struct {
	marker      []byte
	skipPadding bool
}

// strategies are tried in order; the first validated result wins.
var strategies = []markerStrategy{
	{marker: contentMarker},
	{marker: []byte(classString), skipPadding: true},
	{marker: []byte(classMutableString), skipPadding: true},
}

// ExtractMarkedText returns the text following the first known marker that
// yields a validated string.
func ExtractMarkedText(blob []byte) (string, bool) {
	for _, s := range strategies {
		if text, ok := s.extract(blob); ok {
			return text, true
		}
	}
	return "", false
}

func (s markerStrategy) extract(blob []byte) (string, bool) {
	idx := bytes.Index(blob, s.marker)
	if idx < 0 {
		return "", false
	}
	pos := idx + len(s.marker)
	if s.skipPadding {
		for pos < len(blob) && blob[pos] < 0x20 {
			pos++
		}
	}
	length, consumed := DecodeLength(blob, pos)
	if consumed == 0 || length <= 0 || length >= MaxTextLength {
		return "", false
	}
	start := pos + consumed
	if start+length > len(blob) {
		return "", false
	}
	text := decodeUTF8(blob[start : start+length])
	if !IsPrintable(text) {
		return "", false
	}
	return text, true
}
