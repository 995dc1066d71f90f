package typedstream

import "strings"

// ResolveText picks the best available text for a message row. A non-blank
// plain-text column always wins and the blob is left untouched; otherwise
// the blob is decoded, first by marker and then by region scan.
func ResolveText(plain string, blob []byte) string {
	if strings.TrimSpace(plain) != "" {
		return plain
	}
	return DecodeBlob(blob)
}

// DecodeBlob recovers text from a serialized blob, returning "" when
// nothing usable is found. It never panics.
func DecodeBlob(blob []byte) (text string) {
	if len(blob) == 0 {
		return ""
	}
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	if t, ok := ExtractMarkedText(blob); ok {
		return t
	}
	return ScanPrintableRegions(blob)
}
