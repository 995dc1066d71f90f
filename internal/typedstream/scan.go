package typedstream

import (
	"strings"
	"unicode/utf8"
)

// noisePrefix marks the format's own type names.
const noisePrefix = "NS"

// noiseFragments are structural strings that survive the printable filter
// but are never message content.
var noiseFragments = []string{
	classString,
	classMutableString,
	"streamtyped",
}

// ScanPrintableRegions walks the blob for contiguous printable byte runs and
// returns the longest one that does not look like structural noise.
//
// Bytes 0xC0-0xF7 count as printable so multi-byte sequences are not split
// at their lead byte. Continuation bytes (0x80-0xBF) still end a run; this
// approximation is kept deliberately so results stay stable across releases.
func ScanPrintableRegions(blob []byte) string {
	var regions []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		text := decodeUTF8(blob[start:end])
		if utf8.RuneCountInString(text) >= 2 && IsPrintable(text) {
			regions = append(regions, text)
		}
		start = -1
	}
	for i, b := range blob {
		if isPrintableByte(b) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(blob))

	best, bestLen := "", 0
	for _, r := range regions {
		if isNoise(r) {
			continue
		}
		if n := utf8.RuneCountInString(r); n > bestLen {
			best, bestLen = r, n
		}
	}
	return best
}

func isPrintableByte(b byte) bool {
	switch {
	case b >= 0x20 && b <= 0x7e:
		return true
	case b == '\n' || b == '\r' || b == '\t':
		return true
	case b >= 0xc0 && b <= 0xf7:
		return true
	}
	return false
}

func isNoise(s string) bool {
	if strings.HasPrefix(s, noisePrefix) {
		return true
	}
	for _, frag := range noiseFragments {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
