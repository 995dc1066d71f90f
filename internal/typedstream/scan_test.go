package typedstream

import "testing"

func TestScanPrintableRegionsPicksLongest(t *testing.T) {
	b := blob(streamHeader,
		[]byte("\x12NSAttributedString\x00\x84\x84\x08NSObject\x00\x85\x92\x84\x84\x84"),
		[]byte("Hi there friend"),
		[]byte("\x86\x84\x02iI\x00ok\x00"))

	if got := ScanPrintableRegions(b); got != "Hi there friend" {
		t.Errorf("ScanPrintableRegions() = %q, want %q", got, "Hi there friend")
	}
}

func TestScanPrintableRegionsFiltersNoise(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
		want string
	}{
		{"only class names", []byte("\x00NSDictionaryWithLongName\x00NSNumber\x00"), ""},
		{"header only", streamHeader, ""},
		{"contains marker name", []byte("\x00xxNSMutableStringxx\x00hey\x00"), "hey"},
		{"single rune regions dropped", []byte("\x00a\x00b\x00"), ""},
		{"empty", nil, ""},
		{"tie keeps first", []byte("\x00abc\x00xyz\x00"), "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScanPrintableRegions(tt.blob); got != tt.want {
				t.Errorf("ScanPrintableRegions() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The scanner treats lead bytes 0xC0-0xF7 as printable but not continuation
// bytes, so a multi-byte character splits its run. This pins that behaviour.
func TestScanPrintableRegionsLeadByteApproximation(t *testing.T) {
	b := []byte("\x00caf\xc3\xa9 au lait\x00")
	if got := ScanPrintableRegions(b); got != " au lait" {
		t.Errorf("ScanPrintableRegions() = %q, want %q", got, " au lait")
	}

	// A run ending in a bare lead byte decodes with a replacement character.
	b = []byte("\x00bonjour\xc3\x00")
	if got := ScanPrintableRegions(b); got != "bonjour�" {
		t.Errorf("ScanPrintableRegions() = %q, want %q", got, "bonjour�")
	}
}
