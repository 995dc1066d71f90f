package typedstream

import "testing"

func TestIsPrintable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"letters", "HelloWorld", true},
		{"empty", "", false},
		{"quarter printable", "a\x00\x00\x00", false},
		{"with newlines and tabs", "line one\nline two\tend\r\n", true},
		{"non ascii", "こんにちは", true},
		{"emoji", "see you 👋", true},
		{"exactly threshold", "abcd\x00", true},
		{"just under threshold", "abc\x00", false},
		{"control heavy", "\x01\x02\x03ab", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPrintable(tt.in); got != tt.want {
				t.Errorf("IsPrintable(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintableThresholdIsTunable(t *testing.T) {
	orig := PrintableThreshold
	t.Cleanup(func() { PrintableThreshold = orig })

	PrintableThreshold = 0.5
	if !IsPrintable("ab\x00\x00") {
		t.Error("IsPrintable should accept 50% printable at threshold 0.5")
	}
	PrintableThreshold = 1.0
	if IsPrintable("abcd\x00") {
		t.Error("IsPrintable should reject any control byte at threshold 1.0")
	}
}
