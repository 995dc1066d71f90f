package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"search  coffee at noon ", Command{Name: "search", Args: "coffee at noon"}},
		{"s coffee", Command{Name: "search", Args: "coffee"}},
		{"Q", Command{Name: "quit"}},
		{"  chat Weekend trip", Command{Name: "chat", Args: "Weekend trip"}},
		{"reload", Command{Name: "refresh"}},
		{"", Command{}},
		{"unknown x", Command{Name: "unknown", Args: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseCommand(tt.in); got != tt.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
