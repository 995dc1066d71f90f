package store

import (
	"fmt"
	"strings"
	"time"
)

// ArchiveEpochOffset is the distance in seconds between the Unix epoch and
// the archive epoch (2001-01-01T00:00:00Z).
const ArchiveEpochOffset int64 = 978307200

// FromArchiveTime converts an archive timestamp (nanoseconds since the
// archive epoch) to a UTC time at millisecond resolution. Zero is the
// archive's "no timestamp" sentinel and reports false.
func FromArchiveTime(ns int64) (time.Time, bool) {
	if ns == 0 {
		return time.Time{}, false
	}
	ms := ns/int64(time.Millisecond) + ArchiveEpochOffset*1000
	return time.UnixMilli(ms).UTC(), true
}

// ToArchiveTime converts t to archive units.
func ToArchiveTime(t time.Time) int64 {
	return (t.Unix()-ArchiveEpochOffset)*int64(time.Second) + int64(t.Nanosecond())
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a caller-supplied bound. Unparseable input is an
// error; it is never defaulted.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: want RFC 3339 or YYYY-MM-DD", s)
}
