package views

import (
	"strings"
	"time"

	"github.com/matheus3301/msgarchive/internal/api"
)

// ChatTitle is the display name, else the participants, else the
// identifier.
func ChatTitle(c api.Chat) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if len(c.Participants) > 0 {
		names := make([]string, 0, len(c.Participants))
		for _, p := range c.Participants {
			names = append(names, p.Identifier)
		}
		return strings.Join(names, ", ")
	}
	return c.Identifier
}

// formatTimestamp renders a wire timestamp in local time: clock only for
// today, month/day this year, full date otherwise.
func formatTimestamp(ts string, now time.Time) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(api.TimeLayout, ts)
	if err != nil {
		return ts
	}
	t = t.In(now.Location())
	switch {
	case t.Year() == now.Year() && t.YearDay() == now.YearDay():
		return t.Format("15:04")
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("2006-01-02")
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
