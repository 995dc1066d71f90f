package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// ArchiveData is what the header shows about the daemon.
type ArchiveData struct {
	Profile     string
	State       string
	Detail      string
	ArchivePath string
	Chats       int
	Uptime      time.Duration
}

// ArchiveInfo is the header panel describing the daemon and its archive.
type ArchiveInfo struct {
	*tview.TextView
	theme *Theme
}

// NewArchiveInfo creates an empty panel.
func NewArchiveInfo(theme *Theme) *ArchiveInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &ArchiveInfo{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders data. A nil data clears the panel.
func (ai *ArchiveInfo) Update(data *ArchiveData) {
	ai.Clear()
	if data == nil {
		return
	}

	fg := Tag(ai.theme.FgColor)
	val := Tag(ai.theme.CounterColor)
	state := data.State
	stateColor := val
	if state != "READY" {
		stateColor = Tag(ai.theme.FlashErrColor)
		if data.Detail != "" {
			state += " (" + data.Detail + ")"
		}
	}

	_, _ = fmt.Fprintf(ai,
		"[%s::b]Profile:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]State:[-:-:-]   [%s]%s[-]\n"+
			"[%s::b]Archive:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Chats:[-:-:-]   [%s]%d[-]\n"+
			"[%s::b]Uptime:[-:-:-]  [%s]%s[-]",
		fg, val, tview.Escape(data.Profile),
		fg, stateColor, tview.Escape(state),
		fg, val, tview.Escape(data.ArchivePath),
		fg, val, data.Chats,
		fg, val, formatDuration(data.Uptime),
	)
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
