package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatInfo shows the details and participants of one chat.
type ChatInfo struct {
	*tview.TextView
	theme *ui.Theme
	now   func() time.Time
}

// NewChatInfo creates an empty details view.
func NewChatInfo(theme *ui.Theme) *ChatInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Details ")
	tv.SetTitleColor(theme.TitleColor)

	return &ChatInfo{
		TextView: tv,
		theme:    theme,
		now:      time.Now,
	}
}

// Name implements ui.Component.
func (ci *ChatInfo) Name() string { return "Details" }

// Hints implements ui.Component.
func (ci *ChatInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update renders c.
func (ci *ChatInfo) Update(c api.Chat) {
	label := ui.Tag(ci.theme.FgColor)
	val := ui.Tag(ci.theme.CounterColor)
	field := func(b *strings.Builder, name, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(b, " [%s::b]%-13s[-:-:-] [%s]%s[-]\n", label, name+":", val, tview.Escape(sanitizeForTerminal(value)))
	}

	kind := "Direct"
	if c.IsGroup {
		kind = "Group"
	}

	var b strings.Builder
	b.WriteString("\n")
	field(&b, "Name", ChatTitle(c))
	field(&b, "ID", c.ID)
	field(&b, "GUID", c.GUID)
	field(&b, "Identifier", c.Identifier)
	field(&b, "Type", kind)
	field(&b, "Last Active", formatTimestamp(c.LastMessageAt, ci.now()))
	field(&b, "Last Message", flatten(c.LastMessage))

	fmt.Fprintf(&b, "\n [%s::b]Participants (%d)[-:-:-]\n", label, len(c.Participants))
	for _, p := range c.Participants {
		service := ""
		if p.Service != "" {
			service = " (" + p.Service + ")"
		}
		fmt.Fprintf(&b, "   [%s]%s[-]%s\n", val, tview.Escape(p.Identifier), tview.Escape(service))
	}

	ci.SetText(b.String())
	ci.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(ChatTitle(c)))))
	ci.ScrollToBeginning()
}
