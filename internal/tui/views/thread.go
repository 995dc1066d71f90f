package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/rivo/tview"
)

// Thread shows the messages of one chat, oldest at the top.
type Thread struct {
	*tview.TextView
	theme *ui.Theme
	chat  api.Chat
	now   func() time.Time
}

// NewThread creates an empty thread view.
func NewThread(theme *ui.Theme) *Thread {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Messages ")
	tv.SetTitleColor(theme.TitleColor)

	return &Thread{
		TextView: tv,
		theme:    theme,
		now:      time.Now,
	}
}

// Name implements ui.Component.
func (th *Thread) Name() string { return "Thread" }

// Hints implements ui.Component.
func (th *Thread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "o", Description: "Older"},
		{Key: "i", Description: "Details"},
		{Key: "j/k", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetChat sets the chat whose messages are shown.
func (th *Thread) SetChat(c api.Chat) {
	th.chat = c
	th.SetTitle(fmt.Sprintf(" %s ", tview.Escape(sanitizeForTerminal(ChatTitle(c)))))
}

// ChatID returns the id of the shown chat.
func (th *Thread) ChatID() string { return th.chat.ID }

// Update renders msgs, which arrive newest first. When more is true a
// marker at the top says older messages can be loaded. keepOffset holds
// the scroll position instead of jumping to the newest message.
func (th *Thread) Update(msgs []api.Message, more, keepOffset bool) {
	row, _ := th.GetScrollOffset()
	lines := th.render(msgs, more)
	th.SetText(lines)
	if keepOffset {
		th.ScrollTo(row, 0)
		return
	}
	th.ScrollToEnd()
}

func (th *Thread) render(msgs []api.Message, more bool) string {
	var b strings.Builder
	dim := ui.Tag(th.theme.DimColor)
	if more {
		fmt.Fprintf(&b, "[%s]  ... older messages, press o to load ...[-]\n\n", dim)
	}
	if len(msgs) == 0 {
		fmt.Fprintf(&b, "[%s]  no messages[-]\n", dim)
		return b.String()
	}

	now := th.now()
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		who, color := th.sender(m)
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [%s]%s[-]\n", ui.Tag(color), tview.Escape(sanitizeForTerminal(who)), dim, formatTimestamp(m.Timestamp, now))
		if text := sanitizeForTerminal(m.Text); strings.TrimSpace(text) != "" {
			b.WriteString(tview.Escape(text))
			b.WriteString("\n")
		}
		if m.HasAttachments {
			fmt.Fprintf(&b, "[%s]%s[-]\n", ui.Tag(th.theme.AttachmentColor), tview.Escape("[attachment]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (th *Thread) sender(m api.Message) (string, tcell.Color) {
	switch {
	case m.FromMe:
		return "Me", th.theme.FromMeColor
	case m.Sender != nil:
		return m.Sender.Identifier, th.theme.SenderColor
	default:
		return ChatTitle(th.chat), th.theme.SenderColor
	}
}
