package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatList is the root page: every chat, most recently active first.
type ChatList struct {
	*tview.Table
	theme   *ui.Theme
	chats   []api.Chat
	visible []api.Chat
	filter  string
	now     func() time.Time
}

// NewChatList creates an empty chat table.
func NewChatList(theme *ui.Theme) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitleColor(theme.TitleColor)

	cl := &ChatList{
		Table: table,
		theme: theme,
		now:   time.Now,
	}
	cl.render()
	return cl
}

// Name implements ui.Component.
func (cl *ChatList) Name() string { return "Chats" }

// Hints implements ui.Component.
func (cl *ChatList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "i", Description: "Details"},
		{Key: "/", Description: "Filter"},
		{Key: "0-9", Description: "Jump", Numeric: true},
	}
}

// Update replaces the chats, keeping the filter.
func (cl *ChatList) Update(chats []api.Chat) {
	selected := cl.SelectedChat()
	cl.chats = chats
	cl.render()
	cl.SelectChat(selected)
}

// SetFilter narrows the list to chats whose title or last message
// contains filter, case-insensitively. An empty filter shows everything.
func (cl *ChatList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
	cl.ScrollToBeginning()
	if len(cl.visible) > 0 {
		cl.Table.Select(1, 0)
	}
}

// Filter returns the active filter.
func (cl *ChatList) Filter() string { return cl.filter }

// SelectedChat returns the id of the highlighted chat, or "".
func (cl *ChatList) SelectedChat() string {
	row, _ := cl.GetSelection()
	return cl.ChatByIndex(row)
}

// ChatByIndex returns the id of the nth visible chat, counting from 1.
func (cl *ChatList) ChatByIndex(n int) string {
	if n < 1 || n > len(cl.visible) {
		return ""
	}
	return cl.visible[n-1].ID
}

// SelectChat highlights the chat with the given id if it is visible.
func (cl *ChatList) SelectChat(id string) {
	for i, c := range cl.visible {
		if c.ID == id {
			cl.Table.Select(i+1, 0)
			return
		}
	}
}

func (cl *ChatList) render() {
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" #", 0},
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" TYPE", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg).
			SetBackgroundColor(cl.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	cl.visible = cl.visible[:0]
	for _, c := range cl.chats {
		title := ChatTitle(c)
		if cl.filter != "" && !containsFold(title, cl.filter) && !containsFold(c.LastMessage, cl.filter) {
			continue
		}
		cl.visible = append(cl.visible, c)
		row := len(cl.visible)

		kind := "DM"
		if c.IsGroup {
			kind = "GROUP"
		}
		cl.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf(" %d", row)).SetTextColor(cl.theme.DimColor))
		cl.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(title))).SetExpansion(1).SetMaxWidth(32).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(flatten(c.LastMessage)))).SetExpansion(2).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 3, tview.NewTableCell(" "+formatTimestamp(c.LastMessageAt, cl.now())).SetAlign(tview.AlignRight).SetTextColor(cl.theme.FgColor))
		cl.SetCell(row, 4, tview.NewTableCell(" "+kind).SetAlign(tview.AlignRight).SetTextColor(cl.theme.FgColor))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ", len(cl.visible), len(cl.chats), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Chats (%d) ", len(cl.chats)))
	}
}
