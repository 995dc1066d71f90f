package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/rivo/tview"
)

// SearchView lists messages matching a search across every chat.
type SearchView struct {
	*tview.Table
	theme *ui.Theme
	data  []api.Message
	now   func() time.Time
}

// NewSearchView creates an empty results table.
func NewSearchView(theme *ui.Theme) *SearchView {
	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	results.SetBorder(true)
	results.SetBorderColor(theme.BorderColor)
	results.SetBackgroundColor(theme.BgColor)
	results.SetTitle(" Results ")
	results.SetTitleColor(theme.TitleColor)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &SearchView{
		Table: results,
		theme: theme,
		now:   time.Now,
	}
}

// Name implements ui.Component.
func (sv *SearchView) Name() string { return "Search" }

// Hints implements ui.Component.
func (sv *SearchView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open chat"},
		{Key: "Esc", Description: "Back"},
	}
}

// Update shows results for query. title names the chat of a result.
func (sv *SearchView) Update(query string, results []api.Message, title func(chatID string) string) {
	sv.data = results
	sv.Clear()

	headers := []string{" CHAT", " FROM", " TEXT", " TIME"}
	for col, h := range headers {
		sv.SetCell(0, col, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(sv.theme.TableHeaderFg).
			SetBackgroundColor(sv.theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold))
	}

	now := sv.now()
	for i, m := range results {
		row := i + 1
		from := "me"
		if !m.FromMe && m.Sender != nil {
			from = m.Sender.Identifier
		} else if !m.FromMe {
			from = "?"
		}
		sv.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(title(m.ChatID)))).SetMaxWidth(25).SetTextColor(sv.theme.FgColor))
		sv.SetCell(row, 1, tview.NewTableCell(" "+tview.Escape(from)).SetMaxWidth(20).SetTextColor(sv.theme.FgColor))
		sv.SetCell(row, 2, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(flatten(m.Text)))).SetExpansion(1).SetTextColor(sv.theme.FgColor))
		sv.SetCell(row, 3, tview.NewTableCell(" "+formatTimestamp(m.Timestamp, now)).SetAlign(tview.AlignRight).SetTextColor(sv.theme.FgColor))
	}

	sv.SetTitle(fmt.Sprintf(" Results for %q (%d) ", tview.Escape(query), len(results)))
	sv.ScrollToBeginning()
	if len(results) > 0 {
		sv.Select(1, 0)
	}
}

// SelectedResult returns the chat and message id of the highlighted row.
func (sv *SearchView) SelectedResult() (chatID, messageID string) {
	row, _ := sv.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(sv.data) {
		return "", ""
	}
	return sv.data[idx].ChatID, sv.data[idx].ID
}
