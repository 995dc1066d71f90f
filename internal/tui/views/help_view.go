package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView is the key and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates the help page.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements ui.Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Global", [][2]string{
		{":", "Command mode"},
		{"?", "Search messages"},
		{"r", "Refresh"},
		{"h", "This help"},
		{"Esc", "Go back"},
		{"q", "Quit"},
	}},
	{"Chats", [][2]string{
		{"Enter", "Open chat"},
		{"i", "Chat details"},
		{"/", "Filter chats"},
		{"0", "Clear filter"},
		{"1-9", "Open the Nth chat"},
	}},
	{"Thread", [][2]string{
		{"o", "Load older messages"},
		{"i", "Chat details"},
		{"j/k g/G", "Scroll"},
	}},
	{"Commands", [][2]string{
		{":search <text>", "Search messages"},
		{":chat <name>", "Open the first chat whose title matches"},
		{":filter <text>", "Filter chats"},
		{":refresh", "Reload chats and status"},
		{":help", "This help"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, k := range s.keys {
			fmt.Fprintf(&b, "  [%s]%-16s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	hv.SetText(b.String())
}
