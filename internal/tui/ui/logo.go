package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo is the header banner.
type Logo struct {
	*tview.TextView
	theme *Theme
}

// NewLogo creates the banner.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 0, 1)

	l := &Logo{
		TextView: tv,
		theme:    theme,
	}
	l.render()
	return l
}

func (l *Logo) render() {
	title := Tag(l.theme.TitleColor)
	_, _ = fmt.Fprintf(l,
		"[%s::b]┌┬┐┌─┐┌─┐[-:-:-]\n"+
			"[%s::b]│││└─┐│ ┬[-:-:-]\n"+
			"[%s::b]┴ ┴└─┘└─┘[-:-:-]\n"+
			"[%s]archive[-:-:-]",
		title, title, title, Tag(l.theme.FgColor),
	)
}
