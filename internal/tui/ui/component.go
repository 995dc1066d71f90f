package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu.
type MenuHint struct {
	Key         string
	Description string
	Numeric     bool // 0-9 shortcuts, drawn in their own color
}

// Component is a page the app can push onto its stack.
type Component interface {
	tview.Primitive
	Name() string
	Hints() []MenuHint
}
