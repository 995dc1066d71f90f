package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode selects what a submitted prompt means.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
	PromptSearch
)

type promptStyle struct {
	label       string
	title       string
	placeholder string
}

var promptStyles = map[PromptMode]promptStyle{
	PromptCommand: {":", " Command ", "search <text> | chat <name> | refresh | help | quit"},
	PromptFilter:  {"/", " Filter chats ", "title or identifier, empty clears"},
	PromptSearch:  {"?", " Search messages ", "text to find across all chats"},
}

const historyLimit = 50

// Prompt is the command, filter and search input bar. Submitted commands and
// searches are kept per mode and recalled with Up/Down.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	history  map[PromptMode][]string
	cursor   int
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

// NewPrompt creates a prompt bar.
func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{
		InputField: tview.NewInputField(),
		history:    make(map[PromptMode][]string),
	}
	p.SetBorder(true).
		SetBorderColor(theme.PromptBorderColor).
		SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor).
		SetFieldTextColor(theme.FgColor).
		SetLabelColor(theme.MenuKeyColor).
		SetPlaceholderTextColor(theme.DimColor)

	p.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyUp:
			p.recall(-1)
			return nil
		case tcell.KeyDown:
			p.recall(1)
			return nil
		}
		return ev
	})
	p.SetDoneFunc(p.done)
	return p
}

func (p *Prompt) done(key tcell.Key) {
	text := p.GetText()
	p.SetText("")
	switch key {
	case tcell.KeyEnter:
		p.remember(text)
		if p.onSubmit != nil {
			p.onSubmit(p.mode, text)
		}
	case tcell.KeyEscape:
		if p.onCancel != nil {
			p.onCancel()
		}
	}
}

// remember records text for the active mode. Filters are not kept, and an
// immediate repeat is stored once.
func (p *Prompt) remember(text string) {
	if text == "" || p.mode == PromptFilter {
		return
	}
	h := p.history[p.mode]
	if n := len(h); n > 0 && h[n-1] == text {
		return
	}
	h = append(h, text)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	p.history[p.mode] = h
}

func (p *Prompt) recall(step int) {
	h := p.history[p.mode]
	if len(h) == 0 {
		return
	}
	p.cursor += step
	switch {
	case p.cursor < 0:
		p.cursor = 0
	case p.cursor >= len(h):
		p.cursor = len(h)
		p.SetText("")
		return
	}
	p.SetText(h[p.cursor])
}

// History returns the remembered entries for mode, oldest first.
func (p *Prompt) History(mode PromptMode) []string {
	return append([]string(nil), p.history[mode]...)
}

// SetOnSubmit sets the callback for Enter. Empty text is passed through so an
// empty filter can clear the current one.
func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

// SetOnCancel sets the callback for Esc.
func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// Activate prepares the prompt for mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.cursor = len(p.history[mode])
	style := promptStyles[mode]
	p.SetText("")
	p.SetLabel(style.label)
	p.SetTitle(style.title)
	p.SetPlaceholder(style.placeholder)
}

// Mode returns the active mode.
func (p *Prompt) Mode() PromptMode {
	return p.mode
}
