package ui

import "github.com/rivo/tview"

// Pages is a stack of Components over tview.Pages. Only the top of the
// stack is visible.
type Pages struct {
	*tview.Pages
	stack    []Component
	onChange func(top Component, stack []string)
}

// NewPages creates an empty stack.
func NewPages() *Pages {
	return &Pages{
		Pages: tview.NewPages(),
	}
}

// SetOnChange registers fn to run after every stack change.
func (p *Pages) SetOnChange(fn func(top Component, stack []string)) {
	p.onChange = fn
}

// Push shows c on top of the stack. Pushing the current top again is a
// no-op.
func (p *Pages) Push(c Component) {
	if top := p.Current(); top != nil {
		if top == c {
			return
		}
		p.HidePage(top.Name())
	}
	p.stack = append(p.stack, c)
	p.show(c)
	p.notify()
}

// Pop removes the top page and shows the one below. The last page is
// never popped; Pop reports whether anything was removed.
func (p *Pages) Pop() bool {
	if len(p.stack) < 2 {
		return false
	}
	top := p.stack[len(p.stack)-1]
	p.RemovePage(top.Name())
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.stack[len(p.stack)-1])
	p.notify()
	return true
}

// Reset makes c the only page on the stack.
func (p *Pages) Reset(c Component) {
	for _, old := range p.stack {
		p.RemovePage(old.Name())
	}
	p.stack = []Component{c}
	p.show(c)
	p.notify()
}

// Current returns the top page, or nil when the stack is empty.
func (p *Pages) Current() Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns the page names, bottom first.
func (p *Pages) Stack() []string {
	names := make([]string, len(p.stack))
	for i, c := range p.stack {
		names[i] = c.Name()
	}
	return names
}

// Depth returns the stack size.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) show(c Component) {
	if !p.HasPage(c.Name()) {
		p.AddPage(c.Name(), c, true, true)
	}
	p.ShowPage(c.Name())
	p.SendToFront(c.Name())
}

func (p *Pages) notify() {
	if p.onChange != nil {
		p.onChange(p.Current(), p.Stack())
	}
}
