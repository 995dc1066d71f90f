package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/status"
	"github.com/matheus3301/msgarchive/internal/tui/keys"
	"github.com/matheus3301/msgarchive/internal/tui/model"
	"github.com/matheus3301/msgarchive/internal/tui/ui"
	"github.com/matheus3301/msgarchive/internal/tui/views"
	"github.com/rivo/tview"
)

const (
	defaultRefreshInterval = 10 * time.Second
	headerHeight           = 5
	promptHeight           = 3
)

// Option configures an App.
type Option func(*App)

// WithRefreshInterval sets how often chats and status are reloaded.
func WithRefreshInterval(d time.Duration) Option {
	return func(a *App) { a.refresh = d }
}

// App is the browser shell: a header, a stack of pages, breadcrumbs and a
// flash bar.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	vm       *model.ViewModel
	registry *keys.Registry
	flash    *ui.FlashModel
	profile  string
	refresh  time.Duration

	main     *tview.Flex
	pages    *ui.Pages
	info     *ui.ArchiveInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	flashBar *ui.FlashBar
	prompt   *ui.Prompt

	chats   *views.ChatList
	thread  *views.Thread
	details *views.ChatInfo
	search  *views.SearchView
	help    *views.HelpView

	detailsChat string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the browser over archive for the named profile.
func NewApp(archive model.Archive, profileName string, opts ...Option) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:      tview.NewApplication(),
		theme:    theme,
		vm:       model.NewViewModel(archive),
		registry: keys.NewRegistry(),
		flash:    ui.NewFlashModel(),
		profile:  profileName,
		refresh:  defaultRefreshInterval,
		pages:    ui.NewPages(),
		info:     ui.NewArchiveInfo(theme),
		menu:     ui.NewMenu(theme),
		crumbs:   ui.NewCrumbs(theme),
		flashBar: ui.NewFlashBar(theme),
		prompt:   ui.NewPrompt(theme),
		chats:    views.NewChatList(theme),
		thread:   views.NewThread(theme),
		details:  views.NewChatInfo(theme),
		search:   views.NewSearchView(theme),
		help:     views.NewHelpView(theme),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.setupBindings()
	a.setupLayout()
	a.info.Update(&ui.ArchiveData{Profile: profileName, State: string(status.Booting)})
	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':', Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?', Description: "Search", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptSearch) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'r', Description: "Refresh", Visible: true,
		Handler: func() { go a.reload() },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'h', Description: "Help", Visible: true,
		Handler: func() { a.pages.Push(a.help) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true,
		Handler: a.Stop,
	})

	a.registry.AddView(a.chats.Name(), &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open",
		Handler: func() { a.openChat(a.chats.SelectedChat()) },
	})
	a.registry.AddView(a.chats.Name(), &keys.Action{
		Key: tcell.KeyRune, Rune: '/', Description: "Filter",
		Handler: func() { a.showPrompt(ui.PromptFilter) },
	})
	a.registry.AddView(a.chats.Name(), &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Description: "Details",
		Handler: func() { a.showDetails(a.chats.SelectedChat()) },
	})

	a.registry.AddView(a.thread.Name(), &keys.Action{
		Key: tcell.KeyRune, Rune: 'o', Description: "Older",
		Handler: func() { go a.loadOlder() },
	})
	a.registry.AddView(a.thread.Name(), &keys.Action{
		Key: tcell.KeyRune, Rune: 'i', Description: "Details",
		Handler: func() { a.showDetails(a.thread.ChatID()) },
	})

	a.registry.AddView(a.details.Name(), &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open",
		Handler: func() {
			a.pages.Pop()
			a.openChat(a.detailsChat)
		},
	})

	a.registry.AddView(a.search.Name(), &keys.Action{
		Key: tcell.KeyEnter, Label: "Enter", Description: "Open chat",
		Handler: func() {
			chatID, _ := a.search.SelectedResult()
			a.openChat(chatID)
		},
	})
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(a.info, 0, 2, false).
		AddItem(a.menu, 0, 2, false).
		AddItem(ui.NewLogo(a.theme), 12, 0, false)

	a.main = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.pages.SetOnChange(func(top ui.Component, stack []string) {
		a.crumbs.Update(stack)
		a.menu.Update(append(top.Hints(), a.registry.Hints("")...))
		a.app.SetFocus(top)
	})
	a.pages.Reset(a.chats)

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptFilter:
			a.chats.SetFilter(strings.TrimSpace(text))
		case ui.PromptSearch:
			a.runSearch(text)
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.app.SetRoot(a.main, true)
	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.prompt.HasFocus() {
		return event
	}

	current := a.pages.Current()
	if event.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}

	if current == a.chats && event.Key() == tcell.KeyRune && event.Rune() >= '0' && event.Rune() <= '9' {
		if event.Rune() == '0' {
			a.chats.SetFilter("")
		} else {
			a.openChat(a.chats.ChatByIndex(int(event.Rune() - '0')))
		}
		return nil
	}

	if a.registry.HandleEvent(current.Name(), event) {
		return nil
	}
	return event
}

func (a *App) back() {
	if a.pages.Pop() {
		return
	}
	if a.chats.Filter() != "" {
		a.chats.SetFilter("")
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.main.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.main.ResizeItem(a.prompt, 0, 0)
	a.app.SetFocus(a.pages.Current())
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "":
	case "search":
		a.runSearch(cmd.Args)
	case "chat":
		if id := a.findChat(cmd.Args); id != "" {
			a.openChat(id)
			return
		}
		a.flash.Warn(fmt.Sprintf("no chat matches %q", cmd.Args))
	case "filter":
		a.pages.Reset(a.chats)
		a.chats.SetFilter(cmd.Args)
	case "refresh":
		go a.reload()
	case "help":
		a.pages.Push(a.help)
	case "quit":
		a.Stop()
	default:
		a.flash.Warn(fmt.Sprintf("unknown command %q", cmd.Name))
	}
}

// findChat matches an exact id first, then a case-insensitive title
// substring.
func (a *App) findChat(query string) string {
	if query == "" {
		return ""
	}
	if c, ok := a.vm.Chat(query); ok {
		return c.ID
	}
	query = strings.ToLower(query)
	for _, c := range a.vm.Chats() {
		if strings.Contains(strings.ToLower(views.ChatTitle(c)), query) {
			return c.ID
		}
	}
	return ""
}

func (a *App) chatTitle(id string) string {
	if c, ok := a.vm.Chat(id); ok {
		return views.ChatTitle(c)
	}
	return id
}

func (a *App) openChat(id string) {
	if id == "" {
		return
	}
	go func() {
		if err := a.vm.OpenChat(a.ctx, id); err != nil {
			a.flash.Err(err)
			return
		}
		chat, ok := a.vm.Chat(id)
		if !ok {
			chat = api.Chat{ID: id}
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.SetChat(chat)
			a.thread.Update(a.vm.Messages(), !a.vm.Complete(), false)
			a.pages.Push(a.thread)
		})
	}()
}

func (a *App) loadOlder() {
	n, err := a.vm.LoadOlder(a.ctx)
	if err != nil {
		a.flash.Err(err)
		return
	}
	if n == 0 {
		a.flash.Info("no older messages")
	}
	a.app.QueueUpdateDraw(func() {
		a.thread.Update(a.vm.Messages(), !a.vm.Complete(), true)
	})
}

func (a *App) showDetails(id string) {
	chat, ok := a.vm.Chat(id)
	if !ok {
		return
	}
	a.detailsChat = id
	a.details.Update(chat)
	a.pages.Push(a.details)
}

func (a *App) runSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		a.flash.Warn("search needs some text")
		return
	}
	go func() {
		if err := a.vm.Search(a.ctx, query); err != nil {
			a.flash.Err(err)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.search.Update(query, a.vm.Results(), a.chatTitle)
			a.pages.Push(a.search)
		})
	}()
}

// reload fetches status and chats. It runs off the UI goroutine.
func (a *App) reload() {
	arrived, err := a.vm.LoadStatus(a.ctx)
	if err != nil {
		a.flash.Err(err)
	}
	if err := a.vm.LoadChats(a.ctx); err != nil {
		a.flash.Err(err)
	}
	if active := a.vm.ActiveChat(); arrived && active != "" {
		if err := a.vm.OpenChat(a.ctx, active); err != nil {
			a.flash.Err(err)
		}
	}

	data := a.archiveData()
	if data.State == string(status.AccessDenied) {
		a.flash.Warn("archived cannot read the archive; grant it Full Disk Access")
	}
	a.app.QueueUpdateDraw(func() {
		a.chats.Update(a.vm.Chats())
		a.info.Update(data)
		if arrived && a.thread.ChatID() == a.vm.ActiveChat() {
			a.thread.Update(a.vm.Messages(), !a.vm.Complete(), a.pages.Current() != a.thread)
		}
	})
}

func (a *App) archiveData() *ui.ArchiveData {
	data := &ui.ArchiveData{Profile: a.profile, Chats: len(a.vm.Chats())}
	if st := a.vm.Status(); st != nil {
		data.State = st.State
		data.Detail = st.Detail
		data.ArchivePath = st.ArchivePath
		data.Uptime = time.Duration(st.UptimeMs) * time.Millisecond
	}
	return data
}

func (a *App) watchFlash() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	shown := false
	for {
		select {
		case <-a.flash.Watch():
		case <-ticker.C:
			if !shown {
				continue
			}
		case <-a.ctx.Done():
			return
		}
		msg := a.flash.Current()
		shown = msg != nil
		a.app.QueueUpdateDraw(func() { a.flashBar.Update(msg) })
	}
}

func (a *App) refreshLoop() {
	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.reload()
		case <-a.ctx.Done():
			return
		}
	}
}

// Run loads the first view and blocks until the user quits.
func (a *App) Run() error {
	defer a.cancel()
	go func() {
		a.reload()
		go a.watchFlash()
		a.refreshLoop()
	}()
	return a.app.Run()
}

// Stop shuts the browser down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
