package model

import (
	"context"
	"errors"
	"sync"

	"github.com/matheus3301/msgarchive/internal/api"
)

const (
	chatPageSize    = 200
	messagePageSize = 100
	searchPageSize  = 50
)

// ErrNoChat is returned by LoadOlder when no chat is open.
var ErrNoChat = errors.New("no chat open")

// Archive is the daemon surface the browser reads from. *client.Client
// satisfies it.
type Archive interface {
	Status(ctx context.Context) (*api.Status, error)
	ListChats(ctx context.Context, limit int) ([]api.Chat, error)
	ListMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error)
	SearchMessages(ctx context.Context, q api.MessageQuery) ([]api.Message, error)
}

// ViewModel caches what the views render. Loads run off the UI goroutine;
// getters return snapshots.
type ViewModel struct {
	mu sync.RWMutex

	archive  Archive
	status   *api.Status
	chats    []api.Chat
	byID     map[string]api.Chat
	active   string
	messages []api.Message // newest first
	complete bool          // no older messages left in the active chat
	results  []api.Message
}

// NewViewModel creates a view model reading from archive.
func NewViewModel(archive Archive) *ViewModel {
	return &ViewModel{
		archive: archive,
		byID:    make(map[string]api.Chat),
	}
}

// LoadStatus fetches the daemon status. It reports whether new messages
// arrived since the previous load.
func (vm *ViewModel) LoadStatus(ctx context.Context) (bool, error) {
	st, err := vm.archive.Status(ctx)
	if err != nil {
		return false, err
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	arrived := vm.status != nil && st.LatestMessageID != vm.status.LatestMessageID
	vm.status = st
	return arrived, nil
}

// LoadChats fetches the chat list.
func (vm *ViewModel) LoadChats(ctx context.Context) error {
	chats, err := vm.archive.ListChats(ctx, chatPageSize)
	if err != nil {
		return err
	}
	byID := make(map[string]api.Chat, len(chats))
	for _, c := range chats {
		byID[c.ID] = c
	}
	vm.mu.Lock()
	vm.chats = chats
	vm.byID = byID
	vm.mu.Unlock()
	return nil
}

// OpenChat makes chatID the active chat and loads its latest page.
func (vm *ViewModel) OpenChat(ctx context.Context, chatID string) error {
	msgs, err := vm.archive.ListMessages(ctx, api.MessageQuery{ChatID: chatID, Limit: messagePageSize})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.active = chatID
	vm.messages = msgs
	vm.complete = len(msgs) < messagePageSize
	vm.mu.Unlock()
	return nil
}

// LoadOlder appends the page before the oldest loaded message of the active
// chat. It reports how many messages were added.
func (vm *ViewModel) LoadOlder(ctx context.Context) (int, error) {
	vm.mu.RLock()
	chatID, complete := vm.active, vm.complete
	var before string
	if n := len(vm.messages); n > 0 {
		before = vm.messages[n-1].Timestamp
	}
	vm.mu.RUnlock()

	if chatID == "" {
		return 0, ErrNoChat
	}
	if complete || before == "" {
		return 0, nil
	}

	older, err := vm.archive.ListMessages(ctx, api.MessageQuery{ChatID: chatID, Before: before, Limit: messagePageSize})
	if err != nil {
		return 0, err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.active != chatID {
		return 0, nil
	}
	vm.messages = append(vm.messages, older...)
	vm.complete = len(older) < messagePageSize
	return len(older), nil
}

// Search runs a message search across every chat.
func (vm *ViewModel) Search(ctx context.Context, query string) error {
	results, err := vm.archive.SearchMessages(ctx, api.MessageQuery{Query: query, Limit: searchPageSize})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.results = results
	vm.mu.Unlock()
	return nil
}

// Status returns the last fetched status, or nil.
func (vm *ViewModel) Status() *api.Status {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Chats returns the chat list, most recent first.
func (vm *ViewModel) Chats() []api.Chat {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.chats
}

// Chat looks up a listed chat by id.
func (vm *ViewModel) Chat(id string) (api.Chat, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	c, ok := vm.byID[id]
	return c, ok
}

// ActiveChat returns the id of the open chat, or "".
func (vm *ViewModel) ActiveChat() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.active
}

// Messages returns the loaded messages of the active chat, newest first.
func (vm *ViewModel) Messages() []api.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages
}

// Complete reports whether the active chat has no older messages to load.
func (vm *ViewModel) Complete() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.complete
}

// Results returns the last search results.
func (vm *ViewModel) Results() []api.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.results
}
