package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/pders01/newsdash/internal/config"
	"github.com/pders01/newsdash/internal/debuglog"
)

// ChatRole says who wrote a transcript entry.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleReply ChatRole = "reply"
	RoleError ChatRole = "error"
)

// ChatEntry is one transcript line. Entries of one request share an
// Exchange number; validation errors use 0.
type ChatEntry struct {
	Exchange int
	Role     ChatRole
	Text     string
}

type exchange struct {
	message  string
	date     string
	category string
	failed   bool
	inFlight bool
}

type chatState struct {
	entries   []ChatEntry
	exchanges map[int]*exchange
	next      int
}

func newChatState() chatState {
	return chatState{exchanges: make(map[int]*exchange)}
}

// SendChatMessage echoes message into the transcript, posts it and appends
// the reply or one error entry. The chat busy flag is cleared on every exit
// path.
func (c *Controller) SendChatMessage(ctx context.Context, message, date, category string) error {
	msg := strings.TrimSpace(message)
	date = strings.TrimSpace(date)
	category = strings.TrimSpace(category)

	if msg == "" || date == "" {
		field := "message"
		if msg != "" {
			field = "date"
		}
		if c.variant.Behavior.ChatInvalidInput == config.ChatInvalidInline {
			c.mu.Lock()
			c.chat.entries = append(c.chat.entries, ChatEntry{Role: RoleError, Text: c.variant.Labels.ChatRequired})
			c.mu.Unlock()
			c.notify()
		}
		return &ValidationError{Field: field, Message: c.variant.Labels.ChatRequired}
	}

	c.mu.Lock()
	c.chat.next++
	id := c.chat.next
	c.chat.exchanges[id] = &exchange{message: msg, date: date, category: category, inFlight: true}
	c.chat.entries = append(c.chat.entries, ChatEntry{Exchange: id, Role: RoleUser, Text: msg})
	release := c.busy(&c.chatBusy)
	c.mu.Unlock()
	c.notify()
	defer release()

	reply, err := c.api.Chat(ctx, msg, date, category)
	return c.commitReply(id, reply, err)
}

// RetryChat resends a failed exchange. The user entry is not echoed again
// and the reply takes the place of the old error entry.
func (c *Controller) RetryChat(ctx context.Context, id int) error {
	c.mu.Lock()
	ex, ok := c.chat.exchanges[id]
	switch {
	case !ok:
		c.mu.Unlock()
		return fmt.Errorf("chat exchange %d not found", id)
	case ex.inFlight:
		c.mu.Unlock()
		return fmt.Errorf("chat exchange %d is still in flight", id)
	case !ex.failed:
		c.mu.Unlock()
		return fmt.Errorf("chat exchange %d did not fail", id)
	}
	ex.inFlight = true
	msg, date, category := ex.message, ex.date, ex.category
	release := c.busy(&c.chatBusy)
	c.mu.Unlock()
	defer release()
	c.notify()

	reply, err := c.api.Chat(ctx, msg, date, category)
	return c.commitReply(id, reply, err)
}

// LastFailedExchange returns the newest exchange that can be retried.
func (c *Controller) LastFailedExchange() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	best := 0
	for id, ex := range c.chat.exchanges {
		if ex.failed && !ex.inFlight && id > best {
			best = id
		}
	}
	return best, best > 0
}

// commitReply writes the outcome of exchange id. An existing reply or error
// entry for id is replaced in place so a retry never adds a second one.
// The outcome is dropped when the transcript no longer holds the exchange.
func (c *Controller) commitReply(id int, reply string, err error) error {
	entry := ChatEntry{Exchange: id, Role: RoleReply, Text: reply}
	if err != nil {
		entry = ChatEntry{Exchange: id, Role: RoleError, Text: c.variant.Labels.ChatFailed}
	}

	c.mu.Lock()
	ex, ok := c.chat.exchanges[id]
	if !ok || !c.hasUserEntry(id) {
		delete(c.chat.exchanges, id)
		c.mu.Unlock()
		debuglog.Debugf("dropping outcome of cleared chat exchange %d", id)
		return ErrSuperseded
	}
	ex.inFlight = false
	ex.failed = err != nil

	replaced := false
	for i, e := range c.chat.entries {
		if e.Exchange == id && e.Role != RoleUser {
			c.chat.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		c.chat.entries = append(c.chat.entries, entry)
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		debuglog.WithFields(map[string]any{"op": "chat", "exchange": id}).Errorf("chat request failed: %v", err)
		return &TransportError{Op: "chat", Message: c.variant.Labels.ChatFailed, Err: err}
	}
	return nil
}

// hasUserEntry reports whether the transcript still shows the message of
// exchange id. Callers hold c.mu.
func (c *Controller) hasUserEntry(id int) bool {
	for _, e := range c.chat.entries {
		if e.Exchange == id && e.Role == RoleUser {
			return true
		}
	}
	return false
}

// RestoreTranscript replaces the transcript with entries from an earlier
// session. Restored exchanges cannot be retried.
func (c *Controller) RestoreTranscript(entries []ChatEntry) {
	c.mu.Lock()
	c.chat.entries = append([]ChatEntry(nil), entries...)
	for _, e := range entries {
		if e.Exchange > c.chat.next {
			c.chat.next = e.Exchange
		}
	}
	c.mu.Unlock()
	c.notify()
}

// ClearTranscript drops every entry and forgets every exchange, including
// those still in flight; their replies are discarded when they arrive.
func (c *Controller) ClearTranscript() {
	c.mu.Lock()
	c.chat.entries = nil
	c.chat.exchanges = make(map[int]*exchange)
	c.mu.Unlock()
	c.notify()
}
