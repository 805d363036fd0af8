// Package realtime tracks live connections and the conversation channels
// they are subscribed to, and fans events out to them.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"portal/internal/chat"
)

const defaultQueueSize = 64

// Client is one live connection. Events queued on Send are written to
// the socket by the connection's write loop.
type Client struct {
	UserID string
	Send   chan Event

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the client has been unregistered.
func (c *Client) Done() <-chan struct{} { return c.done }

// Hub is the registry of live clients. It is rebuilt from nothing on
// every process start and never persisted.
type Hub struct {
	auth      chat.Authorizer
	queueSize int

	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	clients  map[*Client]map[string]struct{}
}

func NewHub(auth chat.Authorizer) *Hub {
	return &Hub{
		auth:      auth,
		queueSize: defaultQueueSize,
		channels:  map[string]map[*Client]struct{}{},
		clients:   map[*Client]map[string]struct{}{},
	}
}

func userChannel(userID string) string { return "user:" + userID }

// Register adds a connected client and subscribes it to its personal
// channel.
func (h *Hub) Register(userID string) *Client {
	c := &Client{
		UserID: userID,
		Send:   make(chan Event, h.queueSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = map[string]struct{}{}
	h.subscribe(c, userChannel(userID))
	h.mu.Unlock()

	return c
}

// Unregister drops every subscription the client holds. Safe to call more
// than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for ch := range h.clients[c] {
		h.unsubscribe(c, ch)
	}
	delete(h.clients, c)
	h.mu.Unlock()

	c.closeOnce.Do(func() { close(c.done) })
}

// Join subscribes c to ref's channel if the user belongs to ref. Refused
// joins are silent: the caller learns nothing about whether ref exists.
func (h *Hub) Join(ctx context.Context, c *Client, ref chat.Ref) bool {
	if ref.Validate() != nil {
		return false
	}
	ok, err := h.auth.IsMember(ctx, ref, c.UserID)
	if err != nil {
		slog.Warn("join membership check failed", "user", c.UserID, "conversation", ref.String(), "error", err)
		return false
	}
	if !ok {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.clients[c]; !live {
		return false
	}
	h.subscribe(c, ref.Channel())
	return true
}

// Leave unsubscribes c from ref's channel. Leaving a channel that was
// never joined is a no-op.
func (h *Hub) Leave(c *Client, ref chat.Ref) {
	if ref.Validate() != nil {
		return
	}
	h.mu.Lock()
	h.unsubscribe(c, ref.Channel())
	h.mu.Unlock()
}

// PublishMessage sends message:new to every client subscribed to the
// message's conversation.
func (h *Hub) PublishMessage(msg *chat.Message) {
	if msg == nil {
		return
	}
	h.broadcast(msg.Ref().Channel(), messageNewEvent(msg))
}

// PublishInboxUpdate signals each user's personal channel that their
// inbox changed.
func (h *Hub) PublishInboxUpdate(userIDs ...string) {
	for _, id := range userIDs {
		h.broadcast(userChannel(id), Event{Type: EventInboxUpdate})
	}
}

// Subscribers reports how many clients are subscribed to channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// broadcast never blocks: a client whose queue is full misses the event.
func (h *Hub) broadcast(channel string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.channels[channel] {
		select {
		case c.Send <- ev:
		default:
			slog.Debug("dropping event for slow client", "user", c.UserID, "channel", channel, "event", ev.Type)
		}
	}
}

// subscribe and unsubscribe require h.mu held for writing.
func (h *Hub) subscribe(c *Client, channel string) {
	set, ok := h.channels[channel]
	if !ok {
		set = map[*Client]struct{}{}
		h.channels[channel] = set
	}
	set[c] = struct{}{}
	if subs, ok := h.clients[c]; ok {
		subs[channel] = struct{}{}
	}
}

func (h *Hub) unsubscribe(c *Client, channel string) {
	if set, ok := h.channels[channel]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.channels, channel)
		}
	}
	if subs, ok := h.clients[c]; ok {
		delete(subs, channel)
	}
}
