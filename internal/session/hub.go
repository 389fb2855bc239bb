//go:build !js

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/saves"
	"github.com/festmap/festmap/backend-go/internal/typeid"
)

type HubOptions struct {
	View         document.Viewport
	HistoryLimit int
	Saves        *saves.Service
	Logger       *slog.Logger
}

// Hub owns the connected clients. Every client edits its own Session; the
// only thing clients share is the saves store, so a changed saves list is
// announced to all of them.
type Hub struct {
	mu         sync.RWMutex
	opts       HubOptions
	logger     *slog.Logger
	clients    map[string]*Client // clientID -> client
	register   chan *Client
	unregister chan *Client
	stop       chan struct{}
	done       chan struct{}
}

func NewHub(opts HubOptions) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		opts:       opts,
		logger:     logger,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Stop disconnects every client and waits for Run to return.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	sess := New(typeid.NewSessionID(), Options{
		View:         h.opts.View,
		HistoryLimit: h.opts.HistoryLimit,
		Saves:        h.opts.Saves,
		Logger:       h.logger,
	})

	h.mu.Lock()
	if old, ok := h.clients[client.ClientID]; ok {
		close(old.send)
	}
	client.session = sess
	h.clients[client.ClientID] = client
	h.mu.Unlock()

	for _, msg := range sess.Welcome(context.Background(), client.ClientID) {
		client.Send(msg)
	}

	h.logger.Info("client joined", "client", client.ClientID, "session", sess.ID())
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	close(client.send)
	h.mu.Unlock()

	h.logger.Info("client left", "client", client.ClientID, "session", client.session.ID())
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// handleMessage runs msg against the sender's session. Replies go back to
// the sender, except a saves list after a store or delete, which every
// client receives.
func (h *Hub) handleMessage(ctx context.Context, sender *Client, msg *Message) {
	if sender.session == nil {
		return
	}
	replies := sender.session.Handle(ctx, msg)

	for _, reply := range replies {
		reply.Seq = msg.Seq
		if reply.Type == TypeSaves && (msg.Type == TypeSaveStore || msg.Type == TypeSaveDelete) {
			h.broadcastAll(reply)
			continue
		}
		h.sendTo(sender, reply)
	}
}

// Sends happen under the read lock: send channels are only closed with
// the write lock held, and Client.Send never blocks.

func (h *Hub) sendTo(client *Client, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[client.ClientID] == client {
		client.Send(msg)
	}
}

func (h *Hub) broadcastAll(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.Send(msg)
	}
}
