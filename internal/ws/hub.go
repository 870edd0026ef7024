package ws

import (
	"context"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tripbuddy/internal/redis"
)

// Hub fans live notification payloads out to connected clients. It holds
// websocket connections keyed by user ID and feeds them from the Redis
// per-user channels. Delivery is best effort: a user with no connection
// simply misses the push and reads the feed later.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*websocket.Conn]bool

	push *redis.PushStore

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub. Call Run to start consuming the Redis subscription.
func NewHub(push *redis.PushStore) *Hub {
	return &Hub{
		clients: make(map[string]map[*websocket.Conn]bool),
		push:    push,
		done:    make(chan struct{}),
	}
}

// Run subscribes to the notification channels and forwards messages until
// ctx is done or Close is called.
func (h *Hub) Run(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	defer close(h.done)

	sub := h.push.Subscribe(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver(msg)
		}
	}
}

// Close stops the hub and drops every connection.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for conn := range conns {
			_ = conn.Close()
		}
	}
	h.clients = make(map[string]map[*websocket.Conn]bool)
}

// Register attaches a connection to the user's channel.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

// Unregister detaches a connection.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// deliver forwards one pub/sub message to the connections of the user the
// channel belongs to.
func (h *Hub) deliver(msg *goredis.Message) {
	userID := strings.TrimPrefix(msg.Channel, strings.TrimSuffix(redis.UserChannelPattern, "*"))
	if userID == "" {
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			logrus.WithError(err).WithField("user", userID).Debug("dropping dead websocket connection")
			h.Unregister(userID, conn)
			_ = conn.Close()
		}
	}
}
