// Package notify delivers reminders to connected dashboards over WebSocket and owns the
// user's notification settings.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthdash/internal/model"
	"healthdash/internal/reminder"
)

// Message types exchanged with dashboards.
const (
	TypeReminder           = "reminder"
	TypePermissionRequest  = "permission_request"
	TypePermissionResponse = "permission_response"
)

const sendBuffer = 16

// ErrNoSubscribers is returned when a broadcast reaches nobody.
var ErrNoSubscribers = errors.New("no connected dashboards")

// Message is a server to client frame.
type Message struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type clientMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Permission string `json:"permission"`
}

// Conn is the part of a WebSocket connection the hub uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn Conn
	send chan []byte
	done chan struct{}
}

// Hub fans messages out to every connected dashboard.
type Hub struct {
	log           *zap.Logger
	promptTimeout time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
	pending map[string]chan model.Permission
	closed  bool
}

// NewHub creates a hub. promptTimeout bounds how long a permission prompt waits.
func NewHub(log *zap.Logger, promptTimeout time.Duration) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if promptTimeout <= 0 {
		promptTimeout = 30 * time.Second
	}
	return &Hub{
		log:           log.With(zap.String("component", "notify_hub")),
		promptTimeout: promptTimeout,
		clients:       make(map[*client]struct{}),
		pending:       make(map[string]chan model.Permission),
	}
}

var (
	_ reminder.Notifier = (*Hub)(nil)
	_ Prompter          = (*Hub)(nil)
)

// Upgrade rejects plain HTTP requests on the WebSocket route.
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves dashboard connections.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) { h.Serve(c) })
}

// Serve runs one connection until it closes. It returns only after its writer stopped.
func (h *Hub) Serve(conn Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	go h.writeLoop(c)

	defer func() {
		h.unregister(c)
		<-c.done
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		h.handleInbound(data)
	}
}

// Clients returns the number of connected dashboards.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every dashboard. Slow clients whose buffer is full miss it.
func (h *Hub) Broadcast(msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return ErrNoSubscribers
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Warn("dropping message for slow client", zap.String("type", msg.Type))
		}
	}
	return nil
}

// Notify implements reminder.Notifier.
func (h *Hub) Notify(_ context.Context, r reminder.Reminder) error {
	return h.Broadcast(Message{Type: TypeReminder, Payload: r})
}

// RequestPermission asks the connected dashboards for the platform permission and
// returns the first answer. Without a dashboard, or when nobody answers in time, the
// outcome is PermissionDefault.
func (h *Hub) RequestPermission(ctx context.Context) (model.Permission, error) {
	id := uuid.NewString()
	answer := make(chan model.Permission, 1)

	h.mu.Lock()
	h.pending[id] = answer
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}()

	if err := h.Broadcast(Message{Type: TypePermissionRequest, ID: id}); err != nil {
		h.log.Info("permission prompt not delivered", zap.Error(err))
		return model.PermissionDefault, nil
	}

	timer := time.NewTimer(h.promptTimeout)
	defer timer.Stop()

	select {
	case p := <-answer:
		return p, nil
	case <-timer.C:
		h.log.Info("permission prompt timed out", zap.String("prompt_id", id))
		return model.PermissionDefault, nil
	case <-ctx.Done():
		return model.PermissionDefault, ctx.Err()
	}
}

// Close disconnects every dashboard. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.log.Debug("dashboard connected", zap.Int("clients", len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.log.Debug("dashboard disconnected", zap.Int("clients", len(h.clients)))
}

func (h *Hub) writeLoop(c *client) {
	defer close(c.done)
	for b := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Warn("websocket write failed", zap.Error(err))
			_ = c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (h *Hub) handleInbound(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Debug("ignoring malformed client message", zap.Error(err))
		return
	}
	if msg.Type != TypePermissionResponse {
		return
	}
	p, err := model.ParsePermission(msg.Permission)
	if err != nil {
		h.log.Debug("ignoring permission response", zap.Error(err))
		return
	}

	h.mu.Lock()
	ch, ok := h.pending[msg.ID]
	if ok {
		delete(h.pending, msg.ID)
	}
	h.mu.Unlock()

	if ok {
		ch <- p
	}
}
