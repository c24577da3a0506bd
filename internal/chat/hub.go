package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"farmlink-be/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is what connected clients receive.
type Event struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

type client struct {
	id     int64
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans new chat messages out to every open websocket of each participant.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[int64]*client
	nextID   int64
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[int64]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	c.id = h.nextID
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[int64]*client)
	}
	h.clients[c.userID][c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := conns[c.id]; ok {
		delete(conns, c.id)
		close(c.send)
	}
	if len(conns) == 0 {
		delete(h.clients, c.userID)
	}
}

// Connections returns the number of open sockets for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish delivers msg to every participant of room. Slow clients drop the event.
func (h *Hub) Publish(room Room, msg Message) {
	payload, err := json.Marshal(Event{Type: "message", Message: msg})
	if err != nil {
		logger.L().Error("failed to encode chat event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range room.Participants {
		for _, c := range h.clients[p] {
			select {
			case c.send <- payload:
			default:
				logger.L().Warn("dropping chat event for slow client",
					zap.String("user_id", c.userID),
					zap.String("room_id", room.ID),
				)
			}
		}
	}
}

// Serve upgrades the request and streams events for userID until the socket
// closes or done is closed. A nil done never fires.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string, done <-chan struct{}) {
	log := logger.FromCtx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	log.Info("websocket client registered", zap.Int("connections", h.Connections(userID)))

	go c.writePump(done)
	c.readPump(h)
}

// readPump only services control frames; clients send messages over HTTP.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L().Warn("websocket closed unexpectedly", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
