package realtime

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/logger"
)

const (
	// SendBuffer is how many events may wait for a slow client before it is dropped.
	SendBuffer   = 32
	WriteTimeout = 10 * time.Second
)

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn   Conn
	userID string
	role   string
	send   chan []byte // ditutup hub saat client dilepas
}

// parent hanya menerima event publik atau yang menyebut dirinya di Audience
func (cl *client) allowed(ev Event) bool {
	if cl.role != constants.RoleParent || ev.Public {
		return true
	}
	for _, id := range ev.Audience {
		if id == cl.userID {
			return true
		}
	}
	return false
}

// Hub menyimpan koneksi per topic: topics[topic] = set(client).
// Tiap client punya antrian send sendiri dan satu goroutine writer.
type Hub struct {
	mu      sync.Mutex
	topics  map[string]map[*client]struct{}
	clients map[Conn]*client
}

func NewHub() *Hub {
	return &Hub{
		topics:  make(map[string]map[*client]struct{}),
		clients: make(map[Conn]*client),
	}
}

// Register subscribes conn to every topic and starts its writer.
func (h *Hub) Register(conn Conn, userID, role string) {
	cl := &client{conn: conn, userID: userID, role: role, send: make(chan []byte, SendBuffer)}
	h.mu.Lock()
	if old, ok := h.clients[conn]; ok {
		h.detachLocked(old)
	}
	h.clients[conn] = cl
	h.mu.Unlock()
	h.Subscribe(conn, constants.AllTopics)
	go h.writeLoop(cl)
}

func (h *Hub) writeLoop(cl *client) {
	for payload := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.GetLogger().Debug("realtime: drop dead socket", zap.String("user_id", cl.userID), zap.Error(err))
			h.drop(cl)
			return
		}
	}
}

// Subscribe replaces the topic set of conn; unknown topics are ignored.
func (h *Hub) Subscribe(conn Conn, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cl, ok := h.clients[conn]
	if !ok {
		return
	}
	for _, set := range h.topics {
		delete(set, cl)
	}
	for _, t := range topics {
		if !IsTopic(t) {
			continue
		}
		if h.topics[t] == nil {
			h.topics[t] = make(map[*client]struct{})
		}
		h.topics[t][cl] = struct{}{}
	}
}

func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl, ok := h.clients[conn]; ok {
		h.detachLocked(cl)
	}
}

// detachLocked melepas cl dari semua map lalu menutup antriannya (sekali saja).
func (h *Hub) detachLocked(cl *client) {
	if h.clients[cl.conn] != cl {
		return
	}
	delete(h.clients, cl.conn)
	for _, set := range h.topics {
		delete(set, cl)
	}
	close(cl.send)
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	h.detachLocked(cl)
	h.mu.Unlock()
	_ = cl.conn.Close()
}

// Publish implements Publisher. It only queues; a client whose queue is full is disconnected.
func (h *Hub) Publish(ev Event) {
	payload, err := sonic.Marshal(ev)
	if err != nil {
		logger.GetLogger().Error("realtime: marshal event", zap.Error(err))
		return
	}

	var slow []*client
	h.mu.Lock()
	for cl := range h.topics[ev.Topic] {
		if !cl.allowed(ev) {
			continue
		}
		select {
		case cl.send <- payload:
		default:
			slow = append(slow, cl)
			h.detachLocked(cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range slow {
		logger.GetLogger().Warn("realtime: drop slow client", zap.String("user_id", cl.userID), zap.String("topic", ev.Topic))
		_ = cl.conn.Close()
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects everyone (shutdown).
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		all = append(all, cl)
	}
	for _, cl := range all {
		h.detachLocked(cl)
	}
	h.mu.Unlock()

	for _, cl := range all {
		_ = cl.conn.Close()
	}
}
