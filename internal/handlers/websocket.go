package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/metrics"
	"github.com/atharvakonge/paper-trader/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 16
)

// PortfolioEvent is pushed to a user's connections after each committed order.
type PortfolioEvent struct {
	Type     string          `json:"type"`
	Order    models.Order    `json:"order"`
	Position models.Position `json:"position"`
}

// The default origin check rejects cross-site upgrades; the session rides in a cookie.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsClient struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (cl *wsClient) close() {
	cl.once.Do(func() { close(cl.send) })
}

// Hub fans order events out to the owning user's websocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*wsClient]struct{})}
}

// OrderFilled never blocks: a client whose buffer is full is disconnected.
func (h *Hub) OrderFilled(userID int64, result models.OrderResult) {
	data, err := json.Marshal(PortfolioEvent{Type: "order_filled", Order: result.Order, Position: result.Position})
	if err != nil {
		log.Error("encode portfolio event", zap.Error(err))
		return
	}

	var slow []*wsClient
	h.mu.RLock()
	for cl := range h.clients[userID] {
		select {
		case cl.send <- data:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		log.Warn("dropping slow websocket client", zap.Int64("user_id", userID))
		h.unregister(cl)
	}
}

func (h *Hub) register(cl *wsClient) {
	h.mu.Lock()
	set := h.clients[cl.userID]
	if set == nil {
		set = make(map[*wsClient]struct{})
		h.clients[cl.userID] = set
	}
	set[cl] = struct{}{}
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
}

func (h *Hub) unregister(cl *wsClient) {
	h.mu.Lock()
	set, ok := h.clients[cl.userID]
	if ok {
		if _, ok = set[cl]; ok {
			delete(set, cl)
			if len(set) == 0 {
				delete(h.clients, cl.userID)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		cl.close()
		metrics.WebSocketClients.Dec()
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*wsClient
	for _, set := range h.clients {
		for cl := range set {
			all = append(all, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range all {
		h.unregister(cl)
	}
}

// Clients returns the number of connections open for userID.
func (h *Hub) Clients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// StreamPortfolio handles GET /ws/portfolio
func (h *Handler) StreamPortfolio(c *gin.Context) {
	id, _ := auth.IdentityFrom(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &wsClient{userID: id.UserID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.hub.register(cl)
	log.Debug("portfolio stream connected", zap.Int64("user_id", id.UserID))

	go h.hub.writePump(cl)
	go h.hub.readPump(cl)
}

// readPump only watches for disconnects and pongs; clients send nothing.
func (h *Hub) readPump(cl *wsClient) {
	defer h.unregister(cl)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(cl)
				return
			}
		}
	}
}
