package v1

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 8
)

// WSMessage websocket 推送消息
type WSMessage struct {
	Type     string          `json:"type"` // document
	Document *model.Document `json:"document"`
}

// wsClient 单个连接；消息经 send 队列由独立 goroutine 写出
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan WSMessage
}

// Hub 管理 websocket 连接，文档变更时向所有客户端推送整份文档
type Hub struct {
	upgrader websocket.Upgrader
	log      *logrus.Entry
	mgr      *dashboard.Manager

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	cancel  func()
}

// NewHub 创建 Hub
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*wsClient]struct{}),
	}
}

// attach 订阅管理器的文档变更
func (h *Hub) attach(mgr *dashboard.Manager) {
	h.mgr = mgr
	h.cancel = mgr.Subscribe(h.Broadcast)
}

// Broadcast 把文档放入各连接的发送队列；队列已满的慢连接被断开
func (h *Hub) Broadcast(doc *model.Document) {
	msg := WSMessage{Type: "document", Document: doc}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.WithField("client", c.id).Warn("websocket client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// removeLocked 移除连接并关闭发送队列，调用方持有 h.mu
func (h *Hub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// writeLoop 串行写出发送队列；队列关闭或写失败时关闭连接
func (h *Hub) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.WithError(err).WithField("client", c.id).Debug("websocket write failed, dropping client")
			h.remove(c)
			return
		}
	}
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve 升级为 websocket，连接后先推送一次当前文档
// GET /api/ws
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsClient{id: uuid.NewString(), conn: conn, send: make(chan WSMessage, sendBuffer)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	if h.mgr != nil {
		if doc := h.mgr.Current(); doc != nil {
			client.send <- WSMessage{Type: "document", Document: doc}
		}
	}
	h.mu.Unlock()
	go h.writeLoop(client)
	h.log.WithField("client", client.id).Debug("websocket connected")

	// 客户端只读；读循环用于感知断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(client)
	h.log.WithField("client", client.id).Debug("websocket disconnected")
}

// Close 取消订阅并断开所有连接
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
