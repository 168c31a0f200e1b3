// Package events 將使用者資料變更即時廣播給 websocket 連線。
package events

import (
	"context"
	"sort"
	"sync"
	"time"

	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// 事件類型
const (
	TypePreferenceUpdated = "preference_updated"
	TypeFavoriteAdded     = "favorite_added"
	TypeFavoriteRemoved   = "favorite_removed"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Message websocket 訊息，只送給 subject 相同的連線
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`

	subject string
}

// Hub 管理連線並廣播訊息
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub 創建事件中心，需另外呼叫 Run
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 處理註冊與廣播直到 ctx 結束，結束時關閉所有連線
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			n := h.ClientCount()
			h.closeAll()
			common.LogInfo("事件中心已停止", zap.Int("clients_closed", n))
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			common.LogDebug("websocket client connected", zap.Int("total_clients", total))

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

// Publish 非阻塞送出 subject 的事件，佇列滿時丟棄；subject 為空時不送出
func (h *Hub) Publish(subject, eventType string, data interface{}) {
	if subject == "" {
		common.LogWarn("事件缺少 subject，略過", zap.String("type", eventType))
		return
	}
	m := Message{Type: eventType, Data: data, Timestamp: time.Now().UTC(), subject: subject}
	select {
	case h.broadcast <- m:
	default:
		common.LogWarn("事件佇列已滿，丟棄訊息", zap.String("type", eventType))
	}
}

// ClientCount 目前連線數
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	common.LogDebug("websocket client disconnected", zap.Int("total_clients", total))
}

// deliver 依連線順序送給同一 subject 的連線，送不進去的連線直接移除
func (h *Hub) deliver(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedLocked() {
		if c.subject != m.subject {
			continue
		}
		select {
		case c.send <- m:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sortedLocked() {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) sortedLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}
