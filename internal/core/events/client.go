package events

import (
	"sync/atomic"
	"time"

	"taste-trip/internal/pkg/common"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var clientIDCounter atomic.Uint64

// Client 單一 websocket 連線
type Client struct {
	id      uint64
	subject string
	hub     *Hub
	conn    *websocket.Conn
	send    chan Message
	pong    chan struct{}
}

// Attach 以 subject 身分註冊連線並開始收發，事件中心已停止時關閉連線並回傳 false
func (h *Hub) Attach(conn *websocket.Conn, subject string) bool {
	c := &Client{
		id:      clientIDCounter.Add(1),
		subject: subject,
		hub:     h,
		conn:    conn,
		send:    make(chan Message, 64),
		pong:    make(chan struct{}, 1),
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

// readPump 讀取用戶端訊息，只處理 ping；所有寫入都由 writePump 負責
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				common.LogWarn("websocket 非預期關閉", zap.Error(err))
			}
			return
		}
		if msg.Type == TypePing {
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}

// writePump 寫出廣播訊息並定期送出 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case m, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(m); err != nil {
				common.LogDebug("websocket 寫入失敗", zap.Error(err))
				return
			}

		case <-c.pong:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(Message{Type: TypePong, Timestamp: time.Now().UTC()}); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
