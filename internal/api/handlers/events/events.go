package events

import (
	"net/http"

	"taste-trip/internal/api/handlers"
	"taste-trip/internal/api/middleware"
	"taste-trip/internal/core/events"
	"taste-trip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler websocket 事件處理程序
type Handler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewHandler 創建事件處理程序，allowedOrigins 為空時接受所有來源
func NewHandler(hub *events.Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket 以權杖主體升級連線並加入事件中心，需掛在 RequireAuth 之後
func (h *Handler) HandleWebSocket(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		handlers.Error(c, common.ErrUnauthorized)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		common.LogWarn("websocket 升級失敗", zap.Error(err))
		return
	}
	if !h.hub.Attach(conn, id.Subject) {
		common.LogWarn("事件中心已停止，拒絕連線")
	}
}
