package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"taste-trip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker 依賴檢查
type Checker func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Clients   int                    `json:"event_clients"`
	Cache     map[string]interface{} `json:"translation_cache,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version    string
	checks     map[string]Checker
	clients    func() int
	cacheStats func() map[string]interface{}
	deadline   time.Duration
}

// Option 健康檢查選項
type Option func(*Handler)

// WithCacheStats 在 /health 回應中附上翻譯快取統計
func WithCacheStats(stats func() map[string]interface{}) Option {
	return func(h *Handler) {
		h.cacheStats = stats
	}
}

// NewHandler 創建健康檢查處理程序，clients 可為 nil
func NewHandler(version string, checks map[string]Checker, clients func() int, opts ...Option) *Handler {
	h := &Handler{
		version:  version,
		checks:   checks,
		clients:  clients,
		deadline: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.clients != nil {
		resp.Clients = h.clients()
	}
	if h.cacheStats != nil {
		resp.Cache = h.cacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck 所有依賴檢查通過才回傳 ready
func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.deadline)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			common.LogWarn("就緒檢查失敗", zap.String("dependency", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
