package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"taste-trip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// dedupPruneSize 記錄數超過此值時清除過期指紋
const dedupPruneSize = 1024

type requestCache struct {
	sync.Mutex
	requests map[string]time.Time
}

// prune 移除超過 10 倍時間窗的指紋，呼叫前須持有鎖
func (rc *requestCache) prune(now time.Time, window time.Duration) {
	for k, t := range rc.requests {
		if now.Sub(t) > 10*window {
			delete(rc.requests, k)
		}
	}
}

// Deduplication 在時間窗內拒絕相同路徑與內容的重複 POST
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	cache := &requestCache{requests: make(map[string]time.Time)}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 帶權杖的請求依權杖區分
		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.GetHeader("Authorization")
		if bodyHash != "" {
			fingerprint += ":" + bodyHash
		}

		now := time.Now()
		cache.Lock()
		if last, ok := cache.requests[fingerprint]; ok && now.Sub(last) <= window {
			cache.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "Request too frequent",
			})
			return
		}
		cache.requests[fingerprint] = now
		if len(cache.requests) > dedupPruneSize {
			cache.prune(now, window)
		}
		cache.Unlock()

		c.Next()
	}
}
