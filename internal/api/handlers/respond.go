package handlers

import (
	"taste-trip/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 將錯誤轉為 {"error", "code"} 回應
func Error(c *gin.Context, err error) {
	status, body := common.ToResponse(err)
	if status >= 500 {
		common.LogError("請求處理失敗",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("request_id", requestid.Get(c)),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// InvalidRequest 請求格式錯誤
func InvalidRequest(c *gin.Context, err error) {
	common.LogWarn("請求格式無效",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
	)
	c.AbortWithStatusJSON(common.ErrInvalidRequest.Status, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: common.ErrInvalidRequest.Message,
	})
}
