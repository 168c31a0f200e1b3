package middleware

import (
	"net/http"

	"taste-trip/internal/core/auth"
	"taste-trip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const identityKey = "identity"

// TokenVerifier 驗證 bearer 權杖，由 auth.Verifier 實作
type TokenVerifier interface {
	Enabled() bool
	Verify(token string) (*auth.Identity, error)
}

// RequireAuth 必須帶有有效權杖
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !verifier.Enabled() {
			common.LogError("JWT secret not configured, rejecting protected route",
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(common.ErrServiceUnavailable.Status, common.ErrorResponse{
				Code:    common.ErrServiceUnavailable.Code,
				Message: common.ErrServiceUnavailable.Message,
				Details: "authentication is not configured",
			})
			return
		}

		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}
		id, err := verifier.Verify(token)
		if err != nil {
			common.LogWarn("權杖驗證失敗", zap.Error(err), zap.String("path", c.Request.URL.Path))
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth 權杖有效時附加身分，無效或缺少時視為匿名
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier.Enabled() {
			if token, ok := auth.BearerToken(c.GetHeader("Authorization")); ok {
				if id, err := verifier.Verify(token); err == nil {
					c.Set(identityKey, id)
				} else {
					common.LogDebug("忽略無效權杖", zap.Error(err))
				}
			}
		}
		c.Next()
	}
}

// IdentityFrom 取得目前請求的身分
func IdentityFrom(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*auth.Identity)
	return id, ok && id != nil
}

func abortUnauthorized(c *gin.Context, details string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{
		Code:    common.ErrCodeUnauthorized,
		Message: common.ErrUnauthorized.Message,
		Details: details,
	})
}
