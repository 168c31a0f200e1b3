package api

import (
	"time"

	eventsHandler "taste-trip/internal/api/handlers/events"
	"taste-trip/internal/api/handlers/health"
	recipeHandler "taste-trip/internal/api/handlers/recipe"
	userHandler "taste-trip/internal/api/handlers/user"
	"taste-trip/internal/api/middleware"
	"taste-trip/internal/core/auth"
	"taste-trip/internal/core/events"
	recipeService "taste-trip/internal/core/recipe"
	userService "taste-trip/internal/core/user"
	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 請求體大小限制 (1MB)
const maxBodySize = 1 << 20

// Dependencies 路由需要的服務
type Dependencies struct {
	Recipes    *recipeService.Service
	Users      *userService.Service
	Hub        *events.Hub
	Verifier   middleware.TokenVerifier
	Checks     map[string]health.Checker
	CacheStats func() map[string]interface{}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Verifier == nil {
		deps.Verifier = auth.NewVerifier(cfg.Auth)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查與監控
	var healthOpts []health.Option
	if deps.CacheStats != nil {
		healthOpts = append(healthOpts, health.WithCacheStats(deps.CacheStats))
	}
	hc := health.NewHandler(cfg.App.Version, deps.Checks, hubClients(deps.Hub), healthOpts...)
	router.GET("/health", hc.HealthCheck)
	router.GET("/ready", hc.ReadinessCheck)
	router.GET("/live", hc.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 推薦路由，登入者可帶權杖套用偏好
	if deps.Recipes != nil {
		recipes := router.Group("/",
			middleware.Timeout(cfg.Server.RequestTimeout),
			middleware.Deduplication(cfg.DedupWindow),
			middleware.OptionalAuth(deps.Verifier),
		)
		recipeHandler.NewHandler(deps.Recipes).Register(recipes)
	}

	// 使用者路由
	if deps.Users != nil {
		users := router.Group("/api",
			middleware.Timeout(cfg.Server.RequestTimeout),
			middleware.RequireAuth(deps.Verifier),
		)
		userHandler.NewHandler(deps.Users).Register(users)
	}

	// 即時事件
	if deps.Hub != nil {
		router.GET("/ws/events",
			middleware.RequireAuth(deps.Verifier),
			eventsHandler.NewHandler(deps.Hub, nil).HandleWebSocket,
		)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("recipes_enabled", deps.Recipes != nil),
		zap.Bool("users_enabled", deps.Users != nil),
		zap.Bool("events_enabled", deps.Hub != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}

func hubClients(hub *events.Hub) func() int {
	if hub == nil {
		return nil
	}
	return hub.ClientCount
}
