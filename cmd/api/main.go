package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taste-trip/internal/api"
	"taste-trip/internal/api/handlers/health"
	"taste-trip/internal/core/auth"
	"taste-trip/internal/core/events"
	"taste-trip/internal/core/recipe"
	"taste-trip/internal/core/spoonacular"
	"taste-trip/internal/core/translation"
	"taste-trip/internal/core/user"
	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/infrastructure/database"
	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("spoonacular_api_key", common.MaskAPIKey(cfg.Spoonacular.APIKey)),
		zap.String("deepl_api_key", common.MaskAPIKey(cfg.DeepL.APIKey)),
		zap.String("translation_backend", cfg.Translation.Backend),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Int("min_ingredients", cfg.Recipe.MinIngredients),
		zap.String("score_mode", cfg.Recipe.ScoreMode),
	)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]health.Checker{}

	// 翻譯快取
	var cache translation.Cache
	var cacheStats func() map[string]interface{}
	switch cfg.Translation.Backend {
	case "redis":
		rc, err := translation.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			common.LogFatal("Failed to initialize redis translation cache", zap.Error(err))
		}
		defer rc.Close()
		checks["redis"] = rc.Ping
		cache = rc
	default:
		mc := translation.NewMemoryCache(cfg.Translation.MaxEntries)
		defer mc.Close()
		cacheStats = mc.GetStats
		cache = mc
	}

	deepl := translation.NewDeepLClient(cfg.DeepL)
	defer deepl.Close()
	translator := translation.NewService(deepl, cache, cfg.Recipe.FanoutLimit)

	// 資料庫
	db, err := database.Open(cfg.Database, cfg.App.Debug)
	if err != nil {
		common.LogFatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db, user.Models()...); err != nil {
		common.LogFatal("Failed to migrate database", zap.Error(err))
	}
	checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }

	// 事件中心
	hub := events.NewHub()
	go hub.Run(ctx)

	users := user.NewService(user.NewRepository(db), hub)

	spoon := spoonacular.NewClient(cfg.Spoonacular)
	defer spoon.Close()

	recipes := recipe.NewService(spoon, translator, users, recipe.Options{
		MinIngredients: cfg.Recipe.MinIngredients,
		FindNumber:     cfg.Spoonacular.FindNumber,
		ComplexNumber:  cfg.Spoonacular.ComplexNumber,
		FanoutLimit:    cfg.Recipe.FanoutLimit,
		Engine: recipe.Engine{
			Mode:            recipe.ScoreMode(cfg.Recipe.ScoreMode),
			IncludeCatchAll: cfg.Recipe.IncludeCatchAll,
			TierCap:         cfg.Recipe.TierCap,
		},
	})

	verifier := auth.NewVerifier(cfg.Auth)
	if !verifier.Enabled() {
		common.LogWarn("JWT_SECRET 未設定，使用者相關路由將回傳 503")
	}

	router := api.SetupRouter(cfg, api.Dependencies{
		Recipes:    recipes,
		Users:      users,
		Hub:        hub,
		Verifier:   verifier,
		Checks:     checks,
		CacheStats: cacheStats,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogError("Failed to start server", zap.Error(err))
			stop()
		}
	}()

	// 等待中斷信號
	<-ctx.Done()
	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
