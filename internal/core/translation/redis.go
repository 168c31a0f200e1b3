package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"taste-trip/internal/infrastructure/config"
	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache 多個實例共用的翻譯快取
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache 連線 Redis 並創建翻譯快取
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("翻譯快取已初始化",
		zap.String("backend", "redis"),
		zap.String("addr", cfg.Addr),
	)

	return &RedisCache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
	}, nil
}

// Get 獲取緩存，Redis 異常視為未命中
func (r *RedisCache) Get(ctx context.Context, key Key) (string, bool) {
	val, err := r.client.Get(ctx, r.redisKey(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.LogWarn("Redis 翻譯快取讀取失敗", zap.Error(err))
		}
		metrics.TranslationCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	}
	metrics.TranslationCacheLookups.WithLabelValues("hit").Inc()
	return val, true
}

// Set 設置緩存，ttl 為 0 時永不過期
func (r *RedisCache) Set(ctx context.Context, key Key, value string) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 是否可用
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 關閉連線
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// redisKey 生成緩存鍵
func (r *RedisCache) redisKey(key Key) string {
	hash := sha256.Sum256([]byte(key.Text))
	return fmt.Sprintf("%s:%s:%s", r.prefix, key.TargetLang, hex.EncodeToString(hash[:]))
}
