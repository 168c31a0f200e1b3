package translation

import (
	"context"
	"sync"
	"time"

	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// Key 翻譯快取鍵：原文與目標語言
type Key struct {
	Text       string
	TargetLang string
}

// Cache 翻譯快取介面
//
// 同一個鍵的值是冪等的，因此並行寫入同一鍵時後寫入者覆蓋即可。
type Cache interface {
	Get(ctx context.Context, key Key) (string, bool)
	Set(ctx context.Context, key Key, value string) error
}

// MemoryCache 行程內的翻譯快取
type MemoryCache struct {
	mu         sync.RWMutex
	store      map[Key]cacheEntry
	maxEntries int
	stats      cacheStats
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryCache 創建新的翻譯快取，maxEntries 為 0 時不淘汰
func NewMemoryCache(maxEntries int) *MemoryCache {
	common.LogInfo("翻譯快取已初始化",
		zap.String("backend", "memory"),
		zap.Int("最大容量", maxEntries),
	)
	return &MemoryCache{
		store:      make(map[Key]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Get 獲取緩存值
func (m *MemoryCache) Get(_ context.Context, key Key) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		metrics.TranslationCacheLookups.WithLabelValues("miss").Inc()
		common.LogCacheMiss("translation")
		return "", false
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++
	metrics.TranslationCacheLookups.WithLabelValues("hit").Inc()
	common.LogCacheHit("translation")
	return entry.value, true
}

// Set 設置緩存值
func (m *MemoryCache) Set(_ context.Context, key Key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && m.maxEntries > 0 && len(m.store) >= m.maxEntries {
		m.evictLRU()
	}

	now := time.Now()
	m.store[key] = cacheEntry{
		value:      value,
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// evictLRU 淘汰最少訪問的項目
func (m *MemoryCache) evictLRU() {
	var oldestKey Key
	var oldestAccess time.Time
	var lowestAccessCount int
	found := false

	for key, entry := range m.store {
		if !found ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
			found = true
		}
	}

	if found {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogDebug("翻譯快取已淘汰(LRU)", zap.String("lang", oldestKey.TargetLang))
	}
}

// Len 目前快取項目數
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// GetStats 獲取緩存統計信息
func (m *MemoryCache) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":        len(m.store),
		"max_entries": m.maxEntries,
		"hits":        m.stats.hits,
		"misses":      m.stats.misses,
		"evictions":   m.stats.evictions,
		"hit_ratio":   ratio,
	}
}

// Close 清空快取
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[Key]cacheEntry)
	common.LogInfo("翻譯快取已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
