package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// 翻譯快取查詢次數，result 為 hit 或 miss
	TranslationCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "translation_cache_lookups_total",
		Help: "Translation cache lookups by result",
	}, []string{"result"})

	// 翻譯失敗後以原文回傳的次數
	TranslationFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "translation_fallbacks_total",
		Help: "Translations that degraded to the original text",
	})

	// 外部 API 請求延遲
	ExternalRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "external_request_duration_seconds",
		Help:    "Latency of calls to external collaborators",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "endpoint", "outcome"})

	// 各比對分級放入的食譜數
	TierPlacements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_tier_placements_total",
		Help: "Recipes placed into each coverage tier",
	}, []string{"tier"})

	// 被過濾器排除的候選食譜數
	CandidatesExcluded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_candidates_excluded_total",
		Help: "Candidates excluded before categorization by reason",
	}, []string{"reason"})

	registerOnce sync.Once
)

// Init 註冊所有 collector，可重複呼叫
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TranslationCacheLookups,
			TranslationFallbacks,
			ExternalRequestDuration,
			TierPlacements,
			CandidatesExcluded,
		)
	})
}
