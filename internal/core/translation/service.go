// Package translation 提供帶快取的韓英互譯。
//
// 翻譯失敗不會中斷請求：任何錯誤都會記錄並回傳原文。
package translation

import (
	"context"

	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"
	"taste-trip/internal/pkg/fanout"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 常用目標語言代碼
const (
	LangEnglish = "EN"
	LangKorean  = "KO"
)

// Service 翻譯服務
type Service struct {
	provider Provider
	cache    Cache
	limit    int
	inflight singleflight.Group
}

// NewService 創建翻譯服務，limit 為 TranslateAll 的最大並行數
func NewService(provider Provider, cache Cache, limit int) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		limit:    limit,
	}
}

// Translate 翻譯文字，失敗時回傳原文
func (s *Service) Translate(ctx context.Context, text, targetLang string) string {
	if text == "" {
		return ""
	}

	// 同一鍵同時只查一次快取與外部服務
	key := Key{Text: text, TargetLang: targetLang}
	v, err, _ := s.inflight.Do(targetLang+"\x00"+text, func() (interface{}, error) {
		if s.cache != nil {
			if val, ok := s.cache.Get(ctx, key); ok {
				return val, nil
			}
		}
		translated, err := s.provider.Translate(ctx, text, targetLang)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, translated); err != nil {
				common.LogWarn("翻譯快取寫入失敗", zap.Error(err))
			}
		}
		return translated, nil
	})
	if err != nil {
		metrics.TranslationFallbacks.Inc()
		common.LogWarn("翻譯失敗，回傳原文",
			zap.String("target_lang", targetLang),
			zap.Int("text_length", len(text)),
			zap.Error(err),
		)
		return text
	}
	return v.(string)
}

// TranslateAll 並行翻譯多段文字，結果順序與輸入相同
func (s *Service) TranslateAll(ctx context.Context, texts []string, targetLang string) []string {
	return fanout.MapOr(ctx, s.limit, texts, func(ctx context.Context, text string) (string, error) {
		return s.Translate(ctx, text, targetLang), nil
	}, func(text string, _ error) string {
		return text
	})
}
