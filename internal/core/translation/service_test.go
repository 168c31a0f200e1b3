package translation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProvider struct {
	calls int32
	fail  map[string]bool
	delay time.Duration
}

func (f *fakeProvider) Translate(_ context.Context, text, targetLang string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	time.Sleep(f.delay)
	if f.fail[text] {
		return "", errors.New("provider unavailable")
	}
	return targetLang + ":" + strings.ToUpper(text), nil
}

func TestTranslateEmptyStringSkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, NewMemoryCache(0), 4)

	assert.Equal(t, "", svc.Translate(context.Background(), "", LangEnglish))
	assert.Equal(t, int32(0), atomic.LoadInt32(&provider.calls))
}

func TestTranslateIsMemoized(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(provider, NewMemoryCache(0), 4)
	ctx := context.Background()

	first := svc.Translate(ctx, "계란", LangEnglish)
	second := svc.Translate(ctx, "계란", LangEnglish)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))

	// 不同的目標語言是不同的鍵
	svc.Translate(ctx, "계란", LangKorean)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	provider := &fakeProvider{fail: map[string]bool{"우유": true}}
	cache := NewMemoryCache(0)
	svc := NewService(provider, cache, 4)

	assert.Equal(t, "우유", svc.Translate(context.Background(), "우유", LangEnglish))
	// 失敗的結果不寫入快取，下次仍會重試
	assert.Equal(t, 0, cache.Len())
	svc.Translate(context.Background(), "우유", LangEnglish)
	assert.Equal(t, int32(2), atomic.LoadInt32(&provider.calls))
}

func TestTranslateAllKeepsOrder(t *testing.T) {
	provider := &fakeProvider{fail: map[string]bool{"b": true}}
	svc := NewService(provider, NewMemoryCache(0), 2)

	got := svc.TranslateAll(context.Background(), []string{"a", "b", "", "c"}, LangEnglish)
	assert.Equal(t, []string{"EN:A", "b", "", "EN:C"}, got)
}

func TestTranslateConcurrentSameKey(t *testing.T) {
	provider := &fakeProvider{delay: 20 * time.Millisecond}
	cache := NewMemoryCache(0)
	svc := NewService(provider, cache, 0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "EN:ONION", svc.Translate(context.Background(), "onion", LangEnglish))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
}

func TestTranslateAllDuplicateTextsCallOnce(t *testing.T) {
	provider := &fakeProvider{delay: 20 * time.Millisecond}
	svc := NewService(provider, NewMemoryCache(0), 4)

	got := svc.TranslateAll(context.Background(), []string{"Pancake", "Pancake", "Pancake", "Pancake"}, LangKorean)

	assert.Equal(t, []string{"KO:PANCAKE", "KO:PANCAKE", "KO:PANCAKE", "KO:PANCAKE"}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
}

func TestTranslateWithoutCacheSharesInflightCall(t *testing.T) {
	provider := &fakeProvider{delay: 50 * time.Millisecond}
	svc := NewService(provider, nil, 4)

	got := svc.TranslateAll(context.Background(), []string{"milk", "milk"}, LangKorean)

	assert.Equal(t, []string{"KO:MILK", "KO:MILK"}, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.calls))
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(2)

	_ = cache.Set(ctx, Key{Text: "a", TargetLang: LangEnglish}, "A")
	_ = cache.Set(ctx, Key{Text: "b", TargetLang: LangEnglish}, "B")
	// 讓 a 被訪問，b 成為最少使用的項目
	_, _ = cache.Get(ctx, Key{Text: "a", TargetLang: LangEnglish})
	_ = cache.Set(ctx, Key{Text: "c", TargetLang: LangEnglish}, "C")

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(ctx, Key{Text: "b", TargetLang: LangEnglish})
	assert.False(t, ok)
	val, ok := cache.Get(ctx, Key{Text: "a", TargetLang: LangEnglish})
	assert.True(t, ok)
	assert.Equal(t, "A", val)
}

func TestMemoryCacheUnboundedByDefault(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		_ = cache.Set(ctx, Key{Text: s, TargetLang: LangKorean}, s)
	}
	assert.Equal(t, 5, cache.Len())

	stats := cache.GetStats()
	assert.Equal(t, 5, stats["size"])
	assert.Equal(t, int64(0), stats["evictions"])
}
