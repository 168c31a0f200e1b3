// Package fanout 提供並行呼叫多個獨立外部請求並等待全部完成的工具。
//
// 結果一律依輸入順序排列，方便呼叫端將結果與原始位置對應。
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapOr 並行執行 fn，失敗的項目以 fallback 的回傳值取代，整體不會失敗。
// limit <= 0 表示不限制並行數。
func MapOr[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) (R, error), fallback func(item T, err error) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			if err != nil {
				r = fallback(item, err)
			}
			results[i] = r
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Filter 與 MapOr 相同，但捨棄失敗的項目並保留其餘項目的相對順序。
// onError 可能被多個 goroutine 同時呼叫。
func Filter[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) (R, error), onError func(item T, err error)) []R {
	type slot struct {
		value R
		ok    bool
	}

	slots := MapOr(ctx, limit, items, func(ctx context.Context, item T) (slot, error) {
		r, err := fn(ctx, item)
		if err != nil {
			return slot{}, err
		}
		return slot{value: r, ok: true}, nil
	}, func(item T, err error) slot {
		if onError != nil {
			onError(item, err)
		}
		return slot{}
	})

	out := make([]R, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.value)
		}
	}
	return out
}
