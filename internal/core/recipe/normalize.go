package recipe

import "strings"

// Normalize 去除前後空白並轉為小寫，空白輸入回傳空字串
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IngredientSet 正規化後的食材集合，保留第一次出現的順序
type IngredientSet struct {
	items []string
	index map[string]struct{}
}

// NewIngredientSet 正規化並去重，空字串會被略過
func NewIngredientSet(raw ...string) IngredientSet {
	s := IngredientSet{index: make(map[string]struct{}, len(raw))}
	for _, r := range raw {
		s.add(Normalize(r))
	}
	return s
}

func (s *IngredientSet) add(token string) {
	if token == "" {
		return
	}
	if _, ok := s.index[token]; ok {
		return
	}
	s.index[token] = struct{}{}
	s.items = append(s.items, token)
}

// Len 集合大小
func (s IngredientSet) Len() int {
	return len(s.items)
}

// Items 依插入順序回傳所有食材
func (s IngredientSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Contains 是否包含完全相同的食材
func (s IngredientSet) Contains(token string) bool {
	_, ok := s.index[Normalize(token)]
	return ok
}

// countNonBlank 計算非空白項目數
func countNonBlank(raw []string) int {
	n := 0
	for _, r := range raw {
		if strings.TrimSpace(r) != "" {
			n++
		}
	}
	return n
}
