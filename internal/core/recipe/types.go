package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"taste-trip/internal/core/spoonacular"
)

// Candidate 外部搜尋回傳的候選食譜，於單一請求內被補充翻譯與比對結果
type Candidate struct {
	spoonacular.Recipe
	TitleKR         string   `json:"title_kr,omitempty"`
	SpoonacularURL  string   `json:"spoonacular_url,omitempty"`
	MatchScore      *float64 `json:"match_score,omitempty"`
	MatchPercentage string   `json:"match_percentage,omitempty"`

	// Detail 僅在需要飲食或料理過濾時載入
	Detail *spoonacular.RecipeInformation `json:"-"`

	score Score
}

// NewCandidate 由搜尋結果建立候選食譜
func NewCandidate(r spoonacular.Recipe) *Candidate {
	return &Candidate{Recipe: r}
}

// IngredientSet 食譜本身的食材集合
func (c *Candidate) IngredientSet() IngredientSet {
	names := make([]string, 0, len(c.UsedIngredients)+len(c.MissedIngredients))
	for _, ing := range c.UsedIngredients {
		names = append(names, ing.Name)
	}
	for _, ing := range c.MissedIngredients {
		names = append(names, ing.Name)
	}
	if len(names) == 0 && c.Detail != nil {
		for _, ing := range c.Detail.ExtendedIngredients {
			names = append(names, ing.Name)
		}
	}
	return NewIngredientSet(names...)
}

// ingredientText 串接所有食材文字（小寫），供過敏原比對
func (c *Candidate) ingredientText() string {
	var sb strings.Builder
	write := func(ings []spoonacular.Ingredient) {
		for _, ing := range ings {
			sb.WriteString(ing.Name)
			sb.WriteByte(' ')
			sb.WriteString(ing.Original)
			sb.WriteByte(' ')
		}
	}
	write(c.UsedIngredients)
	write(c.MissedIngredients)
	if c.Detail != nil {
		write(c.Detail.ExtendedIngredients)
	}
	return strings.ToLower(sb.String())
}

// Score 回傳計算出的比對分數
func (c *Candidate) Score() Score {
	return c.score
}

func (c *Candidate) setScore(s Score) {
	c.score = s
	v := s.Value()
	c.MatchScore = &v
	c.MatchPercentage = fmt.Sprintf("%d%%", s.Percent())
}

// SpoonacularRecipeURL 組出 Spoonacular 網站上的食譜網址
func SpoonacularRecipeURL(title string, id int) string {
	return fmt.Sprintf("https://spoonacular.com/recipes/%s-%d", strings.ReplaceAll(title, " ", "-"), id)
}

// CategorizedResults 依分級排列的結果，JSON 輸出保留分級順序
type CategorizedResults struct {
	labels  []string
	buckets map[string][]*Candidate
}

func newCategorizedResults(labels []string) *CategorizedResults {
	r := &CategorizedResults{
		labels:  labels,
		buckets: make(map[string][]*Candidate, len(labels)),
	}
	for _, l := range labels {
		r.buckets[l] = []*Candidate{}
	}
	return r
}

// Labels 分級標籤（由高到低）
func (r *CategorizedResults) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Tier 回傳指定分級的食譜
func (r *CategorizedResults) Tier(label string) []*Candidate {
	return r.buckets[label]
}

// All 依分級順序回傳所有已放入的食譜
func (r *CategorizedResults) All() []*Candidate {
	var out []*Candidate
	for _, l := range r.labels {
		out = append(out, r.buckets[l]...)
	}
	return out
}

// Len 已放入的食譜總數
func (r *CategorizedResults) Len() int {
	n := 0
	for _, l := range r.labels {
		n += len(r.buckets[l])
	}
	return n
}

// place 放入指定分級，滿了就丟棄
func (r *CategorizedResults) place(label string, c *Candidate, limit int) bool {
	if len(r.buckets[label]) >= limit {
		return false
	}
	r.buckets[label] = append(r.buckets[label], c)
	return true
}

// MarshalJSON 依分級順序輸出物件
func (r *CategorizedResults) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range r.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.buckets[l])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DetailRecord 翻譯後的食譜詳細資料
type DetailRecord struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	TitleKR        string   `json:"title_kr"`
	Summary        string   `json:"summary"`
	Instructions   string   `json:"instructions"`
	Ingredients    []string `json:"ingredients"`
	Image          string   `json:"image"`
	ReadyInMinutes int      `json:"readyInMinutes"`
	Servings       int      `json:"servings"`
	Cuisines       []string `json:"cuisines,omitempty"`
	Vegan          bool     `json:"vegan"`
	Vegetarian     bool     `json:"vegetarian"`
	SpoonacularURL string   `json:"spoonacular_url"`
}

// RecommendRequest 推薦請求
type RecommendRequest struct {
	Ingredients []string `json:"ingredients"`
	Allergies   string   `json:"allergies,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	Dietary     string   `json:"dietary,omitempty"`
}
