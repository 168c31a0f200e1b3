package recipe

import (
	"sort"
	"strings"

	"taste-trip/internal/infrastructure/metrics"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// ScoreMode 比對分數的計算方式
type ScoreMode string

const (
	// ScoreCoverage 符合的使用者食材數 / 食譜食材數
	ScoreCoverage ScoreMode = "coverage"
	// ScoreAPICounts used / (used + missed)，直接採用外部 API 的計數
	ScoreAPICounts ScoreMode = "api_counts"
)

// CatchAllLabel 低於 30% 的分級標籤
const CatchAllLabel = "<30%"

// Tier 分級標籤與最低百分比
type Tier struct {
	Label      string
	MinPercent int
}

// Tiers 由高到低排列的分級
var Tiers = []Tier{
	{Label: "100%", MinPercent: 100},
	{Label: "80%", MinPercent: 80},
	{Label: "50%", MinPercent: 50},
	{Label: "30%", MinPercent: 30},
}

// Score 以分子分母表示的比對分數，避免浮點誤差
type Score struct {
	Matched int
	Total   int
}

// Value 0 到 1 之間的分數
func (s Score) Value() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Total)
}

// Percent 無條件捨去的整數百分比
func (s Score) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Matched * 100 / s.Total
}

// greater 以交叉相乘比較兩個分數
func (s Score) greater(o Score) bool {
	return s.Matched*o.Total > o.Matched*s.Total
}

// Matches 兩個正規化食材的雙向子字串比對
func Matches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// CoverageScore 計算使用者食材覆蓋食譜食材的比例，任一集合為空則回傳 false
func CoverageScore(user, recipe IngredientSet) (Score, bool) {
	if user.Len() == 0 || recipe.Len() == 0 {
		return Score{}, false
	}
	matched := 0
	for _, u := range user.items {
		for _, r := range recipe.items {
			if Matches(u, r) {
				matched++
				break
			}
		}
	}
	if matched > recipe.Len() {
		matched = recipe.Len()
	}
	return Score{Matched: matched, Total: recipe.Len()}, true
}

// APICountScore 以外部 API 回傳的 used/missed 計數計算分數
func APICountScore(used, missed int) (Score, bool) {
	total := used + missed
	if total <= 0 {
		return Score{}, false
	}
	if used > total {
		used = total
	}
	return Score{Matched: used, Total: total}, true
}

// Filters 單一請求的過濾條件
type Filters struct {
	Allergies []string
	Dietary   string
	Cuisine   string
}

// NeedsDetail 飲食或料理過濾需要食譜詳細資料
func (f Filters) NeedsDetail() bool {
	return strings.TrimSpace(f.Dietary) != "" || strings.TrimSpace(f.Cuisine) != ""
}

// allergyHit 任一過敏原出現在食譜食材文字中
func allergyHit(c *Candidate, allergies []string) bool {
	if len(allergies) == 0 {
		return false
	}
	text := c.ingredientText()
	for _, a := range allergies {
		if a = Normalize(a); a != "" && strings.Contains(text, a) {
			return true
		}
	}
	return false
}

// satisfiesDiet 指定 vegan 時必須為 vegan，其餘飲食需求接受 vegan 或 vegetarian
func satisfiesDiet(c *Candidate, dietary string) bool {
	d := Normalize(dietary)
	if d == "" {
		return true
	}
	if c.Detail == nil {
		return false
	}
	if strings.Contains(d, "vegan") {
		return c.Detail.Vegan
	}
	return c.Detail.Vegan || c.Detail.Vegetarian
}

// satisfiesCuisine 食譜未標示料理類型時不排除
func satisfiesCuisine(c *Candidate, cuisine string) bool {
	want := Normalize(cuisine)
	if want == "" || c.Detail == nil || len(c.Detail.Cuisines) == 0 {
		return true
	}
	for _, have := range c.Detail.Cuisines {
		if Normalize(have) == want {
			return true
		}
	}
	return false
}

// Engine 比對與分級設定
type Engine struct {
	Mode            ScoreMode
	IncludeCatchAll bool
	TierCap         int
}

// DefaultEngine 預設設定
func DefaultEngine() Engine {
	return Engine{Mode: ScoreCoverage, TierCap: 5}
}

func (e Engine) labels() []string {
	labels := make([]string, 0, len(Tiers)+1)
	for _, t := range Tiers {
		labels = append(labels, t.Label)
	}
	if e.IncludeCatchAll {
		labels = append(labels, CatchAllLabel)
	}
	return labels
}

// tierFor 依百分比決定分級，不符合任何分級時回傳 false
func (e Engine) tierFor(s Score) (string, bool) {
	p := s.Percent()
	for _, t := range Tiers {
		if p >= t.MinPercent {
			return t.Label, true
		}
	}
	if e.IncludeCatchAll {
		return CatchAllLabel, true
	}
	return "", false
}

func (e Engine) score(user IngredientSet, c *Candidate) (Score, bool) {
	if e.Mode == ScoreAPICounts {
		return APICountScore(c.UsedIngredientCount, c.MissedIngredientCount)
	}
	return CoverageScore(user, c.IngredientSet())
}

// Categorize 過濾、評分並依分數由高到低放入分級，每級最多 TierCap 筆
func (e Engine) Categorize(user IngredientSet, candidates []*Candidate, f Filters) *CategorizedResults {
	results := newCategorizedResults(e.labels())
	if user.Len() == 0 {
		return results
	}

	scored := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if c.IngredientSet().Len() == 0 {
			metrics.CandidatesExcluded.WithLabelValues("no_ingredients").Inc()
			continue
		}
		if allergyHit(c, f.Allergies) {
			metrics.CandidatesExcluded.WithLabelValues("allergy").Inc()
			continue
		}
		if !satisfiesDiet(c, f.Dietary) {
			metrics.CandidatesExcluded.WithLabelValues("dietary").Inc()
			continue
		}
		if !satisfiesCuisine(c, f.Cuisine) {
			metrics.CandidatesExcluded.WithLabelValues("cuisine").Inc()
			continue
		}
		s, ok := e.score(user, c)
		if !ok {
			metrics.CandidatesExcluded.WithLabelValues("no_ingredients").Inc()
			continue
		}
		c.setScore(s)
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score.greater(scored[j].score)
	})

	limit := e.TierCap
	if limit <= 0 {
		limit = 5
	}
	for _, c := range scored {
		label, ok := e.tierFor(c.score)
		if !ok {
			metrics.CandidatesExcluded.WithLabelValues("low_score").Inc()
			continue
		}
		if results.place(label, c, limit) {
			metrics.TierPlacements.WithLabelValues(label).Inc()
		}
	}

	common.LogDebug("分級完成",
		zap.Int("candidates", len(candidates)),
		zap.Int("scored", len(scored)),
		zap.Int("placed", results.Len()),
	)
	return results
}
