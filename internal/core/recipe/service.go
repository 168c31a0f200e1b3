package recipe

import (
	"context"
	"fmt"
	"strings"

	"taste-trip/internal/core/spoonacular"
	"taste-trip/internal/core/translation"
	"taste-trip/internal/pkg/common"
	"taste-trip/internal/pkg/fanout"

	"go.uber.org/zap"
)

// PreferenceReader 讀取已登入使用者的過敏原與飲食偏好
type PreferenceReader interface {
	Filters(ctx context.Context, userID string) (allergies []string, dietary string, err error)
}

// Options 推薦服務設定
type Options struct {
	MinIngredients int
	FindNumber     int
	ComplexNumber  int
	FanoutLimit    int
	Engine         Engine
}

// Service 推薦流程協調者：翻譯輸入、搜尋、補充細節、分級、翻譯標題
type Service struct {
	api         Searcher
	translator  Translator
	search      *SearchClient
	enricher    *Enricher
	engine      Engine
	preferences PreferenceReader
	minimum     int
	limit       int
}

// NewService 創建推薦服務，preferences 可為 nil
func NewService(api Searcher, translator Translator, preferences PreferenceReader, opts Options) *Service {
	if opts.MinIngredients < 1 {
		opts.MinIngredients = 1
	}
	return &Service{
		api:         api,
		translator:  translator,
		search:      NewSearchClient(api, translator, opts.FindNumber, opts.ComplexNumber),
		enricher:    NewEnricher(api, translator),
		engine:      opts.Engine,
		preferences: preferences,
		minimum:     opts.MinIngredients,
		limit:       opts.FanoutLimit,
	}
}

// MinIngredients 推薦端點要求的最少食材數
func (s *Service) MinIngredients() int {
	return s.minimum
}

// ValidateIngredients 檢查非空白食材數量是否足夠
func ValidateIngredients(ingredients []string, minimum int) error {
	if countNonBlank(ingredients) < minimum {
		if minimum == 1 {
			return common.NewValidationError("At least one ingredient is required")
		}
		return common.NewValidationError(fmt.Sprintf("At least %d ingredients are required", minimum))
	}
	return nil
}

// filters 合併請求的過濾條件與使用者偏好，請求中有值時優先
func (s *Service) filters(ctx context.Context, req RecommendRequest, userID string) (allergies []string, dietary, cuisine string) {
	allergies = common.SplitCSV(req.Allergies)
	dietary = strings.TrimSpace(req.Dietary)
	cuisine = strings.TrimSpace(req.Cuisine)

	if userID == "" || s.preferences == nil || (len(allergies) > 0 && dietary != "") {
		return allergies, dietary, cuisine
	}
	prefAllergies, prefDietary, err := s.preferences.Filters(ctx, userID)
	if err != nil {
		common.LogWarn("讀取使用者偏好失敗，略過", zap.String("user_id", userID), zap.Error(err))
		return allergies, dietary, cuisine
	}
	if len(allergies) == 0 {
		allergies = prefAllergies
	}
	if dietary == "" {
		dietary = prefDietary
	}
	return allergies, dietary, cuisine
}

// RecommendByPercent 依食材覆蓋率分級推薦
func (s *Service) RecommendByPercent(ctx context.Context, req RecommendRequest, userID string) (*CategorizedResults, error) {
	if err := ValidateIngredients(req.Ingredients, s.minimum); err != nil {
		return nil, err
	}
	rawAllergies, dietary, cuisine := s.filters(ctx, req, userID)

	user := s.search.TranslateTerms(ctx, req.Ingredients)
	allergies := s.search.TranslateTerms(ctx, rawAllergies)

	candidates, err := s.search.ByIngredients(ctx, user)
	if err != nil {
		return nil, err
	}

	f := Filters{Allergies: allergies.Items(), Dietary: dietary, Cuisine: cuisine}
	if f.NeedsDetail() {
		candidates = s.loadDetails(ctx, candidates)
	}

	results := s.engine.Categorize(user, candidates, f)
	s.decorate(ctx, results.All())

	common.LogInfo("分級推薦完成",
		zap.Strings("ingredients", user.Items()),
		zap.Int("candidates", len(candidates)),
		zap.Int("placed", results.Len()),
	)
	return results, nil
}

// Recommend 使用外部 API 的過濾條件搜尋，只附加翻譯標題
func (s *Service) Recommend(ctx context.Context, req RecommendRequest, userID string) ([]*Candidate, error) {
	if err := ValidateIngredients(req.Ingredients, s.minimum); err != nil {
		return nil, err
	}
	rawAllergies, dietary, cuisine := s.filters(ctx, req, userID)

	user := s.search.TranslateTerms(ctx, req.Ingredients)
	allergies := s.search.TranslateTerms(ctx, rawAllergies)

	candidates, err := s.search.Complex(ctx, user, allergies, cuisine, dietary)
	if err != nil {
		return nil, err
	}
	s.decorate(ctx, candidates)
	return candidates, nil
}

// Detail 取得單一食譜的翻譯詳細資料
func (s *Service) Detail(ctx context.Context, id int) (*DetailRecord, error) {
	if id <= 0 {
		return nil, common.NewValidationError("Recipe id must be a positive integer")
	}
	return s.enricher.Enrich(ctx, id)
}

// Details 並行取得多筆詳細資料，失敗的項目略過並保留輸入順序
func (s *Service) Details(ctx context.Context, ids []int) ([]*DetailRecord, error) {
	if len(ids) == 0 {
		return nil, common.NewValidationError("At least one recipe id is required")
	}
	records := fanout.Filter(ctx, s.limit, ids, s.enricher.Enrich, func(id int, err error) {
		common.LogWarn("略過無法取得的食譜", zap.Int("recipe_id", id), zap.Error(err))
	})
	return records, nil
}

// Substitutes 查詢第一個食材的替代品並翻譯成韓文
func (s *Service) Substitutes(ctx context.Context, ingredients []string) ([]string, error) {
	if err := ValidateIngredients(ingredients, 1); err != nil {
		return nil, err
	}
	terms := s.search.TranslateTerms(ctx, ingredients)
	if terms.Len() == 0 {
		return nil, common.NewValidationError("At least one ingredient is required")
	}

	subs, err := s.api.Substitutes(ctx, terms.Items()[0])
	if err != nil {
		common.LogError("取得替代食材失敗", zap.String("ingredient", terms.Items()[0]), zap.Error(err))
		return nil, common.ErrSubstitutesFailed.Wrap(err)
	}
	return s.translator.TranslateAll(ctx, subs, translation.LangKorean), nil
}

// loadDetails 並行取得候選食譜的詳細資料，失敗者移除
func (s *Service) loadDetails(ctx context.Context, candidates []*Candidate) []*Candidate {
	return fanout.Filter(ctx, s.limit, candidates, func(ctx context.Context, c *Candidate) (*Candidate, error) {
		info, err := s.api.RecipeInformation(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Detail = info
		return c, nil
	}, func(c *Candidate, err error) {
		common.LogWarn("候選食譜詳細資料失敗，移除", zap.Int("recipe_id", c.ID), zap.Error(err))
	})
}

// decorate 翻譯標題並附加 Spoonacular 網址
func (s *Service) decorate(ctx context.Context, candidates []*Candidate) {
	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	translated := s.translator.TranslateAll(ctx, titles, translation.LangKorean)
	for i, c := range candidates {
		c.TitleKR = translated[i]
		c.SpoonacularURL = SpoonacularRecipeURL(c.Title, c.ID)
	}
}

var _ Searcher = (*spoonacular.Client)(nil)
var _ Translator = (*translation.Service)(nil)
