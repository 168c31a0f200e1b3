package recipe

import (
	"context"
	"strings"

	"taste-trip/internal/core/spoonacular"
	"taste-trip/internal/core/translation"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// Searcher 外部食譜 API，由 spoonacular.Client 實作
type Searcher interface {
	FindByIngredients(ctx context.Context, ingredients []string, number int) ([]spoonacular.Recipe, error)
	ComplexSearch(ctx context.Context, params spoonacular.ComplexSearchParams) ([]spoonacular.Recipe, error)
	RecipeInformation(ctx context.Context, id int) (*spoonacular.RecipeInformation, error)
	Substitutes(ctx context.Context, ingredientName string) ([]string, error)
}

// Translator 翻譯服務，由 translation.Service 實作；失敗時回傳原文
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) string
	TranslateAll(ctx context.Context, texts []string, targetLang string) []string
}

// SearchClient 翻譯使用者輸入後呼叫外部搜尋
type SearchClient struct {
	api           Searcher
	translator    Translator
	findNumber    int
	complexNumber int
}

// NewSearchClient 建立搜尋客戶端
func NewSearchClient(api Searcher, translator Translator, findNumber, complexNumber int) *SearchClient {
	if findNumber <= 0 {
		findNumber = 100
	}
	if complexNumber <= 0 {
		complexNumber = 5
	}
	return &SearchClient{
		api:           api,
		translator:    translator,
		findNumber:    findNumber,
		complexNumber: complexNumber,
	}
}

// TranslateTerms 並行翻譯成英文並正規化
func (s *SearchClient) TranslateTerms(ctx context.Context, raw []string) IngredientSet {
	terms := make([]string, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) != "" {
			terms = append(terms, strings.TrimSpace(r))
		}
	}
	return NewIngredientSet(s.translator.TranslateAll(ctx, terms, translation.LangEnglish)...)
}

// ByIngredients 依食材搜尋，外部呼叫失敗時回傳錯誤
func (s *SearchClient) ByIngredients(ctx context.Context, ingredients IngredientSet) ([]*Candidate, error) {
	recipes, err := s.api.FindByIngredients(ctx, ingredients.Items(), s.findNumber)
	if err != nil {
		common.LogError("食材搜尋失敗", zap.Error(err), zap.Strings("ingredients", ingredients.Items()))
		return nil, common.ErrRecipeSearchFailed.Wrap(err)
	}
	return toCandidates(recipes), nil
}

// Complex 使用外部 API 的過濾條件搜尋
func (s *SearchClient) Complex(ctx context.Context, ingredients, allergies IngredientSet, cuisine, diet string) ([]*Candidate, error) {
	recipes, err := s.api.ComplexSearch(ctx, spoonacular.ComplexSearchParams{
		IncludeIngredients: ingredients.Items(),
		Intolerances:       allergies.Items(),
		Cuisine:            strings.TrimSpace(cuisine),
		Diet:               strings.TrimSpace(diet),
		Number:             s.complexNumber,
	})
	if err != nil {
		common.LogError("複合搜尋失敗", zap.Error(err))
		return nil, common.ErrComplexSearchFailed.Wrap(err)
	}
	return toCandidates(recipes), nil
}

func toCandidates(recipes []spoonacular.Recipe) []*Candidate {
	out := make([]*Candidate, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewCandidate(r))
	}
	return out
}
