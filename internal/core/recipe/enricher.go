package recipe

import (
	"context"
	"strings"

	"taste-trip/internal/core/spoonacular"
	"taste-trip/internal/core/translation"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// Enricher 取得食譜詳細資料並翻譯成韓文
type Enricher struct {
	api        Searcher
	translator Translator
}

// NewEnricher 建立詳細資料補充器
func NewEnricher(api Searcher, translator Translator) *Enricher {
	return &Enricher{api: api, translator: translator}
}

// Enrich 取得並翻譯單一食譜，外部失敗時回傳 ErrRecipeDetailFailed
func (e *Enricher) Enrich(ctx context.Context, id int) (*DetailRecord, error) {
	info, err := e.api.RecipeInformation(ctx, id)
	if err != nil {
		common.LogWarn("取得食譜詳細資料失敗", zap.Int("recipe_id", id), zap.Error(err))
		return nil, common.ErrRecipeDetailFailed.Wrap(err)
	}
	return e.translate(ctx, info), nil
}

// translate 標題、摘要、步驟與食材在同一批次並行翻譯
func (e *Enricher) translate(ctx context.Context, info *spoonacular.RecipeInformation) *DetailRecord {
	ingredients := displayTexts(info.ExtendedIngredients)

	texts := make([]string, 0, 3+len(ingredients))
	texts = append(texts, info.Title, info.Summary, info.Instructions)
	texts = append(texts, ingredients...)
	translated := e.translator.TranslateAll(ctx, texts, translation.LangKorean)

	return &DetailRecord{
		ID:             info.ID,
		Title:          info.Title,
		TitleKR:        translated[0],
		Summary:        translated[1],
		Instructions:   translated[2],
		Ingredients:    translated[3:],
		Image:          info.Image,
		ReadyInMinutes: info.ReadyInMinutes,
		Servings:       info.Servings,
		Cuisines:       info.Cuisines,
		Vegan:          info.Vegan,
		Vegetarian:     info.Vegetarian,
		SpoonacularURL: SpoonacularRecipeURL(info.Title, info.ID),
	}
}

// displayTexts 略過空白的食材名稱
func displayTexts(ings []spoonacular.Ingredient) []string {
	out := make([]string, 0, len(ings))
	for _, ing := range ings {
		if t := strings.TrimSpace(ing.DisplayText()); t != "" {
			out = append(out, t)
		}
	}
	return out
}
