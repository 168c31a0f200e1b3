package recipe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"taste-trip/internal/core/spoonacular"
)

var errUpstream = errors.New("upstream unavailable")

type fakeSearcher struct {
	mu sync.Mutex

	found      []spoonacular.Recipe
	findErr    error
	complex    []spoonacular.Recipe
	complexErr error
	details    map[int]*spoonacular.RecipeInformation
	subs       []string
	subsErr    error

	calls          atomic.Int32
	lastFind       []string
	lastFindN      int
	lastComplex    spoonacular.ComplexSearchParams
	lastSubstitute string
}

func (f *fakeSearcher) FindByIngredients(_ context.Context, ingredients []string, number int) ([]spoonacular.Recipe, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastFind, f.lastFindN = ingredients, number
	f.mu.Unlock()
	return f.found, f.findErr
}

func (f *fakeSearcher) ComplexSearch(_ context.Context, params spoonacular.ComplexSearchParams) ([]spoonacular.Recipe, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastComplex = params
	f.mu.Unlock()
	return f.complex, f.complexErr
}

func (f *fakeSearcher) RecipeInformation(_ context.Context, id int) (*spoonacular.RecipeInformation, error) {
	f.calls.Add(1)
	info, ok := f.details[id]
	if !ok {
		return nil, errUpstream
	}
	return info, nil
}

func (f *fakeSearcher) Substitutes(_ context.Context, name string) ([]string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastSubstitute = name
	f.mu.Unlock()
	return f.subs, f.subsErr
}

// fakeTranslator 依字典翻譯，查不到則加上語言前綴以便辨識
type fakeTranslator struct {
	dict  map[string]string
	calls atomic.Int32
}

func (t *fakeTranslator) Translate(_ context.Context, text, lang string) string {
	if text == "" {
		return ""
	}
	t.calls.Add(1)
	if v, ok := t.dict[text]; ok {
		return v
	}
	if lang == "KO" {
		return "ko:" + text
	}
	return text
}

func (t *fakeTranslator) TranslateAll(ctx context.Context, texts []string, lang string) []string {
	out := make([]string, len(texts))
	for i, s := range texts {
		out[i] = t.Translate(ctx, s, lang)
	}
	return out
}

type fakePreferences struct {
	allergies []string
	dietary   string
	err       error
	lookups   []string
}

func (p *fakePreferences) Filters(_ context.Context, userID string) ([]string, string, error) {
	p.lookups = append(p.lookups, userID)
	return p.allergies, p.dietary, p.err
}

func ingredients(names ...string) []spoonacular.Ingredient {
	out := make([]spoonacular.Ingredient, 0, len(names))
	for _, n := range names {
		out = append(out, spoonacular.Ingredient{Name: n, Original: n})
	}
	return out
}

// recipeWith 建立候選食譜，used 與 missed 以逗號分隔
func recipeWith(id int, title string, used, missed string) spoonacular.Recipe {
	r := spoonacular.Recipe{ID: id, Title: title}
	if used != "" {
		r.UsedIngredients = ingredients(strings.Split(used, ",")...)
	}
	if missed != "" {
		r.MissedIngredients = ingredients(strings.Split(missed, ",")...)
	}
	r.UsedIngredientCount = len(r.UsedIngredients)
	r.MissedIngredientCount = len(r.MissedIngredients)
	return r
}
