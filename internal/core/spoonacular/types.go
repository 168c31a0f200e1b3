package spoonacular

// Ingredient 搜尋結果或詳細資料中的食材
type Ingredient struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Aisle    string  `json:"aisle,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// DisplayText 回傳適合顯示的食材文字
func (i Ingredient) DisplayText() string {
	if i.Original != "" {
		return i.Original
	}
	return i.Name
}

// Recipe findByIngredients 與 complexSearch 回傳的食譜
type Recipe struct {
	ID                    int          `json:"id"`
	Title                 string       `json:"title"`
	Image                 string       `json:"image,omitempty"`
	ImageType             string       `json:"imageType,omitempty"`
	UsedIngredientCount   int          `json:"usedIngredientCount"`
	MissedIngredientCount int          `json:"missedIngredientCount"`
	UsedIngredients       []Ingredient `json:"usedIngredients,omitempty"`
	MissedIngredients     []Ingredient `json:"missedIngredients,omitempty"`
	UnusedIngredients     []Ingredient `json:"unusedIngredients,omitempty"`
	Likes                 int          `json:"likes,omitempty"`
}

// complexSearchResponse complexSearch 的外層結構
type complexSearchResponse struct {
	Results      []Recipe `json:"results"`
	Offset       int      `json:"offset"`
	Number       int      `json:"number"`
	TotalResults int      `json:"totalResults"`
}

// RecipeInformation 食譜詳細資料
type RecipeInformation struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	Image               string       `json:"image,omitempty"`
	Summary             string       `json:"summary"`
	Instructions        string       `json:"instructions"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	Servings            int          `json:"servings"`
	SourceURL           string       `json:"sourceUrl,omitempty"`
	Cuisines            []string     `json:"cuisines"`
	Diets               []string     `json:"diets"`
	Vegan               bool         `json:"vegan"`
	Vegetarian          bool         `json:"vegetarian"`
	GlutenFree          bool         `json:"glutenFree"`
	DairyFree           bool         `json:"dairyFree"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
}

// ComplexSearchParams complexSearch 的查詢條件（皆為英文）
type ComplexSearchParams struct {
	IncludeIngredients []string
	Intolerances       []string
	Cuisine            string
	Diet               string
	Number             int
}

// substitutesResponse 替代食材回應
type substitutesResponse struct {
	Status      string   `json:"status"`
	Ingredient  string   `json:"ingredient"`
	Substitutes []string `json:"substitutes"`
	Message     string   `json:"message"`
}
