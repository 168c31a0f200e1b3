package recipe

import (
	"errors"
	"net/http"
	"strconv"

	"taste-trip/internal/api/handlers"
	"taste-trip/internal/api/middleware"
	recipeService "taste-trip/internal/core/recipe"
	"taste-trip/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubstitutesRequest 替代食材請求
type SubstitutesRequest struct {
	Ingredients []string `json:"ingredients"`
}

// SubstitutesResponse 替代食材回應
type SubstitutesResponse struct {
	Substitutes []string `json:"substitutes"`
}

// Handler 食譜處理程序
type Handler struct {
	service *recipeService.Service
}

// NewHandler 創建新的食譜處理程序
func NewHandler(service *recipeService.Service) *Handler {
	return &Handler{service: service}
}

// Register 註冊食譜路由
func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/get_recipes/", h.HandleRecipes)
	r.POST("/get_recipes_by_percent/", h.HandleRecipesByPercent)
	r.GET("/get_recipe_detail/", h.HandleRecipeDetail)
	r.POST("/get_multiple_recipe_details/", h.HandleMultipleRecipeDetails)
	r.POST("/get_substitutes/", h.HandleSubstitutes)
}

// HandleRecipes 依外部過濾條件搜尋，上游失敗時以 200 回傳錯誤內容
func (h *Handler) HandleRecipes(c *gin.Context) {
	var req recipeService.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	recipes, err := h.service.Recommend(c.Request.Context(), req, userID(c))
	if err != nil {
		if errors.Is(err, common.ErrComplexSearchFailed) {
			c.JSON(http.StatusOK, gin.H{"error": common.ErrComplexSearchFailed.Message})
			return
		}
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜搜尋完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("count", len(recipes)),
	)
	c.JSON(http.StatusOK, recipes)
}

// HandleRecipesByPercent 依食材覆蓋率分級推薦
func (h *Handler) HandleRecipesByPercent(c *gin.Context) {
	var req recipeService.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	results, err := h.service.RecommendByPercent(c.Request.Context(), req, userID(c))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// HandleRecipeDetail 取得翻譯後的食譜詳細資料
func (h *Handler) HandleRecipeDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		handlers.Error(c, common.NewValidationError("id must be an integer"))
		return
	}

	record, err := h.service.Detail(c.Request.Context(), id)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// HandleMultipleRecipeDetails 批次取得詳細資料，失敗的 id 會被略過
func (h *Handler) HandleMultipleRecipeDetails(c *gin.Context) {
	var ids []int
	if err := c.ShouldBindJSON(&ids); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	records, err := h.service.Details(c.Request.Context(), ids)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// HandleSubstitutes 查詢替代食材
func (h *Handler) HandleSubstitutes(c *gin.Context) {
	var req SubstitutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	subs, err := h.service.Substitutes(c.Request.Context(), req.Ingredients)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SubstitutesResponse{Substitutes: subs})
}

func userID(c *gin.Context) string {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.Subject
	}
	return ""
}
