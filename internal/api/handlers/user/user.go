package user

import (
	"net/http"
	"strconv"

	"taste-trip/internal/api/handlers"
	"taste-trip/internal/api/middleware"
	userService "taste-trip/internal/core/user"
	"taste-trip/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// PreferenceRequest 偏好設定請求
type PreferenceRequest struct {
	Diet      string `json:"diet"`
	Allergies string `json:"allergies"`
}

// FavoriteRequest 收藏請求
type FavoriteRequest struct {
	RecipeID int `json:"recipe_id" binding:"required"`
}

// Handler 使用者處理程序
type Handler struct {
	service *userService.Service
}

// NewHandler 創建新的使用者處理程序
func NewHandler(service *userService.Service) *Handler {
	return &Handler{service: service}
}

// Register 註冊需要驗證的使用者路由，r 應已掛上 RequireAuth
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/preferences/:user_id", h.owner, h.HandleGetPreference)
	r.POST("/preferences/:user_id", h.owner, h.HandleSavePreference)
	r.GET("/user/:user_id", h.owner, h.HandleGetUser)
	r.GET("/favorites/:user_id", h.owner, h.HandleListFavorites)
	r.POST("/favorites/:user_id", h.owner, h.HandleAddFavorite)
	r.DELETE("/favorites/:user_id/:recipe_id", h.owner, h.HandleRemoveFavorite)
}

// owner 權杖主體必須與路徑中的 user_id 相同
func (h *Handler) owner(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		handlers.Error(c, common.ErrUnauthorized)
		return
	}
	if id.Subject != c.Param("user_id") {
		handlers.Error(c, common.ErrForbidden)
		return
	}
	c.Next()
}

func account(c *gin.Context) userService.Account {
	id, _ := middleware.IdentityFrom(c)
	return userService.Account{ID: id.Subject, Email: id.Email, Name: id.Name}
}

// HandleGetPreference 取得偏好
func (h *Handler) HandleGetPreference(c *gin.Context) {
	p, err := h.service.Preference(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandleSavePreference 儲存偏好
func (h *Handler) HandleSavePreference(c *gin.Context) {
	var req PreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	p, err := h.service.SavePreference(c.Request.Context(), account(c), req.Diet, req.Allergies)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandleGetUser 取得使用者與偏好
func (h *Handler) HandleGetUser(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleListFavorites 列出收藏
func (h *Handler) HandleListFavorites(c *gin.Context) {
	favs, err := h.service.Favorites(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

// HandleAddFavorite 新增收藏
func (h *Handler) HandleAddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.InvalidRequest(c, err)
		return
	}

	if err := h.service.AddFavorite(c.Request.Context(), account(c), req.RecipeID); err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe_id": req.RecipeID})
}

// HandleRemoveFavorite 取消收藏
func (h *Handler) HandleRemoveFavorite(c *gin.Context) {
	recipeID, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		handlers.Error(c, common.NewValidationError("recipe_id must be an integer"))
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), c.Param("user_id"), recipeID); err != nil {
		handlers.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
