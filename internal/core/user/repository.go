package user

import (
	"context"
	"errors"

	"taste-trip/internal/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 使用者資料存取
type Repository struct {
	db *gorm.DB
}

// NewRepository 創建使用者資料存取層
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureUser 不存在時建立，存在時更新 email 與名稱
func (r *Repository) EnsureUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(u).Error
}

// GetUser 依 ID 取得使用者
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetPreference 取得使用者偏好
func (r *Repository) GetPreference(ctx context.Context, userID string) (*Preference, error) {
	var p Preference
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SavePreference 新增或覆寫使用者偏好
func (r *Repository) SavePreference(ctx context.Context, p *Preference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"diet", "allergies", "updated_at"}),
	}).Create(p).Error
}

// ListFavorites 依收藏時間排序
func (r *Repository) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	var favs []Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&favs).Error
	return favs, err
}

// AddFavorite 重複收藏不會出錯，回傳是否為新收藏
func (r *Repository) AddFavorite(ctx context.Context, userID string, recipeID int) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Favorite{UserID: userID, RecipeID: recipeID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveFavorite 回傳是否有刪除資料
func (r *Repository) RemoveFavorite(ctx context.Context, userID string, recipeID int) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound.Wrap(err)
	}
	return err
}
