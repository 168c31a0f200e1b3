package user

import (
	"context"
	"errors"
	"strings"

	"taste-trip/internal/core/events"
	"taste-trip/internal/pkg/common"

	"go.uber.org/zap"
)

// Publisher 將資料變更事件送給該使用者自己的連線
type Publisher interface {
	Publish(userID, eventType string, data interface{})
}

// Service 使用者、偏好與收藏
type Service struct {
	repo      *Repository
	publisher Publisher
}

// NewService 創建使用者服務，publisher 可為 nil
func NewService(repo *Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Profile 取得使用者與偏好，尚未設定偏好時 Preference 為 nil
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetPreference(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return &Profile{User: u, Preference: p}, nil
}

// Preference 取得使用者偏好
func (s *Service) Preference(ctx context.Context, userID string) (*Preference, error) {
	return s.repo.GetPreference(ctx, userID)
}

// SavePreference 寫入偏好，必要時先建立使用者
func (s *Service) SavePreference(ctx context.Context, account Account, diet, allergies string) (*Preference, error) {
	diet = strings.TrimSpace(diet)
	if diet != "" {
		if _, err := ParseDiet(diet); err != nil {
			return nil, common.NewValidationError("diet must be a JSON array of {name, apiValue}")
		}
	}
	if err := s.ensure(ctx, account); err != nil {
		return nil, err
	}

	p := &Preference{UserID: account.ID, Diet: diet, Allergies: strings.TrimSpace(allergies)}
	if err := s.repo.SavePreference(ctx, p); err != nil {
		common.LogError("儲存偏好失敗", zap.String("user_id", account.ID), zap.Error(err))
		return nil, err
	}
	s.publish(account.ID, events.TypePreferenceUpdated, p)
	return p, nil
}

// Favorites 列出收藏
func (s *Service) Favorites(ctx context.Context, userID string) ([]Favorite, error) {
	return s.repo.ListFavorites(ctx, userID)
}

// AddFavorite 收藏食譜，重複收藏不會重新廣播
func (s *Service) AddFavorite(ctx context.Context, account Account, recipeID int) error {
	if recipeID <= 0 {
		return common.NewValidationError("recipe_id must be a positive integer")
	}
	if err := s.ensure(ctx, account); err != nil {
		return err
	}
	created, err := s.repo.AddFavorite(ctx, account.ID, recipeID)
	if err != nil {
		return err
	}
	if created {
		s.publish(account.ID, events.TypeFavoriteAdded, Favorite{UserID: account.ID, RecipeID: recipeID})
	}
	return nil
}

// RemoveFavorite 取消收藏，不存在時回傳 ErrNotFound
func (s *Service) RemoveFavorite(ctx context.Context, userID string, recipeID int) error {
	removed, err := s.repo.RemoveFavorite(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return common.ErrNotFound
	}
	s.publish(userID, events.TypeFavoriteRemoved, Favorite{UserID: userID, RecipeID: recipeID})
	return nil
}

// Filters 由偏好推導推薦用的過敏原與飲食條件，未設定時皆為空
func (s *Service) Filters(ctx context.Context, userID string) ([]string, string, error) {
	p, err := s.repo.GetPreference(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	dietary := ""
	if options, err := ParseDiet(p.Diet); err == nil {
		for _, o := range options {
			if v := strings.TrimSpace(o.APIValue); v != "" {
				dietary = v
				break
			}
		}
	}
	return common.SplitCSV(p.Allergies), dietary, nil
}

// ParseDiet 解析飲食描述，空字串回傳空切片
func ParseDiet(diet string) ([]DietOption, error) {
	if strings.TrimSpace(diet) == "" {
		return nil, nil
	}
	var options []DietOption
	if err := common.ParseJSON(diet, &options); err != nil {
		return nil, err
	}
	return options, nil
}

func (s *Service) ensure(ctx context.Context, account Account) error {
	if account.ID == "" {
		return common.ErrUnauthorized
	}
	return s.repo.EnsureUser(ctx, &User{ID: account.ID, Email: account.Email, Name: account.Name})
}

func (s *Service) publish(userID, eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(userID, eventType, data)
	}
}
