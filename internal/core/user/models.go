package user

import "time"

// User 由身分權杖建立的使用者
type User struct {
	ID        string    `gorm:"primaryKey;size:128" json:"id"`
	Email     string    `gorm:"size:255" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 資料表名稱
func (User) TableName() string {
	return "users"
}

// Preference 使用者飲食偏好
// Diet 為前端產生的 JSON 描述 [{"name":..,"apiValue":..}]，Allergies 為逗號分隔字串
type Preference struct {
	UserID    string    `gorm:"primaryKey;size:128" json:"user_id"`
	Diet      string    `gorm:"type:text" json:"diet"`
	Allergies string    `gorm:"type:text" json:"allergies"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 資料表名稱
func (Preference) TableName() string {
	return "user_preferences"
}

// Favorite 收藏的食譜
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:128;not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  int       `gorm:"not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 資料表名稱
func (Favorite) TableName() string {
	return "recipe_favorites"
}

// Models 需要遷移的資料表
func Models() []interface{} {
	return []interface{}{&User{}, &Preference{}, &Favorite{}}
}

// Account 權杖中的使用者身分
type Account struct {
	ID    string
	Email string
	Name  string
}

// Profile 使用者與其偏好
type Profile struct {
	User       *User       `json:"user"`
	Preference *Preference `json:"preference"`
}

// DietOption 飲食描述中的單一選項
type DietOption struct {
	Name     string `json:"name"`
	APIValue string `json:"apiValue"`
}
