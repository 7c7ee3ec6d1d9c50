package db

import "time"

// RecipeFavorite 是 (user, recipe) 维度的收藏关系，每对至多一行。
// 重复收藏依赖唯一索引在插入时忽略。
type RecipeFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_recipe_favorites_user_recipe" json:"user_id"`
	RecipeID  string    `gorm:"not null;size:36;uniqueIndex:idx_recipe_favorites_user_recipe" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}
