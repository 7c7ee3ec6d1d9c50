package db

import "time"

// RecipeVote 是 (user, recipe) 维度的投票账本，每对至多一行。
// 取消投票删除该行，而不是写入 0。
type RecipeVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_recipe_votes_user_recipe" json:"user_id"`
	RecipeID  string    `gorm:"not null;size:36;uniqueIndex:idx_recipe_votes_user_recipe" json:"recipe_id"`
	Vote      int       `gorm:"not null" json:"vote"` // 1 或 -1
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
