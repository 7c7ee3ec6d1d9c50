package db

import "time"

// RecipeClick 按菜谱维度累计点击量，写入走 upsert 自增。
type RecipeClick struct {
	RecipeID  string    `gorm:"primaryKey;size:36" json:"recipe_id"`
	Clicks    int64     `gorm:"not null;default:0" json:"clicks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecipeClickLog 记录已登录用户的点击明细，只追加。
// 写入是尽力而为：失败不会回滚计数自增。
type RecipeClickLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecipeID  string    `gorm:"not null;size:36;index" json:"recipe_id"`
	UserID    *uint     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
