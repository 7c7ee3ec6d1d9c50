package db

import "time"

// Recipe 定义了菜谱模型。主键是随机 UUID，由服务层生成。
// Upvotes/Downvotes/VoteScore 是冗余计数，真实来源是 recipe_votes 账本，
// 所有变更都以相对增量在同一事务内应用。
type Recipe struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Title        string `gorm:"not null" json:"title"`
	Instructions string `gorm:"type:text;not null" json:"instructions"`
	ImageURL     string `json:"image_url"`
	AuthorID     uint   `gorm:"not null;index" json:"author_id"`
	Author       User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Upvotes      int    `gorm:"not null;default:0" json:"upvotes"`
	Downvotes    int    `gorm:"not null;default:0" json:"downvotes"`
	VoteScore    int    `gorm:"not null;default:0" json:"vote_score"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
