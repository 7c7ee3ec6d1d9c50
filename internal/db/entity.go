package db

// Ingredient 是被多个菜谱共享的配料实体。
// name 在 LOWER(name) 唯一索引下大小写不敏感唯一（见 Migrate）。
type Ingredient struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

// Category 是被多个菜谱共享的分类实体，约束同 Ingredient。
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}
