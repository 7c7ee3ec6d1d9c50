package db

// RecipeIngredient 是菜谱与配料的关联行，附带可选的用量。
// 复合主键保证重复关联在 ON CONFLICT DO NOTHING 下被静默跳过。
type RecipeIngredient struct {
	RecipeID     string `gorm:"primaryKey;size:36" json:"recipe_id"`
	IngredientID uint   `gorm:"primaryKey" json:"ingredient_id"`
	Quantity     string `json:"quantity"`
}

// RecipeCategory 是菜谱与分类的关联行。
type RecipeCategory struct {
	RecipeID   string `gorm:"primaryKey;size:36" json:"recipe_id"`
	CategoryID uint   `gorm:"primaryKey" json:"category_id"`
}
