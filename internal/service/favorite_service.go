package service

import (
	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteService 维护用户的菜谱收藏。
type FavoriteService struct {
	db      *gorm.DB
	recipes *RecipeService
}

// NewFavoriteService creates a FavoriteService instance.
func NewFavoriteService(gdb *gorm.DB) *FavoriteService {
	return &FavoriteService{db: gdb, recipes: NewRecipeService(gdb)}
}

// Add 把菜谱加入用户的收藏，重复收藏是幂等空操作。
// 菜谱不存在时在任何写入前返回 NotFoundError。
func (s *FavoriteService) Add(userID uint, recipeID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}
		row := db.RecipeFavorite{UserID: userID, RecipeID: recipeID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	})
}

// Remove 取消收藏，从未收藏过时是空操作。
func (s *FavoriteService) Remove(userID uint, recipeID string) error {
	return s.db.
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&db.RecipeFavorite{}).Error
}

// List 返回用户收藏的全部菜谱视图，按菜谱创建时间倒序。
func (s *FavoriteService) List(userID uint) ([]RecipeView, error) {
	var recipes []db.Recipe
	err := s.db.
		Where("id IN (SELECT recipe_id FROM recipe_favorites WHERE user_id = ?)", userID).
		Order("created_at DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	views := make([]*RecipeView, len(recipes))
	result := make([]RecipeView, len(recipes))
	for i := range recipes {
		result[i].Recipe = recipes[i]
		views[i] = &result[i]
	}
	if err := s.recipes.populateViews(s.db, views); err != nil {
		return nil, err
	}
	return result, nil
}
