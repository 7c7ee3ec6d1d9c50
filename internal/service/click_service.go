package service

import (
	"errors"
	"log"

	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClickService 维护菜谱点击计数与可选的点击明细。
type ClickService struct {
	db *gorm.DB
}

// NewClickService creates a ClickService instance.
func NewClickService(gdb *gorm.DB) *ClickService {
	return &ClickService{db: gdb}
}

// Record 记录一次点击并返回最新计数。
// 计数行不存在则以 1 插入，存在则自增，单条 upsert 语句完成。
// 菜谱不存在时在任何写入前返回 NotFoundError。
// 已登录用户（userID 非 nil）追加一条明细；明细写入失败只记日志，
// 计数是数据源，明细是尽力而为。
func (s *ClickService) Record(recipeID string, userID *uint) (int64, error) {
	var clicks int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureRecipeExists(tx, recipeID); err != nil {
			return err
		}

		row := db.RecipeClick{RecipeID: recipeID, Clicks: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"clicks": gorm.Expr("recipe_clicks.clicks + 1"),
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// upsert 的 RETURNING 不跨方言，回读一次拿最新值
		if err := tx.First(&row, "recipe_id = ?", recipeID).Error; err != nil {
			return err
		}
		clicks = row.Clicks
		return nil
	})
	if err != nil {
		return 0, err
	}

	if userID != nil {
		if err := s.db.Create(&db.RecipeClickLog{RecipeID: recipeID, UserID: userID}).Error; err != nil {
			log.Printf("click audit log for recipe %s failed: %v", recipeID, err)
		}
	}

	return clicks, nil
}

// Count 返回某条菜谱的累计点击数，从未被点击过的菜谱计 0。
func (s *ClickService) Count(recipeID string) (int64, error) {
	var row db.RecipeClick
	err := s.db.First(&row, "recipe_id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Clicks, nil
}
