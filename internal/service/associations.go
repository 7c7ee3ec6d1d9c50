package service

import (
	"fmt"

	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRow 是一条待写入的关联记录。
type LinkRow struct {
	EntityID uint
	Quantity string
}

// LinkAll 把菜谱与一组已解析的实体批量建立关联。
// 违反 (recipe_id, entity_id) 唯一约束的行被静默跳过而不是整批失败；
// 调用成功后输入中的每一行要么新写入要么本就存在。
// 原子性由外层事务保证，本函数不是独立的原子单元。
func LinkAll(tx *gorm.DB, table AttributeTable, recipeID string, rows []LinkRow) error {
	if len(rows) == 0 {
		return nil
	}

	switch table {
	case Ingredients:
		records := make([]db.RecipeIngredient, 0, len(rows))
		for _, row := range rows {
			records = append(records, db.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: row.EntityID,
				Quantity:     row.Quantity,
			})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
	case Categories:
		records := make([]db.RecipeCategory, 0, len(rows))
		for _, row := range rows {
			records = append(records, db.RecipeCategory{
				RecipeID:   recipeID,
				CategoryID: row.EntityID,
			})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
	}
	return fmt.Errorf("unknown attribute table %d", table)
}

// UnlinkAll 删除菜谱在某类属性上的全部关联。
// 整表替换必须与随后的 LinkAll 处于同一事务，避免出现可见的空关联窗口。
func UnlinkAll(tx *gorm.DB, table AttributeTable, recipeID string) error {
	switch table {
	case Ingredients:
		return tx.Where("recipe_id = ?", recipeID).Delete(&db.RecipeIngredient{}).Error
	case Categories:
		return tx.Where("recipe_id = ?", recipeID).Delete(&db.RecipeCategory{}).Error
	}
	return fmt.Errorf("unknown attribute table %d", table)
}
