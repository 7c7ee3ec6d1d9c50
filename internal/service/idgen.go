package service

import (
	"errors"

	"github.com/cookbook/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxIDAttempts = 5

// 测试中可替换以制造碰撞
var newRecipeID = uuid.NewString

// AllocateRecipeID 生成一个未被占用的随机菜谱 ID。
// 存在性检查只是快速路径：检查与插入之间仍可能被并发者抢先，
// 真正的兜底是主键约束，插入方要把重复键错误当作重试信号。
func AllocateRecipeID(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := newRecipeID()
		var count int64
		if err := tx.Model(&db.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", ErrIDGenerationExhausted
}

// insertRecipeWithFreshID 分配 ID 并插入菜谱行。
// 主键冲突（两个分配者在检查与插入之间竞争同一 ID）按“重试”处理，
// 绝不视为插入成功。
func insertRecipeWithFreshID(tx *gorm.DB, recipe *db.Recipe) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := AllocateRecipeID(tx)
		if err != nil {
			return err
		}
		recipe.ID = id
		// SAVEPOINT 包住插入：PostgreSQL 中失败语句会污染整个事务，
		// 回滚到保存点后外层事务才能继续重试
		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(recipe).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrIDGenerationExhausted
}
