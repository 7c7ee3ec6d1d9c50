package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/cookbook/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupFuzzyTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:fuzzy-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func TestTrigramMatcherExactMatchFirst(t *testing.T) {
	gdb := setupFuzzyTestDB(t)

	existing := db.Ingredient{Name: "soy sauce"}
	if err := gdb.Create(&existing).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	id, ok := TrigramMatcher{}.Match(gdb, Ingredients, "soy sauce")
	if !ok {
		t.Fatalf("expected exact match to hit")
	}
	if id != existing.ID {
		t.Fatalf("expected id %d, got %d", existing.ID, id)
	}
}

// SQLite 没有 similarity()，模糊层必须静默降级为未命中而不是报错。
func TestTrigramMatcherDegradesWithoutSimilarityFunction(t *testing.T) {
	gdb := setupFuzzyTestDB(t)

	if err := gdb.Create(&db.Ingredient{Name: "soy sauce"}).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	if _, ok := (TrigramMatcher{}.Match(gdb, Ingredients, "soy sause")); ok {
		t.Fatalf("expected miss when similarity() is unavailable")
	}

	// 降级后连接必须仍然可用
	var count int64
	if err := gdb.Model(&db.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("connection unusable after degraded match: %v", err)
	}
}

func TestTrigramMatcherKeepsOuterTransactionAlive(t *testing.T) {
	gdb := setupFuzzyTestDB(t)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		if _, ok := (TrigramMatcher{}.Match(tx, Categories, "no such name")); ok {
			t.Fatalf("expected miss inside transaction")
		}
		// 失败的相似度查询不能毒化外层事务
		return tx.Create(&db.Category{Name: "dinner"}).Error
	})
	if err != nil {
		t.Fatalf("outer transaction failed after fuzzy miss: %v", err)
	}

	var count int64
	if err := gdb.Model(&db.Category{}).Count(&count).Error; err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed category row, got %d", count)
	}
}
