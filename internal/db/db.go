package db

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行迁移。
// databaseURL 非空时连接 PostgreSQL，否则回退到本地 SQLite 文件。
func Init(databaseURL, sqlitePath string) error {
	var dialector gorm.Dialector
	if strings.TrimSpace(databaseURL) != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		path := strings.TrimSpace(sqlitePath)
		if path == "" {
			path = "cookbook.db"
		}
		if err := ensureParentDir(path); err != nil {
			return err
		}
		dialector = sqlite.Open(path)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	log.Println("database connection established")
	return Migrate(DB)
}

// Migrate 执行自动迁移，并补上 AutoMigrate 无法表达的函数索引。
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}

	if err := gdb.AutoMigrate(
		&User{},
		&Recipe{},
		&Ingredient{},
		&Category{},
		&RecipeIngredient{},
		&RecipeCategory{},
		&RecipeVote{},
		&RecipeFavorite{},
		&RecipeClick{},
		&RecipeClickLog{},
	); err != nil {
		return err
	}

	// 名称在大小写不敏感比较下唯一，并发的条件插入依赖这两个索引兜底
	for _, stmt := range []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ingredients_name_lower ON ingredients (LOWER(name))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_lower ON categories (LOWER(name))`,
	} {
		if err := gdb.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
