package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cookbook/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupResolverTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:resolver-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func TestEntityResolver_ResolveCreatesMissingNames(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	ids, err := resolver.Resolve(gdb, Ingredients, []EntityRef{
		{Name: "Tomato"},
		{Name: "  Basil "},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != 2 || ids[0] == 0 || ids[1] == 0 || ids[0] == ids[1] {
		t.Fatalf("expected two distinct ids, got %v", ids)
	}

	var names []string
	if err := gdb.Model(&db.Ingredient{}).Order("id").Pluck("name", &names).Error; err != nil {
		t.Fatalf("list ingredients: %v", err)
	}
	if len(names) != 2 || names[0] != "tomato" || names[1] != "basil" {
		t.Fatalf("expected normalized names [tomato basil], got %v", names)
	}
}

func TestEntityResolver_ResolveCollapsesDuplicateNames(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	ids, err := resolver.Resolve(gdb, Ingredients, []EntityRef{
		{Name: "Tomato"},
		{Name: " tomato "},
		{Name: "TOMATO"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ids[0] != ids[1] || ids[1] != ids[2] {
		t.Fatalf("expected all refs to resolve to one entity, got %v", ids)
	}

	var count int64
	if err := gdb.Model(&db.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single ingredient row, got %d", count)
	}
}

func TestEntityResolver_ResolveReusesExistingRowCaseInsensitive(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	existing := db.Ingredient{Name: "Tomato"}
	if err := gdb.Create(&existing).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	ids, err := resolver.Resolve(gdb, Ingredients, []EntityRef{{Name: "TOMATO"}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ids[0] != existing.ID {
		t.Fatalf("expected existing id %d, got %d", existing.ID, ids[0])
	}

	var count int64
	if err := gdb.Model(&db.Ingredient{}).Count(&count).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no new row, got %d rows", count)
	}
}

func TestEntityResolver_ResolveListsAllMissingIDs(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	existing := db.Ingredient{Name: "salt"}
	if err := gdb.Create(&existing).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}

	_, err := resolver.Resolve(gdb, Ingredients, []EntityRef{
		{ID: existing.ID},
		{ID: 97},
		{ID: 98},
		{ID: 97},
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Resource != "ingredients" {
		t.Fatalf("unexpected resource %q", notFound.Resource)
	}
	if len(notFound.IDs) != 2 || notFound.IDs[0] != "97" || notFound.IDs[1] != "98" {
		t.Fatalf("expected missing ids [97 98], got %v", notFound.IDs)
	}
}

func TestEntityResolver_ResolveRejectsEmptyName(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	_, err := resolver.Resolve(gdb, Categories, []EntityRef{{Name: "   "}})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEntityResolver_ResolveMixedIDsAndNamesAlignment(t *testing.T) {
	gdb := setupResolverTestDB(t)
	resolver := NewEntityResolver(nil)

	existing := db.Category{Name: "dessert"}
	if err := gdb.Create(&existing).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	refs := []EntityRef{
		{Name: "Dinner"},
		{ID: existing.ID},
		{Name: "dinner"},
	}
	ids, err := resolver.Resolve(gdb, Categories, refs)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != len(refs) {
		t.Fatalf("expected ids aligned with refs, got %d ids", len(ids))
	}
	if ids[1] != existing.ID {
		t.Fatalf("expected position 1 to keep provided id %d, got %d", existing.ID, ids[1])
	}
	if ids[0] != ids[2] {
		t.Fatalf("expected duplicate name refs to share one id, got %d and %d", ids[0], ids[2])
	}
	if ids[0] == existing.ID {
		t.Fatalf("expected new category, got the seeded one")
	}
}

func TestSuggestEntities(t *testing.T) {
	gdb := setupResolverTestDB(t)

	for _, name := range []string{"tomato", "potato", "basil"} {
		if err := gdb.Create(&db.Ingredient{Name: name}).Error; err != nil {
			t.Fatalf("seed ingredient %s: %v", name, err)
		}
	}

	options, err := SuggestEntities(gdb, Ingredients, "TATO", 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(options))
	}
	if options[0].Name != "potato" || options[1].Name != "tomato" {
		t.Fatalf("expected sorted matches [potato tomato], got %v", options)
	}

	limited, err := SuggestEntities(gdb, Ingredients, "", 2)
	if err != nil {
		t.Fatalf("suggest all: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(limited))
	}
}

func TestEntityResolver_ConcurrentResolveCreatesSingleRow(t *testing.T) {
	gdb := setupResolverTestDB(t)
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	// SQLite 共享缓存下跨连接并发写直接报表锁，单连接让并发调用在池里排队
	sqlDB.SetMaxOpenConns(1)

	resolver := NewEntityResolver(nil)
	const workers = 8

	ids := make([]uint, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			resolved, err := resolver.Resolve(gdb, Ingredients, []EntityRef{{Name: "Garlic"}})
			if err != nil {
				errs[slot] = err
				return
			}
			ids[slot] = resolved[0]
		}(i)
	}
	wg.Wait()

	for slot, err := range errs {
		if err != nil {
			t.Fatalf("resolver %d: %v", slot, err)
		}
	}
	for slot := 1; slot < workers; slot++ {
		if ids[slot] != ids[0] {
			t.Fatalf("resolver %d got id %d, others got %d", slot, ids[slot], ids[0])
		}
	}

	var count int64
	if err := gdb.Model(&db.Ingredient{}).Where("LOWER(name) = ?", "garlic").Count(&count).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one garlic row, got %d", count)
	}
}
