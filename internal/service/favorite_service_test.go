package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cookbook/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupFavoriteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:favorite-%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func seedFavoriteFixture(t *testing.T, gdb *gorm.DB) (uint, string) {
	t.Helper()
	user := db.User{Username: "collector", Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	recipe := db.Recipe{ID: "recipe-1", Title: "番茄炒蛋", Instructions: "做法", AuthorID: user.ID}
	if err := gdb.Create(&recipe).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return user.ID, recipe.ID
}

func countFavorites(t *testing.T, gdb *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	if err := gdb.Model(&db.RecipeFavorite{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	return count
}

func TestFavoriteService_AddIsIdempotent(t *testing.T) {
	gdb := setupFavoriteTestDB(t)
	svc := NewFavoriteService(gdb)
	userID, recipeID := seedFavoriteFixture(t, gdb)

	if err := svc.Add(userID, recipeID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.Add(userID, recipeID); err != nil {
		t.Fatalf("repeated add: %v", err)
	}

	if got := countFavorites(t, gdb, userID); got != 1 {
		t.Fatalf("expected a single favorite row, got %d", got)
	}
}

func TestFavoriteService_AddMissingRecipe(t *testing.T) {
	gdb := setupFavoriteTestDB(t)
	svc := NewFavoriteService(gdb)
	userID, _ := seedFavoriteFixture(t, gdb)

	err := svc.Add(userID, "no-such-recipe")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if got := countFavorites(t, gdb, userID); got != 0 {
		t.Fatalf("expected no favorite rows after failed add, got %d", got)
	}
}

func TestFavoriteService_RemoveWithoutFavoriteIsNoop(t *testing.T) {
	gdb := setupFavoriteTestDB(t)
	svc := NewFavoriteService(gdb)
	userID, recipeID := seedFavoriteFixture(t, gdb)

	if err := svc.Remove(userID, recipeID); err != nil {
		t.Fatalf("remove without favorite: %v", err)
	}

	if err := svc.Add(userID, recipeID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(userID, recipeID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := countFavorites(t, gdb, userID); got != 0 {
		t.Fatalf("expected favorite removed, got %d rows", got)
	}
}

func TestFavoriteService_ListReturnsPopulatedViews(t *testing.T) {
	gdb := setupFavoriteTestDB(t)
	svc := NewFavoriteService(gdb)
	userID, recipeID := seedFavoriteFixture(t, gdb)

	other := db.Recipe{ID: "recipe-2", Title: "红烧排骨", Instructions: "做法", AuthorID: userID}
	if err := gdb.Create(&other).Error; err != nil {
		t.Fatalf("seed second recipe: %v", err)
	}
	if err := gdb.Create(&db.RecipeIngredient{RecipeID: recipeID, IngredientID: mustCreateIngredient(t, gdb, "tomato"), Quantity: "2 个"}).Error; err != nil {
		t.Fatalf("seed ingredient link: %v", err)
	}

	if err := svc.Add(userID, recipeID); err != nil {
		t.Fatalf("add: %v", err)
	}

	views, err := svc.List(userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(views))
	}
	view := views[0]
	if view.ID != recipeID || view.Title != "番茄炒蛋" {
		t.Fatalf("unexpected favorite %q (%s)", view.Title, view.ID)
	}
	if view.AuthorName != "collector" {
		t.Fatalf("expected populated author name, got %q", view.AuthorName)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].Name != "tomato" {
		t.Fatalf("expected populated ingredients, got %+v", view.Ingredients)
	}
}

func mustCreateIngredient(t *testing.T, gdb *gorm.DB, name string) uint {
	t.Helper()
	row := db.Ingredient{Name: name}
	if err := gdb.Create(&row).Error; err != nil {
		t.Fatalf("seed ingredient %q: %v", name, err)
	}
	return row.ID
}
