package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cookbook/internal/db"
	"gorm.io/gorm"
)

// Actor 是经过认证的操作者身份，由路由层从会话中提取后传入。
type Actor struct {
	ID      uint
	IsAdmin bool
}

// RecipeInput 是创建菜谱时接受的字段。
type RecipeInput struct {
	Title        string
	Instructions string
	ImageURL     string
	Ingredients  []EntityRef
	Categories   []EntityRef
}

// RecipeUpdateInput 是更新菜谱时接受的字段。
// nil 表示该字段保持不变；Ingredients/Categories 传入空切片表示清空该类关联。
type RecipeUpdateInput struct {
	Title        *string
	Instructions *string
	ImageURL     *string
	Ingredients  *[]EntityRef
	Categories   *[]EntityRef
}

// IngredientLink 是详情响应里一条带用量的配料。
type IngredientLink struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// RecipeView 聚合一条菜谱及其关联数据。
type RecipeView struct {
	db.Recipe
	AuthorName  string           `json:"author_name"`
	Ingredients []IngredientLink `json:"ingredients"`
	Categories  []EntityOption   `json:"categories"`
	Clicks      int64            `json:"clicks"`
}

// RecipeFilter 描述搜索条件。
type RecipeFilter struct {
	Query         string
	IngredientIDs []uint
	CategoryIDs   []uint
	Page          int
	Limit         int
}

// RecipeListResult 聚合分页结果。
type RecipeListResult struct {
	Recipes []RecipeView
	Total   int64
	Page    int
	Limit   int
}

// RecipeService 是创建/更新/删除菜谱的事务编排者：
// 开事务 → 分配 ID（仅创建）→ 解析配料引用 → 解析分类引用 → 写关联 → 提交。
// 任一步失败整体回滚，不暴露部分状态。
type RecipeService struct {
	db       *gorm.DB
	resolver *EntityResolver
}

// NewRecipeService creates a RecipeService instance.
func NewRecipeService(gdb *gorm.DB) *RecipeService {
	return &RecipeService{db: gdb, resolver: NewEntityResolver(TrigramMatcher{})}
}

// Create 新建菜谱并返回其 ID。
func (s *RecipeService) Create(authorID uint, input RecipeInput) (string, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return "", &ValidationError{Message: "title is required"}
	}
	if strings.TrimSpace(input.Instructions) == "" {
		return "", &ValidationError{Message: "instructions are required"}
	}
	if len(input.Ingredients) == 0 {
		return "", &ValidationError{Message: "at least one ingredient is required"}
	}

	var recipeID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipe := db.Recipe{
			Title:        title,
			Instructions: input.Instructions,
			ImageURL:     strings.TrimSpace(input.ImageURL),
			AuthorID:     authorID,
		}
		if err := insertRecipeWithFreshID(tx, &recipe); err != nil {
			return err
		}
		recipeID = recipe.ID

		if err := s.replaceAssociations(tx, Ingredients, recipe.ID, input.Ingredients, false); err != nil {
			return err
		}
		return s.replaceAssociations(tx, Categories, recipe.ID, input.Categories, false)
	})
	if err != nil {
		return "", fmt.Errorf("create recipe: %w", err)
	}
	return recipeID, nil
}

// Update 更新菜谱。只有作者本人或管理员可以修改；
// 省略的字段保持原值，显式传入的空关联列表清空该类关联。
func (s *RecipeService) Update(actor Actor, recipeID string, input RecipeUpdateInput) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, actor, recipeID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return &ValidationError{Message: "title is required"}
			}
			updates["title"] = title
		}
		if input.Instructions != nil {
			if strings.TrimSpace(*input.Instructions) == "" {
				return &ValidationError{Message: "instructions are required"}
			}
			updates["instructions"] = *input.Instructions
		}
		if input.ImageURL != nil {
			updates["image_url"] = strings.TrimSpace(*input.ImageURL)
		}
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.Ingredients != nil {
			if err := s.replaceAssociations(tx, Ingredients, recipeID, *input.Ingredients, true); err != nil {
				return err
			}
		}
		if input.Categories != nil {
			if err := s.replaceAssociations(tx, Categories, recipeID, *input.Categories, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// replaceAssociations 解析引用并写入关联。
// unlinkFirst 时先删后插，两步同处一个事务，外部观察不到空关联窗口。
func (s *RecipeService) replaceAssociations(tx *gorm.DB, table AttributeTable, recipeID string, refs []EntityRef, unlinkFirst bool) error {
	if unlinkFirst {
		if err := UnlinkAll(tx, table, recipeID); err != nil {
			return err
		}
	}
	if len(refs) == 0 {
		return nil
	}

	ids, err := s.resolver.Resolve(tx, table, refs)
	if err != nil {
		return err
	}

	rows := make([]LinkRow, 0, len(refs))
	for i, ref := range refs {
		rows = append(rows, LinkRow{EntityID: ids[i], Quantity: strings.TrimSpace(ref.Quantity)})
	}
	return LinkAll(tx, table, recipeID, rows)
}

// Delete 删除菜谱，连带清理关联、投票、收藏与点击数据。
func (s *RecipeService) Delete(actor Actor, recipeID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, actor, recipeID)
		if err != nil {
			return err
		}

		for _, model := range []interface{}{
			&db.RecipeIngredient{},
			&db.RecipeCategory{},
			&db.RecipeVote{},
			&db.RecipeFavorite{},
			&db.RecipeClick{},
			&db.RecipeClickLog{},
		} {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
}

// Get 返回一条菜谱的完整视图。
func (s *RecipeService) Get(recipeID string) (*RecipeView, error) {
	var view RecipeView
	if err := s.db.First(&view.Recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundRecipe(recipeID)
		}
		return nil, err
	}

	if err := s.populateViews(s.db, []*RecipeView{&view}); err != nil {
		return nil, err
	}
	return &view, nil
}

// Search 按配料、分类与标题/做法子串过滤，分页返回。
func (s *RecipeService) Search(filter RecipeFilter) (*RecipeListResult, error) {
	result := &RecipeListResult{Page: filter.Page, Limit: filter.Limit}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.Limit <= 0 || result.Limit > 100 {
		result.Limit = 20
	}

	query := s.db.Model(&db.Recipe{})
	if len(filter.IngredientIDs) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN ?)",
			filter.IngredientIDs,
		)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_categories rc WHERE rc.recipe_id = recipes.id AND rc.category_id IN ?)",
			filter.CategoryIDs,
		)
	}
	if trimmed := strings.TrimSpace(filter.Query); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(instructions) LIKE ?", like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	var recipes []db.Recipe
	if err := query.
		Order("created_at DESC").
		Limit(result.Limit).
		Offset((result.Page - 1) * result.Limit).
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	views := make([]*RecipeView, len(recipes))
	result.Recipes = make([]RecipeView, len(recipes))
	for i := range recipes {
		result.Recipes[i].Recipe = recipes[i]
		views[i] = &result.Recipes[i]
	}
	if err := s.populateViews(s.db, views); err != nil {
		return nil, err
	}
	return result, nil
}

// populateViews 批量补齐作者名、配料、分类与点击数，避免每行多次往返。
func (s *RecipeService) populateViews(gdb *gorm.DB, views []*RecipeView) error {
	if len(views) == 0 {
		return nil
	}

	recipeIDs := make([]string, 0, len(views))
	authorIDs := make([]uint, 0, len(views))
	byID := make(map[string]*RecipeView, len(views))
	for _, view := range views {
		view.Ingredients = make([]IngredientLink, 0)
		view.Categories = make([]EntityOption, 0)
		recipeIDs = append(recipeIDs, view.ID)
		authorIDs = append(authorIDs, view.AuthorID)
		byID[view.ID] = view
	}

	var authors []db.User
	if err := gdb.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return err
	}
	nameByAuthor := make(map[uint]string, len(authors))
	for _, author := range authors {
		nameByAuthor[author.ID] = author.Username
	}
	for _, view := range views {
		view.AuthorName = nameByAuthor[view.AuthorID]
	}

	var ingredientRows []struct {
		RecipeID string
		ID       uint
		Name     string
		Quantity string
	}
	if err := gdb.Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, ingredients.id, ingredients.name, recipe_ingredients.quantity").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Scan(&ingredientRows).Error; err != nil {
		return err
	}
	for _, row := range ingredientRows {
		if view, ok := byID[row.RecipeID]; ok {
			view.Ingredients = append(view.Ingredients, IngredientLink{ID: row.ID, Name: row.Name, Quantity: row.Quantity})
		}
	}

	var categoryRows []struct {
		RecipeID string
		ID       uint
		Name     string
	}
	if err := gdb.Table("recipe_categories").
		Select("recipe_categories.recipe_id, categories.id, categories.name").
		Joins("JOIN categories ON categories.id = recipe_categories.category_id").
		Where("recipe_categories.recipe_id IN ?", recipeIDs).
		Scan(&categoryRows).Error; err != nil {
		return err
	}
	for _, row := range categoryRows {
		if view, ok := byID[row.RecipeID]; ok {
			view.Categories = append(view.Categories, EntityOption{ID: row.ID, Name: row.Name})
		}
	}

	var clickRows []db.RecipeClick
	if err := gdb.Where("recipe_id IN ?", recipeIDs).Find(&clickRows).Error; err != nil {
		return err
	}
	for _, row := range clickRows {
		if view, ok := byID[row.RecipeID]; ok {
			view.Clicks = row.Clicks
		}
	}

	return nil
}

// loadOwnedRecipe 加载菜谱并校验操作者是作者或管理员。
func loadOwnedRecipe(tx *gorm.DB, actor Actor, recipeID string) (*db.Recipe, error) {
	var recipe db.Recipe
	if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundRecipe(recipeID)
		}
		return nil, err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return &recipe, nil
}
