package handler

import (
	"bytes"
	"net/http"

	"github.com/cookbook/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type entityRefPayload struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

type recipeRequest struct {
	Title        string             `json:"title" binding:"required"`
	Instructions string             `json:"instructions" binding:"required"`
	ImageURL     string             `json:"image_url"`
	Ingredients  []entityRefPayload `json:"ingredients" binding:"required"`
	Categories   []entityRefPayload `json:"categories"`
}

type recipeUpdateRequest struct {
	Title        *string             `json:"title"`
	Instructions *string             `json:"instructions"`
	ImageURL     *string             `json:"image_url"`
	Ingredients  *[]entityRefPayload `json:"ingredients"`
	Categories   *[]entityRefPayload `json:"categories"`
}

func toEntityRefs(payloads []entityRefPayload) []service.EntityRef {
	refs := make([]service.EntityRef, 0, len(payloads))
	for _, p := range payloads {
		refs = append(refs, service.EntityRef{ID: p.ID, Name: p.Name, Quantity: p.Quantity})
	}
	return refs
}

// CreateRecipe 创建新菜谱
func (a *API) CreateRecipe(c *gin.Context) {
	actor, _ := currentActor(c)

	var req recipeRequest
	if !bindJSON(c, &req, "标题、做法和配料不能为空") {
		return
	}

	recipeID, err := a.recipes.Create(actor.ID, service.RecipeInput{
		Title:        req.Title,
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
		Ingredients:  toEntityRefs(req.Ingredients),
		Categories:   toEntityRefs(req.Categories),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "菜谱创建成功", "recipe_id": recipeID})
}

// UpdateRecipe 更新已有菜谱。省略的字段保持不变，显式传入空数组清空该类关联。
func (a *API) UpdateRecipe(c *gin.Context) {
	actor, _ := currentActor(c)
	recipeID := c.Param("id")

	var req recipeUpdateRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	input := service.RecipeUpdateInput{
		Title:        req.Title,
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
	}
	if req.Ingredients != nil {
		refs := toEntityRefs(*req.Ingredients)
		input.Ingredients = &refs
	}
	if req.Categories != nil {
		refs := toEntityRefs(*req.Categories)
		input.Categories = &refs
	}

	if err := a.recipes.Update(actor, recipeID, input); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "菜谱更新成功"})
}

// DeleteRecipe 删除菜谱
func (a *API) DeleteRecipe(c *gin.Context) {
	actor, _ := currentActor(c)

	if err := a.recipes.Delete(actor, c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "菜谱已删除"})
}

// GetRecipe 获取单条菜谱详情，做法同时返回原文与净化后的 HTML
func (a *API) GetRecipe(c *gin.Context) {
	view, err := a.recipes.Get(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe":            view,
		"instructions_html": renderMarkdown(view.Instructions),
	})
}

// SearchRecipes 按配料、分类与关键词搜索菜谱
func (a *API) SearchRecipes(c *gin.Context) {
	filter := service.RecipeFilter{
		Query:         c.Query("q"),
		IngredientIDs: parseIDList(c.QueryArray("ingredient_id")),
		CategoryIDs:   parseIDList(c.QueryArray("category_id")),
		Page:          parseIntQuery(c, "page", 1),
		Limit:         parseIntQuery(c, "limit", 20),
	}

	result, err := a.recipes.Search(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result.Recipes,
		"meta": gin.H{
			"total": result.Total,
			"page":  result.Page,
			"limit": result.Limit,
		},
	})
}

func renderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}
