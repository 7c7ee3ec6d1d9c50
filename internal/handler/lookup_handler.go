package handler

import (
	"net/http"

	"github.com/cookbook/internal/service"
	"github.com/gin-gonic/gin"
)

// SuggestIngredients 配料联想：GET /api/ingredients?q=tom&limit=10
func (a *API) SuggestIngredients(c *gin.Context) {
	options, err := service.SuggestEntities(a.db, service.Ingredients, c.Query("q"), parseIntQuery(c, "limit", 20))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取配料列表失败")
		return
	}
	c.JSON(http.StatusOK, options)
}

// SuggestCategories 分类联想
func (a *API) SuggestCategories(c *gin.Context) {
	options, err := service.SuggestEntities(a.db, service.Categories, c.Query("q"), parseIntQuery(c, "limit", 0))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}
	c.JSON(http.StatusOK, options)
}
