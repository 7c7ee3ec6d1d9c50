package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddFavorite 把菜谱加入当前用户的收藏，重复收藏幂等
func (a *API) AddFavorite(c *gin.Context) {
	actor, _ := currentActor(c)
	recipeID := c.Param("id")

	if err := a.favorites.Add(actor.ID, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已加入收藏", "recipe_id": recipeID})
}

// RemoveFavorite 取消收藏
func (a *API) RemoveFavorite(c *gin.Context) {
	actor, _ := currentActor(c)
	recipeID := c.Param("id")

	if err := a.favorites.Remove(actor.ID, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "已取消收藏", "recipe_id": recipeID})
}

// ListFavorites 返回当前用户收藏的全部菜谱
func (a *API) ListFavorites(c *gin.Context) {
	actor, _ := currentActor(c)

	recipes, err := a.favorites.List(actor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recipes, "total": len(recipes)})
}
