package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cookbook/internal/service"
	"github.com/gin-gonic/gin"
)

func favoriteContext(t *testing.T, method, recipeID string, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", nil)
	if recipeID != "" {
		c.Params = gin.Params{{Key: "id", Value: recipeID}}
	}
	c.Set(actorContextKey, service.Actor{ID: userID})
	return c, w
}

func TestAddListRemoveFavorite(t *testing.T) {
	api, gdb := setupTestAPI(t)
	userID := seedHandlerUser(t, gdb, "collector")
	recipeID := seedVotableRecipe(t, gdb, userID)

	c, w := favoriteContext(t, http.MethodPost, recipeID, userID)
	api.AddFavorite(c)
	if w.Code != http.StatusOK {
		t.Fatalf("add favorite expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	// 重复收藏幂等
	c, w = favoriteContext(t, http.MethodPost, recipeID, userID)
	api.AddFavorite(c)
	if w.Code != http.StatusOK {
		t.Fatalf("repeated favorite expected 200, got %d", w.Code)
	}

	c, w = favoriteContext(t, http.MethodGet, "", userID)
	api.ListFavorites(c)
	if w.Code != http.StatusOK {
		t.Fatalf("list favorites expected 200, got %d", w.Code)
	}
	var listed struct {
		Total int `json:"total"`
		Data  []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if listed.Total != 1 || len(listed.Data) != 1 || listed.Data[0].ID != recipeID {
		t.Fatalf("unexpected favorites list %+v", listed)
	}

	c, w = favoriteContext(t, http.MethodDelete, recipeID, userID)
	api.RemoveFavorite(c)
	if w.Code != http.StatusOK {
		t.Fatalf("remove favorite expected 200, got %d", w.Code)
	}

	c, w = favoriteContext(t, http.MethodGet, "", userID)
	api.ListFavorites(c)
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if listed.Total != 0 {
		t.Fatalf("expected empty favorites after remove, got %+v", listed)
	}
}

func TestAddFavoriteMissingRecipe(t *testing.T) {
	api, gdb := setupTestAPI(t)
	userID := seedHandlerUser(t, gdb, "collector")

	c, w := favoriteContext(t, http.MethodPost, "no-such-recipe", userID)
	api.AddFavorite(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no-such-recipe") {
		t.Fatalf("expected missing id in error, got %s", w.Body.String())
	}
}
