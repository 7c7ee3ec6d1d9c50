package router

import (
	"github.com/cookbook/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options 控制路由装配时可变的部分
type Options struct {
	SessionSecret string
	UploadDir     string
	UploadURLPath string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, opts Options) *gin.Engine {
	r := gin.Default()

	secret := opts.SessionSecret
	if secret == "" {
		secret = "cookbook-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("cookbook_session", store))

	uploadDir := opts.UploadDir
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}
	uploadURLPath := opts.UploadURLPath
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	api := handler.NewAPI(gdb, uploadDir, uploadURLPath)

	// 上传的图片走静态文件服务
	r.Static(uploadURLPath, uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(handler.LoadActor())
	{
		apiGroup.POST("/auth/register", api.Register)
		apiGroup.POST("/auth/login", api.Login)
		apiGroup.POST("/auth/logout", api.Logout)

		apiGroup.GET("/recipes", api.SearchRecipes)
		apiGroup.GET("/recipes/:id", api.GetRecipe)
		apiGroup.GET("/recipes/:id/vote", api.GetVoteState)
		apiGroup.POST("/recipes/:id/click", api.RecordClick)

		apiGroup.GET("/ingredients", api.SuggestIngredients)
		apiGroup.GET("/categories/suggest", api.SuggestCategories)

		// 需要登录态的写操作
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.POST("/recipes", api.CreateRecipe)
			auth.PUT("/recipes/:id", api.UpdateRecipe)
			auth.DELETE("/recipes/:id", api.DeleteRecipe)

			auth.POST("/recipes/:id/vote", api.CastVote)
			auth.DELETE("/recipes/:id/vote", api.RemoveVote)

			auth.POST("/recipes/:id/favorite", api.AddFavorite)
			auth.DELETE("/recipes/:id/favorite", api.RemoveFavorite)
			auth.GET("/favorites", api.ListFavorites)

			auth.POST("/uploads/image", api.UploadImage)
		}
	}

	return r
}
