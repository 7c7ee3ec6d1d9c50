package handler

import (
	"github.com/cookbook/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	recipes   *service.RecipeService
	votes     *service.VoteService
	clicks    *service.ClickService
	favorites *service.FavoriteService
	users     *service.UserService
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:        gdb,
		recipes:   service.NewRecipeService(gdb),
		votes:     service.NewVoteService(gdb),
		clicks:    service.NewClickService(gdb),
		favorites: service.NewFavoriteService(gdb),
		users:     service.NewUserService(gdb),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}
