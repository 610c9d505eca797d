package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
)

// UserModule wires profile routes. Every route requires a bearer token:
// GET /me, GET /me/posts, GET /users?q=, GET /users/:id
type UserModule struct {
	Handler     *handlers.UserHandler
	RequireAuth gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, requireAuth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, RequireAuth: requireAuth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("")
	auth.Use(m.RequireAuth)
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/me/posts", m.Handler.MyPosts)
		auth.GET("/users", m.Handler.Search)
		auth.GET("/users/:id", m.Handler.GetUser)
	}
}
