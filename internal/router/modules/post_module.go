package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
)

type PostModule struct {
	Handler     *handlers.PostHandler
	RequireAuth gin.HandlerFunc
}

func NewPostModule(h *handlers.PostHandler, requireAuth gin.HandlerFunc) *PostModule {
	return &PostModule{Handler: h, RequireAuth: requireAuth}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.Use(m.RequireAuth)
	{
		posts.GET("", m.Handler.List)
		posts.POST("", m.Handler.Create)
		posts.POST("/:postId/like", m.Handler.ToggleLike)
		posts.POST("/:postId/comment", m.Handler.AddComment)
		posts.DELETE("/:postId", m.Handler.Delete)
	}
}
