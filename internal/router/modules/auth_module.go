package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
)

// AuthModule serves POST /register, /login and /logout.
type AuthModule struct {
	Handler     *handlers.AuthHandler
	RequireAuth gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, requireAuth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, RequireAuth: requireAuth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
	rg.POST("/logout", m.RequireAuth, m.Handler.Logout)
}
