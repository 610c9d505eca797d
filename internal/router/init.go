package router

import (
	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/container"
	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/internal/router/modules"
)

type moduleDeps struct {
	Auth  *application.AuthService
	Posts *application.PostService
	Users *application.UserService
}

func buildDeps(c *container.Container) moduleDeps {
	return moduleDeps{
		Auth:  c.AuthService(),
		Posts: c.PostService(),
		Users: c.UserService(),
	}
}

// InitModules builds services from c and registers every feature module.
// Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	deps := buildDeps(c)
	requireAuth := middleware.Auth(deps.Auth, c.Logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(deps.Auth, c.Logger), requireAuth))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(deps.Posts, c.Logger, c.Config.MaxImageBytes, c.Config.MaxImagesPerPost), requireAuth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(deps.Users, deps.Posts, c.Logger), requireAuth))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
