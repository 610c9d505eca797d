package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/pkg/response"
)

type UserHandler struct {
	Users  *application.UserService
	Posts  *application.PostService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, posts *application.PostService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Posts: posts, Logger: logger}
}

// Me GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	u, err := h.Users.GetCurrentUser(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// MyPosts GET /api/me/posts
func (h *UserHandler) MyPosts(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	posts, err := h.Posts.ListUserPosts(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", map[string]any{"count": len(posts)})
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.Users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

// Search GET /api/users?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}
