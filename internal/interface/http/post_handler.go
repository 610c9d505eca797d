package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/pkg/response"
	"github.com/oksasatya/go-social-feed/pkg/validation"
)

type PostHandler struct {
	Svc           *application.PostService
	Logger        *logrus.Logger
	MaxImageBytes int64
	MaxImages     int
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger, maxImageBytes int64, maxImages int) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes, MaxImages: maxImages}
}

type createPostRequest struct {
	Text string `json:"text"`
}

type commentRequest struct {
	CommentText string `json:"comment_text" form:"comment_text" binding:"required,notblank"`
}

// List GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Svc.ListFeed(c.Request.Context())
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "feed", map[string]any{"count": len(posts)})
}

// Create POST /api/posts, multipart with a text field and zero or more
// images parts. A JSON body or a plain form with only text is accepted too.
func (h *PostHandler) Create(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	if limit := h.bodyLimit(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var (
		text     string
		images   []application.ImageInput
		tooLarge *http.MaxBytesError
	)
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		if vals := form.Value["text"]; len(vals) > 0 {
			text = vals[0]
		}
		files := form.File["images"]
		if h.MaxImages > 0 && len(files) > h.MaxImages {
			response.FromError(c, h.Logger, fmt.Errorf("%w: at most %d images per post", domain.ErrValidation, h.MaxImages))
			return
		}
		images, err = h.readImages(files)
		if err != nil {
			response.FromError(c, h.Logger, err)
			return
		}
	case errors.As(err, &tooLarge):
		response.Error[any](c, http.StatusRequestEntityTooLarge, "request body too large", nil)
		return
	case errors.Is(err, http.ErrNotMultipart):
		if c.ContentType() != binding.MIMEJSON {
			text = c.PostForm("text")
			break
		}
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if errors.As(err, &tooLarge) {
				response.Error[any](c, http.StatusRequestEntityTooLarge, "request body too large", nil)
				return
			}
			response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
		text = req.Text
	default:
		response.Error[any](c, http.StatusBadRequest, "invalid multipart payload", nil)
		return
	}

	post, err := h.Svc.CreatePost(c.Request.Context(), id, text, images)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, post, "post created", nil)
}

// bodyLimit caps a create request at every allowed image plus 1 MiB for
// the text and multipart framing. Zero means unbounded.
func (h *PostHandler) bodyLimit() int64 {
	if h.MaxImageBytes <= 0 || h.MaxImages <= 0 {
		return 0
	}
	return h.MaxImageBytes*int64(h.MaxImages) + 1<<20
}

func (h *PostHandler) readImages(files []*multipart.FileHeader) ([]application.ImageInput, error) {
	out := make([]application.ImageInput, 0, len(files))
	for i, fh := range files {
		if h.MaxImageBytes > 0 && fh.Size > h.MaxImageBytes {
			return nil, fmt.Errorf("%w: image %d exceeds %d bytes", domain.ErrValidation, i+1, h.MaxImageBytes)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: image %d is unreadable", domain.ErrValidation, i+1)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: image %d is unreadable", domain.ErrValidation, i+1)
		}
		out = append(out, application.ImageInput{Filename: fh.Filename, Data: data})
	}
	return out, nil
}

// ToggleLike POST /api/posts/:postId/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	post, err := h.Svc.ToggleLike(c.Request.Context(), id, c.Param("postId"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, post, "like toggled", nil)
}

// AddComment POST /api/posts/:postId/comment
func (h *PostHandler) AddComment(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req commentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	post, err := h.Svc.AddComment(c.Request.Context(), id, c.Param("postId"), req.CommentText)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, post, "comment added", nil)
}

// Delete DELETE /api/posts/:postId
func (h *PostHandler) Delete(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	postID := c.Param("postId")
	if err := h.Svc.DeletePost(c.Request.Context(), id, postID); err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"id": postID}, "post deleted", nil)
}
