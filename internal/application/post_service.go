package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// PostLimits bounds post attachments.
type PostLimits struct {
	MaxImageBytes     int64
	MaxImages         int
	UploadConcurrency int
}

func (l PostLimits) withDefaults() PostLimits {
	if l.MaxImageBytes <= 0 {
		l.MaxImageBytes = 5 << 20
	}
	if l.MaxImages <= 0 {
		l.MaxImages = 10
	}
	if l.UploadConcurrency <= 0 {
		l.UploadConcurrency = 4
	}
	return l
}

// ImageInput is one binary attachment of a new post.
type ImageInput struct {
	Filename string
	Data     []byte
}

// PostDeps are the collaborators of PostService. Blobs may be nil when image
// uploads are not configured; Publisher is optional.
type PostDeps struct {
	Posts     repo.PostRepository
	Users     repo.UserRepository
	Blobs     repo.BlobStore
	Publisher Publisher
	Limits    PostLimits
	AppName   string
	Logger    *logrus.Logger
}

// PostService creates posts, toggles likes, appends comments, deletes posts
// and assembles feed views.
type PostService struct {
	posts  repo.PostRepository
	users  repo.UserRepository
	blobs  repo.BlobStore
	limits PostLimits
	notify notifier
	logger *logrus.Logger
}

func NewPostService(d PostDeps) *PostService {
	return &PostService{
		posts:  d.Posts,
		users:  d.Users,
		blobs:  d.Blobs,
		limits: d.Limits.withDefaults(),
		notify: notifier{pub: d.Publisher, appName: d.AppName, logger: d.Logger},
		logger: d.Logger,
	}
}

type attachment struct {
	data        []byte
	contentType string
	ext         string
}

// CreatePost uploads every image, then persists the post. A failed upload
// fails the whole call and nothing is stored.
func (s *PostService) CreatePost(ctx context.Context, id entity.Identity, text string, images []ImageInput) (*PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(images) == 0 {
		return nil, fmt.Errorf("%w: post cannot be empty", domain.ErrValidation)
	}
	atts, err := s.checkImages(images)
	if err != nil {
		return nil, err
	}

	urls, objects, err := s.upload(ctx, id.UserID, atts)
	if err != nil {
		return nil, err
	}
	if text == "" && len(urls) == 0 {
		return nil, fmt.Errorf("%w: post cannot be empty", domain.ErrValidation)
	}

	p := &entity.Post{
		UserID: id.UserID,
		Text:   text,
		Images: urls,
		Likes:  []string{},
	}
	if err := s.posts.Create(ctx, p); err != nil {
		s.discard(ctx, objects)
		return nil, fmt.Errorf("create post: %w", err)
	}
	metricPostsCreated.Add(1)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"post_id": p.ID, "user_id": id.UserID, "images": len(urls)}).Info("post created")
	}
	return assemblePost(ctx, s.users, p)
}

func (s *PostService) checkImages(images []ImageInput) ([]attachment, error) {
	if len(images) > s.limits.MaxImages {
		return nil, fmt.Errorf("%w: at most %d images per post", domain.ErrValidation, s.limits.MaxImages)
	}
	atts := make([]attachment, 0, len(images))
	for i, img := range images {
		if len(img.Data) == 0 {
			return nil, fmt.Errorf("%w: image %d is empty", domain.ErrValidation, i+1)
		}
		if int64(len(img.Data)) > s.limits.MaxImageBytes {
			return nil, fmt.Errorf("%w: image %d exceeds %d bytes", domain.ErrValidation, i+1, s.limits.MaxImageBytes)
		}
		mt := mimetype.Detect(img.Data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return nil, fmt.Errorf("%w: image %d is not an image (%s)", domain.ErrValidation, i+1, mt.String())
		}
		atts = append(atts, attachment{data: img.Data, contentType: mt.String(), ext: mt.Extension()})
	}
	return atts, nil
}

// upload stores every attachment and returns the public URLs together with
// the object paths. When any upload fails, the objects already written are
// removed again.
func (s *PostService) upload(ctx context.Context, userID string, atts []attachment) ([]string, []string, error) {
	urls := make([]string, len(atts))
	objects := make([]string, len(atts))
	if len(atts) == 0 {
		return urls, nil, nil
	}
	if s.blobs == nil {
		return nil, nil, fmt.Errorf("%w: image storage is not configured", domain.ErrUpload)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.UploadConcurrency)
	for i, a := range atts {
		g.Go(func() error {
			objectPath := "posts/" + userID + "/" + uuid.NewString() + a.ext
			url, err := s.blobs.Upload(gctx, objectPath, a.contentType, bytes.NewReader(a.data))
			if err != nil {
				if s.logger != nil {
					s.logger.WithError(err).WithField("object", objectPath).Warn("blob upload failed")
				}
				return fmt.Errorf("%w: image %d could not be stored", domain.ErrUpload, i+1)
			}
			urls[i] = url
			objects[i] = objectPath
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(ctx, objects)
		return nil, nil, err
	}
	return urls, objects, nil
}

// discard deletes stored objects of a post that was never created. It runs
// detached from ctx, which is usually canceled by then.
func (s *PostService) discard(ctx context.Context, objects []string) {
	ctx = context.WithoutCancel(ctx)
	for _, obj := range objects {
		if obj == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, obj); err != nil && s.logger != nil {
			s.logger.WithError(err).WithField("object", obj).Warn("orphaned image not removed")
		}
	}
}

// ListFeed returns every post, newest first.
func (s *PostService) ListFeed(ctx context.Context) ([]PostView, error) {
	return s.list(ctx, repo.PostFilter{})
}

// ListUserPosts returns the caller's own posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, id entity.Identity) ([]PostView, error) {
	return s.list(ctx, repo.PostFilter{UserID: id.UserID})
}

func (s *PostService) list(ctx context.Context, f repo.PostFilter) ([]PostView, error) {
	posts, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return assemblePosts(ctx, s.users, posts)
}

// ToggleLike likes the post if the caller has not liked it yet, and unlikes
// it otherwise.
func (s *PostService) ToggleLike(ctx context.Context, id entity.Identity, postID string) (*PostView, error) {
	liked, err := s.posts.ToggleLike(ctx, postID, id.UserID)
	if err != nil {
		return nil, err
	}
	metricLikesToggled.Add(1)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"post_id": postID, "user_id": id.UserID, "liked": liked}).Debug("like toggled")
	}
	return s.reload(ctx, postID)
}

// AddComment appends a comment by the caller.
func (s *PostService) AddComment(ctx context.Context, id entity.Identity, postID, text string) (*PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", domain.ErrValidation)
	}
	c := &entity.Comment{UserID: id.UserID, Text: text}
	if err := s.posts.AppendComment(ctx, postID, c); err != nil {
		return nil, err
	}
	metricCommentsAdded.Add(1)

	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	view, err := assemblePost(ctx, s.users, p)
	if err != nil {
		return nil, err
	}
	if p.UserID != id.UserID {
		s.notifyComment(ctx, p, id.UserID, text)
	}
	return view, nil
}

func (s *PostService) notifyComment(ctx context.Context, p *entity.Post, commenterID, text string) {
	users, err := s.users.GetByIDs(ctx, []string{p.UserID, commenterID})
	if err != nil {
		return
	}
	owner, ok1 := users[p.UserID]
	commenter, ok2 := users[commenterID]
	if ok1 && ok2 {
		s.notify.newComment(ctx, owner, commenter, p, text)
	}
}

// DeletePost removes a post with its likes and comments. Only the owner may
// delete it.
func (s *PostService) DeletePost(ctx context.Context, id entity.Identity, postID string) error {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != id.UserID {
		return fmt.Errorf("%w: you can only delete your own posts", domain.ErrAuthorization)
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		// lost a race with another delete of the same post
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete post: %w", err)
	}
	metricPostsDeleted.Add(1)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"post_id": postID, "user_id": id.UserID}).Info("post deleted")
	}
	return nil
}

func (s *PostService) reload(ctx context.Context, postID string) (*PostView, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return assemblePost(ctx, s.users, p)
}
