package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/config"
	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

// Container carries the infrastructure built by an entrypoint so the router
// can wire services and handlers from it. Index and Publisher are optional;
// Blobs is nil when no image storage is configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Users repository.UserRepository
	Posts repository.PostRepository
	Blobs repository.BlobStore

	Hasher    application.PasswordHasher
	Tokens    application.TokenIssuer
	Revoked   application.RevocationRegistry
	Index     application.UserIndex
	Publisher application.Publisher
}

// AuthService builds the credential and session service.
func (c *Container) AuthService() *application.AuthService {
	return application.NewAuthService(application.AuthDeps{
		Users:     c.Users,
		Hasher:    c.Hasher,
		Tokens:    c.Tokens,
		Revoked:   c.Revoked,
		Index:     c.Index,
		Publisher: c.Publisher,
		AppName:   c.Config.AppName,
		Logger:    c.Logger,
	})
}

func (c *Container) PostService() *application.PostService {
	return application.NewPostService(application.PostDeps{
		Posts:     c.Posts,
		Users:     c.Users,
		Blobs:     c.Blobs,
		Publisher: c.Publisher,
		Limits: application.PostLimits{
			MaxImageBytes:     c.Config.MaxImageBytes,
			MaxImages:         c.Config.MaxImagesPerPost,
			UploadConcurrency: c.Config.UploadConcurrency,
		},
		AppName: c.Config.AppName,
		Logger:  c.Logger,
	})
}

func (c *Container) UserService() *application.UserService {
	return application.NewUserService(c.Users, c.Index, c.Logger)
}
