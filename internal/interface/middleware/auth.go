package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/pkg/response"
)

const identityKey = "identity"

// Authorizer turns an Authorization header into a caller identity.
type Authorizer interface {
	Authorize(ctx context.Context, header string) (entity.Identity, error)
}

// Auth rejects requests without a valid, non-revoked bearer token.
// On success it stores the identity and sets userID in the Gin context.
func Auth(authz Authorizer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := authz.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			response.FromError(c, logger, err)
			return
		}
		c.Set(identityKey, id)
		c.Set("userID", id.UserID)
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}
