package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/auditctx"
	"github.com/charlesng35/resourcedesk/internal/models"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/response"
)

const (
	// ActorHeader names the request header carrying the acting user's id.
	ActorHeader = "X-Actor-ID"

	CtxActorKey  = "actor"
	CtxUserIDKey = "userID"
)

// ActorResolver looks up the user an incoming request acts as.
type ActorResolver interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Actor resolves the acting user from the X-Actor-ID header and stores it on
// the gin context. The header is a lookup key, not a credential.
func Actor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ActorHeader))
		if id == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := resolver.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				response.Error(c, apperrors.ErrUnauthorized.WithMessage("Unknown acting user"))
			} else {
				response.Error(c, err)
			}
			c.Abort()
			return
		}

		c.Set(CtxActorKey, user)
		c.Set(CtxUserIDKey, user.ID)
		c.Request = c.Request.WithContext(auditctx.WithOrigin(c.Request.Context(), auditctx.Origin{
			ActorID:   user.ID,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}))
		c.Next()
	}
}

// ActorFromContext returns the actor stored by Actor.
func ActorFromContext(c *gin.Context) (models.User, bool) {
	value, ok := c.Get(CtxActorKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}
