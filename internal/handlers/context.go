package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/middleware"
	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentActor returns the acting user resolved by middleware.Actor, writing
// an UNAUTHORIZED response when none is present.
func currentActor(c *gin.Context) (models.User, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok || actor.ID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return models.User{}, false
	}
	return actor, true
}
