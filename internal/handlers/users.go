package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/models"
	"github.com/charlesng35/resourcedesk/internal/services"
	"github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/response"
)

// UserHandler serves the user directory used for name lookups.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	if _, ok := currentActor(c); !ok {
		return
	}

	var role models.Role
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role = models.Role(strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:]))
		if !role.Valid() {
			response.Error(c, errors.NewValidation("role must be Requester or Approver"))
			return
		}
	}

	users, err := h.service.List(requestContext(c), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, users)
}

// GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, actor)
}
