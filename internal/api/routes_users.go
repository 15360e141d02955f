package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/handlers"
)

func registerUserRoutes(api *gin.RouterGroup, handler *handlers.UserHandler) {
	group := api.Group("/users")
	{
		group.GET("", handler.List)
		group.GET("/me", handler.Me)
	}
}
