package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/internal/handlers"
)

func registerRequestRoutes(api *gin.RouterGroup, handler *handlers.RequestHandler) {
	api.GET("/dashboard", handler.Dashboard)

	group := api.Group("/requests")
	{
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/pending", handler.Pending)
		group.GET("/:id", handler.Get)
		group.PATCH("/:id", handler.Edit)
		group.POST("/:id/actions/:action", handler.Transition)
		group.GET("/:id/export/:format", handler.Export)
	}
}
