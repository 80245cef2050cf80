package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, consumerOnly gin.HandlerFunc) {
	group := g.Group("/reservations", authMiddleware)

	group.POST("", consumerOnly, h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PATCH("/:id/state", h.Transition)
}
