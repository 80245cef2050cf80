package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuth, providerOnly gin.HandlerFunc) {
	group := g.Group("/offerings")

	// === Public Routes ===
	group.GET("/:id", optionalAuth, h.Get)
	group.GET("/:id/availability", h.Availability)

	// === Provider Routes ===
	group.POST("", authMiddleware, providerOnly, h.Create)
	group.GET("", authMiddleware, providerOnly, h.ListMine)
	group.PUT("/:id", authMiddleware, providerOnly, h.Update)
	group.DELETE("/:id", authMiddleware, providerOnly, h.Delete)
	group.PATCH("/:id/publish", authMiddleware, providerOnly, h.TogglePublish)

	// Public preview of a provider's published offerings.
	g.GET("/providers/:id/offerings", h.ListByProvider)
}
