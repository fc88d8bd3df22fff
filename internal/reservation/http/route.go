package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.POST("/availability", h.CheckAvailability)

	// === Authenticated Routes ===
	group := g.Group("/reservations")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.ListMine)
		group.GET("/:id", h.Get)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/confirm", h.Confirm)
		group.POST("/:id/check-in", h.CheckIn)
		group.POST("/:id/complete", h.Complete)
		group.PATCH("/:id/occupancy", h.UpdateOccupancy)
	}

	properties := g.Group("/properties")
	properties.Use(authMiddleware)
	{
		properties.GET("/:id/reservations", h.ListForProperty)
	}
}
