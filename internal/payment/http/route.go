package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, webhookMiddleware gin.HandlerFunc) {
	group := g.Group("/payments")
	group.Use(webhookMiddleware)
	{
		group.POST("/events", h.ReceiveEvent)
	}
}
