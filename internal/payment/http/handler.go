package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
)

type Handler struct {
	reconciler *payment.Reconciler
}

func NewHandler(reconciler *payment.Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// ReceiveEvent accepts a provider callback. Anything the reconciler absorbs is
// answered with 202 so the provider stops retrying; infrastructure errors get a 500.
func (h *Handler) ReceiveEvent(c *gin.Context) {
	var body EventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), body.Event())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusAccepted, ResultResponse{EventID: body.EventID, Result: string(result)})
}
