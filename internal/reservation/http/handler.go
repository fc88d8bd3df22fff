package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

// actor builds the lifecycle actor from the authenticated caller.
func actor(c *gin.Context) reservation.Actor {
	return reservation.Actor{
		ID:       auth.GetUserID(c),
		Operator: auth.IsOperator(c),
	}
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	var body AvailabilityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	stay, err := body.Range()
	if err != nil {
		response.Error(c, err)
		return
	}

	a, err := h.service.CheckAvailability(c.Request.Context(), body.PropertyID, stay)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	stay, err := body.Range()
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.CreateReservation(c.Request.Context(), reservation.CreateRequest{
		GuestID:         auth.GetUserID(c),
		PropertyID:      body.PropertyID,
		Stay:            stay,
		Occupancy:       body.Occupancy(),
		SpecialRequests: body.SpecialRequests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

// ListMine lists the caller's own reservations.
func (h *Handler) ListMine(c *gin.Context) {
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()
	filter, err := req.Filter()
	if err != nil {
		response.Error(c, err)
		return
	}

	list, total, err := h.service.ListReservationsForGuest(c.Request.Context(), auth.GetUserID(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.writePage(c, list, req, total)
}

// ListForProperty lists a property's reservations for its owner or an operator.
func (h *Handler) ListForProperty(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req ListReservationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()
	filter, err := req.Filter()
	if err != nil {
		response.Error(c, err)
		return
	}

	list, total, err := h.service.ListReservationsForProperty(c.Request.Context(), uri.ID, actor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.writePage(c, list, req, total)
}

func (h *Handler) writePage(c *gin.Context, list []*reservation.Reservation, req ListReservationsRequest, total int) {
	items := make([]ReservationResponse, len(list))
	for i, r := range list {
		items[i] = NewReservationResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.GetReservation(c.Request.Context(), uri.ID, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body CancelBody
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	r, err := h.service.CancelReservation(c.Request.Context(), uri.ID, actor(c), body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}

func (h *Handler) Confirm(c *gin.Context) {
	h.transition(c, h.service.ConfirmReservation)
}

func (h *Handler) CheckIn(c *gin.Context) {
	h.transition(c, h.service.CheckIn)
}

func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

type transitionFunc func(ctx context.Context, id string, actor reservation.Actor) (*reservation.Reservation, error)

func (h *Handler) transition(c *gin.Context, apply transitionFunc) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := apply(c.Request.Context(), uri.ID, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}

func (h *Handler) UpdateOccupancy(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body OccupancyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.UpdateOccupancy(c.Request.Context(), uri.ID, actor(c), body.Occupancy())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(r))
}
