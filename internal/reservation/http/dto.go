package http

import (
	"strings"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

// StayBody is the date pair shared by availability and creation requests.
type StayBody struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

func (b StayBody) Range() (daterange.Range, error) {
	return daterange.Parse(b.CheckIn, b.CheckOut)
}

type AvailabilityBody struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	StayBody
}

type OccupancyBody struct {
	Adults   int `json:"adults" binding:"min=1"`
	Children int `json:"children" binding:"min=0"`
	Infants  int `json:"infants" binding:"min=0"`
}

func (b OccupancyBody) Occupancy() reservation.Occupancy {
	return reservation.Occupancy{Adults: b.Adults, Children: b.Children, Infants: b.Infants}
}

type CreateReservationBody struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	StayBody
	OccupancyBody
	SpecialRequests string `json:"special_requests" binding:"max=2000"`
}

type CancelBody struct {
	Reason string `json:"reason" binding:"max=200"`
}

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	// Status is a comma separated list, e.g. "pending,confirmed".
	Status string `form:"status" binding:"max=100"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=created_at check_in"`
}

func (r ListReservationsRequest) Filter() (reservation.Filter, error) {
	f := reservation.Filter{
		Page:      r.Page,
		PageSize:  r.PageSize,
		SortBy:    r.SortBy,
		SortOrder: r.Order,
	}
	if r.Status == "" {
		return f, nil
	}
	for _, part := range strings.Split(r.Status, ",") {
		st, err := reservation.ParseStatus(strings.TrimSpace(part))
		if err != nil {
			return reservation.Filter{}, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	return f, nil
}

type QuoteResponse struct {
	NightlyRate string `json:"nightly_rate"`
	Nights      int    `json:"nights"`
	Subtotal    string `json:"subtotal"`
	Discount    string `json:"discount"`
	ServiceFee  string `json:"service_fee"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	BookingType string `json:"booking_type"`
}

func NewQuoteResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		NightlyRate: q.NightlyRate.StringFixed(2),
		Nights:      q.Nights,
		Subtotal:    q.Subtotal.StringFixed(2),
		Discount:    q.Discount.StringFixed(2),
		ServiceFee:  q.ServiceFee.StringFixed(2),
		Total:       q.Total.StringFixed(2),
		Currency:    q.Currency,
		BookingType: string(q.BookingType),
	}
}

type AvailabilityResponse struct {
	PropertyID string        `json:"property_id"`
	CheckIn    string        `json:"check_in"`
	CheckOut   string        `json:"check_out"`
	Available  bool          `json:"available"`
	Price      QuoteResponse `json:"price"`
}

func NewAvailabilityResponse(a *reservation.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		PropertyID: a.PropertyID,
		CheckIn:    a.Stay.CheckIn.Format(daterange.Layout),
		CheckOut:   a.Stay.CheckOut.Format(daterange.Layout),
		Available:  a.Available,
		Price:      NewQuoteResponse(a.Quote),
	}
}

type OccupancyResponse struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

type ReservationResponse struct {
	ID                 string            `json:"id"`
	PropertyID         string            `json:"property_id"`
	GuestID            string            `json:"guest_id"`
	CheckIn            string            `json:"check_in"`
	CheckOut           string            `json:"check_out"`
	Occupancy          OccupancyResponse `json:"occupancy"`
	Price              QuoteResponse     `json:"price"`
	Status             string            `json:"status"`
	SpecialRequests    string            `json:"special_requests,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		GuestID:    r.GuestID,
		CheckIn:    r.Stay.CheckIn.Format(daterange.Layout),
		CheckOut:   r.Stay.CheckOut.Format(daterange.Layout),
		Occupancy: OccupancyResponse{
			Adults:   r.Occupancy.Adults,
			Children: r.Occupancy.Children,
			Infants:  r.Occupancy.Infants,
		},
		Price:              NewQuoteResponse(r.Price),
		Status:             string(r.Status),
		SpecialRequests:    r.SpecialRequests,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
	}
}
