package http

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
)

type EventBody struct {
	EventID       string    `json:"event_id" binding:"required,max=200"`
	ReservationID string    `json:"reservation_id" binding:"required"`
	Outcome       string    `json:"outcome" binding:"required,oneof=success failure"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (b EventBody) Event() payment.Event {
	return payment.Event{
		ID:            b.EventID,
		ReservationID: b.ReservationID,
		Outcome:       payment.Outcome(b.Outcome),
		OccurredAt:    b.OccurredAt,
	}
}

type ResultResponse struct {
	EventID string `json:"event_id"`
	Result  string `json:"result"`
}
