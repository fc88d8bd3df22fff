package payment

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

var ErrInvalidEvent = apperror.Validation("invalid payment event")

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is a payment provider notification about one reservation.
// The same event may be delivered more than once and out of order.
type Event struct {
	ID            string    `json:"event_id"`
	ReservationID string    `json:"reservation_id"`
	Outcome       Outcome   `json:"outcome"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e Event) Validate() error {
	if e.ID == "" || e.ReservationID == "" {
		return ErrInvalidEvent
	}
	if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailure {
		return ErrInvalidEvent
	}
	return nil
}

// Result says what reconciling an event did.
type Result string

const (
	// ResultApplied means the event moved the reservation.
	ResultApplied Result = "applied"
	// ResultAlreadyApplied means the reservation already reflects the event.
	ResultAlreadyApplied Result = "already_applied"
	// ResultDiscarded means the event no longer applies (unknown reservation or a later state).
	ResultDiscarded Result = "discarded"
	// ResultRejected means payment succeeded but the dates were taken, so the reservation was cancelled.
	ResultRejected Result = "rejected"
)
