package reservation

import (
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
)

var (
	ErrNotFound          = apperror.NotFound("reservation not found")
	ErrPropertyNotFound  = apperror.NotFound("property not found")
	ErrInvalidRange      = daterange.ErrInvalidRange
	ErrCheckInPast       = apperror.Validation("cannot book a check-in date in the past")
	ErrInvalidOccupancy  = apperror.Validation("at least one adult is required and guest counts cannot be negative")
	ErrCapacityExceeded  = apperror.Validation("guest count exceeds property capacity")
	ErrInvalidStatus     = apperror.Validation("invalid reservation status")
	ErrConflict          = apperror.Conflict("property is not available for these dates")
	ErrStaleState        = apperror.Conflict("reservation was modified concurrently, reload and retry")
	ErrIllegalTransition = apperror.Conflict("reservation cannot move to the requested status")
	ErrOwnerCannotBook   = apperror.Authorization("owners cannot book their own property")
	ErrPermissionDenied  = apperror.Authorization("permission denied")
	ErrGuestRequired     = apperror.Validation("guest id is required")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
)

// Cancellation reasons set by the engine itself.
const (
	ReasonPaymentFailed    = "payment_failed"
	ReasonDatesUnavailable = "dates_unavailable"
	ReasonExpired          = "expired"
	ReasonGuestCancelled   = "guest_cancelled"
	ReasonHostCancelled    = "host_cancelled"
	ReasonOperatorAction   = "operator_cancelled"
)

// OccupyingStatuses are the statuses that must never overlap for one property.
var OccupyingStatuses = []Status{StatusConfirmed, StatusCheckedIn}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCheckedIn, StatusCompleted:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Occupies reports whether the status takes the property's calendar for good.
func (s Status) Occupies() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// Occupancy is the party size of a reservation.
type Occupancy struct {
	Adults   int
	Children int
	Infants  int
}

func (o Occupancy) Total() int {
	return o.Adults + o.Children + o.Infants
}

func (o Occupancy) Validate() error {
	if o.Adults < 1 || o.Children < 0 || o.Infants < 0 {
		return ErrInvalidOccupancy
	}
	return nil
}

// Reservation is a guest's claim on a property for a stay.
// Price is snapshotted at creation and never recomputed.
type Reservation struct {
	ID                 string
	PropertyID         string
	GuestID            string
	Stay               daterange.Range
	Occupancy          Occupancy
	Price              pricing.Quote
	Status             Status
	SpecialRequests    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

func (r *Reservation) clone() *Reservation {
	c := *r
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

// Filter defines parameters for listing reservations.
type Filter struct {
	Statuses  []Status
	Page      int
	PageSize  int
	SortBy    string // created_at (default) or check_in
	SortOrder string // asc or desc (default)
}

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.SortBy != "check_in" {
		f.SortBy = "created_at"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

// StatusUpdate is a conditional status write: it only applies while the
// stored status still equals From.
type StatusUpdate struct {
	ID     string
	From   Status
	To     Status
	At     time.Time
	Reason string
}

// Actor is whoever triggers an operation.
type Actor struct {
	ID       string
	Operator bool
	System   bool
}

// SystemActor is used by internal triggers such as payment reconciliation.
func SystemActor() Actor {
	return Actor{ID: "system", System: true}
}

// StatusChange is emitted after every applied transition.
type StatusChange struct {
	ReservationID string
	PropertyID    string
	GuestID       string
	From          Status // empty on creation
	To            Status
	Reason        string
	At            time.Time
}
