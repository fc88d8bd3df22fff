package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/catalog"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
)

// Policy holds the engine-wide booking rules.
type Policy struct {
	// InstantBook confirms every new reservation right away, on top of the per-property flag.
	InstantBook bool
	// PendingHolds makes pending reservations block the calendar for other requests.
	PendingHolds bool
}

// Notifier receives every applied status change. Delivery is best effort.
type Notifier interface {
	StatusChanged(ctx context.Context, change StatusChange) error
}

type CreateRequest struct {
	GuestID         string
	PropertyID      string
	Stay            daterange.Range
	Occupancy       Occupancy
	SpecialRequests string
}

// Availability is the answer to an availability query, with the price the stay would cost.
type Availability struct {
	PropertyID string
	Stay       daterange.Range
	Available  bool
	Quote      pricing.Quote
}

type Service interface {
	// CheckAvailability is advisory. Under the default pending-holds policy an
	// unpaid pending request also makes its dates unavailable.
	CheckAvailability(ctx context.Context, propertyID string, stay daterange.Range) (*Availability, error)
	Quote(ctx context.Context, propertyID string, stay daterange.Range) (pricing.Quote, error)
	CreateReservation(ctx context.Context, req CreateRequest) (*Reservation, error)
	GetReservation(ctx context.Context, id string, actor Actor) (*Reservation, error)
	CancelReservation(ctx context.Context, id string, actor Actor, reason string) (*Reservation, error)
	ConfirmReservation(ctx context.Context, id string, actor Actor) (*Reservation, error)
	CheckIn(ctx context.Context, id string, actor Actor) (*Reservation, error)
	Complete(ctx context.Context, id string, actor Actor) (*Reservation, error)
	UpdateOccupancy(ctx context.Context, id string, actor Actor, occ Occupancy) (*Reservation, error)
	ListReservationsForGuest(ctx context.Context, guestID string, filter Filter) ([]*Reservation, int, error)
	ListReservationsForProperty(ctx context.Context, propertyID string, actor Actor, filter Filter) ([]*Reservation, int, error)
	// ExpireStalePending cancels pending reservations created more than olderThan ago.
	// It returns how many were cancelled.
	ExpireStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

type service struct {
	repo       Repository
	catalog    catalog.Catalog
	calculator *pricing.Calculator
	index      *Index
	notifier   Notifier
	clock      clock.Clock
	log        logrus.FieldLogger
	policy     Policy
}

func NewService(
	repo Repository,
	cat catalog.Catalog,
	calculator *pricing.Calculator,
	notifier Notifier,
	clk clock.Clock,
	log logrus.FieldLogger,
	policy Policy,
) Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &service{
		repo:       repo,
		catalog:    cat,
		calculator: calculator,
		index:      NewIndex(repo, BlockingStatuses(policy.PendingHolds)),
		notifier:   notifier,
		clock:      clk,
		log:        log.WithField("component", "reservation"),
		policy:     policy,
	}
}

func (s *service) property(ctx context.Context, propertyID string) (*catalog.PricingInfo, error) {
	info, err := s.catalog.GetPricingInfo(ctx, propertyID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return info, nil
}

func (s *service) quote(info *catalog.PricingInfo, stay daterange.Range) (pricing.Quote, error) {
	return s.calculator.Calculate(pricing.Input{
		NightlyRate:     info.NightlyRate,
		Currency:        info.Currency,
		DiscountPercent: info.DiscountPercent,
		Stay:            stay,
	})
}

func (s *service) CheckAvailability(ctx context.Context, propertyID string, stay daterange.Range) (*Availability, error) {
	if stay.Nights() <= 0 {
		return nil, ErrInvalidRange
	}
	info, err := s.property(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	q, err := s.quote(info, stay)
	if err != nil {
		return nil, err
	}
	available, err := s.index.IsAvailable(ctx, propertyID, stay)
	if err != nil {
		return nil, err
	}
	return &Availability{
		PropertyID: propertyID,
		Stay:       stay,
		Available:  available,
		Quote:      q,
	}, nil
}

func (s *service) Quote(ctx context.Context, propertyID string, stay daterange.Range) (pricing.Quote, error) {
	if stay.Nights() <= 0 {
		return pricing.Quote{}, ErrInvalidRange
	}
	info, err := s.property(ctx, propertyID)
	if err != nil {
		return pricing.Quote{}, err
	}
	return s.quote(info, stay)
}

func (s *service) CreateReservation(ctx context.Context, req CreateRequest) (*Reservation, error) {
	// 1. Validate request
	if req.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if req.Stay.Nights() <= 0 {
		return nil, ErrInvalidRange
	}
	now := s.clock.Now()
	if req.Stay.CheckIn.Before(daterange.Day(now)) {
		return nil, ErrCheckInPast
	}
	if err := req.Occupancy.Validate(); err != nil {
		return nil, err
	}

	// 2. Property rules
	info, err := s.property(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if info.OwnerID == req.GuestID {
		return nil, ErrOwnerCannotBook
	}
	if req.Occupancy.Total() > info.MaxGuests {
		return nil, ErrCapacityExceeded
	}

	// 3. Price snapshot
	q, err := s.quote(info, req.Stay)
	if err != nil {
		return nil, err
	}

	// 4. Atomic availability check + insert
	r := &Reservation{
		ID:              uuid.NewString(),
		PropertyID:      req.PropertyID,
		GuestID:         req.GuestID,
		Stay:            req.Stay,
		Occupancy:       req.Occupancy,
		Price:           q,
		Status:          StatusPending,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Instant-book is stored confirmed by the same locked write, so a failed or
	// abandoned attempt leaves nothing behind. The blocking set always contains
	// the occupying statuses.
	if s.policy.InstantBook || info.InstantBook {
		u, err := Plan(r, Confirm{})
		if err != nil {
			return nil, err
		}
		u.At = now
		applyUpdate(r, u)
	}

	if err := s.repo.CreateIfAvailable(ctx, r, BlockingStatuses(s.policy.PendingHolds)); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"property_id":    r.PropertyID,
		"status":         r.Status,
	}).Info("reservation created")

	s.notify(ctx, StatusChange{
		ReservationID: r.ID,
		PropertyID:    r.PropertyID,
		GuestID:       r.GuestID,
		To:            r.Status,
		At:            now,
	})
	return r, nil
}

func (s *service) GetReservation(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, r, actor, partyGuest|partyOwner); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) CancelReservation(ctx context.Context, id string, actor Actor, reason string) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, r, actor, partyGuest|partyOwner); err != nil {
		return nil, err
	}
	if reason == "" {
		reason = defaultCancelReason(r, actor)
	}
	return s.transition(ctx, r, Cancel{Why: reason})
}

func defaultCancelReason(r *Reservation, actor Actor) string {
	switch {
	case actor.ID == r.GuestID:
		return ReasonGuestCancelled
	case actor.Operator || actor.System:
		return ReasonOperatorAction
	default:
		return ReasonHostCancelled
	}
}

func (s *service) ConfirmReservation(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	return s.ownerTransition(ctx, id, actor, Confirm{})
}

func (s *service) CheckIn(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	return s.ownerTransition(ctx, id, actor, CheckIn{})
}

func (s *service) Complete(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	return s.ownerTransition(ctx, id, actor, Complete{})
}

func (s *service) ownerTransition(ctx context.Context, id string, actor Actor, t Transition) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, r, actor, partyOwner); err != nil {
		return nil, err
	}
	return s.transition(ctx, r, t)
}

func (s *service) UpdateOccupancy(ctx context.Context, id string, actor Actor, occ Occupancy) (*Reservation, error) {
	if err := occ.Validate(); err != nil {
		return nil, err
	}
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, r, actor, partyGuest); err != nil {
		return nil, err
	}
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return nil, ErrIllegalTransition
	}

	info, err := s.property(ctx, r.PropertyID)
	if err != nil {
		return nil, err
	}
	if occ.Total() > info.MaxGuests {
		return nil, ErrCapacityExceeded
	}

	return s.repo.UpdateOccupancy(ctx, id, r.Status, occ, s.clock.Now())
}

func (s *service) ListReservationsForGuest(ctx context.Context, guestID string, filter Filter) ([]*Reservation, int, error) {
	if guestID == "" {
		return nil, 0, ErrGuestRequired
	}
	return s.repo.ListForGuest(ctx, guestID, filter)
}

func (s *service) ListReservationsForProperty(ctx context.Context, propertyID string, actor Actor, filter Filter) ([]*Reservation, int, error) {
	if !actor.Operator && !actor.System {
		info, err := s.property(ctx, propertyID)
		if err != nil {
			return nil, 0, err
		}
		if info.OwnerID != actor.ID {
			return nil, 0, ErrPermissionDenied
		}
	}
	return s.repo.ListForProperty(ctx, propertyID, filter)
}

func (s *service) ExpireStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.repo.ListStalePending(ctx, s.clock.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, r := range stale {
		if _, err := s.transition(ctx, r, Cancel{Why: ReasonExpired}); err != nil {
			// Confirmed or cancelled by someone else in the meantime.
			if errors.Is(err, ErrStaleState) || errors.Is(err, ErrIllegalTransition) {
				continue
			}
			return expired, fmt.Errorf("expire reservation %s: %w", r.ID, err)
		}
		expired++
	}
	return expired, nil
}

// transition is the only path that changes a reservation's status.
func (s *service) transition(ctx context.Context, r *Reservation, t Transition) (*Reservation, error) {
	u, err := Plan(r, t)
	if err != nil {
		return nil, err
	}
	u.At = s.clock.Now()

	updated, err := s.repo.UpdateStatus(ctx, u)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": updated.ID,
		"from":           u.From,
		"to":             u.To,
		"reason":         u.Reason,
	}).Info("reservation status changed")

	s.notify(ctx, StatusChange{
		ReservationID: updated.ID,
		PropertyID:    updated.PropertyID,
		GuestID:       updated.GuestID,
		From:          u.From,
		To:            u.To,
		Reason:        u.Reason,
		At:            u.At,
	})
	return updated, nil
}

func (s *service) notify(ctx context.Context, change StatusChange) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.StatusChanged(ctx, change); err != nil {
		s.log.WithError(err).WithField("reservation_id", change.ReservationID).Warn("failed to publish status change")
	}
}

type party int

const (
	partyGuest party = 1 << iota
	partyOwner
)

// authorize checks that actor is one of the allowed parties of r.
// Operators and the system are always allowed.
func (s *service) authorize(ctx context.Context, r *Reservation, actor Actor, allowed party) error {
	if actor.Operator || actor.System {
		return nil
	}
	if allowed&partyGuest != 0 && actor.ID != "" && actor.ID == r.GuestID {
		return nil
	}
	if allowed&partyOwner != 0 && actor.ID != "" {
		info, err := s.catalog.GetPricingInfo(ctx, r.PropertyID)
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			return err
		}
		if info != nil && info.OwnerID == actor.ID {
			return nil
		}
	}
	return ErrPermissionDenied
}
