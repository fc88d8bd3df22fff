// Package payment turns payment provider events into reservation transitions.
package payment

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

// Reservations is the part of the reservation service the reconciler drives.
type Reservations interface {
	GetReservation(ctx context.Context, id string, actor reservation.Actor) (*reservation.Reservation, error)
	ConfirmReservation(ctx context.Context, id string, actor reservation.Actor) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id string, actor reservation.Actor, reason string) (*reservation.Reservation, error)
}

const defaultMaxAttempts = 3

type Reconciler struct {
	reservations Reservations
	deduper      Deduper
	log          logrus.FieldLogger
	maxAttempts  int
}

func NewReconciler(reservations Reservations, deduper Deduper, log logrus.FieldLogger) *Reconciler {
	if deduper == nil {
		deduper = NopDeduper{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{
		reservations: reservations,
		deduper:      deduper,
		log:          log.WithField("component", "payment"),
		maxAttempts:  defaultMaxAttempts,
	}
}

// Reconcile applies ev at most once in effect. Replays, late events and events for
// reservations that moved on are absorbed into a Result. Only infrastructure
// failures are returned, so the caller can ask for redelivery.
func (r *Reconciler) Reconcile(ctx context.Context, ev Event) (Result, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	log := r.log.WithFields(logrus.Fields{
		"event_id":       ev.ID,
		"reservation_id": ev.ReservationID,
		"outcome":        ev.Outcome,
	})

	seen, err := r.deduper.Processed(ctx, ev.ID)
	if err != nil {
		// Dedup is only a shortcut; processing is idempotent without it.
		log.WithError(err).Warn("payment event dedup unavailable")
		seen = false
	}
	if seen {
		log.Info("duplicate payment event delivery")
		return ResultAlreadyApplied, nil
	}

	result, err := r.reconcile(ctx, ev, log)
	if err != nil {
		return "", err
	}

	if err := r.deduper.MarkProcessed(context.WithoutCancel(ctx), ev.ID); err != nil {
		log.WithError(err).Warn("failed to record processed payment event")
	}

	log.WithField("result", result).Info("payment event reconciled")
	return result, nil
}

func (r *Reconciler) reconcile(ctx context.Context, ev Event, log logrus.FieldLogger) (Result, error) {
	for range r.maxAttempts {
		result, err := r.apply(ctx, ev, log)
		// Someone else moved the reservation between read and write: look again.
		if errors.Is(err, reservation.ErrStaleState) || errors.Is(err, reservation.ErrIllegalTransition) {
			continue
		}
		return result, err
	}
	log.Warn("reservation kept changing, payment event discarded")
	return ResultDiscarded, nil
}

func (r *Reconciler) apply(ctx context.Context, ev Event, log logrus.FieldLogger) (Result, error) {
	system := reservation.SystemActor()

	res, err := r.reservations.GetReservation(ctx, ev.ReservationID, system)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			log.Warn("payment event for unknown reservation")
			return ResultDiscarded, nil
		}
		return "", err
	}

	if ev.Outcome == OutcomeFailure {
		switch {
		case res.Status == reservation.StatusPending:
			if _, err := r.reservations.CancelReservation(ctx, res.ID, system, reservation.ReasonPaymentFailed); err != nil {
				return "", err
			}
			return ResultApplied, nil
		case res.Status == reservation.StatusCancelled && res.CancellationReason == reservation.ReasonPaymentFailed:
			return ResultAlreadyApplied, nil
		default:
			log.WithField("status", res.Status).Warn("payment failure for reservation no longer pending")
			return ResultDiscarded, nil
		}
	}

	switch res.Status {
	case reservation.StatusPending:
		_, err := r.reservations.ConfirmReservation(ctx, res.ID, system)
		if err == nil {
			return ResultApplied, nil
		}
		if !errors.Is(err, reservation.ErrConflict) {
			return "", err
		}
		log.Warn("payment succeeded but dates are taken, cancelling reservation")
		if _, err := r.reservations.CancelReservation(ctx, res.ID, system, reservation.ReasonDatesUnavailable); err != nil {
			return "", err
		}
		return ResultRejected, nil
	case reservation.StatusConfirmed, reservation.StatusCheckedIn, reservation.StatusCompleted:
		return ResultAlreadyApplied, nil
	default:
		log.WithField("status", res.Status).Warn("payment success for cancelled reservation")
		return ResultDiscarded, nil
	}
}
