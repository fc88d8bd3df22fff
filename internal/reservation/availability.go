package reservation

import (
	"context"
	"slices"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

// BlockingStatuses returns the statuses that make dates unavailable to a new request.
// Pending reservations hold their dates when pendingHolds is set.
func BlockingStatuses(pendingHolds bool) []Status {
	if pendingHolds {
		return []Status{StatusPending, StatusConfirmed, StatusCheckedIn}
	}
	return slices.Clone(OccupyingStatuses)
}

// Overlaps reports whether two half-open stays share a night.
func Overlaps(a, b daterange.Range) bool {
	return a.Overlaps(b)
}

// FirstConflict returns the first reservation in existing that blocks stay,
// ignoring excludeID. It returns nil when the stay is free.
func FirstConflict(existing []*Reservation, stay daterange.Range, statuses []Status, excludeID string) *Reservation {
	for _, r := range existing {
		if r.ID == excludeID || !slices.Contains(statuses, r.Status) {
			continue
		}
		if Overlaps(r.Stay, stay) {
			return r
		}
	}
	return nil
}

// Index answers availability questions from the store.
// Its answer is advisory: CreateIfAvailable re-checks under lock.
type Index struct {
	repo     Repository
	statuses []Status
}

func NewIndex(repo Repository, statuses []Status) *Index {
	return &Index{repo: repo, statuses: statuses}
}

// IsAvailable reports whether no blocking reservation overlaps stay.
// Blocking means confirmed or checked_in, plus pending when the index was built
// with BlockingStatuses(true), which is the service default (PENDING_HOLDS).
// With holds on, dates under an unpaid request read as unavailable even though
// that request may still expire or fail payment.
func (i *Index) IsAvailable(ctx context.Context, propertyID string, stay daterange.Range) (bool, error) {
	if stay.Nights() <= 0 {
		return false, ErrInvalidRange
	}
	existing, err := i.repo.ListBlocking(ctx, propertyID, stay, i.statuses)
	if err != nil {
		return false, err
	}
	return FirstConflict(existing, stay, i.statuses, "") == nil, nil
}
