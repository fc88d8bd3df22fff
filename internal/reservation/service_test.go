package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/catalog"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
)

const (
	propertyID = "prop-1"
	ownerID    = "owner-1"
	guestID    = "guest-1"
)

var testNow = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (n *recordingNotifier) StatusChanged(_ context.Context, c StatusChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return nil
}

func (n *recordingNotifier) all() []StatusChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StatusChange(nil), n.changes...)
}

type fixture struct {
	svc      Service
	repo     *MemoryRepository
	catalog  *catalog.MemoryCatalog
	notifier *recordingNotifier
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	repo := NewMemoryRepository()
	cat := catalog.NewMemoryCatalog(catalog.PricingInfo{
		PropertyID:      propertyID,
		OwnerID:         ownerID,
		NightlyRate:     decimal.NewFromInt(100),
		Currency:        "SAR",
		DiscountPercent: decimal.NewFromInt(10),
		MaxGuests:       4,
	})
	n := &recordingNotifier{}
	svc := NewService(repo, cat, pricing.NewCalculator(pricing.DefaultPolicy()), n, clock.NewFixed(testNow), log, policy)
	return &fixture{svc: svc, repo: repo, catalog: cat, notifier: n}
}

func stay(t *testing.T, in, out string) daterange.Range {
	t.Helper()
	r, err := daterange.Parse(in, out)
	require.NoError(t, err)
	return r
}

func (f *fixture) create(t *testing.T, guest, in, out string) *Reservation {
	t.Helper()
	r, err := f.svc.CreateReservation(context.Background(), CreateRequest{
		GuestID:    guest,
		PropertyID: propertyID,
		Stay:       stay(t, in, out),
		Occupancy:  Occupancy{Adults: 2},
	})
	require.NoError(t, err)
	return r
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Create: Four-night stay pricing", func(t *testing.T) {
		f := newFixture(t, Policy{PendingHolds: true})
		r, err := f.svc.CreateReservation(ctx, CreateRequest{
			GuestID:         guestID,
			PropertyID:      propertyID,
			Stay:            stay(t, "2025-01-01", "2025-01-05"),
			Occupancy:       Occupancy{Adults: 2, Children: 1},
			SpecialRequests: "late arrival",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, "late arrival", r.SpecialRequests)
		assert.Equal(t, 4, r.Price.Nights)
		assert.True(t, r.Price.Subtotal.Equal(decimal.NewFromInt(400)))
		assert.True(t, r.Price.Discount.IsZero())
		assert.True(t, r.Price.ServiceFee.Equal(decimal.RequireFromString("20.00")))
		assert.True(t, r.Price.Total.Equal(decimal.RequireFromString("420.00")))
		assert.Equal(t, pricing.BookingNightly, r.Price.BookingType)
		assert.Equal(t, testNow, r.CreatedAt)

		stored, err := f.repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r, stored)

		changes := f.notifier.all()
		require.Len(t, changes, 1)
		assert.Equal(t, StatusPending, changes[0].To)
		assert.Empty(t, changes[0].From)
	})

	t.Run("Create: Monthly stay pricing", func(t *testing.T) {
		f := newFixture(t, Policy{})
		r := f.create(t, guestID, "2025-02-01", "2025-03-03")
		assert.Equal(t, pricing.BookingMonthly, r.Price.BookingType)
		assert.True(t, r.Price.Discount.Equal(decimal.NewFromInt(300)))
		assert.True(t, r.Price.Total.Equal(decimal.RequireFromString("2835.00")))
	})

	t.Run("Create: Stored price matches quote", func(t *testing.T) {
		f := newFixture(t, Policy{})
		s := stay(t, "2025-04-10", "2025-04-13")
		q, err := f.svc.Quote(ctx, propertyID, s)
		require.NoError(t, err)

		r := f.create(t, guestID, "2025-04-10", "2025-04-13")
		stored, err := f.repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, q.Equal(stored.Price))
	})

	t.Run("Create: Validation failures", func(t *testing.T) {
		f := newFixture(t, Policy{})
		valid := stay(t, "2025-01-01", "2025-01-05")

		tests := []struct {
			name string
			req  CreateRequest
			want error
		}{
			{"missing guest", CreateRequest{PropertyID: propertyID, Stay: valid, Occupancy: Occupancy{Adults: 1}}, ErrGuestRequired},
			{"empty range", CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: daterange.Range{CheckIn: valid.CheckIn, CheckOut: valid.CheckIn}, Occupancy: Occupancy{Adults: 1}}, ErrInvalidRange},
			{"check-in in the past", CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: stay(t, "2024-11-30", "2024-12-03"), Occupancy: Occupancy{Adults: 1}}, ErrCheckInPast},
			{"no adults", CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: valid, Occupancy: Occupancy{Children: 2}}, ErrInvalidOccupancy},
			{"negative infants", CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: valid, Occupancy: Occupancy{Adults: 1, Infants: -1}}, ErrInvalidOccupancy},
			{"unknown property", CreateRequest{GuestID: guestID, PropertyID: "nope", Stay: valid, Occupancy: Occupancy{Adults: 1}}, ErrPropertyNotFound},
			{"owner books own property", CreateRequest{GuestID: ownerID, PropertyID: propertyID, Stay: valid, Occupancy: Occupancy{Adults: 1}}, ErrOwnerCannotBook},
			{"over capacity", CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: valid, Occupancy: Occupancy{Adults: 2, Children: 2, Infants: 1}}, ErrCapacityExceeded},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.CreateReservation(ctx, tt.req)
				assert.ErrorIs(t, err, tt.want)
			})
		}
		assert.Empty(t, f.notifier.all())
	})

	t.Run("Create: Check-in today is allowed", func(t *testing.T) {
		f := newFixture(t, Policy{})
		r := f.create(t, guestID, "2024-12-01", "2024-12-02")
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("Create: Overlap conflicts, back-to-back does not", func(t *testing.T) {
		f := newFixture(t, Policy{PendingHolds: true})
		f.create(t, guestID, "2025-03-10", "2025-03-15")

		_, err := f.svc.CreateReservation(ctx, CreateRequest{
			GuestID: "guest-2", PropertyID: propertyID,
			Stay: stay(t, "2025-03-14", "2025-03-16"), Occupancy: Occupancy{Adults: 1},
		})
		assert.ErrorIs(t, err, ErrConflict)
		assert.True(t, apperror.IsConflict(err))

		r := f.create(t, "guest-2", "2025-03-15", "2025-03-18")
		assert.Equal(t, StatusPending, r.Status)
	})

	t.Run("Create: Pending does not block without holds", func(t *testing.T) {
		f := newFixture(t, Policy{PendingHolds: false})
		first := f.create(t, guestID, "2025-03-10", "2025-03-15")
		second := f.create(t, "guest-2", "2025-03-12", "2025-03-14")

		_, err := f.svc.ConfirmReservation(ctx, first.ID, Actor{ID: ownerID})
		require.NoError(t, err)

		// The second one can no longer be confirmed.
		_, err = f.svc.ConfirmReservation(ctx, second.ID, Actor{ID: ownerID})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestInstantBook(t *testing.T) {
	ctx := context.Background()

	t.Run("Global policy confirms on creation", func(t *testing.T) {
		f := newFixture(t, Policy{InstantBook: true, PendingHolds: true})
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")
		assert.Equal(t, StatusConfirmed, r.Status)

		stored, err := f.repo.GetByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, stored.Status)

		changes := f.notifier.all()
		require.Len(t, changes, 1)
		assert.Empty(t, changes[0].From)
		assert.Equal(t, StatusConfirmed, changes[0].To)
	})

	t.Run("Per-property flag confirms on creation", func(t *testing.T) {
		f := newFixture(t, Policy{})
		info, err := f.catalog.GetPricingInfo(ctx, propertyID)
		require.NoError(t, err)
		info.InstantBook = true
		f.catalog.Put(*info)

		r := f.create(t, guestID, "2025-01-01", "2025-01-05")
		assert.Equal(t, StatusConfirmed, r.Status)
	})

	t.Run("Overlap with a confirmed stay stores nothing", func(t *testing.T) {
		f := newFixture(t, Policy{InstantBook: true})
		f.create(t, guestID, "2025-01-01", "2025-01-05")

		_, err := f.svc.CreateReservation(ctx, CreateRequest{
			GuestID: "guest-2", PropertyID: propertyID,
			Stay: stay(t, "2025-01-03", "2025-01-06"), Occupancy: Occupancy{Adults: 1},
		})
		require.ErrorIs(t, err, ErrConflict)

		list, total, err := f.svc.ListReservationsForGuest(ctx, "guest-2", Filter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})

	t.Run("Pending hold without holds policy is not overridden", func(t *testing.T) {
		f := newFixture(t, Policy{PendingHolds: false})
		rival := f.create(t, guestID, "2025-01-01", "2025-01-05")

		log, _ := test.NewNullLogger()
		svc := NewService(f.repo, f.catalog, pricing.NewCalculator(pricing.DefaultPolicy()), nil, clock.NewFixed(testNow), log, Policy{InstantBook: true})
		r, err := svc.CreateReservation(ctx, CreateRequest{
			GuestID: "guest-2", PropertyID: propertyID,
			Stay: stay(t, "2025-01-03", "2025-01-06"), Occupancy: Occupancy{Adults: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, r.Status)

		// The earlier pending request lost the dates.
		_, err = f.svc.ConfirmReservation(ctx, rival.ID, Actor{ID: ownerID})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("Caller giving up after the insert leaves no pending hold", func(t *testing.T) {
		f := newFixture(t, Policy{InstantBook: true, PendingHolds: true})
		reqCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		cancelling := &cancellingRepository{MemoryRepository: f.repo, cancel: cancel}
		log, _ := test.NewNullLogger()
		svc := NewService(cancelling, f.catalog, pricing.NewCalculator(pricing.DefaultPolicy()), nil, clock.NewFixed(testNow), log, Policy{InstantBook: true, PendingHolds: true})

		r, err := svc.CreateReservation(reqCtx, CreateRequest{
			GuestID: guestID, PropertyID: propertyID,
			Stay: stay(t, "2025-01-01", "2025-01-05"), Occupancy: Occupancy{Adults: 1},
		})
		require.NoError(t, err)
		require.Error(t, reqCtx.Err())

		list, total, err := f.repo.ListForGuest(ctx, guestID, Filter{})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		assert.Equal(t, r.ID, list[0].ID)
		assert.Equal(t, StatusConfirmed, list[0].Status)
	})

	t.Run("Cancelled context stores nothing", func(t *testing.T) {
		f := newFixture(t, Policy{InstantBook: true, PendingHolds: true})
		reqCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := f.svc.CreateReservation(reqCtx, CreateRequest{
			GuestID: guestID, PropertyID: propertyID,
			Stay: stay(t, "2025-01-01", "2025-01-05"), Occupancy: Occupancy{Adults: 1},
		})
		require.ErrorIs(t, err, context.Canceled)

		// A retry gets the dates.
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")
		assert.Equal(t, StatusConfirmed, r.Status)
	})
}

// cancellingRepository cancels the request context right after a successful insert.
type cancellingRepository struct {
	*MemoryRepository
	cancel context.CancelFunc
}

func (r *cancellingRepository) CreateIfAvailable(ctx context.Context, res *Reservation, blocking []Status) error {
	if err := r.MemoryRepository.CreateIfAvailable(ctx, res, blocking); err != nil {
		return err
	}
	r.cancel()
	return nil
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Policy{PendingHolds: true})
	f.create(t, guestID, "2025-06-01", "2025-06-05")

	a, err := f.svc.CheckAvailability(ctx, propertyID, stay(t, "2025-06-03", "2025-06-04"))
	require.NoError(t, err)
	assert.False(t, a.Available)
	assert.Equal(t, 1, a.Quote.Nights)

	a, err = f.svc.CheckAvailability(ctx, propertyID, stay(t, "2025-06-05", "2025-06-07"))
	require.NoError(t, err)
	assert.True(t, a.Available)

	_, err = f.svc.CheckAvailability(ctx, "missing", stay(t, "2025-06-05", "2025-06-07"))
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestLifecycleThroughService(t *testing.T) {
	ctx := context.Background()

	t.Run("Full happy path", func(t *testing.T) {
		f := newFixture(t, Policy{PendingHolds: true})
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")
		owner := Actor{ID: ownerID}

		r, err := f.svc.ConfirmReservation(ctx, r.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, r.Status)

		r, err = f.svc.CheckIn(ctx, r.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, StatusCheckedIn, r.Status)

		r, err = f.svc.Complete(ctx, r.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, r.Status)

		_, err = f.svc.CancelReservation(ctx, r.ID, owner, "")
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("Guest cannot confirm or check in", func(t *testing.T) {
		f := newFixture(t, Policy{})
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")

		_, err := f.svc.ConfirmReservation(ctx, r.ID, Actor{ID: guestID})
		assert.ErrorIs(t, err, ErrPermissionDenied)
		_, err = f.svc.CheckIn(ctx, r.ID, Actor{ID: guestID})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("Illegal transition from pending", func(t *testing.T) {
		f := newFixture(t, Policy{})
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")

		_, err := f.svc.CheckIn(ctx, r.ID, Actor{ID: ownerID})
		assert.ErrorIs(t, err, ErrIllegalTransition)
		_, err = f.svc.Complete(ctx, r.ID, Actor{ID: ownerID})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("Cancel permissions and reasons", func(t *testing.T) {
		f := newFixture(t, Policy{})
		a := f.create(t, guestID, "2025-01-01", "2025-01-05")
		b := f.create(t, guestID, "2025-02-01", "2025-02-05")
		c := f.create(t, guestID, "2025-03-01", "2025-03-05")

		_, err := f.svc.CancelReservation(ctx, a.ID, Actor{ID: "stranger"}, "")
		assert.ErrorIs(t, err, ErrPermissionDenied)

		got, err := f.svc.CancelReservation(ctx, a.ID, Actor{ID: guestID}, "")
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, got.Status)
		assert.Equal(t, ReasonGuestCancelled, got.CancellationReason)
		require.NotNil(t, got.CancelledAt)
		assert.Equal(t, testNow, *got.CancelledAt)

		got, err = f.svc.CancelReservation(ctx, b.ID, Actor{ID: ownerID}, "")
		require.NoError(t, err)
		assert.Equal(t, ReasonHostCancelled, got.CancellationReason)

		got, err = f.svc.CancelReservation(ctx, c.ID, Actor{Operator: true}, "duplicate booking")
		require.NoError(t, err)
		assert.Equal(t, "duplicate booking", got.CancellationReason)

		// Cancelled is terminal.
		_, err = f.svc.ConfirmReservation(ctx, c.ID, Actor{Operator: true})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("Get is limited to the parties", func(t *testing.T) {
		f := newFixture(t, Policy{})
		r := f.create(t, guestID, "2025-01-01", "2025-01-05")

		for _, actor := range []Actor{{ID: guestID}, {ID: ownerID}, {Operator: true}, SystemActor()} {
			_, err := f.svc.GetReservation(ctx, r.ID, actor)
			assert.NoError(t, err)
		}
		_, err := f.svc.GetReservation(ctx, r.ID, Actor{ID: "stranger"})
		assert.ErrorIs(t, err, ErrPermissionDenied)

		_, err = f.svc.GetReservation(ctx, "missing", Actor{Operator: true})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Policy{})
	r := f.create(t, guestID, "2025-01-01", "2025-01-05")

	got, err := f.svc.UpdateOccupancy(ctx, r.ID, Actor{ID: guestID}, Occupancy{Adults: 2, Children: 1, Infants: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Occupancy.Total())

	_, err = f.svc.UpdateOccupancy(ctx, r.ID, Actor{ID: guestID}, Occupancy{Adults: 5})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.svc.UpdateOccupancy(ctx, r.ID, Actor{ID: guestID}, Occupancy{})
	assert.ErrorIs(t, err, ErrInvalidOccupancy)

	_, err = f.svc.UpdateOccupancy(ctx, r.ID, Actor{ID: ownerID}, Occupancy{Adults: 1})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.CancelReservation(ctx, r.ID, Actor{ID: guestID}, "")
	require.NoError(t, err)
	_, err = f.svc.UpdateOccupancy(ctx, r.ID, Actor{ID: guestID}, Occupancy{Adults: 1})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestListReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Policy{})
	f.create(t, guestID, "2025-03-01", "2025-03-05")
	f.create(t, guestID, "2025-01-01", "2025-01-05")
	f.create(t, "guest-2", "2025-02-01", "2025-02-05")

	list, total, err := f.svc.ListReservationsForGuest(ctx, guestID, Filter{SortBy: "check_in", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-01-01", list[0].Stay.CheckIn.Format(daterange.Layout))

	_, total, err = f.svc.ListReservationsForProperty(ctx, propertyID, Actor{ID: ownerID}, Filter{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, _, err = f.svc.ListReservationsForProperty(ctx, propertyID, Actor{ID: guestID}, Filter{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	list, total, err = f.svc.ListReservationsForProperty(ctx, propertyID, Actor{Operator: true}, Filter{Statuses: []Status{StatusConfirmed}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestExpireStalePending(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	repo := NewMemoryRepository()
	cat := catalog.NewMemoryCatalog(catalog.PricingInfo{
		PropertyID: propertyID, OwnerID: ownerID, NightlyRate: decimal.NewFromInt(80), Currency: "SAR", MaxGuests: 2,
	})
	calc := pricing.NewCalculator(pricing.DefaultPolicy())

	early := NewService(repo, cat, calc, nil, clock.NewFixed(testNow), log, Policy{PendingHolds: true})
	old, err := early.CreateReservation(ctx, CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: stay(t, "2025-01-01", "2025-01-03"), Occupancy: Occupancy{Adults: 1}})
	require.NoError(t, err)
	kept, err := early.CreateReservation(ctx, CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: stay(t, "2025-01-05", "2025-01-07"), Occupancy: Occupancy{Adults: 1}})
	require.NoError(t, err)
	_, err = early.ConfirmReservation(ctx, kept.ID, SystemActor())
	require.NoError(t, err)

	later := NewService(repo, cat, calc, nil, clock.NewFixed(testNow.Add(2*time.Hour)), log, Policy{PendingHolds: true})
	fresh, err := later.CreateReservation(ctx, CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: stay(t, "2025-01-10", "2025-01-12"), Occupancy: Occupancy{Adults: 1}})
	require.NoError(t, err)

	n, err := later.ExpireStalePending(ctx, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := repo.GetByID(ctx, old.ID)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, ReasonExpired, got.CancellationReason)

	got, _ = repo.GetByID(ctx, kept.ID)
	assert.Equal(t, StatusConfirmed, got.Status)
	got, _ = repo.GetByID(ctx, fresh.ID)
	assert.Equal(t, StatusPending, got.Status)

	// The expired hold frees the dates.
	_, err = later.CreateReservation(ctx, CreateRequest{GuestID: "guest-2", PropertyID: propertyID, Stay: stay(t, "2025-01-01", "2025-01-03"), Occupancy: Occupancy{Adults: 1}})
	assert.NoError(t, err)
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	log, hook := test.NewNullLogger()
	repo := NewMemoryRepository()
	cat := catalog.NewMemoryCatalog(catalog.PricingInfo{PropertyID: propertyID, OwnerID: ownerID, NightlyRate: decimal.NewFromInt(50), Currency: "SAR", MaxGuests: 2})
	svc := NewService(repo, cat, pricing.NewCalculator(pricing.DefaultPolicy()), failingNotifier{}, clock.NewFixed(testNow), log, Policy{})

	_, err := svc.CreateReservation(context.Background(), CreateRequest{GuestID: guestID, PropertyID: propertyID, Stay: stay(t, "2025-01-01", "2025-01-02"), Occupancy: Occupancy{Adults: 1}})
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

type failingNotifier struct{}

func (failingNotifier) StatusChanged(context.Context, StatusChange) error {
	return assert.AnError
}
