package reservation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

func TestConcurrentCreateOneWins(t *testing.T) {
	ctx := context.Background()

	for _, holds := range []bool{true, false} {
		t.Run(fmt.Sprintf("pending holds %v", holds), func(t *testing.T) {
			// Instant-book so that both policies end in an occupying status.
			f := newFixture(t, Policy{InstantBook: true, PendingHolds: holds})
			const workers = 16
			dates := stay(t, "2025-07-01", "2025-07-08")

			var wg sync.WaitGroup
			errs := make([]error, workers)
			start := make(chan struct{})
			for i := range workers {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = f.svc.CreateReservation(ctx, CreateRequest{
						GuestID:    fmt.Sprintf("guest-%d", i),
						PropertyID: propertyID,
						Stay:       dates,
						Occupancy:  Occupancy{Adults: 1},
					})
				}(i)
			}
			close(start)
			wg.Wait()

			ok := 0
			for _, err := range errs {
				if err == nil {
					ok++
					continue
				}
				assert.ErrorIs(t, err, ErrConflict)
			}
			assert.Equal(t, 1, ok)

			occupying, err := f.repo.ListBlocking(ctx, propertyID, dates, OccupyingStatuses)
			require.NoError(t, err)
			assert.Len(t, occupying, 1)
		})
	}
}

// Random concurrent creates and confirmations must never leave two
// occupying reservations of one property overlapping.
func TestConcurrentNoOverlapProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Policy{PendingHolds: false})
	base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	const workers = 8
	const perWorker = 40

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, seed*31+7))
			for range perWorker {
				in := base.AddDate(0, 0, rng.IntN(60))
				s, err := daterange.New(in, in.AddDate(0, 0, 1+rng.IntN(6)))
				if err != nil {
					continue
				}
				r, err := f.svc.CreateReservation(ctx, CreateRequest{
					GuestID:    fmt.Sprintf("guest-%d", seed),
					PropertyID: propertyID,
					Stay:       s,
					Occupancy:  Occupancy{Adults: 1},
				})
				if err != nil {
					continue
				}
				if rng.IntN(4) > 0 {
					_, _ = f.svc.ConfirmReservation(ctx, r.ID, SystemActor())
				}
			}
		}(uint64(w + 1))
	}
	wg.Wait()

	all, total, err := f.repo.ListForProperty(ctx, propertyID, Filter{PageSize: workers * perWorker})
	require.NoError(t, err)
	require.Equal(t, total, len(all))

	var occupying []*Reservation
	for _, r := range all {
		if r.Status.Occupies() {
			occupying = append(occupying, r)
		}
	}
	require.NotEmpty(t, occupying)

	for i := range occupying {
		for j := i + 1; j < len(occupying); j++ {
			assert.False(t, Overlaps(occupying[i].Stay, occupying[j].Stay),
				"%s overlaps %s", occupying[i].Stay, occupying[j].Stay)
		}
	}
}

func TestMemoryRepositoryConditionalWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	r := &Reservation{ID: "r-1", PropertyID: propertyID, GuestID: guestID, Status: StatusPending, Stay: stay(t, "2025-01-01", "2025-01-03")}
	require.NoError(t, repo.CreateIfAvailable(ctx, r, BlockingStatuses(true)))

	// Callers get copies.
	r.Status = StatusCompleted
	got, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	_, err = repo.UpdateStatus(ctx, StatusUpdate{ID: "r-1", From: StatusConfirmed, To: StatusCheckedIn})
	assert.ErrorIs(t, err, ErrStaleState)

	_, err = repo.UpdateStatus(ctx, StatusUpdate{ID: "missing", From: StatusPending, To: StatusConfirmed})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpdateOccupancy(ctx, "r-1", StatusConfirmed, Occupancy{Adults: 1}, testNow)
	assert.ErrorIs(t, err, ErrStaleState)

	updated, err := repo.UpdateOccupancy(ctx, "r-1", StatusPending, Occupancy{Adults: 3}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Occupancy.Adults)

	ctxDone, cancel := context.WithCancel(ctx)
	cancel()
	err = repo.CreateIfAvailable(ctxDone, &Reservation{ID: "r-2", PropertyID: propertyID, Stay: stay(t, "2025-02-01", "2025-02-03")}, OccupyingStatuses)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.GetByID(ctx, "r-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndexIsAvailable(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.CreateIfAvailable(ctx, &Reservation{ID: "a", PropertyID: propertyID, Status: StatusConfirmed, Stay: stay(t, "2025-03-10", "2025-03-15")}, OccupyingStatuses))
	require.NoError(t, repo.CreateIfAvailable(ctx, &Reservation{ID: "b", PropertyID: propertyID, Status: StatusCancelled, Stay: stay(t, "2025-03-20", "2025-03-25")}, OccupyingStatuses))

	idx := NewIndex(repo, OccupyingStatuses)

	tests := []struct {
		name    string
		in, out string
		want    bool
	}{
		{"inside", "2025-03-11", "2025-03-12", false},
		{"ends on check-in", "2025-03-08", "2025-03-10", true},
		{"starts on check-out", "2025-03-15", "2025-03-17", true},
		{"straddles start", "2025-03-09", "2025-03-11", false},
		{"cancelled does not block", "2025-03-20", "2025-03-25", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := idx.IsAvailable(ctx, propertyID, stay(t, tt.in, tt.out))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	ok, err := idx.IsAvailable(ctx, "other-property", stay(t, "2025-03-11", "2025-03-12"))
	require.NoError(t, err)
	assert.True(t, ok)
}
