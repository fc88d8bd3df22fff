package reservation

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
)

// MemoryRepository is an in-process Repository.
// Writers for one property are serialized by a per-property lock;
// records are guarded by mu. Lock order is always property lock, then mu.
type MemoryRepository struct {
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	mu      sync.RWMutex
	records map[string]*Reservation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		locks:   make(map[string]*sync.Mutex),
		records: make(map[string]*Reservation),
	}
}

func (m *MemoryRepository) propertyLock(propertyID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[propertyID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[propertyID] = l
	}
	return l
}

// propertyRecords must be called with mu held.
func (m *MemoryRepository) propertyRecords(propertyID string) []*Reservation {
	var out []*Reservation
	for _, r := range m.records {
		if r.PropertyID == propertyID {
			out = append(out, r)
		}
	}
	return out
}

func (m *MemoryRepository) CreateIfAvailable(ctx context.Context, r *Reservation, blocking []Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := m.propertyLock(r.PropertyID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[r.ID]; exists {
		return ErrConflict
	}
	if FirstConflict(m.propertyRecords(r.PropertyID), r.Stay, blocking, "") != nil {
		return ErrConflict
	}
	m.records[r.ID] = r.clone()
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

func (m *MemoryRepository) ListForGuest(_ context.Context, guestID string, filter Filter) ([]*Reservation, int, error) {
	return m.list(func(r *Reservation) bool { return r.GuestID == guestID }, filter)
}

func (m *MemoryRepository) ListForProperty(_ context.Context, propertyID string, filter Filter) ([]*Reservation, int, error) {
	return m.list(func(r *Reservation) bool { return r.PropertyID == propertyID }, filter)
}

func (m *MemoryRepository) list(match func(*Reservation) bool, filter Filter) ([]*Reservation, int, error) {
	filter.normalize()

	m.mu.RLock()
	var matched []*Reservation
	for _, r := range m.records {
		if !match(r) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, r.Status) {
			continue
		}
		matched = append(matched, r.clone())
	}
	m.mu.RUnlock()

	key := func(r *Reservation) time.Time {
		if filter.SortBy == "check_in" {
			return r.Stay.CheckIn
		}
		return r.CreatedAt
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := key(matched[i]), key(matched[j])
		if a.Equal(b) {
			return matched[i].ID < matched[j].ID
		}
		if filter.SortOrder == "asc" {
			return a.Before(b)
		}
		return a.After(b)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := min(start+filter.PageSize, total)
	return matched[start:end], total, nil
}

func (m *MemoryRepository) ListBlocking(_ context.Context, propertyID string, stay daterange.Range, statuses []Status) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Reservation
	for _, r := range m.records {
		if r.PropertyID != propertyID || !slices.Contains(statuses, r.Status) || !r.Stay.Overlaps(stay) {
			continue
		}
		out = append(out, r.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stay.CheckIn.Before(out[j].Stay.CheckIn) })
	return out, nil
}

func (m *MemoryRepository) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]*Reservation, error) {
	if limit < 1 {
		limit = 100
	}

	m.mu.RLock()
	var out []*Reservation
	for _, r := range m.records {
		if r.Status == StatusPending && r.CreatedAt.Before(createdBefore) {
			out = append(out, r.clone())
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, u StatusUpdate) (*Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	current, ok := m.records[u.ID]
	var propertyID string
	if ok {
		propertyID = current.PropertyID
	}
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock := m.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	current = m.records[u.ID]
	if current.Status != u.From {
		return nil, ErrStaleState
	}
	if u.To.Occupies() && !u.From.Occupies() {
		if FirstConflict(m.propertyRecords(propertyID), current.Stay, OccupyingStatuses, current.ID) != nil {
			return nil, ErrConflict
		}
	}

	applyUpdate(current, u)
	return current.clone(), nil
}

func (m *MemoryRepository) UpdateOccupancy(_ context.Context, id string, expected Status, occ Occupancy, at time.Time) (*Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if current.Status != expected {
		return nil, ErrStaleState
	}
	current.Occupancy = occ
	current.UpdatedAt = at
	return current.clone(), nil
}
