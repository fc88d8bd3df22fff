package catalog

import (
	"context"
	"sync"
)

// MemoryCatalog is a map-backed Catalog used by tests and local runs.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[string]PricingInfo
}

func NewMemoryCatalog(items ...PricingInfo) *MemoryCatalog {
	m := &MemoryCatalog{items: make(map[string]PricingInfo, len(items))}
	for _, it := range items {
		m.items[it.PropertyID] = it
	}
	return m
}

// Put adds or replaces a property.
func (m *MemoryCatalog) Put(info PricingInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[info.PropertyID] = info
}

func (m *MemoryCatalog) GetPricingInfo(_ context.Context, propertyID string) (*PricingInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.items[propertyID]
	if !ok {
		return nil, ErrNotFound
	}
	return &info, nil
}
