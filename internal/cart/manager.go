package cart

import (
	"context"
	"fmt"
	"sync"
)

// PersistenceFactory builds the durable backing for one shopper's cart.
type PersistenceFactory func(shopperID string) Persistence

// Manager hands out the per-shopper cart store, loading persisted lines on
// first access. Stores are cached so every caller observes the same
// serialized state.
type Manager struct {
	mu      sync.Mutex
	factory PersistenceFactory
	stores  map[string]*Store
}

// NewManager builds a manager backed by the provided persistence factory.
func NewManager(factory PersistenceFactory) (*Manager, error) {
	if factory == nil {
		return nil, fmt.Errorf("persistence factory required")
	}
	return &Manager{
		factory: factory,
		stores:  map[string]*Store{},
	}, nil
}

// StoreFor returns the shopper's cart store, creating and loading it on
// first use.
func (m *Manager) StoreFor(ctx context.Context, shopperID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[shopperID]; ok {
		return store, nil
	}

	store, err := NewStore(ctx, m.factory(shopperID))
	if err != nil {
		return nil, err
	}
	m.stores[shopperID] = store
	return store, nil
}
