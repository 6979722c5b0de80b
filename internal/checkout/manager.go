package checkout

import (
	"context"
	"sync"

	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// StoreProvider resolves the shopper's cart store for a new session.
type StoreProvider func(ctx context.Context, shopperID string) (CartStore, error)

// Manager keys checkout sessions by shopper. A session lives from the first
// access until the order completes; back-navigation does not destroy it.
type Manager struct {
	stores   StoreProvider
	notifier Notifier

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a manager over the cart provider and notification sink.
func NewManager(stores StoreProvider, notifier Notifier) (*Manager, error) {
	if stores == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "store provider required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}
	return &Manager{
		stores:   stores,
		notifier: notifier,
		sessions: map[string]*Session{},
	}, nil
}

// SessionFor returns the shopper's active session, starting one at the cart
// step on first access.
func (m *Manager) SessionFor(ctx context.Context, shopperID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[shopperID]; ok {
		return session, nil
	}

	cart, err := m.stores(ctx, shopperID)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(shopperID, cart, m.notifier)
	if err != nil {
		return nil, err
	}
	m.sessions[shopperID] = session
	return session, nil
}

// Complete finishes the shopper's attempt and destroys the session, so the
// next checkout starts from a blank form.
func (m *Manager) Complete(ctx context.Context, shopperID string) error {
	session, err := m.SessionFor(ctx, shopperID)
	if err != nil {
		return err
	}
	if err := session.Complete(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, shopperID)
	m.mu.Unlock()
	return nil
}
