package cart

import (
	"context"
	"sort"
	"sync"

	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// Line is one product/quantity pairing held in the cart.
type Line struct {
	ProductID string
	Quantity  int
}

// Persistence is the durable store the cart writes through on every
// mutation and reads once at construction.
type Persistence interface {
	Load(ctx context.Context) (map[string]int, error)
	SetQuantity(ctx context.Context, productID string, qty int) error
	DeleteLine(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// Store holds the ordered line-item collection for a single shopper. All
// mutations are serialized; observers are notified after each one.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	pers    Persistence
	subs    map[uint64]chan struct{}
	nextSub uint64
}

// NewStore builds a store backed by the provided persistence, loading any
// previously saved lines. Persisted hashes carry no ordering, so recovered
// lines are sorted by product id for a stable startup order.
func NewStore(ctx context.Context, pers Persistence) (*Store, error) {
	if pers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart persistence required")
	}

	saved, err := pers.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	lines := make([]Line, 0, len(saved))
	for productID, qty := range saved {
		if qty < 1 {
			continue
		}
		lines = append(lines, Line{ProductID: productID, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	return &Store{
		lines: lines,
		pers:  pers,
		subs:  map[uint64]chan struct{}{},
	}, nil
}

// Add inserts a new line or merges the quantity into an existing one. The
// at-most-one-line-per-product invariant holds afterwards.
func (s *Store) Add(ctx context.Context, productID string, qty int) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	newQty := qty
	if idx >= 0 {
		newQty = s.lines[idx].Quantity + qty
	}

	if err := s.pers.SetQuantity(ctx, productID, newQty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
	}

	if idx >= 0 {
		s.lines[idx].Quantity = newQty
	} else {
		s.lines = append(s.lines, Line{ProductID: productID, Quantity: newQty})
	}

	s.notifyLocked()
	return nil
}

// Decrement subtracts amount from the line's quantity, removing the line
// when nothing would remain. Decrementing an absent product is a silent
// no-op; callers only invoke it for lines known to exist.
func (s *Store) Decrement(ctx context.Context, productID string, amount int) error {
	if amount < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil
	}

	if remaining := s.lines[idx].Quantity - amount; remaining > 0 {
		if err := s.pers.SetQuantity(ctx, productID, remaining); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
		}
		s.lines[idx].Quantity = remaining
	} else {
		if err := s.pers.DeleteLine(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
		}
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	}

	s.notifyLocked()
	return nil
}

// Remove deletes the line unconditionally, if present.
func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(productID)
	if idx < 0 {
		return nil
	}

	if err := s.pers.DeleteLine(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart line")
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)

	s.notifyLocked()
	return nil
}

// Clear empties the store. Used once, after an order is confirmed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pers.Clear(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.lines = nil

	s.notifyLocked()
	return nil
}

// Lines returns a copy of the current line items in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Quantity returns the quantity for the product, zero when absent.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(productID); idx >= 0 {
		return s.lines[idx].Quantity
	}
	return 0
}

// Subscribe registers an observer notified after every mutation. The
// returned cancel func releases the subscription. Notifications are
// coalescing: a slow observer sees at least one signal for any burst of
// mutations.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
