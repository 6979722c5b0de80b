package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitlshop/storefront-backend/internal/hydrate"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

type stubLookup struct {
	mu       sync.Mutex
	products map[string]hydrate.ProductInfo
	fail     bool
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		products: map[string]hydrate.ProductInfo{
			"p-1": {ID: "p-1", Title: "Leather Jacket", Price: decimal.RequireFromString("10.00")},
			"p-2": {ID: "p-2", Title: "Canvas Shoes", Price: decimal.RequireFromString("5.50")},
		},
	}
}

func (s *stubLookup) Product(ctx context.Context, id string) (hydrate.ProductInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return hydrate.ProductInfo{}, errors.New("catalog down")
	}
	info, ok := s.products[id]
	if !ok {
		return hydrate.ProductInfo{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return info, nil
}

type feedNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *feedNotifier) Info(ctx context.Context, shopperID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

func (n *feedNotifier) Error(ctx context.Context, shopperID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func newTestService(t *testing.T) (Service, *stubLookup, *feedNotifier) {
	t.Helper()

	manager, err := NewManager(func(shopperID string) Persistence {
		return NewMemoryPersistence()
	})
	require.NoError(t, err)

	lookup := newStubLookup()
	notifier := &feedNotifier{}
	svc, err := NewService(manager, lookup, notifier)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, lookup, notifier
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	err := svc.AddItem(ctx, "shopper-1", "p-404", 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestViewComputesRoundTripTotals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-1", 2))
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-2", 1))

	view, err := svc.View(ctx, "shopper-1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	assert.Equal(t, "Leather Jacket", view.Lines[0].Name)
	assert.Equal(t, "20.00", view.Lines[0].Total)
	assert.Equal(t, "25.50", view.Summary.Subtotal)
	assert.Equal(t, "0.00", view.Summary.Shipping)
	assert.Equal(t, "25.50", view.Summary.Total)
}

func TestViewEmptyCart(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	view, err := svc.View(context.Background(), "shopper-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Summary.Total)
}

func TestViewSurfacesHydrationFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, lookup, notifier := newTestService(t)
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-1", 1))

	lookup.mu.Lock()
	lookup.fail = true
	lookup.mu.Unlock()

	_, err := svc.View(ctx, "shopper-1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	var lookupErr *hydrate.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "p-1", lookupErr.ProductID)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"Failed to load cart items"}, notifier.errors)
}

func TestRemoveItemEmitsNamedNotification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, notifier := newTestService(t)
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-2", 3))
	require.NoError(t, svc.RemoveItem(ctx, "shopper-1", "p-2"))

	view, err := svc.View(ctx, "shopper-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"Canvas Shoes removed from cart"}, notifier.infos)
}

func TestRemoveAbsentItemStaysQuiet(t *testing.T) {
	t.Parallel()

	svc, _, notifier := newTestService(t)
	require.NoError(t, svc.RemoveItem(context.Background(), "shopper-1", "p-1"))

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Empty(t, notifier.infos)
}

func TestDecrementItemThroughService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-1", 3))
	require.NoError(t, svc.DecrementItem(ctx, "shopper-1", "p-1", 2))

	view, err := svc.View(ctx, "shopper-1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].Quantity)

	require.NoError(t, svc.DecrementItem(ctx, "shopper-1", "p-1", 1))
	view, err = svc.View(ctx, "shopper-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestShoppersAreIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	require.NoError(t, svc.AddItem(ctx, "shopper-1", "p-1", 1))
	require.NoError(t, svc.AddItem(ctx, "shopper-2", "p-2", 5))

	view1, err := svc.View(ctx, "shopper-1")
	require.NoError(t, err)
	view2, err := svc.View(ctx, "shopper-2")
	require.NoError(t, err)

	require.Len(t, view1.Lines, 1)
	require.Len(t, view2.Lines, 1)
	assert.Equal(t, "p-1", view1.Lines[0].ProductID)
	assert.Equal(t, "p-2", view2.Lines[0].ProductID)
}
