package hydrate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCart struct {
	mu   sync.Mutex
	refs []Ref
	ch   chan struct{}
}

func newFakeCart(refs ...Ref) *fakeCart {
	return &fakeCart{refs: refs, ch: make(chan struct{}, 1)}
}

func (c *fakeCart) snapshot() []Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Ref, len(c.refs))
	copy(out, c.refs)
	return out
}

func (c *fakeCart) subscribe() (<-chan struct{}, func()) {
	return c.ch, func() {}
}

func (c *fakeCart) set(refs ...Ref) {
	c.mu.Lock()
	c.refs = refs
	c.mu.Unlock()
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

func TestWatcherRequiresWiring(t *testing.T) {
	t.Parallel()

	hyd, err := NewHydrator(newStubLookup())
	require.NoError(t, err)

	_, err = NewWatcher(nil, func() []Ref { return nil }, newFakeCart().subscribe)
	require.Error(t, err)
	_, err = NewWatcher(hyd, nil, newFakeCart().subscribe)
	require.Error(t, err)
	_, err = NewWatcher(hyd, func() []Ref { return nil }, nil)
	require.Error(t, err)
}

func TestWatcherNotReadyBeforeFirstRefresh(t *testing.T) {
	t.Parallel()

	hyd, err := NewHydrator(newStubLookup())
	require.NoError(t, err)
	cart := newFakeCart(Ref{ProductID: "p-1", Quantity: 1})
	w, err := NewWatcher(hyd, cart.snapshot, cart.subscribe)
	require.NoError(t, err)

	_, _, ok := w.Latest()
	assert.False(t, ok)
}

func TestWatcherRefreshPublishesLatest(t *testing.T) {
	t.Parallel()

	hyd, err := NewHydrator(newStubLookup())
	require.NoError(t, err)
	cart := newFakeCart(Ref{ProductID: "p-1", Quantity: 2})
	w, err := NewWatcher(hyd, cart.snapshot, cart.subscribe)
	require.NoError(t, err)

	lines, err := w.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	got, gotErr, ok := w.Latest()
	require.True(t, ok)
	require.NoError(t, gotErr)
	assert.Equal(t, lines, got)
}

func TestWatcherDiscardsSupersededResult(t *testing.T) {
	t.Parallel()

	lookup := newStubLookup()
	lookup.delay = 60 * time.Millisecond
	hyd, err := NewHydrator(lookup)
	require.NoError(t, err)

	cart := newFakeCart(Ref{ProductID: "p-1", Quantity: 1})
	w, err := NewWatcher(hyd, cart.snapshot, cart.subscribe)
	require.NoError(t, err)

	// Start a slow refresh, then mutate and refresh again while the first
	// is still in flight.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.Refresh(context.Background())
	}()
	time.Sleep(10 * time.Millisecond)

	cart.set(Ref{ProductID: "p-1", Quantity: 5})
	lookup.mu.Lock()
	lookup.delay = 0
	lookup.mu.Unlock()

	lines, err := w.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	<-done

	// The stale quantity-1 result never overwrites the published state.
	got, gotErr, ok := w.Latest()
	require.True(t, ok)
	require.NoError(t, gotErr)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Quantity)
}

func TestWatcherRunRefreshesOnCartSignal(t *testing.T) {
	t.Parallel()

	hyd, err := NewHydrator(newStubLookup())
	require.NoError(t, err)
	cart := newFakeCart()
	w, err := NewWatcher(hyd, cart.snapshot, cart.subscribe)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	cart.set(Ref{ProductID: "p-2", Quantity: 3})

	require.Eventually(t, func() bool {
		lines, refErr, ok := w.Latest()
		return ok && refErr == nil && len(lines) == 1 && lines[0].Quantity == 3
	}, time.Second, 5*time.Millisecond)
}
