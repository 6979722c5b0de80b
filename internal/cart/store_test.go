package cart

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryPersistence) {
	t.Helper()

	pers := NewMemoryPersistence()
	store, err := NewStore(context.Background(), pers)
	require.NoError(t, err)
	return store, pers
}

func TestNewStoreRequiresPersistence(t *testing.T) {
	t.Parallel()

	_, err := NewStore(context.Background(), nil)
	require.Error(t, err)
}

func TestNewStoreLoadsPersistedLines(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pers := NewMemoryPersistence()
	require.NoError(t, pers.SetQuantity(ctx, "p-2", 3))
	require.NoError(t, pers.SetQuantity(ctx, "p-1", 1))

	store, err := NewStore(ctx, pers)
	require.NoError(t, err)

	// Hash order is undefined, so recovery sorts by product id.
	want := []Line{{ProductID: "p-1", Quantity: 1}, {ProductID: "p-2", Quantity: 3}}
	assert.Equal(t, want, store.Lines())
}

func TestAddMergesDuplicateProduct(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, pers := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-1", 1))
	require.NoError(t, store.Add(ctx, "p-2", 1))
	require.NoError(t, store.Add(ctx, "p-1", 2))

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 3, store.Quantity("p-1"))
	assert.Equal(t, 1, store.Quantity("p-2"))

	saved, err := pers.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p-1": 3, "p-2": 1}, saved)
}

func TestAddValidatesInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)

	err := store.Add(ctx, "", 1)
	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	err = store.Add(ctx, "p-1", 0)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, 0, store.Len())
}

func TestDecrementRemovesLineAtZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, pers := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-1", 2))

	require.NoError(t, store.Decrement(ctx, "p-1", 1))
	assert.Equal(t, 1, store.Quantity("p-1"))

	require.NoError(t, store.Decrement(ctx, "p-1", 1))
	assert.Equal(t, 0, store.Len())

	saved, err := pers.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestDecrementAbsentProductIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-1", 2))

	require.NoError(t, store.Decrement(ctx, "p-9", 1))
	assert.Equal(t, 2, store.Quantity("p-1"))
	assert.Equal(t, 1, store.Len())
}

func TestRemoveDeletesWholeLine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-1", 5))
	require.NoError(t, store.Add(ctx, "p-2", 1))

	require.NoError(t, store.Remove(ctx, "p-1"))
	assert.Equal(t, []Line{{ProductID: "p-2", Quantity: 1}}, store.Lines())

	// Removing again stays silent.
	require.NoError(t, store.Remove(ctx, "p-1"))
}

func TestClearEmptiesStoreAndPersistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, pers := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-1", 2))
	require.NoError(t, store.Add(ctx, "p-2", 4))

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())

	saved, err := pers.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestInsertionOrderSurvivesMerges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	require.NoError(t, store.Add(ctx, "p-3", 1))
	require.NoError(t, store.Add(ctx, "p-1", 1))
	require.NoError(t, store.Add(ctx, "p-2", 1))
	require.NoError(t, store.Add(ctx, "p-1", 4))

	got := store.Lines()
	ids := make([]string, 0, len(got))
	for _, l := range got {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []string{"p-3", "p-1", "p-2"}, ids)
}

func TestSubscribeSignalsEveryMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	ch, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Add(ctx, "p-1", 1))
	select {
	case <-ch:
	default:
		t.Fatal("expected a change signal after Add")
	}

	// A burst coalesces into at least one pending signal.
	require.NoError(t, store.Add(ctx, "p-1", 1))
	require.NoError(t, store.Remove(ctx, "p-1"))
	select {
	case <-ch:
	default:
		t.Fatal("expected a coalesced signal after burst")
	}
}

func TestSubscribeCancelStopsSignals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, _ := newTestStore(t)
	ch, cancel := store.Subscribe()
	cancel()

	require.NoError(t, store.Add(ctx, "p-1", 1))
	select {
	case <-ch:
		t.Fatal("cancelled subscription still signalled")
	default:
	}
}

type failingPersistence struct {
	*MemoryPersistence
	failSet bool
}

func (p *failingPersistence) SetQuantity(ctx context.Context, productID string, qty int) error {
	if p.failSet {
		return errors.New("redis down")
	}
	return p.MemoryPersistence.SetQuantity(ctx, productID, qty)
}

func TestMutationFailsWithoutMemoryChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pers := &failingPersistence{MemoryPersistence: NewMemoryPersistence()}
	store, err := NewStore(ctx, pers)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, "p-1", 1))

	pers.failSet = true
	err = store.Add(ctx, "p-1", 1)
	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())

	// Persistence write failed, so in-memory state is untouched.
	assert.Equal(t, 1, store.Quantity("p-1"))
}
