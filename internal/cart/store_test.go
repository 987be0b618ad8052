package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func hose(qty int) Item {
	return Item{ProductID: 1, Name: "Hose", Price: 249.5, Quantity: qty}
}

func valve(qty int) Item {
	return Item{ProductID: 2, Name: "Valve", Price: 99, Quantity: qty}
}

func TestAddMergesByProductID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(2))
	require.NoError(t, err)
	c, err := store.Add(ctx, "c1", hose(3))
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddQuantityIsUnlimited(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// Stock is a display hint; Add never caps against it.
	item := hose(1)
	item.Stock = 3
	_, err := store.Add(ctx, "c1", item)
	require.NoError(t, err)
	item.Quantity = 9999
	c, err := store.Add(ctx, "c1", item)
	require.NoError(t, err)
	assert.Equal(t, 10000, c.Items[0].Quantity)
}

func TestUpdateQuantityClampsAtOne(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(4))
	require.NoError(t, err)

	c, err := store.UpdateQuantity(ctx, "c1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[0].Quantity, "zero clamps to one, never removes")

	c, err = store.UpdateQuantity(ctx, "c1", 1, -5)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c, err = store.UpdateQuantity(ctx, "c1", 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.UpdateQuantity(context.Background(), "c1", 42, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(1))
	require.NoError(t, err)
	_, err = store.Add(ctx, "c1", valve(2))
	require.NoError(t, err)

	c, err := store.Remove(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(2), c.Items[0].ProductID)

	_, err = store.Remove(ctx, "c1", 1)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, store.Clear(ctx, "c1"))
	c, err = store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestTotalAndCount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(2)) // 2 × 249.5
	require.NoError(t, err)
	c, err := store.Add(ctx, "c1", valve(3)) // 3 × 99
	require.NoError(t, err)

	assert.InDelta(t, 796.0, c.Total(), 1e-9)
	assert.Equal(t, 5, c.Count())
}

func TestCartSurvivesReload(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(2))
	require.NoError(t, err)

	// A fresh Store over the same Redis sees the same cart.
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c, err := NewStore(client).Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	ttl := mr.TTL(cartKey("c1"))
	assert.Equal(t, DefaultTTL, ttl)
}

func TestCartsAreIsolatedByID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, "c1", hose(1))
	require.NoError(t, err)

	c, err := store.Get(ctx, "c2")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
