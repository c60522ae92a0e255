package liftboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_service_backend/internal/kvstore"
	"auto_service_backend/internal/models"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestBoard_AssignAndRelease(t *testing.T) {
	var b Board

	b1, err := b.Assign(0, 7, t0)
	require.NoError(t, err)
	assert.Nil(t, b[0], "receiver must not change")
	require.NotNil(t, b1[0])
	assert.Equal(t, int64(7), b1[0].OrderID)
	assert.Equal(t, 1, b1.Occupied())

	b2, held, elapsed, err := b1.Release(0, t0.Add(125*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(7), held.OrderID)
	assert.Equal(t, int64(125), elapsed)
	assert.Nil(t, b2[0])
	assert.NotNil(t, b1[0], "receiver must not change")
}

func TestBoard_Errors(t *testing.T) {
	var b Board
	_, err := b.Assign(3, 1, t0)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, err = b.Assign(-1, 1, t0)
	assert.ErrorIs(t, err, ErrInvalidSlot)

	b, err = b.Assign(1, 1, t0)
	require.NoError(t, err)
	_, err = b.Assign(1, 2, t0)
	assert.ErrorIs(t, err, ErrSlotOccupied)
	_, err = b.Assign(2, 1, t0)
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	_, _, _, err = b.Release(0, t0)
	assert.ErrorIs(t, err, ErrSlotEmpty)
	_, _, _, err = b.Release(5, t0)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestBoard_AllSlotsFull(t *testing.T) {
	var b Board
	var err error
	for i := 0; i < SlotCount; i++ {
		b, err = b.Assign(i, int64(i+1), t0)
		require.NoError(t, err)
	}
	assert.Equal(t, SlotCount, b.Occupied())
	for i := 0; i < SlotCount; i++ {
		_, err = b.Assign(i, 99, t0)
		assert.ErrorIs(t, err, ErrSlotOccupied)
	}
}

func TestResolve(t *testing.T) {
	var b Board
	b, _ = b.Assign(0, 7, t0)
	b, _ = b.Assign(2, 9, t0)

	orders := []models.Order{{ID: 7}, {ID: 8}}
	resolved := Resolve(b, orders)

	require.NotNil(t, resolved[0])
	assert.Equal(t, int64(7), resolved[0].Order.ID)
	assert.Nil(t, resolved[1])
	assert.Nil(t, resolved[2], "missing order resolves empty")
	assert.NotNil(t, b[2], "stale entry is kept")
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()

	store := NewKVStore(kv)
	b, err := store.Update(ctx, func(b Board) (Board, error) { return b.Assign(1, 42, t0) })
	require.NoError(t, err)
	require.NotNil(t, b[1])

	// A fresh store over the same backend sees the saved board.
	reloaded, err := NewKVStore(kv).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, reloaded[1])
	assert.Equal(t, int64(42), reloaded[1].OrderID)
	assert.True(t, reloaded[1].StartTime.Equal(t0))

	resolved := Resolve(reloaded, []models.Order{{ID: 42}})
	require.NotNil(t, resolved[1])
	assert.Equal(t, int64(42), resolved[1].Order.ID)

	resolved = Resolve(reloaded, nil)
	assert.Nil(t, resolved[1])
}

func TestKVStore_MissingOrCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	store := NewKVStore(kv)

	b, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Occupied())

	require.NoError(t, kv.Set(ctx, StorageKey, []byte("{not json")))
	b, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Occupied())

	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`[{"orderId":0},null]`)))
	b, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Occupied())
}

func TestKVStore_ReadsBrowserFormat(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	raw := `[null,{"orderId":12,"startTime":"2026-03-10T09:00:00.000Z"},null]`
	require.NoError(t, kv.Set(ctx, StorageKey, []byte(raw)))

	b, err := NewKVStore(kv).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, b[1])
	assert.Equal(t, int64(12), b[1].OrderID)
	assert.True(t, b[1].StartTime.Equal(t0))
}

func TestKVStore_UpdateErrorLeavesBoard(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(kvstore.NewMemoryStore())
	_, err := store.Update(ctx, func(b Board) (Board, error) { return b.Assign(0, 1, t0) })
	require.NoError(t, err)

	_, err = store.Update(ctx, func(b Board) (Board, error) { return b.Assign(0, 2, t0) })
	assert.ErrorIs(t, err, ErrSlotOccupied)

	b, _ := store.Load(ctx)
	assert.Equal(t, int64(1), b[0].OrderID)
}

func TestKVStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore(kvstore.NewMemoryStore())
	updates, cancel := store.Subscribe()
	defer cancel()

	_, err := store.Update(ctx, func(b Board) (Board, error) { return b.Assign(0, 1, t0) })
	require.NoError(t, err)
	_, err = store.Update(ctx, func(b Board) (Board, error) { return b.Assign(1, 2, t0) })
	require.NoError(t, err)

	// The slow reader only sees the latest board.
	got := <-updates
	assert.Equal(t, 2, got.Occupied())
	select {
	case <-updates:
		t.Fatal("expected no further update")
	default:
	}

	cancel()
	_, open := <-updates
	assert.False(t, open)
	cancel()
}
