package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.Set(ctx, CollOrders, "b", map[string]any{"city": "Cusco"}))
	require.NoError(t, mem.Set(ctx, CollOrders, "a", map[string]any{"city": "Lima"}))
	require.NoError(t, mem.Set(ctx, CollOrders, "b", map[string]any{"city": "Arequipa"}))

	records, err := mem.All(ctx, CollOrders)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "Arequipa", records[0].Fields["city"])
	assert.Equal(t, "a", records[1].ID)
}

func TestMemoryWhere(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, CollAdmin, "1", map[string]any{"userId": "u1"}))
	require.NoError(t, mem.Set(ctx, CollAdmin, "2", map[string]any{"userId": "u2"}))

	records, err := mem.Where(ctx, CollAdmin, "userId", "u2")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)

	records, err = mem.Where(ctx, "missing", "userId", "u2")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.Get(ctx, CollAdmin, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, mem.Update(ctx, CollAdmin, "nope", map[string]any{"a": 1}), ErrNotFound)
	assert.ErrorIs(t, mem.Delete(ctx, CollAdmin, "nope"), ErrNotFound)
}

func TestMemoryUpdateMergesAndDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, CollAdmin, "1", map[string]any{"email": "a@b.cl", "username": "old"}))

	require.NoError(t, mem.Update(ctx, CollAdmin, "1", map[string]any{"username": "new"}))
	rec, err := mem.Get(ctx, CollAdmin, "1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.cl", rec.Fields["email"])
	assert.Equal(t, "new", rec.Fields["username"])

	require.NoError(t, mem.Delete(ctx, CollAdmin, "1"))
	records, err := mem.All(ctx, CollAdmin)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, CollUsers, "1", map[string]any{"email": "a@b.cl"}))

	rec, err := mem.Get(ctx, CollUsers, "1")
	require.NoError(t, err)
	rec.Fields["email"] = "changed"

	again, err := mem.Get(ctx, CollUsers, "1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.cl", again.Fields["email"])
}

func TestMemoryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemory().All(ctx, CollOrders)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordDecode(t *testing.T) {
	type admin struct {
		ID        string    `bson:"_id"`
		Email     string    `bson:"email"`
		CreatedAt time.Time `bson:"createdAt"`
	}

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := Record{ID: "uid-1", Fields: map[string]any{"email": "a@b.cl", "createdAt": created}}

	var out admin
	require.NoError(t, rec.Decode(&out))
	assert.Equal(t, "uid-1", out.ID)
	assert.Equal(t, "a@b.cl", out.Email)
	assert.True(t, created.Equal(out.CreatedAt))
}
