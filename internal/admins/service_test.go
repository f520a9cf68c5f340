package admins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/models"
	"carrete-admin/internal/store"
)

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := NewService(mem, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestListNewestFirst(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, store.CollAdmin, "a", map[string]any{"email": "a@x.cl", "createdAt": "2024-01-01T00:00:00Z"}))
	require.NoError(t, mem.Set(ctx, store.CollAdmin, "b", map[string]any{"email": "b@x.cl", "createdAt": "ayer"}))
	require.NoError(t, mem.Set(ctx, store.CollAdmin, "c", map[string]any{"email": "c@x.cl", "createdAt": "2024-02-01T00:00:00Z"}))
	require.NoError(t, mem.Set(ctx, store.CollAdmin, "d", map[string]any{"email": "d@x.cl"}))

	list, err := svc.List(ctx)
	require.NoError(t, err)

	var ids []string
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
}

func TestGetFallsBackToUserID(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, store.CollAdmin, "legacy-doc", map[string]any{"userId": "uid-1", "email": "a@x.cl", "telefono": int32(912345678)}))

	admin, err := svc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "legacy-doc", admin.ID)
	assert.Equal(t, "912345678", admin.Telefono.String())

	_, err = svc.GetByID(ctx, "uid-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "keyed lookup must not match the userId field")

	_, err = svc.Get(ctx, "uid-2")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Admin{ID: "uid-1", Email: "a@x.cl", Username: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", created.UserID)
	assert.Equal(t, DefaultProfileURL, created.ProfileURL)
	assert.Equal(t, "2024-03-01T10:00:00Z", created.CreatedAt)

	got, err := svc.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Create(ctx, models.Admin{Email: "sin-id@x.cl"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, models.Admin{ID: "uid-1", Email: "a@x.cl", Username: "Ana", ProfileURL: "http://img/1"})
	require.NoError(t, err)

	name, phone := " Ana María ", "987654321"
	updated, err := svc.UpdateProfile(ctx, "uid-1", ProfileUpdate{Username: &name, Telefono: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Username)
	assert.Equal(t, "987654321", updated.Telefono.String())
	assert.Equal(t, "http://img/1", updated.ProfileURL)
	assert.Equal(t, "a@x.cl", updated.Email)

	unchanged, err := svc.UpdateProfile(ctx, "uid-1", ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, updated, unchanged)

	_, err = svc.UpdateProfile(ctx, "ghost", ProfileUpdate{Username: &name})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, models.Admin{ID: "uid-1", Email: "a@x.cl"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "uid-1"))
	assert.ErrorIs(t, svc.Delete(ctx, "uid-1"), apperr.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
