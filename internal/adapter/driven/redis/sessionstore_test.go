package redis_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/bestcars/internal/adapter/driven/redis"
	"github.com/ericfisherdev/bestcars/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

func newTestStore(t *testing.T, ttl time.Duration) (*redis.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	sealer, err := sealing.NewSealer(bytes.Repeat([]byte{9}, sealing.KeySize))
	require.NoError(t, err)

	return redis.NewSessionStore(client, sealer, ttl), mr
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	err := store.Save(ctx, model.Session{
		ID:        "s1",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Auth:      model.BackendAuth{Cookies: []*http.Cookie{{Name: "sessionid", Value: "secret-cookie"}}},
		CreatedAt: created,
	})
	require.NoError(t, err)

	raw, err := mr.Get("bestcars:session:s1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-cookie")
	assert.Equal(t, time.Hour, mr.TTL("bestcars:session:s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice Smith", got.DisplayName())
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, created.Equal(got.LastSeenAt), "last seen defaults to created")
	require.Len(t, got.Auth.Cookies, 1)
	assert.Equal(t, "secret-cookie", got.Auth.Cookies[0].Value)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ExpiresAfterIdleTTL(t *testing.T) {
	store, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.Session{ID: "s1", Username: "alice"}))

	mr.FastForward(20 * time.Minute)
	require.NoError(t, store.Touch(ctx, "s1", time.Now()))

	mr.FastForward(20 * time.Minute)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got, "touch restarts the TTL")

	mr.FastForward(31 * time.Minute)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_TouchMissingIsNoop(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	require.NoError(t, store.Touch(context.Background(), "ghost", time.Now()))
	assert.False(t, mr.Exists("bestcars:session:ghost"))
}

func TestSessionStore_TouchDoesNotRecreateDeletedSession(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.Session{ID: "s1", Username: "alice"}))
	store.SetBeforeTouchWrite(func() {
		require.NoError(t, store.Delete(ctx, "s1"))
	})

	require.NoError(t, store.Touch(ctx, "s1", time.Now()))
	assert.False(t, mr.Exists("bestcars:session:s1"), "logout wins over a racing touch")
}

func TestSessionStore_TouchKeepsIdleTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	seen := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, model.Session{ID: "s1", Username: "alice"}))
	mr.FastForward(10 * time.Minute)
	require.NoError(t, store.Touch(ctx, "s1", seen))

	assert.Equal(t, time.Hour, mr.TTL("bestcars:session:s1"))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, seen.Equal(got.LastSeenAt))
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, model.Session{ID: "s1", Username: "alice"}))
	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_DeleteIdle(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, model.Session{ID: "old", Username: "a", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, model.Session{ID: "new", Username: "b", CreatedAt: base, LastSeenAt: base.Add(2 * time.Hour)}))

	removed, err := store.DeleteIdle(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err := store.Get(ctx, "new")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSessionStore_Ping(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
