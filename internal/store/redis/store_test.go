package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRefreshKey(t *testing.T) {
	assert.Equal(t, "megamenu:refresh:web-01:42", RefreshKey("web-01:42"))
}

func TestSaveAndGetRefreshStatuses(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	refreshedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRefreshStatus(ctx, domain.RefreshStatus{
		Instance: "web-02", RefreshedAt: refreshedAt, NavRecords: 12, Sites: 40,
	}))
	require.NoError(t, store.SaveRefreshStatus(ctx, domain.RefreshStatus{
		Instance: "web-01", RefreshedAt: refreshedAt, SitesError: "timeout",
	}))

	assert.True(t, mr.Exists(RefreshKey("web-01")))
	assert.Equal(t, DefaultStatusTTL, mr.TTL(RefreshKey("web-01")))

	statuses, err := store.GetRefreshStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, "web-01", statuses[0].Instance)
	assert.True(t, statuses[0].Degraded())
	assert.Equal(t, "web-02", statuses[1].Instance)
	assert.Equal(t, 40, statuses[1].Sites)
	assert.True(t, statuses[1].RefreshedAt.Equal(refreshedAt))
}

func TestSaveRefreshStatusOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshStatus(ctx, domain.RefreshStatus{Instance: "web-01", Sites: 1}))
	require.NoError(t, store.SaveRefreshStatus(ctx, domain.RefreshStatus{Instance: "web-01", Sites: 2}))

	statuses, err := store.GetRefreshStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, 2, statuses[0].Sites)
}

func TestGetRefreshStatusesPrunesExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshStatus(ctx, domain.RefreshStatus{Instance: "gone"}))
	mr.FastForward(2 * DefaultStatusTTL)

	statuses, err := store.GetRefreshStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)

	members, err := mr.SMembers(KeyRefreshInstances)
	if err == nil {
		assert.NotContains(t, members, "gone")
	}
}

func TestSaveRefreshStatusRequiresInstance(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveRefreshStatus(context.Background(), domain.RefreshStatus{}))
}

func TestPublishSubscribeReload(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := store.SubscribeReload(ctx)
	require.NoError(t, err)
	defer func() { _ = sub.Close() }()

	n, err := store.PublishReload(ctx, "web-01")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	select {
	case origin := <-sub.C():
		assert.Equal(t, "web-01", origin)
	case <-time.After(2 * time.Second):
		t.Fatal("reload broadcast not received")
	}
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := store.SubscribeReload(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-sub.C():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close")
	}
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
